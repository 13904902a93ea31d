package helpers

import (
	catalog "auction-marketplace/internal/catalogService"
	model "auction-marketplace/internal/models"
	rating "auction-marketplace/internal/ratingService"
	"auction-marketplace/utils"
)

// Request DTOs
type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type AuctionRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	ClosingDate string   `json:"closing_date" binding:"required"`
	Thumbnail   string   `json:"thumbnail"`
	Price       *float64 `json:"price" binding:"required"`
	Stock       *int     `json:"stock" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Brand       string   `json:"brand"`
	Auctioneer  *string  `json:"auctioneer"`
}

type PlaceBidRequest struct {
	Price *float64 `json:"price" binding:"required"`
}

type RatingRequest struct {
	Auction string `json:"auction" binding:"required"`
	Score   *int   `json:"score" binding:"required"`
}

type RatingUpdateRequest struct {
	Score *int `json:"score" binding:"required"`
}

type CommentRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Response DTOs
type AuctionResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	ClosingDate   string  `json:"closing_date"`
	CreationDate  string  `json:"creation_date"`
	Thumbnail     string  `json:"thumbnail"`
	Price         float64 `json:"price"`
	Stock         int     `json:"stock"`
	Category      string  `json:"category"`
	Brand         string  `json:"brand"`
	Auctioneer    string  `json:"auctioneer"`
	IsOpen        bool    `json:"isOpen"`
	AverageRating *string `json:"averageRating,omitempty"`
}

type BidResponse struct {
	ID           string  `json:"id"`
	Auction      string  `json:"auction"`
	Price        float64 `json:"price"`
	CreationDate string  `json:"creation_date"`
	Bidder       string  `json:"bidder"`
}

type RatingResponse struct {
	ID       string `json:"id"`
	Auction  string `json:"auction"`
	Reviewer string `json:"reviewer"`
	Score    int    `json:"score"`
}

type CommentResponse struct {
	ID             string `json:"id"`
	Auction        string `json:"auction"`
	Author         string `json:"author"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	CreationDate   string `json:"creation_date"`
	LastUpdateDate string `json:"last_update_date"`
}

func ToAuctionResponse(v catalog.AuctionView) AuctionResponse {
	resp := AuctionResponse{
		ID:           v.AuctionID,
		Title:        v.Title,
		Description:  v.Description,
		ClosingDate:  v.ClosingDate.UTC().Format(utils.DateFormat),
		CreationDate: v.CreationDate.UTC().Format(utils.DateFormat),
		Thumbnail:    v.ThumbnailURL,
		Price:        v.Price,
		Stock:        v.Stock,
		Category:     v.CategoryID,
		Brand:        v.Brand,
		Auctioneer:   string(v.Auctioneer),
		IsOpen:       v.IsOpen,
	}
	if v.AverageRating != nil {
		avg := rating.FormatAverage(v.AverageRating)
		resp.AverageRating = &avg
	}
	return resp
}

func ToAuctionResponses(views []catalog.AuctionView) []AuctionResponse {
	out := make([]AuctionResponse, 0, len(views))
	for _, v := range views {
		out = append(out, ToAuctionResponse(v))
	}
	return out
}

func ToBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		ID:           b.BidID,
		Auction:      b.AuctionID,
		Price:        b.Price,
		CreationDate: b.CreationDate.UTC().Format(utils.DateFormat),
		Bidder:       string(b.Bidder),
	}
}

func ToBidResponses(bids []model.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, ToBidResponse(b))
	}
	return out
}

func ToRatingResponse(r model.Rating) RatingResponse {
	return RatingResponse{ID: r.RatingID, Auction: r.AuctionID, Reviewer: string(r.Reviewer), Score: r.Score}
}

func ToRatingResponses(ratings []model.Rating) []RatingResponse {
	out := make([]RatingResponse, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, ToRatingResponse(r))
	}
	return out
}

func ToCommentResponse(c model.Comment) CommentResponse {
	return CommentResponse{
		ID:             c.CommentID,
		Auction:        c.AuctionID,
		Author:         string(c.Author),
		Title:          c.Title,
		Content:        c.Content,
		CreationDate:   c.CreationDate.UTC().Format(utils.DateFormat),
		LastUpdateDate: c.LastUpdateDate.UTC().Format(utils.DateFormat),
	}
}

func ToCommentResponses(comments []model.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, ToCommentResponse(c))
	}
	return out
}
