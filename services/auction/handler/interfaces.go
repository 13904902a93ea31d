package handler

//go:generate mockgen -destination=mock_services.go -package=handler . BiddingServiceInterface,CategoryServiceInterface,AuctionServiceInterface,RatingServiceInterface,CommentServiceInterface

import (
	"context"

	catalog "auction-marketplace/internal/catalogService"
	model "auction-marketplace/internal/models"
	rating "auction-marketplace/internal/ratingService"
)

type BiddingServiceInterface interface {
	SubmitBid(ctx context.Context, rc model.RequestContext, auctionID string, price float64) (model.Bid, error)
	GetBidsForAuction(ctx context.Context, rc model.RequestContext, auctionID string) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, rc model.RequestContext, auctionID string) (model.Bid, error)
	GetBid(ctx context.Context, rc model.RequestContext, auctionID, bidID string) (model.Bid, error)
	RaiseBid(ctx context.Context, rc model.RequestContext, auctionID, bidID string, price float64) (model.Bid, error)
	DeleteBid(ctx context.Context, rc model.RequestContext, auctionID, bidID string) error
	GetBidsByCaller(ctx context.Context, rc model.RequestContext) ([]model.Bid, error)
}

type CategoryServiceInterface interface {
	ListCategories(ctx context.Context, rc model.RequestContext) ([]model.Category, error)
	CreateCategory(ctx context.Context, rc model.RequestContext, name string) (model.Category, error)
	GetCategory(ctx context.Context, rc model.RequestContext, categoryID string) (model.Category, error)
	RenameCategory(ctx context.Context, rc model.RequestContext, categoryID, name string) (model.Category, error)
	DeleteCategory(ctx context.Context, rc model.RequestContext, categoryID string) error
}

type AuctionServiceInterface interface {
	SearchAuctions(ctx context.Context, rc model.RequestContext, f catalog.Filter) ([]catalog.AuctionView, error)
	GetCallerAuctions(ctx context.Context, rc model.RequestContext) ([]catalog.AuctionView, error)
	GetAuction(ctx context.Context, rc model.RequestContext, auctionID string) (catalog.AuctionView, error)
	CreateAuction(ctx context.Context, rc model.RequestContext, in catalog.AuctionInput) (catalog.AuctionView, error)
	UpdateAuction(ctx context.Context, rc model.RequestContext, auctionID string, in catalog.AuctionInput) (catalog.AuctionView, error)
	DeleteAuction(ctx context.Context, rc model.RequestContext, auctionID string) error
}

type RatingServiceInterface interface {
	SubmitRating(ctx context.Context, rc model.RequestContext, auctionID string, score int) (model.Rating, rating.Outcome, error)
	GetCallerRatings(ctx context.Context, rc model.RequestContext) ([]model.Rating, error)
	GetCallerRating(ctx context.Context, rc model.RequestContext, auctionID string) (model.Rating, error)
	DeleteCallerRating(ctx context.Context, rc model.RequestContext, auctionID string) error
}

type CommentServiceInterface interface {
	PostComment(ctx context.Context, rc model.RequestContext, auctionID, title, content string) (model.Comment, error)
	GetComment(ctx context.Context, rc model.RequestContext, auctionID, commentID string) (model.Comment, error)
	ListComments(ctx context.Context, rc model.RequestContext, auctionID string) ([]model.Comment, error)
	UpdateComment(ctx context.Context, rc model.RequestContext, auctionID, commentID, title, content string) (model.Comment, error)
	DeleteComment(ctx context.Context, rc model.RequestContext, auctionID, commentID string) error
	GetCallerComments(ctx context.Context, rc model.RequestContext) ([]model.Comment, error)
}
