package repository

import (
	"time"

	model "auction-marketplace/internal/models"
)

// GORM models used for persistence.
type CategoryModel struct {
	ID   string `gorm:"primaryKey;size:26"`
	Name string `gorm:"uniqueIndex;size:50;not null"`
}

type AuctionModel struct {
	ID           string    `gorm:"primaryKey;size:26"`
	Title        string    `gorm:"size:150;not null"`
	Description  string    `gorm:"type:text"`
	ClosingDate  time.Time `gorm:"not null;index"`
	CreationDate time.Time `gorm:"not null"`
	Thumbnail    string    `gorm:"size:500"`
	Price        float64   `gorm:"not null;index"`
	Stock        int       `gorm:"not null"`
	CategoryID   string    `gorm:"size:26;not null;index"`
	Brand        string    `gorm:"size:100"`
	Auctioneer   string    `gorm:"size:191;not null;index"`

	Category CategoryModel `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT;"`
}

type BidModel struct {
	ID           string    `gorm:"primaryKey;size:26"`
	AuctionID    string    `gorm:"size:26;not null;index"`
	Price        float64   `gorm:"not null"`
	CreationDate time.Time `gorm:"not null"`
	Bidder       string    `gorm:"size:191;not null;index"`

	Auction AuctionModel `gorm:"foreignKey:AuctionID;constraint:OnDelete:CASCADE;"`
}

type RatingModel struct {
	ID        string `gorm:"primaryKey;size:26"`
	AuctionID string `gorm:"size:26;not null;uniqueIndex:idx_rating_reviewer_auction"`
	Reviewer  string `gorm:"size:191;not null;uniqueIndex:idx_rating_reviewer_auction"`
	Score     int    `gorm:"not null;check:score >= 1 AND score <= 5"`

	Auction AuctionModel `gorm:"foreignKey:AuctionID;constraint:OnDelete:CASCADE;"`
}

type CommentModel struct {
	ID             string    `gorm:"primaryKey;size:26"`
	AuctionID      string    `gorm:"size:26;not null;index"`
	Author         string    `gorm:"size:191;not null;index"`
	Title          string    `gorm:"size:100;not null"`
	Content        string    `gorm:"type:text;not null"`
	CreationDate   time.Time `gorm:"not null"`
	LastUpdateDate time.Time `gorm:"not null"`

	Auction AuctionModel `gorm:"foreignKey:AuctionID;constraint:OnDelete:CASCADE;"`
}

func categoryToModel(c model.Category) CategoryModel {
	return CategoryModel{ID: c.CategoryID, Name: c.Name}
}

func categoryFromModel(m CategoryModel) model.Category {
	return model.Category{CategoryID: m.ID, Name: m.Name}
}

func auctionToModel(a model.Auction) AuctionModel {
	return AuctionModel{
		ID:           a.AuctionID,
		Title:        a.Title,
		Description:  a.Description,
		ClosingDate:  a.ClosingDate.UTC(),
		CreationDate: a.CreationDate.UTC(),
		Thumbnail:    a.ThumbnailURL,
		Price:        a.Price,
		Stock:        a.Stock,
		CategoryID:   a.CategoryID,
		Brand:        a.Brand,
		Auctioneer:   string(a.Auctioneer),
	}
}

func auctionFromModel(m AuctionModel) model.Auction {
	return model.Auction{
		AuctionID:    m.ID,
		Title:        m.Title,
		Description:  m.Description,
		ClosingDate:  m.ClosingDate.UTC(),
		CreationDate: m.CreationDate.UTC(),
		ThumbnailURL: m.Thumbnail,
		Price:        m.Price,
		Stock:        m.Stock,
		CategoryID:   m.CategoryID,
		Brand:        m.Brand,
		Auctioneer:   model.UserRef(m.Auctioneer),
	}
}

func bidToModel(b model.Bid) BidModel {
	return BidModel{
		ID:           b.BidID,
		AuctionID:    b.AuctionID,
		Price:        b.Price,
		CreationDate: b.CreationDate.UTC(),
		Bidder:       string(b.Bidder),
	}
}

func bidFromModel(m BidModel) model.Bid {
	return model.Bid{
		BidID:        m.ID,
		AuctionID:    m.AuctionID,
		Price:        m.Price,
		CreationDate: m.CreationDate.UTC(),
		Bidder:       model.UserRef(m.Bidder),
	}
}

func ratingToModel(r model.Rating) RatingModel {
	return RatingModel{ID: r.RatingID, AuctionID: r.AuctionID, Reviewer: string(r.Reviewer), Score: r.Score}
}

func ratingFromModel(m RatingModel) model.Rating {
	return model.Rating{RatingID: m.ID, AuctionID: m.AuctionID, Reviewer: model.UserRef(m.Reviewer), Score: m.Score}
}

func commentToModel(c model.Comment) CommentModel {
	return CommentModel{
		ID:             c.CommentID,
		AuctionID:      c.AuctionID,
		Author:         string(c.Author),
		Title:          c.Title,
		Content:        c.Content,
		CreationDate:   c.CreationDate.UTC(),
		LastUpdateDate: c.LastUpdateDate.UTC(),
	}
}

func commentFromModel(m CommentModel) model.Comment {
	return model.Comment{
		CommentID:      m.ID,
		AuctionID:      m.AuctionID,
		Author:         model.UserRef(m.Author),
		Title:          m.Title,
		Content:        m.Content,
		CreationDate:   m.CreationDate.UTC(),
		LastUpdateDate: m.LastUpdateDate.UTC(),
	}
}
