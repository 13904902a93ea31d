package repository

//go:generate mockgen -destination=mock_repository.go -package=repository . BidDB

import (
	"context"

	model "auction-marketplace/internal/models"
)

// CategoryDB defines category persistence
type CategoryDB interface {
	CreateCategory(ctx context.Context, category model.Category) error
	GetCategory(ctx context.Context, categoryID string) (model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, category model.Category) error
	DeleteCategory(ctx context.Context, categoryID string) error
}

// AuctionDB defines auction persistence. DeleteAuction removes the auction together with
// its bids, ratings and comments as one unit of work.
type AuctionDB interface {
	CreateAuction(ctx context.Context, auction model.Auction) error
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	UpdateAuction(ctx context.Context, auction model.Auction) error
	DeleteAuction(ctx context.Context, auctionID string) error
	ListAuctions(ctx context.Context, query model.AuctionQuery) ([]model.Auction, error)
}

// BidDB defines the bid storage interface for the auction system.
// AppendBid and ReplaceTopBid are compare-and-swap operations: they fail with
// ErrBidConflict unless the auction's winning bid id still equals expectedTopID
// ("" meaning no bids yet).
type BidDB interface {
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error)
	AppendBid(ctx context.Context, bid model.Bid, expectedTopID string) error
	ReplaceTopBid(ctx context.Context, bid model.Bid) error
	GetBid(ctx context.Context, auctionID, bidID string) (model.Bid, error)
	DeleteBid(ctx context.Context, auctionID, bidID string) error
	GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetBidsByBidder(ctx context.Context, bidder model.UserRef) ([]model.Bid, error)
}

// RatingDB defines rating persistence. UpsertRating is atomic per (reviewer, auction)
// and reports whether a new row was created.
type RatingDB interface {
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	UpsertRating(ctx context.Context, rating model.Rating) (model.Rating, bool, error)
	GetRating(ctx context.Context, reviewer model.UserRef, auctionID string) (model.Rating, error)
	DeleteRating(ctx context.Context, reviewer model.UserRef, auctionID string) error
	GetRatingsByAuction(ctx context.Context, auctionID string) ([]model.Rating, error)
	GetRatingsByReviewer(ctx context.Context, reviewer model.UserRef) ([]model.Rating, error)
}

// CommentDB defines comment persistence
type CommentDB interface {
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	CreateComment(ctx context.Context, comment model.Comment) error
	GetComment(ctx context.Context, auctionID, commentID string) (model.Comment, error)
	UpdateComment(ctx context.Context, comment model.Comment) error
	DeleteComment(ctx context.Context, auctionID, commentID string) error
	GetCommentsByAuction(ctx context.Context, auctionID string) ([]model.Comment, error)
	GetCommentsByAuthor(ctx context.Context, author model.UserRef) ([]model.Comment, error)
}

// CatalogStore is the full persistence surface of the marketplace
type CatalogStore interface {
	CategoryDB
	AuctionDB
	BidDB
	RatingDB
	CommentDB
	Close() error
}
