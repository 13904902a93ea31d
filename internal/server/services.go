package server

import (
	"auction-marketplace/internal/authz"
	bidding "auction-marketplace/internal/biddingService"
	catalog "auction-marketplace/internal/catalogService"
	comment "auction-marketplace/internal/commentService"
	"auction-marketplace/internal/events"
	"auction-marketplace/internal/lifecycle"
	"auction-marketplace/internal/lock"
	rating "auction-marketplace/internal/ratingService"
	"auction-marketplace/internal/repository"
)

// ServiceConfig tunes the domain services. Zero values select the in-process defaults.
type ServiceConfig struct {
	Locker     lock.Locker
	Publisher  events.Publisher
	MaxRetries int
	Rules      lifecycle.Rules
	SeedRating bool
}

// NewServices builds every domain service over one store and one authorization gate
func NewServices(store repository.CatalogStore, cfg ServiceConfig) Services {
	gate := authz.NewGate()
	ratings := rating.NewRatingService(store, gate)

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = bidding.DefaultMaxRetries
	}

	return Services{
		Bidding: bidding.NewBiddingService(store, gate,
			bidding.WithLocker(cfg.Locker),
			bidding.WithPublisher(cfg.Publisher),
			bidding.WithMaxRetries(maxRetries),
		),
		Categories: catalog.NewCategoryService(store, gate),
		Auctions: catalog.NewAuctionService(store, ratings, gate,
			catalog.WithRules(cfg.Rules),
			catalog.WithSeedRating(cfg.SeedRating),
		),
		Ratings:  ratings,
		Comments: comment.NewCommentService(store, gate),
	}
}
