package rating

import (
	"context"
	"fmt"
	"math"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/authz"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"
)

const (
	MinScore = 1
	MaxScore = 5

	// SeedScore is the score given to an auctioneer's own auction when self-seeding is on
	SeedScore = 1
)

// Outcome of SubmitRating
type Outcome int

const (
	Created Outcome = iota
	Updated
)

func (o Outcome) String() string {
	if o == Created {
		return "created"
	}
	return "updated"
}

// RatingService keeps at most one rating per reviewer and auction
type RatingService struct {
	repo repository.RatingDB
	gate *authz.Gate
}

// NewRatingService creates a new RatingService instance
func NewRatingService(repo repository.RatingDB, gate *authz.Gate) *RatingService {
	return &RatingService{repo: repo, gate: gate}
}

// SubmitRating inserts the caller's rating for an auction or overwrites the existing one
func (s *RatingService) SubmitRating(ctx context.Context, rc models.RequestContext, auctionID string, score int) (models.Rating, Outcome, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionCreate, authz.Resource{Kind: authz.KindRating}); err != nil {
		return models.Rating{}, Created, fmt.Errorf("service: %w", err)
	}
	if err := ValidateScore(score); err != nil {
		return models.Rating{}, Created, err
	}
	if auctionID == "" {
		return models.Rating{}, Created, fmt.Errorf("service: %w",
			auctionerrors.Invalid("auction", auctionerrors.CodeInvalidField, auctionerrors.ErrMissingAuctionID))
	}
	if _, err := s.repo.GetAuction(ctx, auctionID); err != nil {
		return models.Rating{}, Created, auctionerrors.StoreError("service: get auction "+auctionID, "auction", auctionID, err)
	}

	return s.upsert(ctx, rc.Caller.ID, auctionID, score)
}

// Seed records the auctioneer's rating of their own new auction
func (s *RatingService) Seed(ctx context.Context, auction models.Auction) (models.Rating, error) {
	rating, _, err := s.upsert(ctx, auction.Auctioneer, auction.AuctionID, SeedScore)
	return rating, err
}

func (s *RatingService) upsert(ctx context.Context, reviewer models.UserRef, auctionID string, score int) (models.Rating, Outcome, error) {
	stored, created, err := s.repo.UpsertRating(ctx, models.Rating{
		RatingID:  utils.GenerateID(),
		AuctionID: auctionID,
		Reviewer:  reviewer,
		Score:     score,
	})
	if err != nil {
		return models.Rating{}, Created, auctionerrors.StoreError("service: upsert rating", "auction", auctionID, err)
	}
	if created {
		return stored, Created, nil
	}
	return stored, Updated, nil
}

// AverageRating returns the mean score of an auction rounded to 2 decimals, or nil when unrated
func (s *RatingService) AverageRating(ctx context.Context, auctionID string) (*float64, error) {
	ratings, err := s.repo.GetRatingsByAuction(ctx, auctionID)
	if err != nil {
		return nil, auctionerrors.StoreError("service: get ratings for auction "+auctionID, "auction", auctionID, err)
	}
	scores := make([]int, 0, len(ratings))
	for _, r := range ratings {
		scores = append(scores, r.Score)
	}
	return Average(scores), nil
}

// GetCallerRatings returns every rating the caller has given
func (s *RatingService) GetCallerRatings(ctx context.Context, rc models.RequestContext) ([]models.Rating, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionListOwn, authz.Resource{Kind: authz.KindRating}); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	ratings, err := s.repo.GetRatingsByReviewer(ctx, rc.Caller.ID)
	if err != nil {
		return nil, auctionerrors.StoreError("service: get ratings by reviewer", "user", string(rc.Caller.ID), err)
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}
	return ratings, nil
}

// GetCallerRating returns the caller's rating on one auction
func (s *RatingService) GetCallerRating(ctx context.Context, rc models.RequestContext, auctionID string) (models.Rating, error) {
	rating, err := s.callerRating(ctx, rc, authz.ActionRead, auctionID)
	if err != nil {
		return models.Rating{}, err
	}
	return rating, nil
}

// DeleteCallerRating removes the caller's rating on one auction
func (s *RatingService) DeleteCallerRating(ctx context.Context, rc models.RequestContext, auctionID string) error {
	if _, err := s.callerRating(ctx, rc, authz.ActionDelete, auctionID); err != nil {
		return err
	}
	if err := s.repo.DeleteRating(ctx, rc.Caller.ID, auctionID); err != nil {
		return auctionerrors.StoreError("service: delete rating", "rating", auctionID, err)
	}
	return nil
}

func (s *RatingService) callerRating(ctx context.Context, rc models.RequestContext, action authz.Action, auctionID string) (models.Rating, error) {
	if !rc.Caller.Authenticated() {
		return models.Rating{}, fmt.Errorf("service: %w", s.gate.Require(rc.Caller, action, authz.Resource{Kind: authz.KindRating}))
	}
	rating, err := s.repo.GetRating(ctx, rc.Caller.ID, auctionID)
	if err != nil {
		return models.Rating{}, auctionerrors.StoreError("service: get rating", "rating", auctionID, err)
	}
	resource := authz.Resource{Kind: authz.KindRating, ID: rating.RatingID, Owner: rating.Reviewer}
	if err := s.gate.Require(rc.Caller, action, resource); err != nil {
		return models.Rating{}, fmt.Errorf("service: %w", err)
	}
	return rating, nil
}

// ValidateScore rejects scores outside [MinScore, MaxScore]
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("service: %w", auctionerrors.Invalidf("score", auctionerrors.CodeInvalidScore,
			auctionerrors.ErrInvalidScore, "score must be between %d and %d", MinScore, MaxScore))
	}
	return nil
}

// Average is the arithmetic mean rounded half away from zero to 2 decimals. No scores means nil.
func Average(scores []int) *float64 {
	if len(scores) == 0 {
		return nil
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	avg := math.Round(float64(sum)*100/float64(len(scores))) / 100
	return &avg
}

// FormatAverage renders an average the way clients see it
func FormatAverage(avg *float64) string {
	if avg == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *avg)
}
