package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/authz"
	"auction-marketplace/internal/lifecycle"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"

	"golang.org/x/sync/errgroup"
)

const (
	MaxAuctionTitleLength = 150
	MaxBrandLength        = 100

	averageFetchLimit = 8
)

// AuctionStore is the persistence AuctionService needs
type AuctionStore interface {
	repository.AuctionDB
	GetCategory(ctx context.Context, categoryID string) (models.Category, error)
	GetCategoryByName(ctx context.Context, name string) (models.Category, error)
}

// RatingSource supplies aggregate scores and the optional creation-time seed rating
type RatingSource interface {
	AverageRating(ctx context.Context, auctionID string) (*float64, error)
	Seed(ctx context.Context, auction models.Auction) (models.Rating, error)
}

// AuctionView is an auction decorated with its derived fields
type AuctionView struct {
	models.Auction
	IsOpen        bool
	AverageRating *float64
}

// AuctionInput is the client-editable part of an auction
type AuctionInput struct {
	Title        string
	Description  string
	ClosingDate  time.Time
	ThumbnailURL string
	Price        float64
	Stock        int
	CategoryID   string
	Brand        string
	// Auctioneer is only compared against the stored owner on update
	Auctioneer *models.UserRef
}

// AuctionService manages the auction catalog
type AuctionService struct {
	repo    AuctionStore
	ratings RatingSource
	gate    *authz.Gate
	rules   lifecycle.Rules
	seed    bool
}

// AuctionOption customizes an AuctionService
type AuctionOption func(*AuctionService)

// WithRules replaces the default closing-date rules
func WithRules(r lifecycle.Rules) AuctionOption {
	return func(s *AuctionService) { s.rules = r }
}

// WithSeedRating turns the auctioneer self-rating on new auctions on or off
func WithSeedRating(on bool) AuctionOption {
	return func(s *AuctionService) { s.seed = on }
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo AuctionStore, ratings RatingSource, gate *authz.Gate, opts ...AuctionOption) *AuctionService {
	s := &AuctionService{
		repo:    repo,
		ratings: ratings,
		gate:    gate,
		rules:   lifecycle.DefaultRules(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchAuctions lists the auctions matching a filter
func (s *AuctionService) SearchAuctions(ctx context.Context, rc models.RequestContext, f Filter) ([]AuctionView, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionList, authz.Resource{Kind: authz.KindAuction}); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	var resolved *models.Category
	if f.Category != nil {
		category, err := s.repo.GetCategoryByName(ctx, *f.Category)
		switch {
		case err == nil:
			resolved = &category
		case !errors.Is(err, auctionerrors.ErrCategoryMissing):
			return nil, auctionerrors.StoreError("service: resolve category", "category", *f.Category, err)
		}
	}

	query, err := BuildQuery(f, resolved)
	if err != nil {
		return nil, err
	}
	auctions, err := s.repo.ListAuctions(ctx, query)
	if err != nil {
		return nil, auctionerrors.StoreError("service: list auctions", "auction", "", err)
	}
	return s.decorateAll(ctx, rc.Now, auctions)
}

// GetCallerAuctions lists the auctions the caller owns
func (s *AuctionService) GetCallerAuctions(ctx context.Context, rc models.RequestContext) ([]AuctionView, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionListOwn, authz.Resource{Kind: authz.KindAuction}); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	owner := rc.Caller.ID
	auctions, err := s.repo.ListAuctions(ctx, models.AuctionQuery{Auctioneer: &owner, OrderBy: models.OrderByIDAsc})
	if err != nil {
		return nil, auctionerrors.StoreError("service: list auctions of "+string(owner), "auction", "", err)
	}
	return s.decorateAll(ctx, rc.Now, auctions)
}

// GetAuction returns one auction
func (s *AuctionService) GetAuction(ctx context.Context, rc models.RequestContext, auctionID string) (AuctionView, error) {
	auction, err := s.load(ctx, auctionID)
	if err != nil {
		return AuctionView{}, err
	}
	if err := s.gate.Require(rc.Caller, authz.ActionRead, auctionResource(auction)); err != nil {
		return AuctionView{}, fmt.Errorf("service: %w", err)
	}
	return s.decorate(ctx, rc.Now, auction)
}

// CreateAuction lists a new auction owned by the caller
func (s *AuctionService) CreateAuction(ctx context.Context, rc models.RequestContext, in AuctionInput) (AuctionView, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionCreate, authz.Resource{Kind: authz.KindAuction}); err != nil {
		return AuctionView{}, fmt.Errorf("service: %w", err)
	}

	now := rc.Now.UTC()
	var errs auctionerrors.ValidationErrors
	validateFields(&errs, in)
	if err := errs.Collect(s.rules.ValidateCreate(in.ClosingDate, now)); err != nil {
		return AuctionView{}, err
	}
	if err := errs.Collect(s.checkCategory(ctx, in.CategoryID)); err != nil {
		return AuctionView{}, err
	}
	if err := errs.Err(); err != nil {
		return AuctionView{}, fmt.Errorf("service: %w", err)
	}

	auction := models.Auction{
		AuctionID:    utils.GenerateID(),
		Title:        in.Title,
		Description:  in.Description,
		ClosingDate:  in.ClosingDate.UTC(),
		CreationDate: now,
		ThumbnailURL: in.ThumbnailURL,
		Price:        in.Price,
		Stock:        in.Stock,
		CategoryID:   in.CategoryID,
		Brand:        in.Brand,
		Auctioneer:   rc.Caller.ID,
	}
	if err := s.repo.CreateAuction(ctx, auction); err != nil {
		return AuctionView{}, auctionerrors.StoreError("service: create auction", "category", in.CategoryID, err)
	}

	if s.seed && s.ratings != nil {
		if _, err := s.ratings.Seed(ctx, auction); err != nil {
			utils.Warn("service: failed to seed auctioneer rating", map[string]any{
				"auction_id": auction.AuctionID,
				"error":      err.Error(),
			})
		}
	}
	return s.decorate(ctx, now, auction)
}

// UpdateAuction replaces the editable fields of an auction. Only the auctioneer or an
// administrator may do this and the auctioneer never changes.
func (s *AuctionService) UpdateAuction(ctx context.Context, rc models.RequestContext, auctionID string, in AuctionInput) (AuctionView, error) {
	current, err := s.load(ctx, auctionID)
	if err != nil {
		return AuctionView{}, err
	}
	if err := s.gate.Require(rc.Caller, authz.ActionUpdate, auctionResource(current)); err != nil {
		return AuctionView{}, fmt.Errorf("service: %w", err)
	}

	var errs auctionerrors.ValidationErrors
	if in.Auctioneer != nil && *in.Auctioneer != current.Auctioneer {
		errs = append(errs, auctionerrors.Invalid("auctioneer", auctionerrors.CodeAuctioneerChanged, auctionerrors.ErrAuctioneerImmutable))
	}
	validateFields(&errs, in)
	if err := errs.Collect(s.rules.ValidateUpdate(in.ClosingDate, current.CreationDate, rc.Now)); err != nil {
		return AuctionView{}, err
	}
	if err := errs.Collect(s.checkCategory(ctx, in.CategoryID)); err != nil {
		return AuctionView{}, err
	}
	if err := errs.Err(); err != nil {
		return AuctionView{}, fmt.Errorf("service: %w", err)
	}

	updated := current
	updated.Title = in.Title
	updated.Description = in.Description
	updated.ClosingDate = in.ClosingDate.UTC()
	updated.ThumbnailURL = in.ThumbnailURL
	updated.Price = in.Price
	updated.Stock = in.Stock
	updated.CategoryID = in.CategoryID
	updated.Brand = in.Brand
	if err := s.repo.UpdateAuction(ctx, updated); err != nil {
		return AuctionView{}, auctionerrors.StoreError("service: update auction", "auction", auctionID, err)
	}
	return s.decorate(ctx, rc.Now, updated)
}

// DeleteAuction removes an auction with its bids, ratings and comments
func (s *AuctionService) DeleteAuction(ctx context.Context, rc models.RequestContext, auctionID string) error {
	current, err := s.load(ctx, auctionID)
	if err != nil {
		return err
	}
	if err := s.gate.Require(rc.Caller, authz.ActionDelete, auctionResource(current)); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if err := s.repo.DeleteAuction(ctx, auctionID); err != nil {
		return auctionerrors.StoreError("service: delete auction", "auction", auctionID, err)
	}
	return nil
}

func (s *AuctionService) load(ctx context.Context, auctionID string) (models.Auction, error) {
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, auctionerrors.StoreError("service: get auction "+auctionID, "auction", auctionID, err)
	}
	return auction, nil
}

// checkCategory returns a ValidationError for an unknown category and store failures as is
func (s *AuctionService) checkCategory(ctx context.Context, categoryID string) error {
	if strings.TrimSpace(categoryID) == "" {
		return auctionerrors.Invalidf("category", auctionerrors.CodeInvalidField, auctionerrors.ErrInvalidField, "category is required")
	}
	_, err := s.repo.GetCategory(ctx, categoryID)
	if errors.Is(err, auctionerrors.ErrCategoryMissing) {
		return auctionerrors.Invalidf("category", auctionerrors.CodeCategoryNotFound, auctionerrors.ErrCategoryNotFound,
			"category %s does not exist", categoryID)
	}
	if err != nil {
		return auctionerrors.StoreError("service: get category", "category", categoryID, err)
	}
	return nil
}

func (s *AuctionService) decorate(ctx context.Context, now time.Time, auction models.Auction) (AuctionView, error) {
	view := AuctionView{Auction: auction, IsOpen: lifecycle.IsOpen(auction, now)}
	if s.ratings == nil {
		return view, nil
	}
	avg, err := s.ratings.AverageRating(ctx, auction.AuctionID)
	if err != nil {
		return AuctionView{}, err
	}
	view.AverageRating = avg
	return view, nil
}

// decorateAll fetches averages concurrently and keeps the listing order
func (s *AuctionService) decorateAll(ctx context.Context, now time.Time, auctions []models.Auction) ([]AuctionView, error) {
	views := make([]AuctionView, len(auctions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(averageFetchLimit)
	for i, a := range auctions {
		i, a := i, a
		g.Go(func() error {
			view, err := s.decorate(gctx, now, a)
			if err != nil {
				return err
			}
			views[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

func validateFields(errs *auctionerrors.ValidationErrors, in AuctionInput) {
	switch n := utf8.RuneCountInString(strings.TrimSpace(in.Title)); {
	case n == 0:
		*errs = append(*errs, auctionerrors.Invalidf("title", auctionerrors.CodeInvalidField, auctionerrors.ErrInvalidField, "title is required"))
	case utf8.RuneCountInString(in.Title) > MaxAuctionTitleLength:
		*errs = append(*errs, auctionerrors.Invalidf("title", auctionerrors.CodeTitleTooLong, auctionerrors.ErrTitleTooLong,
			"title must have at most %d characters", MaxAuctionTitleLength))
	}
	if utf8.RuneCountInString(in.Brand) > MaxBrandLength {
		*errs = append(*errs, auctionerrors.Invalidf("brand", auctionerrors.CodeInvalidField, auctionerrors.ErrInvalidField,
			"brand must have at most %d characters", MaxBrandLength))
	}
	if in.ThumbnailURL != "" && !isHTTPURL(in.ThumbnailURL) {
		*errs = append(*errs, auctionerrors.Invalidf("thumbnail", auctionerrors.CodeInvalidField, auctionerrors.ErrInvalidField,
			"thumbnail must be an absolute http or https URL"))
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		*errs = append(*errs, auctionerrors.Invalid("price", auctionerrors.CodeInvalidField, auctionerrors.ErrInvalidField))
	} else if in.Price < 0 {
		*errs = append(*errs, auctionerrors.Invalid("price", auctionerrors.CodeNegativePrice, auctionerrors.ErrNegativePrice))
	}
	if in.Stock < 1 {
		*errs = append(*errs, auctionerrors.Invalidf("stock", auctionerrors.CodeInvalidField, auctionerrors.ErrInvalidField,
			"stock must be at least 1"))
	}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func auctionResource(a models.Auction) authz.Resource {
	return authz.Resource{Kind: authz.KindAuction, ID: a.AuctionID, Owner: a.Auctioneer}
}
