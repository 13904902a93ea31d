package bidding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/authz"
	"auction-marketplace/internal/events"
	"auction-marketplace/internal/lifecycle"
	"auction-marketplace/internal/lock"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"
)

// DefaultMaxRetries bounds how often a lost compare-and-append is retried
const DefaultMaxRetries = 3

// BiddingService accepts or rejects bids against the current auction state.
// Every write to an auction's bid ledger runs under that auction's lock and is
// committed with a compare-and-append against the winning bid it was validated on.
type BiddingService struct {
	repo       repository.BidDB
	gate       *authz.Gate
	locker     lock.Locker
	publisher  events.Publisher
	maxRetries int
}

// Option customizes a BiddingService
type Option func(*BiddingService)

// WithLocker sets the per-auction serialization point
func WithLocker(l lock.Locker) Option {
	return func(s *BiddingService) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithPublisher sets where accepted bids are announced
func WithPublisher(p events.Publisher) Option {
	return func(s *BiddingService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMaxRetries sets the compare-and-append retry bound. Negative values are ignored.
func WithMaxRetries(n int) Option {
	return func(s *BiddingService) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.BidDB, gate *authz.Gate, opts ...Option) *BiddingService {
	s := &BiddingService{
		repo:       repo,
		gate:       gate,
		locker:     lock.NewKeyedMutex(),
		publisher:  events.NoopPublisher{},
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitBid validates and records a caller's bid for an auction
func (s *BiddingService) SubmitBid(ctx context.Context, rc models.RequestContext, auctionID string, price float64) (models.Bid, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionCreate, authz.Resource{Kind: authz.KindBid}); err != nil {
		return models.Bid{}, fmt.Errorf("service: %w", err)
	}
	if err := validateAuctionID(auctionID); err != nil {
		return models.Bid{}, err
	}
	if err := validatePrice(price); err != nil {
		return models.Bid{}, err
	}

	unlock, err := s.locker.Lock(ctx, auctionID)
	if err != nil {
		return models.Bid{}, auctionerrors.Unavailable("service: lock auction "+auctionID, err)
	}
	defer unlock()

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		bid, previous, err := s.tryAppend(ctx, rc, auctionID, price)
		if errors.Is(err, auctionerrors.ErrBidConflict) {
			utils.Debug("service: bid lost compare-and-append, retrying", map[string]any{
				"auction_id": auctionID,
				"attempt":    attempt + 1,
			})
			continue
		}
		if err != nil {
			return models.Bid{}, err
		}
		s.publish(ctx, bid, previous, rc.Now)
		return bid, nil
	}

	return models.Bid{}, fmt.Errorf("service: submit bid for auction %s: %w", auctionID,
		&auctionerrors.ConflictError{Kind: auctionerrors.ConflictBidRace, Cause: auctionerrors.ErrBidConflict})
}

// tryAppend runs one validate-then-append attempt. It returns the accepted bid and the
// price it outbid (0 for the first bid).
func (s *BiddingService) tryAppend(ctx context.Context, rc models.RequestContext, auctionID string, price float64) (models.Bid, float64, error) {
	auction, err := s.loadOpenAuction(ctx, rc, auctionID)
	if err != nil {
		return models.Bid{}, 0, err
	}

	top, hasTop, err := s.winningBid(ctx, auction.AuctionID)
	if err != nil {
		return models.Bid{}, 0, err
	}
	if hasTop && price <= top.Price {
		return models.Bid{}, 0, fmt.Errorf("service: %w", auctionerrors.Invalidf("price", auctionerrors.CodeBidTooLow,
			auctionerrors.ErrBidTooLow, "current highest bid is %.2f", top.Price))
	}

	bid := models.Bid{
		BidID:        utils.GenerateID(),
		AuctionID:    auction.AuctionID,
		Price:        price,
		CreationDate: rc.Now.UTC(),
		Bidder:       rc.Caller.ID,
	}
	if err := s.repo.AppendBid(ctx, bid, top.BidID); err != nil {
		if errors.Is(err, auctionerrors.ErrBidConflict) {
			return models.Bid{}, 0, err
		}
		return models.Bid{}, 0, auctionerrors.StoreError("service: record bid", "auction", auctionID, err)
	}
	return bid, top.Price, nil
}

// GetBidsForAuction returns all bids for an auction, highest price first
func (s *BiddingService) GetBidsForAuction(ctx context.Context, rc models.RequestContext, auctionID string) ([]models.Bid, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionList, authz.Resource{Kind: authz.KindBid}); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := validateAuctionID(auctionID); err != nil {
		return nil, err
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, auctionerrors.StoreError("service: get bids for auction "+auctionID, "auction", auctionID, err)
	}
	if bids == nil {
		bids = []models.Bid{}
	}
	return bids, nil
}

// GetWinningBid returns the highest bid for an auction
func (s *BiddingService) GetWinningBid(ctx context.Context, rc models.RequestContext, auctionID string) (models.Bid, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionList, authz.Resource{Kind: authz.KindBid}); err != nil {
		return models.Bid{}, fmt.Errorf("service: %w", err)
	}
	if err := validateAuctionID(auctionID); err != nil {
		return models.Bid{}, err
	}
	if _, err := s.repo.GetAuction(ctx, auctionID); err != nil {
		return models.Bid{}, auctionerrors.StoreError("service: get auction "+auctionID, "auction", auctionID, err)
	}

	top, hasTop, err := s.winningBid(ctx, auctionID)
	if err != nil {
		return models.Bid{}, err
	}
	if !hasTop {
		return models.Bid{}, fmt.Errorf("service: %w", &auctionerrors.NotFoundError{Resource: "winning bid", ID: auctionID})
	}
	return top, nil
}

// GetBid returns one bid of an auction
func (s *BiddingService) GetBid(ctx context.Context, rc models.RequestContext, auctionID, bidID string) (models.Bid, error) {
	bid, err := s.loadBid(ctx, auctionID, bidID)
	if err != nil {
		return models.Bid{}, err
	}
	if err := s.gate.Require(rc.Caller, authz.ActionRead, bidResource(bid)); err != nil {
		return models.Bid{}, fmt.Errorf("service: %w", err)
	}
	return bid, nil
}

// RaiseBid lets the owner of the winning bid raise its price while the auction is open.
// Any other bid is history and cannot be changed.
func (s *BiddingService) RaiseBid(ctx context.Context, rc models.RequestContext, auctionID, bidID string, price float64) (models.Bid, error) {
	if err := validatePrice(price); err != nil {
		return models.Bid{}, err
	}
	bid, err := s.loadBid(ctx, auctionID, bidID)
	if err != nil {
		return models.Bid{}, err
	}
	if err := s.gate.Require(rc.Caller, authz.ActionUpdate, bidResource(bid)); err != nil {
		return models.Bid{}, fmt.Errorf("service: %w", err)
	}

	unlock, err := s.locker.Lock(ctx, auctionID)
	if err != nil {
		return models.Bid{}, auctionerrors.Unavailable("service: lock auction "+auctionID, err)
	}
	defer unlock()

	if _, err := s.loadOpenAuction(ctx, rc, auctionID); err != nil {
		return models.Bid{}, err
	}
	top, hasTop, err := s.winningBid(ctx, auctionID)
	if err != nil {
		return models.Bid{}, err
	}
	if !hasTop || top.BidID != bidID {
		return models.Bid{}, fmt.Errorf("service: %w", auctionerrors.Invalid("bid", auctionerrors.CodeBidNotWinning, auctionerrors.ErrBidNotWinning))
	}
	if price <= top.Price {
		return models.Bid{}, fmt.Errorf("service: %w", auctionerrors.Invalidf("price", auctionerrors.CodeBidTooLow,
			auctionerrors.ErrBidTooLow, "current highest bid is %.2f", top.Price))
	}

	raised := top
	raised.Price = price
	if err := s.repo.ReplaceTopBid(ctx, raised); err != nil {
		if errors.Is(err, auctionerrors.ErrBidConflict) {
			return models.Bid{}, fmt.Errorf("service: raise bid %s: %w", bidID,
				&auctionerrors.ConflictError{Kind: auctionerrors.ConflictBidRace, Cause: err})
		}
		return models.Bid{}, auctionerrors.StoreError("service: raise bid", "bid", bidID, err)
	}

	s.publish(ctx, raised, top.Price, rc.Now)
	return raised, nil
}

// DeleteBid withdraws a bid while the auction is still open
func (s *BiddingService) DeleteBid(ctx context.Context, rc models.RequestContext, auctionID, bidID string) error {
	bid, err := s.loadBid(ctx, auctionID, bidID)
	if err != nil {
		return err
	}
	if err := s.gate.Require(rc.Caller, authz.ActionDelete, bidResource(bid)); err != nil {
		return fmt.Errorf("service: %w", err)
	}

	unlock, err := s.locker.Lock(ctx, auctionID)
	if err != nil {
		return auctionerrors.Unavailable("service: lock auction "+auctionID, err)
	}
	defer unlock()

	if _, err := s.loadOpenAuction(ctx, rc, auctionID); err != nil {
		return err
	}
	if err := s.repo.DeleteBid(ctx, auctionID, bidID); err != nil {
		return auctionerrors.StoreError("service: delete bid", "bid", bidID, err)
	}
	return nil
}

// GetBidsByCaller returns every bid the caller has placed, newest first
func (s *BiddingService) GetBidsByCaller(ctx context.Context, rc models.RequestContext) ([]models.Bid, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionListOwn, authz.Resource{Kind: authz.KindBid}); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	bids, err := s.repo.GetBidsByBidder(ctx, rc.Caller.ID)
	if err != nil {
		return nil, auctionerrors.StoreError("service: get bids by bidder", "user", string(rc.Caller.ID), err)
	}
	if bids == nil {
		bids = []models.Bid{}
	}
	return bids, nil
}

func (s *BiddingService) loadOpenAuction(ctx context.Context, rc models.RequestContext, auctionID string) (models.Auction, error) {
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, auctionerrors.StoreError("service: get auction "+auctionID, "auction", auctionID, err)
	}
	if lifecycle.DeriveStatus(auction, rc.Now) != lifecycle.Open {
		return models.Auction{}, fmt.Errorf("service: %w", auctionerrors.Invalidf("auction", auctionerrors.CodeAuctionClosed,
			auctionerrors.ErrAuctionClosed, "auction closed at %s", auction.ClosingDate.UTC().Format(utils.DateFormat)))
	}
	return auction, nil
}

func (s *BiddingService) loadBid(ctx context.Context, auctionID, bidID string) (models.Bid, error) {
	if err := validateAuctionID(auctionID); err != nil {
		return models.Bid{}, err
	}
	bid, err := s.repo.GetBid(ctx, auctionID, bidID)
	if err != nil {
		return models.Bid{}, auctionerrors.StoreError("service: get bid", "bid", bidID, err)
	}
	return bid, nil
}

// winningBid reads the current top bid; hasTop is false when the auction has none
func (s *BiddingService) winningBid(ctx context.Context, auctionID string) (models.Bid, bool, error) {
	top, err := s.repo.GetWinningBid(ctx, auctionID)
	if errors.Is(err, auctionerrors.ErrNoBids) {
		return models.Bid{}, false, nil
	}
	if err != nil {
		return models.Bid{}, false, auctionerrors.StoreError("service: check winning bid", "auction", auctionID, err)
	}
	return top, true, nil
}

func (s *BiddingService) publish(ctx context.Context, bid models.Bid, previous float64, at time.Time) {
	event := events.BidEvent{
		EventID:       utils.GenerateEventID(),
		AuctionID:     bid.AuctionID,
		BidID:         bid.BidID,
		Bidder:        string(bid.Bidder),
		Price:         bid.Price,
		PreviousPrice: previous,
		Timestamp:     at.UTC(),
	}
	if err := s.publisher.PublishBid(ctx, event); err != nil {
		utils.Warn("service: failed to publish bid event", map[string]any{
			"auction_id": bid.AuctionID,
			"bid_id":     bid.BidID,
			"error":      err.Error(),
		})
	}
}

func bidResource(bid models.Bid) authz.Resource {
	return authz.Resource{Kind: authz.KindBid, ID: bid.BidID, Owner: bid.Bidder}
}

func validateAuctionID(auctionID string) error {
	if auctionID == "" {
		return fmt.Errorf("service: %w", auctionerrors.Invalid("auction", auctionerrors.CodeInvalidField, auctionerrors.ErrMissingAuctionID))
	}
	return nil
}

func validatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("service: %w", auctionerrors.Invalid("price", auctionerrors.CodeInvalidField, auctionerrors.ErrInvalidField))
	}
	if price < 0 {
		return fmt.Errorf("service: %w", auctionerrors.Invalid("price", auctionerrors.CodeNegativePrice, auctionerrors.ErrNegativePrice))
	}
	return nil
}
