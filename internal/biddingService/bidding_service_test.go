package bidding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/authz"
	"auction-marketplace/internal/events"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func openAuction(id string) model.Auction {
	return model.Auction{
		AuctionID:    id,
		Title:        "Camera",
		ClosingDate:  now.Add(20 * 24 * time.Hour),
		CreationDate: now.Add(-time.Hour),
		Price:        5,
		Stock:        1,
		CategoryID:   "cat1",
		Auctioneer:   "seller",
	}
}

func rcFor(user model.UserRef) model.RequestContext {
	return model.RequestContext{Now: now, Caller: model.Caller{ID: user}}
}

// Tests SubmitBid
func TestBiddingService_SubmitBid(t *testing.T) {
	closed := openAuction("a1")
	closed.ClosingDate = now

	tests := []struct {
		name          string
		rc            model.RequestContext
		auctionID     string
		price         float64
		mockSetup     func(m *repository.MockBidDB)
		expectedError error
		expectedCode  string
	}{
		{
			name:      "valid_first_bid",
			rc:        rcFor("user1"),
			auctionID: "a1",
			price:     0,
			mockSetup: func(m *repository.MockBidDB) {
				m.EXPECT().GetAuction(gomock.Any(), "a1").Return(openAuction("a1"), nil)
				m.EXPECT().GetWinningBid(gomock.Any(), "a1").Return(model.Bid{}, auctionerrors.ErrNoBids)
				m.EXPECT().AppendBid(gomock.Any(), gomock.Any(), "").Return(nil)
			},
		},
		{
			name:      "valid_higher_bid",
			rc:        rcFor("user1"),
			auctionID: "a1",
			price:     15,
			mockSetup: func(m *repository.MockBidDB) {
				m.EXPECT().GetAuction(gomock.Any(), "a1").Return(openAuction("a1"), nil)
				m.EXPECT().GetWinningBid(gomock.Any(), "a1").Return(model.Bid{BidID: "top", Price: 10}, nil)
				m.EXPECT().AppendBid(gomock.Any(), gomock.Any(), "top").Return(nil)
			},
		},
		{
			name:      "bid_equal_to_max",
			rc:        rcFor("user2"),
			auctionID: "a1",
			price:     10,
			mockSetup: func(m *repository.MockBidDB) {
				m.EXPECT().GetAuction(gomock.Any(), "a1").Return(openAuction("a1"), nil)
				m.EXPECT().GetWinningBid(gomock.Any(), "a1").Return(model.Bid{BidID: "top", Price: 10}, nil)
			},
			expectedError: auctionerrors.ErrBidTooLow,
			expectedCode:  auctionerrors.CodeBidTooLow,
		},
		{
			name:      "bid_below_max",
			rc:        rcFor("user2"),
			auctionID: "a1",
			price:     8,
			mockSetup: func(m *repository.MockBidDB) {
				m.EXPECT().GetAuction(gomock.Any(), "a1").Return(openAuction("a1"), nil)
				m.EXPECT().GetWinningBid(gomock.Any(), "a1").Return(model.Bid{BidID: "top", Price: 10}, nil)
			},
			expectedError: auctionerrors.ErrBidTooLow,
			expectedCode:  auctionerrors.CodeBidTooLow,
		},
		{
			name:      "auction_closed_at_closing_instant",
			rc:        rcFor("user1"),
			auctionID: "a1",
			price:     100,
			mockSetup: func(m *repository.MockBidDB) {
				m.EXPECT().GetAuction(gomock.Any(), "a1").Return(closed, nil)
			},
			expectedError: auctionerrors.ErrAuctionClosed,
			expectedCode:  auctionerrors.CodeAuctionClosed,
		},
		{
			name:          "anonymous_caller",
			rc:            rcFor(""),
			auctionID:     "a1",
			price:         10,
			mockSetup:     func(m *repository.MockBidDB) {},
			expectedError: auctionerrors.ErrForbidden,
		},
		{
			name:          "negative_price",
			rc:            rcFor("user1"),
			auctionID:     "a1",
			price:         -1,
			mockSetup:     func(m *repository.MockBidDB) {},
			expectedError: auctionerrors.ErrNegativePrice,
			expectedCode:  auctionerrors.CodeNegativePrice,
		},
		{
			name:          "empty_auctionID",
			rc:            rcFor("user1"),
			auctionID:     "",
			price:         10,
			mockSetup:     func(m *repository.MockBidDB) {},
			expectedError: auctionerrors.ErrValidation,
		},
		{
			name:      "auction_not_found",
			rc:        rcFor("user1"),
			auctionID: "missing",
			price:     10,
			mockSetup: func(m *repository.MockBidDB) {
				m.EXPECT().GetAuction(gomock.Any(), "missing").Return(model.Auction{}, auctionerrors.ErrAuctionNotFound)
			},
			expectedError: auctionerrors.ErrNotFound,
		},
		{
			name:      "repo_fails",
			rc:        rcFor("user1"),
			auctionID: "a1",
			price:     20,
			mockSetup: func(m *repository.MockBidDB) {
				m.EXPECT().GetAuction(gomock.Any(), "a1").Return(openAuction("a1"), nil)
				m.EXPECT().GetWinningBid(gomock.Any(), "a1").Return(model.Bid{BidID: "top", Price: 10}, nil)
				m.EXPECT().AppendBid(gomock.Any(), gomock.Any(), "top").Return(errors.New("repo write failed"))
			},
			expectedError: auctionerrors.ErrStoreUnavailable,
		},
		{
			name:      "conflict_then_success",
			rc:        rcFor("user1"),
			auctionID: "a1",
			price:     30,
			mockSetup: func(m *repository.MockBidDB) {
				m.EXPECT().GetAuction(gomock.Any(), "a1").Return(openAuction("a1"), nil).Times(2)
				gomock.InOrder(
					m.EXPECT().GetWinningBid(gomock.Any(), "a1").Return(model.Bid{BidID: "b1", Price: 10}, nil),
					m.EXPECT().GetWinningBid(gomock.Any(), "a1").Return(model.Bid{BidID: "b2", Price: 20}, nil),
				)
				gomock.InOrder(
					m.EXPECT().AppendBid(gomock.Any(), gomock.Any(), "b1").Return(auctionerrors.ErrBidConflict),
					m.EXPECT().AppendBid(gomock.Any(), gomock.Any(), "b2").Return(nil),
				)
			},
		},
		{
			name:      "conflict_after_concurrent_higher_bid",
			rc:        rcFor("user1"),
			auctionID: "a1",
			price:     20,
			mockSetup: func(m *repository.MockBidDB) {
				m.EXPECT().GetAuction(gomock.Any(), "a1").Return(openAuction("a1"), nil).Times(2)
				gomock.InOrder(
					m.EXPECT().GetWinningBid(gomock.Any(), "a1").Return(model.Bid{BidID: "b1", Price: 10}, nil),
					m.EXPECT().GetWinningBid(gomock.Any(), "a1").Return(model.Bid{BidID: "b2", Price: 25}, nil),
				)
				m.EXPECT().AppendBid(gomock.Any(), gomock.Any(), "b1").Return(auctionerrors.ErrBidConflict)
			},
			expectedError: auctionerrors.ErrBidTooLow,
			expectedCode:  auctionerrors.CodeBidTooLow,
		},
		{
			name:      "conflict_retries_exhausted",
			rc:        rcFor("user1"),
			auctionID: "a1",
			price:     30,
			mockSetup: func(m *repository.MockBidDB) {
				m.EXPECT().GetAuction(gomock.Any(), "a1").Return(openAuction("a1"), nil).Times(DefaultMaxRetries + 1)
				m.EXPECT().GetWinningBid(gomock.Any(), "a1").Return(model.Bid{BidID: "b1", Price: 10}, nil).Times(DefaultMaxRetries + 1)
				m.EXPECT().AppendBid(gomock.Any(), gomock.Any(), "b1").Return(auctionerrors.ErrBidConflict).Times(DefaultMaxRetries + 1)
			},
			expectedError: auctionerrors.ErrConflict,
		},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := repository.NewMockBidDB(ctrl)
			tc.mockSetup(mockRepo)
			service := NewBiddingService(mockRepo, authz.NewGate())

			bid, err := service.SubmitBid(context.Background(), tc.rc, tc.auctionID, tc.price)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				if tc.expectedCode != "" {
					var ve *auctionerrors.ValidationError
					require.True(t, errors.As(err, &ve))
					require.Equal(t, tc.expectedCode, ve.Code)
				}
				return
			}

			require.NoError(t, err)
			_, parseErr := ulid.ParseStrict(bid.BidID)
			require.NoError(t, parseErr, "BidID should be a valid ULID")
			require.Equal(t, tc.auctionID, bid.AuctionID)
			require.Equal(t, tc.rc.Caller.ID, bid.Bidder)
			require.Equal(t, tc.price, bid.Price)
			require.Equal(t, now, bid.CreationDate)
		})
	}
}

func TestBiddingService_BidTooLowReportsCurrentMax(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockBidDB(ctrl)
	mockRepo.EXPECT().GetAuction(gomock.Any(), "a1").Return(openAuction("a1"), nil)
	mockRepo.EXPECT().GetWinningBid(gomock.Any(), "a1").Return(model.Bid{BidID: "top", Price: 12.5}, nil)

	service := NewBiddingService(mockRepo, authz.NewGate())
	_, err := service.SubmitBid(context.Background(), rcFor("u"), "a1", 12)

	var ve *auctionerrors.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "price", ve.Field)
	require.Equal(t, "current highest bid is 12.50", ve.Message)
}

func seeded(t *testing.T) (*repository.MemoryRepo, *events.Recorder, *BiddingService) {
	t.Helper()
	repo := repository.NewMemoryRepo()
	repo.AddAuction(openAuction("a1"))
	recorder := &events.Recorder{}
	return repo, recorder, NewBiddingService(repo, authz.NewGate(), WithPublisher(recorder))
}

func TestBiddingService_SequenceAndListing(t *testing.T) {
	_, recorder, service := seeded(t)
	ctx := context.Background()

	_, err := service.SubmitBid(ctx, rcFor("u1"), "a1", 10)
	require.NoError(t, err)

	_, err = service.SubmitBid(ctx, rcFor("u2"), "a1", 10)
	require.ErrorIs(t, err, auctionerrors.ErrBidTooLow)

	_, err = service.SubmitBid(ctx, rcFor("u2"), "a1", 15)
	require.NoError(t, err)

	bids, err := service.GetBidsForAuction(ctx, rcFor("u3"), "a1")
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.Equal(t, 15.0, bids[0].Price)
	require.Equal(t, 10.0, bids[1].Price)

	winning, err := service.GetWinningBid(ctx, rcFor("u3"), "a1")
	require.NoError(t, err)
	require.Equal(t, 15.0, winning.Price)

	published := recorder.Events()
	require.Len(t, published, 2)
	require.Equal(t, 0.0, published[0].PreviousPrice)
	require.Equal(t, 10.0, published[1].PreviousPrice)
	require.Equal(t, 15.0, published[1].Price)
	require.Equal(t, "u2", published[1].Bidder)
}

func TestBiddingService_PublishFailureDoesNotRejectBid(t *testing.T) {
	_, recorder, service := seeded(t)
	recorder.Err = errors.New("bus down")

	bid, err := service.SubmitBid(context.Background(), rcFor("u1"), "a1", 10)
	require.NoError(t, err)
	require.Equal(t, 10.0, bid.Price)
}

func TestBiddingService_ListingRequiresAuthentication(t *testing.T) {
	_, _, service := seeded(t)

	_, err := service.GetBidsForAuction(context.Background(), rcFor(""), "a1")
	require.ErrorIs(t, err, auctionerrors.ErrForbidden)

	_, err = service.GetBidsForAuction(context.Background(), rcFor("u1"), "missing")
	require.ErrorIs(t, err, auctionerrors.ErrNotFound)
}

func TestBiddingService_GetWinningBidWithoutBids(t *testing.T) {
	_, _, service := seeded(t)

	_, err := service.GetWinningBid(context.Background(), rcFor("u1"), "a1")
	require.ErrorIs(t, err, auctionerrors.ErrNotFound)
}

// Two racing bids of 20 and 25 over a max of 10 must never leave 20 recorded after 25
func TestBiddingService_ConcurrentTwoBids(t *testing.T) {
	for i := 0; i < 50; i++ {
		repo, _, service := seeded(t)
		ctx := context.Background()

		_, err := service.SubmitBid(ctx, rcFor("seed"), "a1", 10)
		require.NoError(t, err)

		var wg sync.WaitGroup
		results := make(map[float64]error)
		var mu sync.Mutex
		for _, price := range []float64{20, 25} {
			wg.Add(1)
			go func(p float64) {
				defer wg.Done()
				_, err := service.SubmitBid(ctx, rcFor(model.UserRef(fmt.Sprintf("u%.0f", p))), "a1", p)
				mu.Lock()
				results[p] = err
				mu.Unlock()
			}(price)
		}
		wg.Wait()

		require.NoError(t, results[25])
		top, err := repo.GetWinningBid(ctx, "a1")
		require.NoError(t, err)
		require.Equal(t, 25.0, top.Price)

		if results[20] != nil {
			require.ErrorIs(t, results[20], auctionerrors.ErrBidTooLow)
		}
		assertStrictlyIncreasing(t, repo)
	}
}

func TestBiddingService_ConcurrentManyBids(t *testing.T) {
	repo, _, service := seeded(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func(price float64) {
			defer wg.Done()
			_, err := service.SubmitBid(ctx, rcFor(model.UserRef(fmt.Sprintf("user%.0f", price))), "a1", price)
			errs <- err
		}(float64(i))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			require.ErrorIs(t, err, auctionerrors.ErrBidTooLow)
		}
	}

	top, err := repo.GetWinningBid(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, 100.0, top.Price)
	assertStrictlyIncreasing(t, repo)
}

// assertStrictlyIncreasing checks prices against acceptance order, which ULID ids encode
func assertStrictlyIncreasing(t *testing.T, repo *repository.MemoryRepo) {
	t.Helper()
	bids, err := repo.GetBidsByAuction(context.Background(), "a1")
	require.NoError(t, err)
	for i := 1; i < len(bids); i++ {
		require.Greater(t, bids[i-1].Price, bids[i].Price)
		require.Greater(t, bids[i-1].BidID, bids[i].BidID, "higher price must have been accepted later")
	}
}

func TestBiddingService_RaiseBid(t *testing.T) {
	_, recorder, service := seeded(t)
	ctx := context.Background()

	first, err := service.SubmitBid(ctx, rcFor("u1"), "a1", 10)
	require.NoError(t, err)
	top, err := service.SubmitBid(ctx, rcFor("u2"), "a1", 15)
	require.NoError(t, err)

	_, err = service.RaiseBid(ctx, rcFor("u1"), "a1", first.BidID, 30)
	require.ErrorIs(t, err, auctionerrors.ErrBidNotWinning)

	_, err = service.RaiseBid(ctx, rcFor("u1"), "a1", top.BidID, 30)
	require.ErrorIs(t, err, auctionerrors.ErrForbidden)

	_, err = service.RaiseBid(ctx, rcFor("u2"), "a1", top.BidID, 15)
	require.ErrorIs(t, err, auctionerrors.ErrBidTooLow)

	raised, err := service.RaiseBid(ctx, rcFor("u2"), "a1", top.BidID, 40)
	require.NoError(t, err)
	require.Equal(t, 40.0, raised.Price)
	require.Equal(t, top.CreationDate, raised.CreationDate)

	admin := model.RequestContext{Now: now, Caller: model.Caller{ID: "root", IsStaff: true}}
	raised, err = service.RaiseBid(ctx, admin, "a1", top.BidID, 45)
	require.NoError(t, err)
	require.Equal(t, 45.0, raised.Price)

	winning, err := service.GetWinningBid(ctx, rcFor("u3"), "a1")
	require.NoError(t, err)
	require.Equal(t, top.BidID, winning.BidID)
	require.Equal(t, 45.0, winning.Price)

	published := recorder.Events()
	last := published[len(published)-1]
	require.Equal(t, 45.0, last.Price)
	require.Equal(t, 40.0, last.PreviousPrice)
}

func TestBiddingService_GetBidIsOwnerOrAdminOnly(t *testing.T) {
	_, _, service := seeded(t)
	ctx := context.Background()

	bid, err := service.SubmitBid(ctx, rcFor("u1"), "a1", 10)
	require.NoError(t, err)

	got, err := service.GetBid(ctx, rcFor("u1"), "a1", bid.BidID)
	require.NoError(t, err)
	require.Equal(t, bid.BidID, got.BidID)

	_, err = service.GetBid(ctx, rcFor("stranger"), "a1", bid.BidID)
	require.ErrorIs(t, err, auctionerrors.ErrForbidden)

	admin := model.RequestContext{Now: now, Caller: model.Caller{ID: "root", IsStaff: true}}
	_, err = service.GetBid(ctx, admin, "a1", bid.BidID)
	require.NoError(t, err)
}

func TestBiddingService_DeleteBid(t *testing.T) {
	repo, _, service := seeded(t)
	ctx := context.Background()

	bid, err := service.SubmitBid(ctx, rcFor("u1"), "a1", 10)
	require.NoError(t, err)

	err = service.DeleteBid(ctx, rcFor("u2"), "a1", bid.BidID)
	require.ErrorIs(t, err, auctionerrors.ErrForbidden)

	require.NoError(t, service.DeleteBid(ctx, rcFor("u1"), "a1", bid.BidID))

	_, err = service.GetBid(ctx, rcFor("u1"), "a1", bid.BidID)
	require.ErrorIs(t, err, auctionerrors.ErrNotFound)

	// closed auctions keep their history
	closed := openAuction("a2")
	closed.ClosingDate = now.Add(time.Hour)
	repo.AddAuction(closed)
	kept, err := service.SubmitBid(ctx, rcFor("u1"), "a2", 10)
	require.NoError(t, err)

	later := model.RequestContext{Now: now.Add(2 * time.Hour), Caller: model.Caller{ID: "u1"}}
	err = service.DeleteBid(ctx, later, "a2", kept.BidID)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionClosed)
}

func TestBiddingService_GetBidsByCaller(t *testing.T) {
	repo, _, service := seeded(t)
	repo.AddAuction(openAuction("a2"))
	ctx := context.Background()

	_, err := service.SubmitBid(ctx, rcFor("u1"), "a1", 10)
	require.NoError(t, err)
	_, err = service.SubmitBid(ctx, rcFor("u2"), "a1", 11)
	require.NoError(t, err)
	_, err = service.SubmitBid(ctx, rcFor("u1"), "a2", 3)
	require.NoError(t, err)

	bids, err := service.GetBidsByCaller(ctx, rcFor("u1"))
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.Equal(t, "a2", bids[0].AuctionID)

	bids, err = service.GetBidsByCaller(ctx, rcFor("nobody"))
	require.NoError(t, err)
	require.Empty(t, bids)

	_, err = service.GetBidsByCaller(ctx, rcFor(""))
	require.ErrorIs(t, err, auctionerrors.ErrForbidden)
}
