package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/authz"
	model "auction-marketplace/internal/models"
	rating "auction-marketplace/internal/ratingService"
	"auction-marketplace/internal/repository"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func rcFor(user model.UserRef) model.RequestContext {
	return model.RequestContext{Now: now, Caller: model.Caller{ID: user}}
}

func adminRC() model.RequestContext {
	return model.RequestContext{Now: now, Caller: model.Caller{ID: "root", IsStaff: true}}
}

type fixture struct {
	repo     *repository.MemoryRepo
	ratings  *rating.RatingService
	auctions *AuctionService
}

func newFixture(t *testing.T, opts ...AuctionOption) fixture {
	t.Helper()
	repo := repository.NewMemoryRepo()
	repo.AddCategory(model.Category{CategoryID: "c1", Name: "Electronics"})
	repo.AddCategory(model.Category{CategoryID: "c2", Name: "Sports"})
	gate := authz.NewGate()
	ratings := rating.NewRatingService(repo, gate)
	return fixture{repo: repo, ratings: ratings, auctions: NewAuctionService(repo, ratings, gate, opts...)}
}

func validInput() AuctionInput {
	return AuctionInput{
		Title:        "Vintage camera",
		Description:  "Works fine",
		ClosingDate:  now.Add(20 * day),
		ThumbnailURL: "https://img.example.com/cam.png",
		Price:        50,
		Stock:        1,
		CategoryID:   "c1",
		Brand:        "Leica",
	}
}

func TestAuctionService_CreateAuction(t *testing.T) {
	tests := []struct {
		name          string
		rc            model.RequestContext
		mutate        func(in *AuctionInput)
		expectedError error
		fields        []string
	}{
		{name: "valid", rc: rcFor("seller"), mutate: func(in *AuctionInput) {}},
		{name: "boundary_fifteen_days", rc: rcFor("seller"), mutate: func(in *AuctionInput) { in.ClosingDate = now.Add(15 * day) }},
		{name: "one_second_short", rc: rcFor("seller"), mutate: func(in *AuctionInput) { in.ClosingDate = now.Add(15*day - time.Second) },
			expectedError: auctionerrors.ErrClosingWindowTooShort, fields: []string{"closing_date"}},
		{name: "in_the_past", rc: rcFor("seller"), mutate: func(in *AuctionInput) { in.ClosingDate = now.Add(-time.Hour) },
			expectedError: auctionerrors.ErrClosingDateInPast, fields: []string{"closing_date"}},
		{name: "anonymous", rc: rcFor(""), mutate: func(in *AuctionInput) {}, expectedError: auctionerrors.ErrForbidden},
		{name: "unknown_category", rc: rcFor("seller"), mutate: func(in *AuctionInput) { in.CategoryID = "nope" },
			expectedError: auctionerrors.ErrCategoryNotFound, fields: []string{"category"}},
		{name: "negative_price", rc: rcFor("seller"), mutate: func(in *AuctionInput) { in.Price = -1 },
			expectedError: auctionerrors.ErrNegativePrice, fields: []string{"price"}},
		{name: "zero_stock", rc: rcFor("seller"), mutate: func(in *AuctionInput) { in.Stock = 0 },
			expectedError: auctionerrors.ErrValidation, fields: []string{"stock"}},
		{name: "relative_thumbnail", rc: rcFor("seller"), mutate: func(in *AuctionInput) { in.ThumbnailURL = "/img/cam.png" },
			expectedError: auctionerrors.ErrValidation, fields: []string{"thumbnail"}},
		{name: "long_title_and_brand", rc: rcFor("seller"), mutate: func(in *AuctionInput) {
			in.Title = strings.Repeat("t", 151)
			in.Brand = strings.Repeat("b", 101)
		}, expectedError: auctionerrors.ErrValidation, fields: []string{"title", "brand"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			in := validInput()
			tc.mutate(&in)

			view, err := f.auctions.CreateAuction(context.Background(), tc.rc, in)
			if tc.expectedError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				fields := auctionerrors.FieldMessages(err)
				for _, field := range tc.fields {
					require.Contains(t, fields, field)
				}
				return
			}
			require.NoError(t, err)
			require.True(t, view.IsOpen)
			require.Nil(t, view.AverageRating)
			require.Equal(t, now, view.CreationDate)
			require.Equal(t, tc.rc.Caller.ID, view.Auctioneer)
		})
	}
}

func TestAuctionService_SeedRating(t *testing.T) {
	f := newFixture(t, WithSeedRating(true))

	view, err := f.auctions.CreateAuction(context.Background(), rcFor("seller"), validInput())
	require.NoError(t, err)
	require.NotNil(t, view.AverageRating)
	require.Equal(t, "1.00", rating.FormatAverage(view.AverageRating))
}

func TestAuctionService_GetAuctionDerivedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.auctions.CreateAuction(ctx, rcFor("seller"), validInput())
	require.NoError(t, err)

	_, _, err = f.ratings.SubmitRating(ctx, rcFor("u1"), created.AuctionID, 3)
	require.NoError(t, err)
	_, _, err = f.ratings.SubmitRating(ctx, rcFor("u2"), created.AuctionID, 4)
	require.NoError(t, err)

	view, err := f.auctions.GetAuction(ctx, rcFor(""), created.AuctionID)
	require.NoError(t, err)
	require.Equal(t, "3.50", rating.FormatAverage(view.AverageRating))
	require.True(t, view.IsOpen)

	atClose := model.RequestContext{Now: created.ClosingDate}
	view, err = f.auctions.GetAuction(ctx, atClose, created.AuctionID)
	require.NoError(t, err)
	require.False(t, view.IsOpen)

	_, err = f.auctions.GetAuction(ctx, rcFor(""), "missing")
	require.ErrorIs(t, err, auctionerrors.ErrNotFound)
}

func TestAuctionService_UpdateAuction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.auctions.CreateAuction(ctx, rcFor("seller"), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Title = "Renamed"

	_, err = f.auctions.UpdateAuction(ctx, rcFor("intruder"), created.AuctionID, in)
	require.ErrorIs(t, err, auctionerrors.ErrForbidden)

	updated, err := f.auctions.UpdateAuction(ctx, rcFor("seller"), created.AuctionID, in)
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)
	require.Equal(t, created.CreationDate, updated.CreationDate)

	other := model.UserRef("intruder")
	in.Auctioneer = &other
	_, err = f.auctions.UpdateAuction(ctx, adminRC(), created.AuctionID, in)
	require.ErrorIs(t, err, auctionerrors.ErrAuctioneerImmutable)
	in.Auctioneer = nil

	// the window is measured from the original creation date, not from now
	tenDaysLater := model.RequestContext{Now: now.Add(10 * day), Caller: model.Caller{ID: "seller"}}
	in.ClosingDate = now.Add(15 * day)
	_, err = f.auctions.UpdateAuction(ctx, tenDaysLater, created.AuctionID, in)
	require.NoError(t, err)

	in.ClosingDate = now.Add(14 * day)
	_, err = f.auctions.UpdateAuction(ctx, tenDaysLater, created.AuctionID, in)
	require.ErrorIs(t, err, auctionerrors.ErrClosingWindowTooShort)

	in.ClosingDate = now.Add(16 * day)
	afterClosing := model.RequestContext{Now: now.Add(17 * day), Caller: model.Caller{ID: "seller"}}
	_, err = f.auctions.UpdateAuction(ctx, afterClosing, created.AuctionID, in)
	require.ErrorIs(t, err, auctionerrors.ErrClosingDateInPast)
}

func TestAuctionService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.auctions.CreateAuction(ctx, rcFor("seller"), validInput())
	require.NoError(t, err)
	_, _, err = f.ratings.SubmitRating(ctx, rcFor("u1"), created.AuctionID, 5)
	require.NoError(t, err)

	require.ErrorIs(t, f.auctions.DeleteAuction(ctx, rcFor("u1"), created.AuctionID), auctionerrors.ErrForbidden)
	require.NoError(t, f.auctions.DeleteAuction(ctx, adminRC(), created.AuctionID))

	ratings, err := f.repo.GetRatingsByReviewer(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, ratings)

	require.ErrorIs(t, f.auctions.DeleteAuction(ctx, adminRC(), created.AuctionID), auctionerrors.ErrNotFound)
}

func TestAuctionService_SearchAuctions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mk := func(title string, price float64, category string) AuctionView {
		in := validInput()
		in.Title = title
		in.Price = price
		in.CategoryID = category
		v, err := f.auctions.CreateAuction(ctx, rcFor("seller"), in)
		require.NoError(t, err)
		return v
	}
	camera := mk("Camera", 50, "c1")
	ball := mk("Ball", 10, "c2")
	lens := mk("Camera lens", 80, "c1")

	ids := func(views []AuctionView) []string {
		out := make([]string, 0, len(views))
		for _, v := range views {
			out = append(out, v.AuctionID)
		}
		return out
	}

	all, err := f.auctions.SearchAuctions(ctx, rcFor(""), Filter{})
	require.NoError(t, err)
	require.Equal(t, []string{camera.AuctionID, ball.AuctionID, lens.AuctionID}, ids(all))

	got, err := f.auctions.SearchAuctions(ctx, rcFor(""), Filter{Text: strPtr("camera")})
	require.NoError(t, err)
	require.Equal(t, []string{camera.AuctionID, lens.AuctionID}, ids(got))

	got, err = f.auctions.SearchAuctions(ctx, rcFor(""), Filter{Category: strPtr("Sports")})
	require.NoError(t, err)
	require.Equal(t, []string{ball.AuctionID}, ids(got))

	got, err = f.auctions.SearchAuctions(ctx, rcFor(""), Filter{MinPrice: floatPtr(10), MaxPrice: floatPtr(50)})
	require.NoError(t, err)
	require.Equal(t, []string{camera.AuctionID, ball.AuctionID}, ids(got))

	got, err = f.auctions.SearchAuctions(ctx, rcFor(""), Filter{Ordering: model.OrderByPriceDesc})
	require.NoError(t, err)
	require.Equal(t, []string{lens.AuctionID, camera.AuctionID, ball.AuctionID}, ids(got))

	_, err = f.auctions.SearchAuctions(ctx, rcFor(""), Filter{Category: strPtr("Toys")})
	require.ErrorIs(t, err, auctionerrors.ErrCategoryNotFound)

	mine, err := f.auctions.GetCallerAuctions(ctx, rcFor("seller"))
	require.NoError(t, err)
	require.Len(t, mine, 3)

	_, err = f.auctions.GetCallerAuctions(ctx, rcFor(""))
	require.ErrorIs(t, err, auctionerrors.ErrForbidden)
}
