package handler

import (
	"net/http"
	"testing"

	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
	rating "auction-marketplace/internal/ratingService"
	"auction-marketplace/services/auction/helpers"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestSubmitRatingHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           any
		mockSetup      func(m *MockRatingServiceInterface)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "first_rating_created",
			body: helpers.RatingRequest{Auction: "a1", Score: intPtr(4)},
			mockSetup: func(m *MockRatingServiceInterface) {
				m.EXPECT().SubmitRating(gomock.Any(), rcOf("bob"), "a1", 4).
					Return(model.Rating{RatingID: "r1", AuctionID: "a1", Reviewer: "bob", Score: 4}, rating.Created, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "rating created successfully",
		},
		{
			name: "second_rating_overwrites",
			body: helpers.RatingRequest{Auction: "a1", Score: intPtr(2)},
			mockSetup: func(m *MockRatingServiceInterface) {
				m.EXPECT().SubmitRating(gomock.Any(), rcOf("bob"), "a1", 2).
					Return(model.Rating{RatingID: "r1", AuctionID: "a1", Reviewer: "bob", Score: 2}, rating.Updated, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "rating updated successfully",
		},
		{
			name: "score_out_of_range",
			body: helpers.RatingRequest{Auction: "a1", Score: intPtr(6)},
			mockSetup: func(m *MockRatingServiceInterface) {
				m.EXPECT().SubmitRating(gomock.Any(), gomock.Any(), "a1", 6).
					Return(model.Rating{}, rating.Created, auctionerrors.Invalid("score", auctionerrors.CodeInvalidScore, auctionerrors.ErrInvalidScore))
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "score must be between 1 and 5",
		},
		{
			name:           "missing_auction",
			body:           map[string]any{"score": 3},
			mockSetup:      func(m *MockRatingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockService := NewMockRatingServiceInterface(ctrl)
			tc.mockSetup(mockService)

			router := testRouter(model.Caller{ID: "bob"})
			router.POST("/subastas/mis-ratings/", NewRatingHandler(mockService).SubmitRatingHandler)

			w, resp := doJSON(t, router, http.MethodPost, "/subastas/mis-ratings/", tc.body)
			require.Equal(t, tc.expectedStatus, w.Code)
			require.Equal(t, tc.expectedMsg, resp["message"])
		})
	}
}

func TestRatingDetailHandlers(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockService := NewMockRatingServiceInterface(ctrl)
	mockService.EXPECT().SubmitRating(gomock.Any(), rcOf("bob"), "a1", 5).
		Return(model.Rating{RatingID: "r1", AuctionID: "a1", Reviewer: "bob", Score: 5}, rating.Updated, nil)
	mockService.EXPECT().GetCallerRating(gomock.Any(), rcOf("bob"), "a1").
		Return(model.Rating{RatingID: "r1", AuctionID: "a1", Reviewer: "bob", Score: 5}, nil)
	mockService.EXPECT().DeleteCallerRating(gomock.Any(), rcOf("bob"), "a1").Return(nil)

	h := NewRatingHandler(mockService)
	router := testRouter(model.Caller{ID: "bob"})
	router.PUT("/subastas/mis-ratings/:auctionId/", h.UpdateRatingHandler)
	router.GET("/subastas/mis-ratings/:auctionId/", h.GetRatingHandler)
	router.DELETE("/subastas/mis-ratings/:auctionId/", h.DeleteRatingHandler)

	w, _ := doJSON(t, router, http.MethodPut, "/subastas/mis-ratings/a1/", helpers.RatingUpdateRequest{Score: intPtr(5)})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := doJSON(t, router, http.MethodGet, "/subastas/mis-ratings/a1/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 5.0, resp["data"].(map[string]any)["score"])

	w, _ = doJSON(t, router, http.MethodDelete, "/subastas/mis-ratings/a1/", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
