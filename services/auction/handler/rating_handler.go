package handler

import (
	"net/http"

	rating "auction-marketplace/internal/ratingService"
	"auction-marketplace/services/auction/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	service RatingServiceInterface
}

func NewRatingHandler(service RatingServiceInterface) *RatingHandler {
	return &RatingHandler{service: service}
}

// MyRatingsHandler handles GET /subastas/mis-ratings/
func (h *RatingHandler) MyRatingsHandler(c *gin.Context) {
	rc := helpers.RequestContext(c)
	ratings, err := h.service.GetCallerRatings(c.Request.Context(), rc)
	if err != nil {
		helpers.RespondError(c, "MyRatingsHandler", err, map[string]any{"reviewer": rc.Caller.ID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToRatingResponses(ratings), "ratings retrieved successfully")
	helpers.LogSuccess("MyRatingsHandler", "ratings retrieved successfully", map[string]any{
		"reviewer": rc.Caller.ID,
		"count":    len(ratings),
	})
}

// SubmitRatingHandler handles POST /subastas/mis-ratings/
func (h *RatingHandler) SubmitRatingHandler(c *gin.Context) {
	var req helpers.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SubmitRatingHandler", err)
		return
	}
	h.submit(c, "SubmitRatingHandler", req.Auction, *req.Score)
}

// GetRatingHandler handles GET /subastas/mis-ratings/:auctionId/
func (h *RatingHandler) GetRatingHandler(c *gin.Context) {
	auctionID := c.Param("auctionId")
	r, err := h.service.GetCallerRating(c.Request.Context(), helpers.RequestContext(c), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetRatingHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.ToRatingResponse(r), "rating retrieved successfully")
}

// UpdateRatingHandler handles PUT /subastas/mis-ratings/:auctionId/
func (h *RatingHandler) UpdateRatingHandler(c *gin.Context) {
	var req helpers.RatingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateRatingHandler", err)
		return
	}
	h.submit(c, "UpdateRatingHandler", c.Param("auctionId"), *req.Score)
}

// DeleteRatingHandler handles DELETE /subastas/mis-ratings/:auctionId/
func (h *RatingHandler) DeleteRatingHandler(c *gin.Context) {
	auctionID := c.Param("auctionId")
	rc := helpers.RequestContext(c)
	if err := h.service.DeleteCallerRating(c.Request.Context(), rc, auctionID); err != nil {
		helpers.RespondError(c, "DeleteRatingHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "rating deleted successfully")
	helpers.LogSuccess("DeleteRatingHandler", "rating deleted successfully", map[string]any{
		"auction_id": auctionID,
		"reviewer":   rc.Caller.ID,
	})
}

// submit upserts; a new rating answers 201, an overwrite 200
func (h *RatingHandler) submit(c *gin.Context, handlerName, auctionID string, score int) {
	rc := helpers.RequestContext(c)
	r, outcome, err := h.service.SubmitRating(c.Request.Context(), rc, auctionID, score)
	if err != nil {
		helpers.RespondError(c, handlerName, err, map[string]any{
			"auction_id": auctionID,
			"reviewer":   rc.Caller.ID,
			"score":      score,
		})
		return
	}

	status, message := http.StatusOK, "rating updated successfully"
	if outcome == rating.Created {
		status, message = http.StatusCreated, "rating created successfully"
	}
	utils.JSONResponse(c, status, helpers.ToRatingResponse(r), message)
	helpers.LogSuccess(handlerName, message, map[string]any{
		"rating_id":  r.RatingID,
		"auction_id": r.AuctionID,
		"reviewer":   r.Reviewer,
		"score":      r.Score,
	})
}
