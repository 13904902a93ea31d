package handler

import (
	"net/http"

	"auction-marketplace/services/auction/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// SubmitBidHandler handles POST /subastas/:id/pujas/
func (h *BiddingHandler) SubmitBidHandler(c *gin.Context) {
	auctionID := c.Param("id")
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SubmitBidHandler", err)
		return
	}

	rc := helpers.RequestContext(c)
	bid, err := h.service.SubmitBid(c.Request.Context(), rc, auctionID, *req.Price)
	if err != nil {
		helpers.RespondError(c, "SubmitBidHandler", err, map[string]any{
			"auction_id": auctionID,
			"bidder":     rc.Caller.ID,
			"price":      *req.Price,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("SubmitBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
		"bidder":     bid.Bidder,
		"price":      bid.Price,
	})
}

// ListBidsHandler handles GET /subastas/:id/pujas/
func (h *BiddingHandler) ListBidsHandler(c *gin.Context) {
	auctionID := c.Param("id")
	bids, err := h.service.GetBidsForAuction(c.Request.Context(), helpers.RequestContext(c), auctionID)
	if err != nil {
		helpers.RespondError(c, "ListBidsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("ListBidsHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}

// GetWinningBidHandler handles GET /subastas/:id/pujas/ganadora/
func (h *BiddingHandler) GetWinningBidHandler(c *gin.Context) {
	auctionID := c.Param("id")
	bid, err := h.service.GetWinningBid(c.Request.Context(), helpers.RequestContext(c), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetWinningBidHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponse(bid), "winning bid retrieved successfully")
	helpers.LogSuccess("GetWinningBidHandler", "winning bid retrieved successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
		"price":      bid.Price,
	})
}

// GetBidHandler handles GET /subastas/:id/pujas/:bidId/
func (h *BiddingHandler) GetBidHandler(c *gin.Context) {
	auctionID, bidID := c.Param("id"), c.Param("bidId")
	bid, err := h.service.GetBid(c.Request.Context(), helpers.RequestContext(c), auctionID, bidID)
	if err != nil {
		helpers.RespondError(c, "GetBidHandler", err, map[string]any{"auction_id": auctionID, "bid_id": bidID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponse(bid), "bid retrieved successfully")
}

// RaiseBidHandler handles PUT /subastas/:id/pujas/:bidId/
func (h *BiddingHandler) RaiseBidHandler(c *gin.Context) {
	auctionID, bidID := c.Param("id"), c.Param("bidId")
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RaiseBidHandler", err)
		return
	}

	bid, err := h.service.RaiseBid(c.Request.Context(), helpers.RequestContext(c), auctionID, bidID, *req.Price)
	if err != nil {
		helpers.RespondError(c, "RaiseBidHandler", err, map[string]any{
			"auction_id": auctionID,
			"bid_id":     bidID,
			"price":      *req.Price,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponse(bid), "bid updated successfully")
	helpers.LogSuccess("RaiseBidHandler", "bid updated successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
		"price":      bid.Price,
	})
}

// DeleteBidHandler handles DELETE /subastas/:id/pujas/:bidId/
func (h *BiddingHandler) DeleteBidHandler(c *gin.Context) {
	auctionID, bidID := c.Param("id"), c.Param("bidId")
	if err := h.service.DeleteBid(c.Request.Context(), helpers.RequestContext(c), auctionID, bidID); err != nil {
		helpers.RespondError(c, "DeleteBidHandler", err, map[string]any{"auction_id": auctionID, "bid_id": bidID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "bid deleted successfully")
	helpers.LogSuccess("DeleteBidHandler", "bid deleted successfully", map[string]any{
		"auction_id": auctionID,
		"bid_id":     bidID,
	})
}

// MyBidsHandler handles GET /subastas/mis-pujas/
func (h *BiddingHandler) MyBidsHandler(c *gin.Context) {
	rc := helpers.RequestContext(c)
	bids, err := h.service.GetBidsByCaller(c.Request.Context(), rc)
	if err != nil {
		helpers.RespondError(c, "MyBidsHandler", err, map[string]any{"bidder": rc.Caller.ID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("MyBidsHandler", "bids retrieved successfully", map[string]any{
		"bidder": rc.Caller.ID,
		"count":  len(bids),
	})
}
