package handler

import (
	"net/http"

	"auction-marketplace/internal/auctionerrors"
	catalog "auction-marketplace/internal/catalogService"
	model "auction-marketplace/internal/models"
	"auction-marketplace/services/auction/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// ListAuctionsHandler handles GET /subastas/?text&categoria&precioMin&precioMax&ordering
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		helpers.RespondError(c, "ListAuctionsHandler", err, map[string]any{"query": c.Request.URL.RawQuery})
		return
	}

	auctions, err := h.service.SearchAuctions(c.Request.Context(), helpers.RequestContext(c), filter)
	if err != nil {
		helpers.RespondError(c, "ListAuctionsHandler", err, map[string]any{"query": c.Request.URL.RawQuery})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToAuctionResponses(auctions), "auctions retrieved successfully")
	helpers.LogSuccess("ListAuctionsHandler", "auctions retrieved successfully", map[string]any{"count": len(auctions)})
}

// CreateAuctionHandler handles POST /subastas/
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	in, ok := bindAuctionInput(c, "CreateAuctionHandler")
	if !ok {
		return
	}

	rc := helpers.RequestContext(c)
	auction, err := h.service.CreateAuction(c.Request.Context(), rc, in)
	if err != nil {
		helpers.RespondError(c, "CreateAuctionHandler", err, map[string]any{"auctioneer": rc.Caller.ID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToAuctionResponse(auction), "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auction.AuctionID,
		"auctioneer": auction.Auctioneer,
	})
}

// GetAuctionHandler handles GET /subastas/:id/
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("id")
	auction, err := h.service.GetAuction(c.Request.Context(), helpers.RequestContext(c), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.ToAuctionResponse(auction), "auction retrieved successfully")
}

// UpdateAuctionHandler handles PUT /subastas/:id/
func (h *AuctionHandler) UpdateAuctionHandler(c *gin.Context) {
	auctionID := c.Param("id")
	in, ok := bindAuctionInput(c, "UpdateAuctionHandler")
	if !ok {
		return
	}

	auction, err := h.service.UpdateAuction(c.Request.Context(), helpers.RequestContext(c), auctionID, in)
	if err != nil {
		helpers.RespondError(c, "UpdateAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToAuctionResponse(auction), "auction updated successfully")
	helpers.LogSuccess("UpdateAuctionHandler", "auction updated successfully", map[string]any{"auction_id": auctionID})
}

// DeleteAuctionHandler handles DELETE /subastas/:id/
func (h *AuctionHandler) DeleteAuctionHandler(c *gin.Context) {
	auctionID := c.Param("id")
	if err := h.service.DeleteAuction(c.Request.Context(), helpers.RequestContext(c), auctionID); err != nil {
		helpers.RespondError(c, "DeleteAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "auction deleted successfully")
	helpers.LogSuccess("DeleteAuctionHandler", "auction deleted successfully", map[string]any{"auction_id": auctionID})
}

// MyAuctionsHandler handles GET /subastas/mis-subastas/
func (h *AuctionHandler) MyAuctionsHandler(c *gin.Context) {
	rc := helpers.RequestContext(c)
	auctions, err := h.service.GetCallerAuctions(c.Request.Context(), rc)
	if err != nil {
		helpers.RespondError(c, "MyAuctionsHandler", err, map[string]any{"auctioneer": rc.Caller.ID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToAuctionResponses(auctions), "auctions retrieved successfully")
	helpers.LogSuccess("MyAuctionsHandler", "auctions retrieved successfully", map[string]any{
		"auctioneer": rc.Caller.ID,
		"count":      len(auctions),
	})
}

func filterFromQuery(c *gin.Context) (catalog.Filter, error) {
	var errs auctionerrors.ValidationErrors
	filter := catalog.Filter{
		Text:     helpers.OptionalString(c, catalog.FieldText),
		Category: helpers.OptionalString(c, catalog.FieldCategory),
		Ordering: c.Query(catalog.FieldOrdering),
	}

	minPrice, err := helpers.OptionalFloat(c, catalog.FieldMinPrice)
	if err := errs.Collect(err); err != nil {
		return catalog.Filter{}, err
	}
	maxPrice, err := helpers.OptionalFloat(c, catalog.FieldMaxPrice)
	if err := errs.Collect(err); err != nil {
		return catalog.Filter{}, err
	}
	filter.MinPrice, filter.MaxPrice = minPrice, maxPrice
	return filter, errs.Err()
}

// bindAuctionInput binds and converts the auction body, writing the error response itself
func bindAuctionInput(c *gin.Context, handlerName string) (catalog.AuctionInput, bool) {
	var req helpers.AuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, handlerName, err)
		return catalog.AuctionInput{}, false
	}

	closing, err := helpers.ParseDate("closing_date", req.ClosingDate)
	if err != nil {
		helpers.RespondError(c, handlerName, err, map[string]any{"closing_date": req.ClosingDate})
		return catalog.AuctionInput{}, false
	}

	in := catalog.AuctionInput{
		Title:        req.Title,
		Description:  req.Description,
		ClosingDate:  closing,
		ThumbnailURL: req.Thumbnail,
		Price:        *req.Price,
		Stock:        *req.Stock,
		CategoryID:   req.Category,
		Brand:        req.Brand,
	}
	if req.Auctioneer != nil {
		auctioneer := model.UserRef(*req.Auctioneer)
		in.Auctioneer = &auctioneer
	}
	return in, true
}
