package handler

import (
	"net/http"

	"auction-marketplace/services/auction/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service CommentServiceInterface
}

func NewCommentHandler(service CommentServiceInterface) *CommentHandler {
	return &CommentHandler{service: service}
}

// ListCommentsHandler handles GET /subastas/:id/comentarios/
func (h *CommentHandler) ListCommentsHandler(c *gin.Context) {
	auctionID := c.Param("id")
	comments, err := h.service.ListComments(c.Request.Context(), helpers.RequestContext(c), auctionID)
	if err != nil {
		helpers.RespondError(c, "ListCommentsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.ToCommentResponses(comments), "comments retrieved successfully")
}

// PostCommentHandler handles POST /subastas/:id/comentarios/
func (h *CommentHandler) PostCommentHandler(c *gin.Context) {
	auctionID := c.Param("id")
	var req helpers.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PostCommentHandler", err)
		return
	}

	rc := helpers.RequestContext(c)
	comment, err := h.service.PostComment(c.Request.Context(), rc, auctionID, req.Title, req.Content)
	if err != nil {
		helpers.RespondError(c, "PostCommentHandler", err, map[string]any{"auction_id": auctionID, "author": rc.Caller.ID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToCommentResponse(comment), "comment created successfully")
	helpers.LogSuccess("PostCommentHandler", "comment created successfully", map[string]any{
		"comment_id": comment.CommentID,
		"auction_id": auctionID,
		"author":     comment.Author,
	})
}

// GetCommentHandler handles GET /subastas/:id/comentarios/:commentId/
func (h *CommentHandler) GetCommentHandler(c *gin.Context) {
	auctionID, commentID := c.Param("id"), c.Param("commentId")
	comment, err := h.service.GetComment(c.Request.Context(), helpers.RequestContext(c), auctionID, commentID)
	if err != nil {
		helpers.RespondError(c, "GetCommentHandler", err, map[string]any{"auction_id": auctionID, "comment_id": commentID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.ToCommentResponse(comment), "comment retrieved successfully")
}

// UpdateCommentHandler handles PUT /subastas/:id/comentarios/:commentId/
func (h *CommentHandler) UpdateCommentHandler(c *gin.Context) {
	auctionID, commentID := c.Param("id"), c.Param("commentId")
	var req helpers.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateCommentHandler", err)
		return
	}

	comment, err := h.service.UpdateComment(c.Request.Context(), helpers.RequestContext(c), auctionID, commentID, req.Title, req.Content)
	if err != nil {
		helpers.RespondError(c, "UpdateCommentHandler", err, map[string]any{"auction_id": auctionID, "comment_id": commentID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToCommentResponse(comment), "comment updated successfully")
	helpers.LogSuccess("UpdateCommentHandler", "comment updated successfully", map[string]any{
		"comment_id": commentID,
		"auction_id": auctionID,
	})
}

// DeleteCommentHandler handles DELETE /subastas/:id/comentarios/:commentId/
func (h *CommentHandler) DeleteCommentHandler(c *gin.Context) {
	auctionID, commentID := c.Param("id"), c.Param("commentId")
	if err := h.service.DeleteComment(c.Request.Context(), helpers.RequestContext(c), auctionID, commentID); err != nil {
		helpers.RespondError(c, "DeleteCommentHandler", err, map[string]any{"auction_id": auctionID, "comment_id": commentID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "comment deleted successfully")
	helpers.LogSuccess("DeleteCommentHandler", "comment deleted successfully", map[string]any{
		"comment_id": commentID,
		"auction_id": auctionID,
	})
}

// MyCommentsHandler handles GET /subastas/mis-comentarios/
func (h *CommentHandler) MyCommentsHandler(c *gin.Context) {
	rc := helpers.RequestContext(c)
	comments, err := h.service.GetCallerComments(c.Request.Context(), rc)
	if err != nil {
		helpers.RespondError(c, "MyCommentsHandler", err, map[string]any{"author": rc.Caller.ID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToCommentResponses(comments), "comments retrieved successfully")
	helpers.LogSuccess("MyCommentsHandler", "comments retrieved successfully", map[string]any{
		"author": rc.Caller.ID,
		"count":  len(comments),
	})
}
