package handler

import (
	"net/http"
	"testing"

	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/services/auction/helpers"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestCommentHandlers(t *testing.T) {
	t.Parallel()

	comment := model.Comment{
		CommentID:      "c1",
		AuctionID:      "a1",
		Author:         "bob",
		Title:          "Question",
		Content:        "Does it ship?",
		CreationDate:   testNow,
		LastUpdateDate: testNow,
	}

	t.Run("public_list", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		mockService := NewMockCommentServiceInterface(ctrl)
		mockService.EXPECT().ListComments(gomock.Any(), rcOf(""), "a1").Return([]model.Comment{comment}, nil)

		router := testRouter(model.Caller{})
		router.GET("/subastas/:id/comentarios/", NewCommentHandler(mockService).ListCommentsHandler)

		w, resp := doJSON(t, router, http.MethodGet, "/subastas/a1/comentarios/", nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := resp["data"].([]any)
		require.Len(t, data, 1)
		require.Equal(t, "2026-03-01T12:00:00Z", data[0].(map[string]any)["last_update_date"])
	})

	t.Run("post", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		mockService := NewMockCommentServiceInterface(ctrl)
		mockService.EXPECT().PostComment(gomock.Any(), rcOf("bob"), "a1", "Question", "Does it ship?").Return(comment, nil)

		router := testRouter(model.Caller{ID: "bob"})
		router.POST("/subastas/:id/comentarios/", NewCommentHandler(mockService).PostCommentHandler)

		w, resp := doJSON(t, router, http.MethodPost, "/subastas/a1/comentarios/",
			helpers.CommentRequest{Title: "Question", Content: "Does it ship?"})
		require.Equal(t, http.StatusCreated, w.Code)
		require.Equal(t, "c1", resp["data"].(map[string]any)["id"])
	})

	t.Run("update_by_stranger", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		mockService := NewMockCommentServiceInterface(ctrl)
		mockService.EXPECT().UpdateComment(gomock.Any(), rcOf("mallory"), "a1", "c1", "Edited", "text").
			Return(model.Comment{}, &auctionerrors.ForbiddenError{Action: "update", Resource: "comment c1", Reason: "not the owner"})

		router := testRouter(model.Caller{ID: "mallory"})
		router.PUT("/subastas/:id/comentarios/:commentId/", NewCommentHandler(mockService).UpdateCommentHandler)

		w, resp := doJSON(t, router, http.MethodPut, "/subastas/a1/comentarios/c1/",
			helpers.CommentRequest{Title: "Edited", Content: "text"})
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, auctionerrors.CodeForbidden, resp["code"])
	})

	t.Run("delete_missing", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		mockService := NewMockCommentServiceInterface(ctrl)
		mockService.EXPECT().DeleteComment(gomock.Any(), gomock.Any(), "a1", "zz").
			Return(&auctionerrors.NotFoundError{Resource: "comment", ID: "zz"})

		router := testRouter(model.Caller{ID: "bob"})
		router.DELETE("/subastas/:id/comentarios/:commentId/", NewCommentHandler(mockService).DeleteCommentHandler)

		w, _ := doJSON(t, router, http.MethodDelete, "/subastas/a1/comentarios/zz/", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCategoryHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create_duplicate", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		mockService := NewMockCategoryServiceInterface(ctrl)
		mockService.EXPECT().CreateCategory(gomock.Any(), rcOf("admin"), "Photo").
			Return(model.Category{}, &auctionerrors.ConflictError{Kind: auctionerrors.ConflictDuplicateCategory})

		router := testRouter(model.Caller{ID: "admin", IsStaff: true})
		router.POST("/categorias/crear", NewCategoryHandler(mockService).CreateCategoryHandler)

		w, resp := doJSON(t, router, http.MethodPost, "/categorias/crear", helpers.CategoryRequest{Name: "Photo"})
		require.Equal(t, http.StatusConflict, w.Code)
		require.Equal(t, auctionerrors.ConflictDuplicateCategory, resp["code"])
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		mockService := NewMockCategoryServiceInterface(ctrl)
		mockService.EXPECT().ListCategories(gomock.Any(), rcOf("")).
			Return([]model.Category{{CategoryID: "c1", Name: "Photo"}}, nil)

		router := testRouter(model.Caller{})
		router.GET("/categorias/", NewCategoryHandler(mockService).ListCategoriesHandler)

		w, resp := doJSON(t, router, http.MethodGet, "/categorias/", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "Photo", resp["data"].([]any)[0].(map[string]any)["name"])
	})
}
