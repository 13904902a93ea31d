package handler

import (
	"net/http"

	"auction-marketplace/services/auction/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	service CategoryServiceInterface
}

func NewCategoryHandler(service CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// ListCategoriesHandler handles GET /categorias/
func (h *CategoryHandler) ListCategoriesHandler(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context(), helpers.RequestContext(c))
	if err != nil {
		helpers.RespondError(c, "ListCategoriesHandler", err, nil)
		return
	}
	utils.JSONResponse(c, http.StatusOK, categories, "categories retrieved successfully")
}

// CreateCategoryHandler handles POST /categorias/crear
func (h *CategoryHandler) CreateCategoryHandler(c *gin.Context) {
	var req helpers.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateCategoryHandler", err)
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), helpers.RequestContext(c), req.Name)
	if err != nil {
		helpers.RespondError(c, "CreateCategoryHandler", err, map[string]any{"name": req.Name})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, category, "category created successfully")
	helpers.LogSuccess("CreateCategoryHandler", "category created successfully", map[string]any{
		"category_id": category.CategoryID,
		"name":        category.Name,
	})
}

// GetCategoryHandler handles GET /categorias/:id/
func (h *CategoryHandler) GetCategoryHandler(c *gin.Context) {
	categoryID := c.Param("id")
	category, err := h.service.GetCategory(c.Request.Context(), helpers.RequestContext(c), categoryID)
	if err != nil {
		helpers.RespondError(c, "GetCategoryHandler", err, map[string]any{"category_id": categoryID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, category, "category retrieved successfully")
}

// UpdateCategoryHandler handles PUT /categorias/:id/
func (h *CategoryHandler) UpdateCategoryHandler(c *gin.Context) {
	categoryID := c.Param("id")
	var req helpers.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateCategoryHandler", err)
		return
	}

	category, err := h.service.RenameCategory(c.Request.Context(), helpers.RequestContext(c), categoryID, req.Name)
	if err != nil {
		helpers.RespondError(c, "UpdateCategoryHandler", err, map[string]any{"category_id": categoryID, "name": req.Name})
		return
	}

	utils.JSONResponse(c, http.StatusOK, category, "category updated successfully")
	helpers.LogSuccess("UpdateCategoryHandler", "category updated successfully", map[string]any{
		"category_id": category.CategoryID,
		"name":        category.Name,
	})
}

// DeleteCategoryHandler handles DELETE /categorias/:id/
func (h *CategoryHandler) DeleteCategoryHandler(c *gin.Context) {
	categoryID := c.Param("id")
	if err := h.service.DeleteCategory(c.Request.Context(), helpers.RequestContext(c), categoryID); err != nil {
		helpers.RespondError(c, "DeleteCategoryHandler", err, map[string]any{"category_id": categoryID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "category deleted successfully")
	helpers.LogSuccess("DeleteCategoryHandler", "category deleted successfully", map[string]any{"category_id": categoryID})
}
