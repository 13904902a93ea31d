package catalog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/authz"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"
)

// MaxCategoryNameLength bounds category names
const MaxCategoryNameLength = 50

// CategoryService manages categories. Everything but listing is reserved to administrators.
type CategoryService struct {
	repo repository.CategoryDB
	gate *authz.Gate
}

// NewCategoryService creates a new CategoryService instance
func NewCategoryService(repo repository.CategoryDB, gate *authz.Gate) *CategoryService {
	return &CategoryService{repo: repo, gate: gate}
}

// ListCategories returns every category in id order
func (s *CategoryService) ListCategories(ctx context.Context, rc models.RequestContext) ([]models.Category, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionList, authz.Resource{Kind: authz.KindCategory}); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, auctionerrors.StoreError("service: list categories", "category", "", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// CreateCategory adds a category with a unique name
func (s *CategoryService) CreateCategory(ctx context.Context, rc models.RequestContext, name string) (models.Category, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionCreate, authz.Resource{Kind: authz.KindCategory}); err != nil {
		return models.Category{}, fmt.Errorf("service: %w", err)
	}
	name, err := validateCategoryName(name)
	if err != nil {
		return models.Category{}, err
	}

	category := models.Category{CategoryID: utils.GenerateID(), Name: name}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return models.Category{}, auctionerrors.StoreError("service: create category", "category", name, err)
	}
	return category, nil
}

// GetCategory returns one category
func (s *CategoryService) GetCategory(ctx context.Context, rc models.RequestContext, categoryID string) (models.Category, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionRead, authz.Resource{Kind: authz.KindCategory, ID: categoryID}); err != nil {
		return models.Category{}, fmt.Errorf("service: %w", err)
	}
	category, err := s.repo.GetCategory(ctx, categoryID)
	if err != nil {
		return models.Category{}, auctionerrors.StoreError("service: get category", "category", categoryID, err)
	}
	return category, nil
}

// RenameCategory changes a category's name. Auctions keep pointing at it by id.
func (s *CategoryService) RenameCategory(ctx context.Context, rc models.RequestContext, categoryID, name string) (models.Category, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionUpdate, authz.Resource{Kind: authz.KindCategory, ID: categoryID}); err != nil {
		return models.Category{}, fmt.Errorf("service: %w", err)
	}
	name, err := validateCategoryName(name)
	if err != nil {
		return models.Category{}, err
	}

	category := models.Category{CategoryID: categoryID, Name: name}
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return models.Category{}, auctionerrors.StoreError("service: update category", "category", categoryID, err)
	}
	return category, nil
}

// DeleteCategory removes a category no auction refers to
func (s *CategoryService) DeleteCategory(ctx context.Context, rc models.RequestContext, categoryID string) error {
	if err := s.gate.Require(rc.Caller, authz.ActionDelete, authz.Resource{Kind: authz.KindCategory, ID: categoryID}); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if err := s.repo.DeleteCategory(ctx, categoryID); err != nil {
		return auctionerrors.StoreError("service: delete category", "category", categoryID, err)
	}
	return nil
}

func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("service: %w", auctionerrors.Invalid("name", auctionerrors.CodeInvalidField, auctionerrors.ErrCategoryNameRequired))
	}
	if n := utf8.RuneCountInString(name); n > MaxCategoryNameLength {
		return "", fmt.Errorf("service: %w", auctionerrors.Invalidf("name", auctionerrors.CodeInvalidField, auctionerrors.ErrInvalidField,
			"name must have at most %d characters", MaxCategoryNameLength))
	}
	return name, nil
}
