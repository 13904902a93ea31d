package catalog

import (
	"fmt"
	"math"
	"unicode/utf8"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/models"
)

// MinTextLength is the shortest accepted search text
const MinTextLength = 3

// Query parameter names, used as field names in rejections
const (
	FieldText     = "text"
	FieldCategory = "categoria"
	FieldMinPrice = "precioMin"
	FieldMaxPrice = "precioMax"
	FieldOrdering = "ordering"
)

var orderings = map[string]bool{
	models.OrderByIDAsc:           true,
	models.OrderByIDDesc:          true,
	models.OrderByPriceAsc:        true,
	models.OrderByPriceDesc:       true,
	models.OrderByClosingDateAsc:  true,
	models.OrderByClosingDateDesc: true,
}

// Filter holds the raw search parameters of an auction listing. Nil means absent.
type Filter struct {
	Text     *string
	Category *string
	MinPrice *float64
	MaxPrice *float64
	Ordering string
}

// BuildQuery validates a filter into a query. resolved is the category the filter's
// category name refers to, nil when the name did not resolve. Every clause is checked and
// all rejected fields are reported together.
func BuildQuery(f Filter, resolved *models.Category) (models.AuctionQuery, error) {
	var errs auctionerrors.ValidationErrors
	q := models.AuctionQuery{OrderBy: models.OrderByIDAsc}

	if f.Text != nil {
		if utf8.RuneCountInString(*f.Text) < MinTextLength {
			errs = append(errs, auctionerrors.Invalidf(FieldText, auctionerrors.CodeTextTooShort, auctionerrors.ErrTextTooShort,
				"search text must have at least %d characters", MinTextLength))
		} else {
			text := *f.Text
			q.Text = &text
		}
	}

	if f.Category != nil {
		if resolved == nil || resolved.Name != *f.Category {
			errs = append(errs, auctionerrors.Invalidf(FieldCategory, auctionerrors.CodeCategoryNotFound,
				auctionerrors.ErrCategoryNotFound, "category %q does not exist", *f.Category))
		} else {
			id := resolved.CategoryID
			q.CategoryID = &id
		}
	}

	minOK := checkPrice(&errs, FieldMinPrice, f.MinPrice)
	maxOK := checkPrice(&errs, FieldMaxPrice, f.MaxPrice)
	if minOK && maxOK && f.MinPrice != nil && f.MaxPrice != nil && !(*f.MinPrice < *f.MaxPrice) {
		errs = append(errs, auctionerrors.Invalid(FieldMaxPrice, auctionerrors.CodeInvalidRange, auctionerrors.ErrInvalidRange))
	}
	if minOK && f.MinPrice != nil {
		v := *f.MinPrice
		q.MinPrice = &v
	}
	if maxOK && f.MaxPrice != nil {
		v := *f.MaxPrice
		q.MaxPrice = &v
	}

	if f.Ordering != "" {
		if !orderings[f.Ordering] {
			errs = append(errs, auctionerrors.Invalidf(FieldOrdering, auctionerrors.CodeInvalidOrdering,
				auctionerrors.ErrInvalidOrdering, "unknown ordering %q", f.Ordering))
		} else {
			q.OrderBy = f.Ordering
		}
	}

	if err := errs.Err(); err != nil {
		return models.AuctionQuery{}, fmt.Errorf("service: %w", err)
	}
	return q, nil
}

// checkPrice reports whether a present bound is usable. Absent bounds are fine.
func checkPrice(errs *auctionerrors.ValidationErrors, field string, v *float64) bool {
	if v == nil {
		return true
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		*errs = append(*errs, auctionerrors.Invalid(field, auctionerrors.CodeInvalidField, auctionerrors.ErrInvalidField))
		return false
	}
	if *v < 0 {
		*errs = append(*errs, auctionerrors.Invalidf(field, auctionerrors.CodeNegativePrice, auctionerrors.ErrNegativePrice,
			"%s must not be negative", field))
		return false
	}
	return true
}
