package auctionerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error leaving a service matches exactly one of these with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Repository-level errors
var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrCategoryMissing  = errors.New("category not found")
	ErrBidNotFound      = errors.New("bid not found")
	ErrRatingNotFound   = errors.New("rating not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrNoBids           = errors.New("no bids found for auction")
	ErrBidConflict      = errors.New("winning bid changed concurrently")
	ErrDuplicateName    = errors.New("category name already exists")
	ErrCategoryInUse    = errors.New("category is referenced by auctions")
	ErrDuplicateRecord  = errors.New("record already exists")
	ErrLockNotAcquired  = errors.New("lock not acquired")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrInvalidToken     = errors.New("invalid bearer token")
	ErrMissingAuctionID = errors.New("missing auction id")
)

// business rule errors
var (
	ErrAuctionClosed          = errors.New("auction is closed")
	ErrBidTooLow              = errors.New("bid amount too low")
	ErrInvalidScore           = errors.New("score must be between 1 and 5")
	ErrTitleTooLong           = errors.New("title too long")
	ErrTextTooShort           = errors.New("search text too short")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrNegativePrice          = errors.New("price must not be negative")
	ErrInvalidRange           = errors.New("minimum price must be lower than maximum price")
	ErrClosingDateInPast      = errors.New("must be in the future")
	ErrClosingWindowTooShort  = errors.New("must allow at least 15 days")
	ErrInvalidField           = errors.New("invalid field")
	ErrBidNotWinning          = errors.New("only the winning bid can be raised")
	ErrInvalidOrdering        = errors.New("unknown ordering")
	ErrAuctioneerImmutable    = errors.New("auctioneer cannot change")
	ErrCategoryNameRequired   = errors.New("category name is required")
	ErrCommentContentRequired = errors.New("content is required")
)

// Machine-readable codes surfaced to clients
const (
	CodeValidation       = "validation_error"
	CodeNotFound         = "not_found"
	CodeForbidden        = "forbidden"
	CodeConflict         = "conflict"
	CodeStoreUnavailable = "store_unavailable"
	CodeUnauthorized     = "unauthorized"
	CodeRateLimited      = "rate_limited"

	CodeAuctionClosed     = "auction_closed"
	CodeBidTooLow         = "bid_too_low"
	CodeInvalidScore      = "invalid_score"
	CodeTitleTooLong      = "title_too_long"
	CodeTextTooShort      = "text_too_short"
	CodeCategoryNotFound  = "category_not_found"
	CodeNegativePrice     = "negative_price"
	CodeInvalidRange      = "invalid_range"
	CodeClosingDatePast   = "closing_date_in_past"
	CodeClosingWindow     = "closing_window_too_short"
	CodeInvalidField      = "invalid_field"
	CodeBidNotWinning     = "bid_not_winning"
	CodeInvalidOrdering   = "invalid_ordering"
	CodeAuctioneerChanged = "auctioneer_immutable"

	ConflictDuplicateCategory = "duplicate_category"
	ConflictCategoryInUse     = "category_in_use"
	ConflictBidRace           = "bid_race"
	ConflictDuplicateRating   = "duplicate_rating"
)

// ValidationError is a rule-violating input, surfaced verbatim to the caller
type ValidationError struct {
	Field   string
	Code    string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Cause}
}

// Invalid builds a ValidationError whose message is the cause text
func Invalid(field, code string, cause error) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: cause.Error(), Cause: cause}
}

// Invalidf builds a ValidationError with a formatted message
func Invalidf(field, code string, cause error, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NotFoundError reports a missing resource
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ForbiddenError reports a denied action
type ForbiddenError struct {
	Action   string
	Resource string
	Reason   string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s on %s denied: %s", e.Action, e.Resource, e.Reason)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// ConflictError reports a uniqueness or concurrency conflict
type ConflictError struct {
	Kind  string
	Cause error
}

func (e *ConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("conflict %s: %v", e.Kind, e.Cause)
	}
	return "conflict " + e.Kind
}

func (e *ConflictError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrConflict}
	}
	return []error{ErrConflict, e.Cause}
}

// Unavailable marks an infrastructure failure
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// StoreError translates a repository error into the service taxonomy.
// Domain sentinels pass through untouched, anything else is an infrastructure failure.
func StoreError(op, resource, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden),
		errors.Is(err, ErrConflict), errors.Is(err, ErrStoreUnavailable):
		return err
	case errors.Is(err, ErrAuctionNotFound), errors.Is(err, ErrBidNotFound), errors.Is(err, ErrRatingNotFound),
		errors.Is(err, ErrCommentNotFound), errors.Is(err, ErrCategoryMissing):
		return fmt.Errorf("%s: %w", op, &NotFoundError{Resource: resource, ID: id})
	case errors.Is(err, ErrDuplicateName):
		return fmt.Errorf("%s: %w", op, &ConflictError{Kind: ConflictDuplicateCategory, Cause: err})
	case errors.Is(err, ErrCategoryInUse):
		return fmt.Errorf("%s: %w", op, &ConflictError{Kind: ConflictCategoryInUse, Cause: err})
	case errors.Is(err, ErrDuplicateRecord):
		return fmt.Errorf("%s: %w", op, &ConflictError{Kind: ConflictDuplicateRating, Cause: err})
	default:
		return Unavailable(op, err)
	}
}

// ValidationErrors collects every rejected field of one candidate
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

func (es ValidationErrors) Unwrap() []error {
	out := make([]error, 0, len(es))
	for _, e := range es {
		out = append(out, e)
	}
	return out
}

// Fields maps each rejected field to its message. The first message per field wins.
func (es ValidationErrors) Fields() map[string]string {
	fields := make(map[string]string, len(es))
	for _, e := range es {
		if _, ok := fields[e.Field]; !ok {
			fields[e.Field] = e.Message
		}
	}
	return fields
}

// Collect appends err to es when it is a ValidationError; other errors are returned as is
func (es *ValidationErrors) Collect(err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		*es = append(*es, ve)
		return nil
	}
	return err
}

// Err returns nil when nothing was collected
func (es ValidationErrors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// FieldMessages extracts the field->message map of any validation error
func FieldMessages(err error) map[string]string {
	var many ValidationErrors
	if errors.As(err, &many) {
		return many.Fields()
	}
	var one *ValidationError
	if errors.As(err, &one) {
		return map[string]string{one.Field: one.Message}
	}
	return nil
}
