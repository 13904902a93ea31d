package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// gin context keys
const (
	CallerKey    = "caller"
	NowKey       = "request_now"
	RequestIDKey = "request_id"
)

func init() {
	// report binding failures under the JSON field names clients send
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	}
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	var fields map[string]string
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fmt.Sprintf("failed on %s", fe.Tag())
		}
	}
	utils.JSONCodedError(c, http.StatusBadRequest, auctionerrors.CodeValidation, "invalid request payload", fields)
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error(), "request_id": c.GetString(RequestIDKey)})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code, stable code and message
func MapErrorToHTTP(err error) (int, string, string) {
	var ve *auctionerrors.ValidationError
	var many auctionerrors.ValidationErrors
	var nf *auctionerrors.NotFoundError
	var ce *auctionerrors.ConflictError

	switch {
	case errors.As(err, &many):
		return http.StatusBadRequest, auctionerrors.CodeValidation, "validation failed"
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Code, ve.Message
	case errors.Is(err, auctionerrors.ErrValidation):
		return http.StatusBadRequest, auctionerrors.CodeValidation, "validation failed"
	case errors.Is(err, auctionerrors.ErrForbidden):
		return http.StatusForbidden, auctionerrors.CodeForbidden, "you do not have permission to perform this action"
	case errors.As(err, &nf):
		return http.StatusNotFound, auctionerrors.CodeNotFound, nf.Error()
	case errors.Is(err, auctionerrors.ErrNotFound):
		return http.StatusNotFound, auctionerrors.CodeNotFound, "resource not found"
	case errors.As(err, &ce):
		return http.StatusConflict, ce.Kind, conflictMessage(ce.Kind)
	case errors.Is(err, auctionerrors.ErrConflict):
		return http.StatusConflict, auctionerrors.CodeConflict, "conflict"
	case errors.Is(err, auctionerrors.ErrInvalidToken):
		return http.StatusUnauthorized, auctionerrors.CodeUnauthorized, "invalid bearer token"
	case errors.Is(err, auctionerrors.ErrRateLimited):
		return http.StatusTooManyRequests, auctionerrors.CodeRateLimited, "too many requests"
	default:
		return http.StatusInternalServerError, auctionerrors.CodeStoreUnavailable, "internal server error"
	}
}

func conflictMessage(kind string) string {
	switch kind {
	case auctionerrors.ConflictDuplicateCategory:
		return "a category with this name already exists"
	case auctionerrors.ConflictCategoryInUse:
		return "category is used by existing auctions"
	case auctionerrors.ConflictBidRace:
		return "another bid was accepted concurrently, retry"
	case auctionerrors.ConflictDuplicateRating:
		return "rating already exists"
	default:
		return "conflict"
	}
}

// RespondError writes the error envelope for err and logs it. Server-side failures are
// logged at error level and never echo internals to the client.
func RespondError(c *gin.Context, handlerName string, err error, ctx map[string]any) {
	status, code, message := MapErrorToHTTP(err)
	utils.JSONCodedError(c, status, code, message, auctionerrors.FieldMessages(err))

	fields := map[string]any{
		"handler":    handlerName,
		"status":     status,
		"code":       code,
		"error":      err.Error(),
		"request_id": c.GetString(RequestIDKey),
	}
	for k, v := range ctx {
		fields[k] = v
	}
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request rejected", fields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// SetCaller stores the authenticated caller for the rest of the chain
func SetCaller(c *gin.Context, caller model.Caller) {
	c.Set(CallerKey, caller)
}

// RequestContext builds the evaluation context of the current request
func RequestContext(c *gin.Context) model.RequestContext {
	rc := model.RequestContext{Now: time.Now().UTC()}
	if now, ok := c.Get(NowKey); ok {
		if t, ok := now.(time.Time); ok {
			rc.Now = t.UTC()
		}
	}
	if caller, ok := c.Get(CallerKey); ok {
		if cl, ok := caller.(model.Caller); ok {
			rc.Caller = cl
		}
	}
	return rc
}

// ParseDate accepts the wire date format and full RFC 3339
func ParseDate(field, value string) (time.Time, error) {
	if t, err := time.Parse(utils.DateFormat, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, auctionerrors.Invalidf(field, auctionerrors.CodeInvalidField, auctionerrors.ErrInvalidField,
			"%s must use the format YYYY-MM-DDTHH:MM:SSZ", field)
	}
	return t.UTC(), nil
}

// OptionalString returns nil for an absent or empty query parameter
func OptionalString(c *gin.Context, name string) *string {
	v, ok := c.GetQuery(name)
	if !ok || v == "" {
		return nil
	}
	return &v
}

// OptionalFloat parses an optional numeric query parameter
func OptionalFloat(c *gin.Context, name string) (*float64, error) {
	raw := OptionalString(c, name)
	if raw == nil {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		return nil, auctionerrors.Invalidf(name, auctionerrors.CodeInvalidField, auctionerrors.ErrInvalidField, "%s must be a number", name)
	}
	return &f, nil
}
