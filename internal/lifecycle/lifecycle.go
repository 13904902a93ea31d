// Package lifecycle derives auction openness and guards closing dates.
package lifecycle

import (
	"time"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/models"
)

// MinOpenWindow is how long an auction must stay open after it is created
const MinOpenWindow = 15 * 24 * time.Hour

// Status of an auction at a point in time
type Status int

const (
	Open Status = iota + 1
	Closed
)

func (s Status) String() string {
	switch s {
	case Open:
		return "open"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// DeriveStatus is Open iff the closing date is strictly after now
func DeriveStatus(auction models.Auction, now time.Time) Status {
	if auction.ClosingDate.After(now) {
		return Open
	}
	return Closed
}

// IsOpen is a shorthand for DeriveStatus == Open
func IsOpen(auction models.Auction, now time.Time) bool {
	return DeriveStatus(auction, now) == Open
}

// Rules validates closing dates against a configurable minimum window
type Rules struct {
	MinWindow time.Duration
}

// DefaultRules uses the marketplace's 15 day window
func DefaultRules() Rules {
	return Rules{MinWindow: MinOpenWindow}
}

// ValidateCreate checks the closing date of a new auction. The window is measured from now,
// which is also the creation date assigned by the server.
func (r Rules) ValidateCreate(closingDate, now time.Time) error {
	return r.validate(closingDate, now, now)
}

// ValidateUpdate checks a new closing date against the original creation date
func (r Rules) ValidateUpdate(closingDate, originalCreationDate, now time.Time) error {
	return r.validate(closingDate, originalCreationDate, now)
}

func (r Rules) validate(closingDate, windowStart, now time.Time) error {
	if !closingDate.After(now) {
		return auctionerrors.Invalid("closing_date", auctionerrors.CodeClosingDatePast, auctionerrors.ErrClosingDateInPast)
	}
	if closingDate.Before(windowStart.Add(r.window())) {
		return auctionerrors.Invalid("closing_date", auctionerrors.CodeClosingWindow, auctionerrors.ErrClosingWindowTooShort)
	}
	return nil
}

func (r Rules) window() time.Duration {
	if r.MinWindow <= 0 {
		return MinOpenWindow
	}
	return r.MinWindow
}

// ValidateCreate applies DefaultRules
func ValidateCreate(closingDate, now time.Time) error {
	return DefaultRules().ValidateCreate(closingDate, now)
}

// ValidateUpdate applies DefaultRules
func ValidateUpdate(closingDate, originalCreationDate, now time.Time) error {
	return DefaultRules().ValidateUpdate(closingDate, originalCreationDate, now)
}
