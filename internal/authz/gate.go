// Package authz decides whether a caller may perform an action on a resource.
package authz

import (
	"fmt"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/models"
)

// Action performed on a resource
type Action string

const (
	ActionList   Action = "list"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	// ActionListOwn lists the caller's own records of a kind
	ActionListOwn Action = "list_own"
)

// Kind of resource
type Kind string

const (
	KindCategory Kind = "category"
	KindAuction  Kind = "auction"
	KindBid      Kind = "bid"
	KindRating   Kind = "rating"
	KindComment  Kind = "comment"
)

// Resource names what is acted upon. Owner is the auctioneer, bidder, reviewer or
// author as resolved by the caller of Check; it is empty for collections.
type Resource struct {
	Kind  Kind
	ID    string
	Owner models.UserRef
}

// Decision is the outcome of Check
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive Decision
var Allow = Decision{Allowed: true}

// Deny builds a negative Decision
func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

type requirement int

const (
	public requirement = iota
	authenticated
	ownerOrStaff
	staff
)

var policy = map[Kind]map[Action]requirement{
	KindCategory: {
		ActionList:   public,
		ActionRead:   staff,
		ActionCreate: staff,
		ActionUpdate: staff,
		ActionDelete: staff,
	},
	KindAuction: {
		ActionListOwn: authenticated,
		ActionList:    public,
		ActionRead:    public,
		ActionCreate:  authenticated,
		ActionUpdate:  ownerOrStaff,
		ActionDelete:  ownerOrStaff,
	},
	KindBid: {
		ActionListOwn: authenticated,
		ActionList:    authenticated,
		ActionRead:    ownerOrStaff,
		ActionCreate:  authenticated,
		ActionUpdate:  ownerOrStaff,
		ActionDelete:  ownerOrStaff,
	},
	KindRating: {
		ActionListOwn: authenticated,
		ActionList:    authenticated,
		ActionRead:    ownerOrStaff,
		ActionCreate:  authenticated,
		ActionUpdate:  ownerOrStaff,
		ActionDelete:  ownerOrStaff,
	},
	KindComment: {
		ActionListOwn: authenticated,
		ActionList:    public,
		ActionRead:    public,
		ActionCreate:  authenticated,
		ActionUpdate:  ownerOrStaff,
		ActionDelete:  ownerOrStaff,
	},
}

// Gate is the single authorization point consulted by every service
type Gate struct{}

// NewGate creates a Gate
func NewGate() *Gate {
	return &Gate{}
}

// Check maps (caller, action, resource) to a Decision
func (g *Gate) Check(caller models.Caller, action Action, resource Resource) Decision {
	actions, ok := policy[resource.Kind]
	if !ok {
		return Deny("unknown resource kind")
	}
	req, ok := actions[action]
	if !ok {
		return Deny("unknown action")
	}

	switch req {
	case public:
		return Allow
	case authenticated:
		if caller.Authenticated() {
			return Allow
		}
		return Deny("authentication required")
	case ownerOrStaff:
		if !caller.Authenticated() {
			return Deny("authentication required")
		}
		if caller.IsStaff || (resource.Owner != "" && caller.ID == resource.Owner) {
			return Allow
		}
		return Deny("only the owner or an administrator may do this")
	case staff:
		if caller.Authenticated() && caller.IsStaff {
			return Allow
		}
		return Deny("administrator required")
	}
	return Deny("unknown requirement")
}

// Require returns a ForbiddenError when Check denies
func (g *Gate) Require(caller models.Caller, action Action, resource Resource) error {
	d := g.Check(caller, action, resource)
	if d.Allowed {
		return nil
	}
	return &auctionerrors.ForbiddenError{
		Action:   string(action),
		Resource: resourceName(resource),
		Reason:   d.Reason,
	}
}

func resourceName(r Resource) string {
	if r.ID == "" {
		return string(r.Kind)
	}
	return fmt.Sprintf("%s %s", r.Kind, r.ID)
}
