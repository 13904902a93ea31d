package models

import "time"

// UserRef is the opaque identity handed over by the authentication layer
type UserRef string

// Caller is the identity acting on a request. An empty ID means anonymous.
type Caller struct {
	ID      UserRef `json:"id"`
	IsStaff bool    `json:"is_staff"`
}

// Authenticated reports whether the caller carries an identity
func (c Caller) Authenticated() bool {
	return c.ID != ""
}

// RequestContext carries the evaluation time and the caller of one operation
type RequestContext struct {
	Now    time.Time
	Caller Caller
}

// Category groups auctions
type Category struct {
	CategoryID string `json:"id"`
	Name       string `json:"name"`
}

// Auction is a sellable listing with a closing deadline
type Auction struct {
	AuctionID    string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ClosingDate  time.Time `json:"closing_date"`
	CreationDate time.Time `json:"creation_date"`
	ThumbnailURL string    `json:"thumbnail"`
	Price        float64   `json:"price"`
	Stock        int       `json:"stock"`
	CategoryID   string    `json:"category"`
	Brand        string    `json:"brand"`
	Auctioneer   UserRef   `json:"auctioneer"`
}

// Bid is a price offer against an auction
type Bid struct {
	BidID        string    `json:"id"`
	AuctionID    string    `json:"auction"`
	Price        float64   `json:"price"`
	CreationDate time.Time `json:"creation_date"`
	Bidder       UserRef   `json:"bidder"`
}

// Rating is a reviewer's 1-5 score for an auction
type Rating struct {
	RatingID  string  `json:"id"`
	AuctionID string  `json:"auction"`
	Reviewer  UserRef `json:"reviewer"`
	Score     int     `json:"score"`
}

// Comment is a discussion entry on an auction
type Comment struct {
	CommentID      string    `json:"id"`
	AuctionID      string    `json:"auction"`
	Author         UserRef   `json:"author"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	CreationDate   time.Time `json:"creation_date"`
	LastUpdateDate time.Time `json:"last_update_date"`
}

// Ordering names accepted for auction listings
const (
	OrderByIDAsc           = "id"
	OrderByIDDesc          = "-id"
	OrderByPriceAsc        = "price"
	OrderByPriceDesc       = "-price"
	OrderByClosingDateAsc  = "closing_date"
	OrderByClosingDateDesc = "-closing_date"
)

// AuctionQuery is a conjunctive predicate over the catalog. Nil fields do not restrict.
type AuctionQuery struct {
	Text       *string
	CategoryID *string
	MinPrice   *float64
	MaxPrice   *float64
	Auctioneer *UserRef
	OrderBy    string
}
