package models

import (
	"sort"
	"strings"
)

// Matches reports whether the auction satisfies every present clause of the query
func (q AuctionQuery) Matches(a Auction) bool {
	if q.Text != nil {
		needle := strings.ToLower(*q.Text)
		if !strings.Contains(strings.ToLower(a.Title), needle) &&
			!strings.Contains(strings.ToLower(a.Description), needle) {
			return false
		}
	}
	if q.CategoryID != nil && a.CategoryID != *q.CategoryID {
		return false
	}
	if q.MinPrice != nil && a.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && a.Price > *q.MaxPrice {
		return false
	}
	if q.Auctioneer != nil && a.Auctioneer != *q.Auctioneer {
		return false
	}
	return true
}

// SortAuctions orders auctions in place by the query ordering, id ascending by default.
// Ties on price or closing date fall back to ascending id.
func SortAuctions(auctions []Auction, orderBy string) {
	less := func(i, j int) bool { return auctions[i].AuctionID < auctions[j].AuctionID }
	byID := less

	switch orderBy {
	case OrderByIDDesc:
		less = func(i, j int) bool { return auctions[i].AuctionID > auctions[j].AuctionID }
	case OrderByPriceAsc:
		less = func(i, j int) bool {
			if auctions[i].Price != auctions[j].Price {
				return auctions[i].Price < auctions[j].Price
			}
			return byID(i, j)
		}
	case OrderByPriceDesc:
		less = func(i, j int) bool {
			if auctions[i].Price != auctions[j].Price {
				return auctions[i].Price > auctions[j].Price
			}
			return byID(i, j)
		}
	case OrderByClosingDateAsc:
		less = func(i, j int) bool {
			if !auctions[i].ClosingDate.Equal(auctions[j].ClosingDate) {
				return auctions[i].ClosingDate.Before(auctions[j].ClosingDate)
			}
			return byID(i, j)
		}
	case OrderByClosingDateDesc:
		less = func(i, j int) bool {
			if !auctions[i].ClosingDate.Equal(auctions[j].ClosingDate) {
				return auctions[i].ClosingDate.After(auctions[j].ClosingDate)
			}
			return byID(i, j)
		}
	}
	sort.SliceStable(auctions, less)
}

// SortBidsByPriceDesc orders bids with the winning bid first
func SortBidsByPriceDesc(bids []Bid) {
	sort.SliceStable(bids, func(i, j int) bool {
		if bids[i].Price != bids[j].Price {
			return bids[i].Price > bids[j].Price
		}
		return bids[i].BidID > bids[j].BidID
	})
}
