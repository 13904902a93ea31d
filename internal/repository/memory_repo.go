package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
)

type ratingKey struct {
	reviewer  model.UserRef
	auctionID string
}

// MemoryRepo is a concurrency-safe in-memory implementation of CatalogStore
type MemoryRepo struct {
	mu         sync.RWMutex
	categories map[string]model.Category
	auctions   map[string]model.Auction
	bids       map[string][]model.Bid // key: auctionID -> bids in acceptance order
	ratings    map[ratingKey]model.Rating
	comments   map[string][]model.Comment // key: auctionID -> comments in creation order
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		categories: make(map[string]model.Category),
		auctions:   make(map[string]model.Auction),
		bids:       make(map[string][]model.Bid),
		ratings:    make(map[ratingKey]model.Rating),
		comments:   make(map[string][]model.Comment),
	}
}

// Close is a no-op for the memory repo
func (r *MemoryRepo) Close() error { return nil }

// CreateCategory stores a category with a unique name
func (r *MemoryRepo) CreateCategory(_ context.Context, category model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(category.Name, "") {
		return fmt.Errorf("create category %q: %w", category.Name, auctionerrors.ErrDuplicateName)
	}
	r.categories[category.CategoryID] = category
	return nil
}

// GetCategory returns a category by id
func (r *MemoryRepo) GetCategory(_ context.Context, categoryID string) (model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[categoryID]
	if !ok {
		return model.Category{}, fmt.Errorf("get category %s: %w", categoryID, auctionerrors.ErrCategoryMissing)
	}
	return category, nil
}

// GetCategoryByName returns the category with exactly this name
func (r *MemoryRepo) GetCategoryByName(_ context.Context, name string) (model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return model.Category{}, fmt.Errorf("get category named %q: %w", name, auctionerrors.ErrCategoryMissing)
}

// ListCategories returns categories by ascending id
func (r *MemoryRepo) ListCategories(_ context.Context) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

// UpdateCategory renames a category
func (r *MemoryRepo) UpdateCategory(_ context.Context, category model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[category.CategoryID]; !ok {
		return fmt.Errorf("update category %s: %w", category.CategoryID, auctionerrors.ErrCategoryMissing)
	}
	if r.nameTaken(category.Name, category.CategoryID) {
		return fmt.Errorf("update category %q: %w", category.Name, auctionerrors.ErrDuplicateName)
	}
	r.categories[category.CategoryID] = category
	return nil
}

// DeleteCategory removes a category that no auction references
func (r *MemoryRepo) DeleteCategory(_ context.Context, categoryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[categoryID]; !ok {
		return fmt.Errorf("delete category %s: %w", categoryID, auctionerrors.ErrCategoryMissing)
	}
	for _, a := range r.auctions {
		if a.CategoryID == categoryID {
			return fmt.Errorf("delete category %s: %w", categoryID, auctionerrors.ErrCategoryInUse)
		}
	}
	delete(r.categories, categoryID)
	return nil
}

// nameTaken must be called with the lock held
func (r *MemoryRepo) nameTaken(name, exceptID string) bool {
	for id, c := range r.categories {
		if id != exceptID && c.Name == name {
			return true
		}
	}
	return false
}

// CreateAuction stores a new auction
func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[auction.CategoryID]; !ok {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, auctionerrors.ErrCategoryMissing)
	}
	r.auctions[auction.AuctionID] = auction
	return nil
}

// GetAuction returns an auction by id
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

// UpdateAuction replaces an existing auction
func (r *MemoryRepo) UpdateAuction(_ context.Context, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auction.AuctionID]; !ok {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if _, ok := r.categories[auction.CategoryID]; !ok {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, auctionerrors.ErrCategoryMissing)
	}
	r.auctions[auction.AuctionID] = auction
	return nil
}

// DeleteAuction removes the auction and every dependent record under one lock
func (r *MemoryRepo) DeleteAuction(_ context.Context, auctionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return fmt.Errorf("delete auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	delete(r.auctions, auctionID)
	delete(r.bids, auctionID)
	delete(r.comments, auctionID)
	for key := range r.ratings {
		if key.auctionID == auctionID {
			delete(r.ratings, key)
		}
	}
	return nil
}

// ListAuctions returns auctions matching the query in the requested order
func (r *MemoryRepo) ListAuctions(_ context.Context, query model.AuctionQuery) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		if query.Matches(a) {
			out = append(out, a)
		}
	}
	model.SortAuctions(out, query.OrderBy)
	return out, nil
}

// GetWinningBid returns the most recently accepted bid for an auction
func (r *MemoryRepo) GetWinningBid(_ context.Context, auctionID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := r.bids[auctionID]
	if len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return bids[len(bids)-1], nil
}

// AppendBid records a bid if the winning bid is still expectedTopID
func (r *MemoryRepo) AppendBid(_ context.Context, bid model.Bid, expectedTopID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[bid.AuctionID]; !ok {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	bids := r.bids[bid.AuctionID]
	if topID(bids) != expectedTopID {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrBidConflict)
	}
	r.bids[bid.AuctionID] = append(bids, bid)
	return nil
}

// ReplaceTopBid overwrites the winning bid in place if it is still the winning bid
func (r *MemoryRepo) ReplaceTopBid(_ context.Context, bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bids := r.bids[bid.AuctionID]
	if topID(bids) != bid.BidID {
		return fmt.Errorf("replace bid %s: %w", bid.BidID, auctionerrors.ErrBidConflict)
	}
	updated := append([]model.Bid(nil), bids...)
	updated[len(updated)-1] = bid
	r.bids[bid.AuctionID] = updated
	return nil
}

// GetBid returns one bid of an auction
func (r *MemoryRepo) GetBid(_ context.Context, auctionID, bidID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bids[auctionID] {
		if b.BidID == bidID {
			return b, nil
		}
	}
	return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
}

// DeleteBid removes one bid of an auction
func (r *MemoryRepo) DeleteBid(_ context.Context, auctionID, bidID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bids := r.bids[auctionID]
	for i, b := range bids {
		if b.BidID == bidID {
			remaining := make([]model.Bid, 0, len(bids)-1)
			remaining = append(remaining, bids[:i]...)
			remaining = append(remaining, bids[i+1:]...)
			r.bids[auctionID] = remaining
			return nil
		}
	}
	return fmt.Errorf("delete bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
}

// GetBidsByAuction returns all bids for an auction, highest price first
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	bids := append([]model.Bid{}, r.bids[auctionID]...)
	model.SortBidsByPriceDesc(bids)
	return bids, nil
}

// GetBidsByBidder returns every bid placed by a user, newest first
func (r *MemoryRepo) GetBidsByBidder(_ context.Context, bidder model.UserRef) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Bid{}
	for _, bids := range r.bids {
		for _, b := range bids {
			if b.Bidder == bidder {
				out = append(out, b)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BidID > out[j].BidID })
	return out, nil
}

func topID(bids []model.Bid) string {
	if len(bids) == 0 {
		return ""
	}
	return bids[len(bids)-1].BidID
}

// UpsertRating inserts or overwrites the reviewer's rating for an auction
func (r *MemoryRepo) UpsertRating(_ context.Context, rating model.Rating) (model.Rating, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[rating.AuctionID]; !ok {
		return model.Rating{}, false, fmt.Errorf("upsert rating for auction %s: %w", rating.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	key := ratingKey{reviewer: rating.Reviewer, auctionID: rating.AuctionID}
	if existing, ok := r.ratings[key]; ok {
		existing.Score = rating.Score
		r.ratings[key] = existing
		return existing, false, nil
	}
	r.ratings[key] = rating
	return rating, true, nil
}

// GetRating returns the reviewer's rating for an auction
func (r *MemoryRepo) GetRating(_ context.Context, reviewer model.UserRef, auctionID string) (model.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rating, ok := r.ratings[ratingKey{reviewer: reviewer, auctionID: auctionID}]
	if !ok {
		return model.Rating{}, fmt.Errorf("get rating of %s for auction %s: %w", reviewer, auctionID, auctionerrors.ErrRatingNotFound)
	}
	return rating, nil
}

// DeleteRating removes the reviewer's rating for an auction
func (r *MemoryRepo) DeleteRating(_ context.Context, reviewer model.UserRef, auctionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ratingKey{reviewer: reviewer, auctionID: auctionID}
	if _, ok := r.ratings[key]; !ok {
		return fmt.Errorf("delete rating of %s for auction %s: %w", reviewer, auctionID, auctionerrors.ErrRatingNotFound)
	}
	delete(r.ratings, key)
	return nil
}

// GetRatingsByAuction returns every rating of an auction
func (r *MemoryRepo) GetRatingsByAuction(_ context.Context, auctionID string) ([]model.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Rating{}
	for key, rating := range r.ratings {
		if key.auctionID == auctionID {
			out = append(out, rating)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RatingID < out[j].RatingID })
	return out, nil
}

// GetRatingsByReviewer returns every rating a user has given
func (r *MemoryRepo) GetRatingsByReviewer(_ context.Context, reviewer model.UserRef) ([]model.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Rating{}
	for key, rating := range r.ratings {
		if key.reviewer == reviewer {
			out = append(out, rating)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RatingID < out[j].RatingID })
	return out, nil
}

// CreateComment appends a comment to an auction
func (r *MemoryRepo) CreateComment(_ context.Context, comment model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[comment.AuctionID]; !ok {
		return fmt.Errorf("create comment for auction %s: %w", comment.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	r.comments[comment.AuctionID] = append(r.comments[comment.AuctionID], comment)
	return nil
}

// GetComment returns one comment of an auction
func (r *MemoryRepo) GetComment(_ context.Context, auctionID, commentID string) (model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.comments[auctionID] {
		if c.CommentID == commentID {
			return c, nil
		}
	}
	return model.Comment{}, fmt.Errorf("get comment %s: %w", commentID, auctionerrors.ErrCommentNotFound)
}

// UpdateComment replaces an existing comment
func (r *MemoryRepo) UpdateComment(_ context.Context, comment model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	comments := r.comments[comment.AuctionID]
	for i, c := range comments {
		if c.CommentID == comment.CommentID {
			comments[i] = comment
			return nil
		}
	}
	return fmt.Errorf("update comment %s: %w", comment.CommentID, auctionerrors.ErrCommentNotFound)
}

// DeleteComment removes one comment of an auction
func (r *MemoryRepo) DeleteComment(_ context.Context, auctionID, commentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	comments := r.comments[auctionID]
	for i, c := range comments {
		if c.CommentID == commentID {
			r.comments[auctionID] = append(comments[:i:i], comments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete comment %s: %w", commentID, auctionerrors.ErrCommentNotFound)
}

// GetCommentsByAuction returns comments of an auction in creation order
func (r *MemoryRepo) GetCommentsByAuction(_ context.Context, auctionID string) ([]model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get comments for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return append([]model.Comment{}, r.comments[auctionID]...), nil
}

// GetCommentsByAuthor returns every comment written by a user, oldest first
func (r *MemoryRepo) GetCommentsByAuthor(_ context.Context, author model.UserRef) ([]model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Comment{}
	for _, comments := range r.comments {
		for _, c := range comments {
			if c.Author == author {
				out = append(out, c)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].CommentID, out[j].CommentID) < 0 })
	return out, nil
}

// AddAuction adds an auction without category checks. This method is intended for tests and seeding.
func (r *MemoryRepo) AddAuction(auction model.Auction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions[auction.AuctionID] = auction
}

// AddCategory adds a category without uniqueness checks. This method is intended for tests and seeding.
func (r *MemoryRepo) AddCategory(category model.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[category.CategoryID] = category
}
