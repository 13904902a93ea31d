package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Supported relational drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// GormRepo implements CatalogStore using GORM over Postgres or MySQL
type GormRepo struct {
	db *gorm.DB
}

// NewGormRepo opens the DB and runs auto-migrations
func NewGormRepo(driver, dsn string) (*GormRepo, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("open db: unsupported driver %q", driver)
	}

	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&CategoryModel{}, &AuctionModel{}, &BidModel{}, &RatingModel{}, &CommentModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormRepo{db: db}, nil
}

// Close releases the underlying connection pool
func (s *GormRepo) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// CreateCategory stores a category with a unique name
func (s *GormRepo) CreateCategory(ctx context.Context, category model.Category) error {
	m := categoryToModel(category)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create category %q: %w", category.Name, auctionerrors.ErrDuplicateName)
		}
		return fmt.Errorf("create category %q: %w", category.Name, err)
	}
	return nil
}

// GetCategory returns a category by id
func (s *GormRepo) GetCategory(ctx context.Context, categoryID string) (model.Category, error) {
	var m CategoryModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", categoryID).Error; err != nil {
		return model.Category{}, fmt.Errorf("get category %s: %w", categoryID, notFound(err, auctionerrors.ErrCategoryMissing))
	}
	return categoryFromModel(m), nil
}

// GetCategoryByName returns the category with exactly this name
func (s *GormRepo) GetCategoryByName(ctx context.Context, name string) (model.Category, error) {
	var m CategoryModel
	if err := s.db.WithContext(ctx).First(&m, "name = ?", name).Error; err != nil {
		return model.Category{}, fmt.Errorf("get category named %q: %w", name, notFound(err, auctionerrors.ErrCategoryMissing))
	}
	return categoryFromModel(m), nil
}

// ListCategories returns categories by ascending id
func (s *GormRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	var models []CategoryModel
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]model.Category, 0, len(models))
	for _, m := range models {
		out = append(out, categoryFromModel(m))
	}
	return out, nil
}

// UpdateCategory renames a category
func (s *GormRepo) UpdateCategory(ctx context.Context, category model.Category) error {
	res := s.db.WithContext(ctx).Model(&CategoryModel{}).Where("id = ?", category.CategoryID).Update("name", category.Name)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("update category %q: %w", category.Name, auctionerrors.ErrDuplicateName)
		}
		return fmt.Errorf("update category %s: %w", category.CategoryID, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetCategory(ctx, category.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteCategory removes a category that no auction references
func (s *GormRepo) DeleteCategory(ctx context.Context, categoryID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&AuctionModel{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
			return fmt.Errorf("delete category %s: %w", categoryID, err)
		}
		if count > 0 {
			return fmt.Errorf("delete category %s: %w", categoryID, auctionerrors.ErrCategoryInUse)
		}
		res := tx.Delete(&CategoryModel{}, "id = ?", categoryID)
		if res.Error != nil {
			return fmt.Errorf("delete category %s: %w", categoryID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete category %s: %w", categoryID, auctionerrors.ErrCategoryMissing)
		}
		return nil
	})
}

// CreateAuction stores a new auction
func (s *GormRepo) CreateAuction(ctx context.Context, auction model.Auction) error {
	m := auctionToModel(auction)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("create auction %s: %w", auction.AuctionID, auctionerrors.ErrCategoryMissing)
		}
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, err)
	}
	return nil
}

// GetAuction returns an auction by id
func (s *GormRepo) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	var m AuctionModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", auctionID).Error; err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, notFound(err, auctionerrors.ErrAuctionNotFound))
	}
	return auctionFromModel(m), nil
}

// UpdateAuction replaces the mutable columns of an auction
func (s *GormRepo) UpdateAuction(ctx context.Context, auction model.Auction) error {
	m := auctionToModel(auction)
	res := s.db.WithContext(ctx).Model(&AuctionModel{}).Where("id = ?", auction.AuctionID).
		Select("title", "description", "closing_date", "thumbnail", "price", "stock", "category_id", "brand").
		Updates(&m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("update auction %s: %w", auction.AuctionID, auctionerrors.ErrCategoryMissing)
		}
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetAuction(ctx, auction.AuctionID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAuction removes the auction and its dependents in one transaction
func (s *GormRepo) DeleteAuction(ctx context.Context, auctionID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []any{&BidModel{}, &RatingModel{}, &CommentModel{}} {
			if err := tx.Where("auction_id = ?", auctionID).Delete(dependent).Error; err != nil {
				return fmt.Errorf("delete auction %s dependents: %w", auctionID, err)
			}
		}
		res := tx.Delete(&AuctionModel{}, "id = ?", auctionID)
		if res.Error != nil {
			return fmt.Errorf("delete auction %s: %w", auctionID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
		}
		return nil
	})
}

var auctionOrderColumns = map[string]string{
	model.OrderByIDAsc:           "id ASC",
	model.OrderByIDDesc:          "id DESC",
	model.OrderByPriceAsc:        "price ASC, id ASC",
	model.OrderByPriceDesc:       "price DESC, id ASC",
	model.OrderByClosingDateAsc:  "closing_date ASC, id ASC",
	model.OrderByClosingDateDesc: "closing_date DESC, id ASC",
}

// escapeLike escapes LIKE wildcards with the default backslash escape of postgres and mysql
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListAuctions returns auctions matching the query in the requested order
func (s *GormRepo) ListAuctions(ctx context.Context, query model.AuctionQuery) ([]model.Auction, error) {
	q := s.db.WithContext(ctx).Model(&AuctionModel{})
	if query.Text != nil {
		pattern := "%" + escapeLike(strings.ToLower(*query.Text)) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if query.CategoryID != nil {
		q = q.Where("category_id = ?", *query.CategoryID)
	}
	if query.MinPrice != nil {
		q = q.Where("price >= ?", *query.MinPrice)
	}
	if query.MaxPrice != nil {
		q = q.Where("price <= ?", *query.MaxPrice)
	}
	if query.Auctioneer != nil {
		q = q.Where("auctioneer = ?", string(*query.Auctioneer))
	}
	order, ok := auctionOrderColumns[query.OrderBy]
	if !ok {
		order = auctionOrderColumns[model.OrderByIDAsc]
	}

	var models []AuctionModel
	if err := q.Order(order).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	out := make([]model.Auction, 0, len(models))
	for _, m := range models {
		out = append(out, auctionFromModel(m))
	}
	return out, nil
}

func winningBid(tx *gorm.DB, auctionID string) (BidModel, bool, error) {
	var models []BidModel
	if err := tx.Where("auction_id = ?", auctionID).Order("price DESC, id DESC").Limit(1).Find(&models).Error; err != nil {
		return BidModel{}, false, err
	}
	if len(models) == 0 {
		return BidModel{}, false, nil
	}
	return models[0], true, nil
}

// lockAuction takes a row lock on the auction so bid writers on the same auction serialize
func lockAuction(tx *gorm.DB, auctionID string) error {
	var m AuctionModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&m, "id = ?", auctionID).Error
	return notFound(err, auctionerrors.ErrAuctionNotFound)
}

// GetWinningBid returns the highest accepted bid for an auction
func (s *GormRepo) GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error) {
	m, ok, err := winningBid(s.db.WithContext(ctx), auctionID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, err)
	}
	if !ok {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return bidFromModel(m), nil
}

// AppendBid records a bid if the winning bid is still expectedTopID
func (s *GormRepo) AppendBid(ctx context.Context, bid model.Bid, expectedTopID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAuction(tx, bid.AuctionID); err != nil {
			return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, err)
		}
		top, ok, err := winningBid(tx, bid.AuctionID)
		if err != nil {
			return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, err)
		}
		current := ""
		if ok {
			current = top.ID
		}
		if current != expectedTopID {
			return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrBidConflict)
		}
		m := bidToModel(bid)
		if err := tx.Omit(clause.Associations).Create(&m).Error; err != nil {
			return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, err)
		}
		return nil
	})
}

// ReplaceTopBid overwrites the winning bid if it is still the winning bid
func (s *GormRepo) ReplaceTopBid(ctx context.Context, bid model.Bid) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAuction(tx, bid.AuctionID); err != nil {
			return fmt.Errorf("replace bid %s: %w", bid.BidID, err)
		}
		top, ok, err := winningBid(tx, bid.AuctionID)
		if err != nil {
			return fmt.Errorf("replace bid %s: %w", bid.BidID, err)
		}
		if !ok || top.ID != bid.BidID {
			return fmt.Errorf("replace bid %s: %w", bid.BidID, auctionerrors.ErrBidConflict)
		}
		if err := tx.Model(&BidModel{}).Where("id = ?", bid.BidID).Update("price", bid.Price).Error; err != nil {
			return fmt.Errorf("replace bid %s: %w", bid.BidID, err)
		}
		return nil
	})
}

// GetBid returns one bid of an auction
func (s *GormRepo) GetBid(ctx context.Context, auctionID, bidID string) (model.Bid, error) {
	var m BidModel
	if err := s.db.WithContext(ctx).First(&m, "auction_id = ? AND id = ?", auctionID, bidID).Error; err != nil {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, notFound(err, auctionerrors.ErrBidNotFound))
	}
	return bidFromModel(m), nil
}

// DeleteBid removes one bid of an auction
func (s *GormRepo) DeleteBid(ctx context.Context, auctionID, bidID string) error {
	res := s.db.WithContext(ctx).Delete(&BidModel{}, "auction_id = ? AND id = ?", auctionID, bidID)
	if res.Error != nil {
		return fmt.Errorf("delete bid %s: %w", bidID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	return nil
}

// GetBidsByAuction returns all bids for an auction, highest price first
func (s *GormRepo) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	if _, err := s.GetAuction(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	var models []BidModel
	if err := s.db.WithContext(ctx).Where("auction_id = ?", auctionID).Order("price DESC, id DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	out := make([]model.Bid, 0, len(models))
	for _, m := range models {
		out = append(out, bidFromModel(m))
	}
	return out, nil
}

// GetBidsByBidder returns every bid placed by a user, newest first
func (s *GormRepo) GetBidsByBidder(ctx context.Context, bidder model.UserRef) ([]model.Bid, error) {
	var models []BidModel
	if err := s.db.WithContext(ctx).Where("bidder = ?", string(bidder)).Order("id DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("get bids for bidder %s: %w", bidder, err)
	}
	out := make([]model.Bid, 0, len(models))
	for _, m := range models {
		out = append(out, bidFromModel(m))
	}
	return out, nil
}

// UpsertRating inserts or overwrites the reviewer's rating, relying on the unique (reviewer, auction) index
func (s *GormRepo) UpsertRating(ctx context.Context, rating model.Rating) (model.Rating, bool, error) {
	var (
		stored  RatingModel
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.getAuctionTx(tx, rating.AuctionID); err != nil {
			return err
		}
		var existing RatingModel
		err := tx.Where("reviewer = ? AND auction_id = ?", string(rating.Reviewer), rating.AuctionID).First(&existing).Error
		created = errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !created {
			return err
		}

		if !created {
			if err := tx.Model(&RatingModel{}).Where("id = ?", existing.ID).Update("score", rating.Score).Error; err != nil {
				return err
			}
			return tx.First(&stored, "id = ?", existing.ID).Error
		}

		// a concurrent insert for the same key turns into an update here
		m := ratingToModel(rating)
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reviewer"}, {Name: "auction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score"}),
		}).Create(&m).Error; err != nil {
			return err
		}
		return tx.Where("reviewer = ? AND auction_id = ?", string(rating.Reviewer), rating.AuctionID).First(&stored).Error
	})
	if err != nil {
		return model.Rating{}, false, fmt.Errorf("upsert rating for auction %s: %w", rating.AuctionID, err)
	}
	return ratingFromModel(stored), created, nil
}

func (s *GormRepo) getAuctionTx(tx *gorm.DB, auctionID string) (AuctionModel, error) {
	var m AuctionModel
	err := tx.First(&m, "id = ?", auctionID).Error
	return m, notFound(err, auctionerrors.ErrAuctionNotFound)
}

// GetRating returns the reviewer's rating for an auction
func (s *GormRepo) GetRating(ctx context.Context, reviewer model.UserRef, auctionID string) (model.Rating, error) {
	var m RatingModel
	if err := s.db.WithContext(ctx).First(&m, "reviewer = ? AND auction_id = ?", string(reviewer), auctionID).Error; err != nil {
		return model.Rating{}, fmt.Errorf("get rating of %s for auction %s: %w", reviewer, auctionID, notFound(err, auctionerrors.ErrRatingNotFound))
	}
	return ratingFromModel(m), nil
}

// DeleteRating removes the reviewer's rating for an auction
func (s *GormRepo) DeleteRating(ctx context.Context, reviewer model.UserRef, auctionID string) error {
	res := s.db.WithContext(ctx).Delete(&RatingModel{}, "reviewer = ? AND auction_id = ?", string(reviewer), auctionID)
	if res.Error != nil {
		return fmt.Errorf("delete rating of %s for auction %s: %w", reviewer, auctionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete rating of %s for auction %s: %w", reviewer, auctionID, auctionerrors.ErrRatingNotFound)
	}
	return nil
}

func (s *GormRepo) findRatings(ctx context.Context, column, value string) ([]model.Rating, error) {
	var models []RatingModel
	if err := s.db.WithContext(ctx).Where(column+" = ?", value).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("get ratings by %s: %w", column, err)
	}
	out := make([]model.Rating, 0, len(models))
	for _, m := range models {
		out = append(out, ratingFromModel(m))
	}
	return out, nil
}

// GetRatingsByAuction returns every rating of an auction
func (s *GormRepo) GetRatingsByAuction(ctx context.Context, auctionID string) ([]model.Rating, error) {
	return s.findRatings(ctx, "auction_id", auctionID)
}

// GetRatingsByReviewer returns every rating a user has given
func (s *GormRepo) GetRatingsByReviewer(ctx context.Context, reviewer model.UserRef) ([]model.Rating, error) {
	return s.findRatings(ctx, "reviewer", string(reviewer))
}

// CreateComment appends a comment to an auction
func (s *GormRepo) CreateComment(ctx context.Context, comment model.Comment) error {
	m := commentToModel(comment)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("create comment for auction %s: %w", comment.AuctionID, auctionerrors.ErrAuctionNotFound)
		}
		return fmt.Errorf("create comment for auction %s: %w", comment.AuctionID, err)
	}
	return nil
}

// GetComment returns one comment of an auction
func (s *GormRepo) GetComment(ctx context.Context, auctionID, commentID string) (model.Comment, error) {
	var m CommentModel
	if err := s.db.WithContext(ctx).First(&m, "auction_id = ? AND id = ?", auctionID, commentID).Error; err != nil {
		return model.Comment{}, fmt.Errorf("get comment %s: %w", commentID, notFound(err, auctionerrors.ErrCommentNotFound))
	}
	return commentFromModel(m), nil
}

// UpdateComment replaces title, content and last update date of a comment
func (s *GormRepo) UpdateComment(ctx context.Context, comment model.Comment) error {
	res := s.db.WithContext(ctx).Model(&CommentModel{}).
		Where("auction_id = ? AND id = ?", comment.AuctionID, comment.CommentID).
		Updates(map[string]any{
			"title":            comment.Title,
			"content":          comment.Content,
			"last_update_date": comment.LastUpdateDate.UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("update comment %s: %w", comment.CommentID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update comment %s: %w", comment.CommentID, auctionerrors.ErrCommentNotFound)
	}
	return nil
}

// DeleteComment removes one comment of an auction
func (s *GormRepo) DeleteComment(ctx context.Context, auctionID, commentID string) error {
	res := s.db.WithContext(ctx).Delete(&CommentModel{}, "auction_id = ? AND id = ?", auctionID, commentID)
	if res.Error != nil {
		return fmt.Errorf("delete comment %s: %w", commentID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete comment %s: %w", commentID, auctionerrors.ErrCommentNotFound)
	}
	return nil
}

// GetCommentsByAuction returns comments of an auction in creation order
func (s *GormRepo) GetCommentsByAuction(ctx context.Context, auctionID string) ([]model.Comment, error) {
	if _, err := s.GetAuction(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("get comments for auction %s: %w", auctionID, err)
	}
	return s.findComments(ctx, "auction_id", auctionID)
}

// GetCommentsByAuthor returns every comment written by a user, oldest first
func (s *GormRepo) GetCommentsByAuthor(ctx context.Context, author model.UserRef) ([]model.Comment, error) {
	return s.findComments(ctx, "author", string(author))
}

func (s *GormRepo) findComments(ctx context.Context, column, value string) ([]model.Comment, error) {
	var models []CommentModel
	if err := s.db.WithContext(ctx).Where(column+" = ?", value).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("get comments by %s: %w", column, err)
	}
	out := make([]model.Comment, 0, len(models))
	for _, m := range models {
		out = append(out, commentFromModel(m))
	}
	return out, nil
}
