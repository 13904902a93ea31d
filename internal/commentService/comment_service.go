package comment

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/authz"
	"auction-marketplace/internal/lifecycle"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"
)

// MaxTitleLength is counted in characters, not bytes
const MaxTitleLength = 100

// CommentService is the discussion thread of each auction
type CommentService struct {
	repo repository.CommentDB
	gate *authz.Gate
}

// NewCommentService creates a new CommentService instance
func NewCommentService(repo repository.CommentDB, gate *authz.Gate) *CommentService {
	return &CommentService{repo: repo, gate: gate}
}

// PostComment appends a comment to an open auction
func (s *CommentService) PostComment(ctx context.Context, rc models.RequestContext, auctionID, title, content string) (models.Comment, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionCreate, authz.Resource{Kind: authz.KindComment}); err != nil {
		return models.Comment{}, fmt.Errorf("service: %w", err)
	}

	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Comment{}, auctionerrors.StoreError("service: get auction "+auctionID, "auction", auctionID, err)
	}
	if lifecycle.DeriveStatus(auction, rc.Now) != lifecycle.Open {
		return models.Comment{}, fmt.Errorf("service: %w",
			auctionerrors.Invalid("auction", auctionerrors.CodeAuctionClosed, auctionerrors.ErrAuctionClosed))
	}
	if err := ValidateContent(title, content); err != nil {
		return models.Comment{}, err
	}

	now := rc.Now.UTC()
	comment := models.Comment{
		CommentID:      utils.GenerateID(),
		AuctionID:      auction.AuctionID,
		Author:         rc.Caller.ID,
		Title:          title,
		Content:        content,
		CreationDate:   now,
		LastUpdateDate: now,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return models.Comment{}, auctionerrors.StoreError("service: create comment", "auction", auctionID, err)
	}
	return comment, nil
}

// GetComment returns one comment. Comments are public.
func (s *CommentService) GetComment(ctx context.Context, rc models.RequestContext, auctionID, commentID string) (models.Comment, error) {
	comment, err := s.repo.GetComment(ctx, auctionID, commentID)
	if err != nil {
		return models.Comment{}, auctionerrors.StoreError("service: get comment", "comment", commentID, err)
	}
	if err := s.gate.Require(rc.Caller, authz.ActionRead, commentResource(comment)); err != nil {
		return models.Comment{}, fmt.Errorf("service: %w", err)
	}
	return comment, nil
}

// ListComments returns the thread of an auction in posting order
func (s *CommentService) ListComments(ctx context.Context, rc models.RequestContext, auctionID string) ([]models.Comment, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionList, authz.Resource{Kind: authz.KindComment}); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	comments, err := s.repo.GetCommentsByAuction(ctx, auctionID)
	if err != nil {
		return nil, auctionerrors.StoreError("service: get comments for auction "+auctionID, "auction", auctionID, err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// UpdateComment replaces title and content. Only the author or an administrator may do this.
func (s *CommentService) UpdateComment(ctx context.Context, rc models.RequestContext, auctionID, commentID, title, content string) (models.Comment, error) {
	comment, err := s.repo.GetComment(ctx, auctionID, commentID)
	if err != nil {
		return models.Comment{}, auctionerrors.StoreError("service: get comment", "comment", commentID, err)
	}
	if err := s.gate.Require(rc.Caller, authz.ActionUpdate, commentResource(comment)); err != nil {
		return models.Comment{}, fmt.Errorf("service: %w", err)
	}
	if err := ValidateContent(title, content); err != nil {
		return models.Comment{}, err
	}

	comment.Title = title
	comment.Content = content
	comment.LastUpdateDate = rc.Now.UTC()
	if err := s.repo.UpdateComment(ctx, comment); err != nil {
		return models.Comment{}, auctionerrors.StoreError("service: update comment", "comment", commentID, err)
	}
	return comment, nil
}

// DeleteComment removes a comment. Only the author or an administrator may do this.
func (s *CommentService) DeleteComment(ctx context.Context, rc models.RequestContext, auctionID, commentID string) error {
	comment, err := s.repo.GetComment(ctx, auctionID, commentID)
	if err != nil {
		return auctionerrors.StoreError("service: get comment", "comment", commentID, err)
	}
	if err := s.gate.Require(rc.Caller, authz.ActionDelete, commentResource(comment)); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if err := s.repo.DeleteComment(ctx, auctionID, commentID); err != nil {
		return auctionerrors.StoreError("service: delete comment", "comment", commentID, err)
	}
	return nil
}

// GetCallerComments returns every comment the caller wrote
func (s *CommentService) GetCallerComments(ctx context.Context, rc models.RequestContext) ([]models.Comment, error) {
	if err := s.gate.Require(rc.Caller, authz.ActionListOwn, authz.Resource{Kind: authz.KindComment}); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	comments, err := s.repo.GetCommentsByAuthor(ctx, rc.Caller.ID)
	if err != nil {
		return nil, auctionerrors.StoreError("service: get comments by author", "user", string(rc.Caller.ID), err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// ValidateContent checks the title length and that both title and content are present
func ValidateContent(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("service: %w", auctionerrors.Invalidf("title", auctionerrors.CodeInvalidField,
			auctionerrors.ErrInvalidField, "title is required"))
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return fmt.Errorf("service: %w", auctionerrors.Invalidf("title", auctionerrors.CodeTitleTooLong,
			auctionerrors.ErrTitleTooLong, "title must have at most %d characters, got %d", MaxTitleLength, n))
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("service: %w", auctionerrors.Invalid("content", auctionerrors.CodeInvalidField,
			auctionerrors.ErrCommentContentRequired))
	}
	return nil
}

func commentResource(c models.Comment) authz.Resource {
	return authz.Resource{Kind: authz.KindComment, ID: c.CommentID, Owner: c.Author}
}
