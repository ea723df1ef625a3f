package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/syriashof/shof/internal/models"
	apperrors "github.com/syriashof/shof/pkg/errors"
)

const maxCommentLength = 1000

// CommentService handles viewer discussion threads under movies.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService constructs the comment manager.
func NewCommentService(db *gorm.DB) (*CommentService, error) {
	if db == nil {
		return nil, errors.New("comment service: db is required")
	}
	return &CommentService{db: db}, nil
}

// ListForMovie returns every comment on a movie, newest first.
func (s *CommentService) ListForMovie(ctx context.Context, movieID string) ([]models.Comment, error) {
	ctx = ensureContext(ctx)

	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("movie_id = ?", movieID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("comment service: list comments: %w", err)
	}
	return comments, nil
}

// Add posts a comment, optionally as a reply to another comment on the
// same movie.
func (s *CommentService) Add(ctx context.Context, user *models.User, movieID, content string, parentID *string) (*models.Comment, error) {
	ctx = ensureContext(ctx)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewBadRequest("Comment cannot be empty")
	}
	if len(content) > maxCommentLength {
		return nil, apperrors.NewBadRequest("Comment is too long")
	}

	var movie models.Movie
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", movieID, models.MovieStatusActive).
		Take(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound.WithMessage("Movie not found")
	}
	if err != nil {
		return nil, fmt.Errorf("comment service: find movie: %w", err)
	}

	if parentID != nil && *parentID != "" {
		var parent models.Comment
		err := s.db.WithContext(ctx).
			Where("id = ? AND movie_id = ?", *parentID, movieID).
			Take(&parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Parent comment not found")
		}
		if err != nil {
			return nil, fmt.Errorf("comment service: find parent: %w", err)
		}
	} else {
		parentID = nil
	}

	comment := &models.Comment{
		MovieID:  movieID,
		UserID:   user.ID,
		ParentID: parentID,
		UserName: user.DisplayName,
		Content:  content,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("comment service: create comment: %w", err)
	}
	return comment, nil
}

// Delete removes a comment and its replies. Only the author or an
// admin may delete.
func (s *CommentService) Delete(ctx context.Context, user *models.User, commentID string) error {
	ctx = ensureContext(ctx)

	var comment models.Comment
	err := s.db.WithContext(ctx).Where("id = ?", commentID).Take(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound.WithMessage("Comment not found")
	}
	if err != nil {
		return fmt.Errorf("comment service: find comment: %w", err)
	}

	if comment.UserID != user.ID && !user.IsAdmin {
		return apperrors.ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", comment.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
}

// Like bumps a comment's like counter.
func (s *CommentService) Like(ctx context.Context, commentID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", commentID).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if result.Error != nil {
		return fmt.Errorf("comment service: like comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound.WithMessage("Comment not found")
	}
	return nil
}
