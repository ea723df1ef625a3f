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

// UserFilter narrows admin user listings.
type UserFilter struct {
	Search string
	Banned *bool
	Limit  int
	Offset int
}

// UserService covers the admin-side account operations: listing,
// banning, unbanning, and deletion.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs the account manager.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// Get loads one account.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound.WithMessage("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find user: %w", err)
	}
	return &user, nil
}

// List returns accounts matching the filter, newest first.
func (s *UserService) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.User{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("email LIKE ? OR display_name LIKE ?", like, like)
	}
	if filter.Banned != nil {
		query = query.Where("banned = ?", *filter.Banned)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count users: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var users []models.User
	err := query.Order("created_at DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("user service: list users: %w", err)
	}
	return users, total, nil
}

// Ban flags an account and revokes its sessions so the ban takes
// effect immediately. Admin accounts cannot be banned.
func (s *UserService) Ban(ctx context.Context, userID, reason string) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin {
		return nil, apperrors.ErrForbidden.WithMessage("Cannot ban an admin account")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"banned":     true,
				"ban_reason": strings.TrimSpace(reason),
			}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("user service: ban user: %w", err)
	}

	user.Banned = true
	user.BanReason = strings.TrimSpace(reason)
	return user, nil
}

// Unban clears the ban flag.
func (s *UserService) Unban(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"banned":     false,
			"ban_reason": "",
		}).Error
	if err != nil {
		return nil, fmt.Errorf("user service: unban user: %w", err)
	}

	user.Banned = false
	user.BanReason = ""
	return user, nil
}

// Delete removes an account and everything it owns. Admin accounts
// cannot be deleted through this path.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)

	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return apperrors.ErrForbidden.WithMessage("Cannot delete an admin account")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, owned := range []any{
			&models.Session{}, &models.PasswordReset{},
			&models.Rating{}, &models.Comment{},
			&models.WatchlistItem{}, &models.WatchHistory{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(owned).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", userID).Delete(&models.User{}).Error
	})
}
