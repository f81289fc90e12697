package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"

	"github.com/zasai/zas-translate/models"
)

type gormUsers struct {
	db    *gorm.DB
	cache *lru.Cache[uint, models.Users] // may be nil
}

// NewUserRepository returns a gorm backed repository. FindByID results are
// kept in cache when it is not nil.
func NewUserRepository(db *gorm.DB, cache *lru.Cache[uint, models.Users]) UserRepository {
	return &gormUsers{db: db, cache: cache}
}

func (r *gormUsers) Create(ctx context.Context, user *models.Users, profile *models.Profile) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Users{}).Where("email = ?", user.Email).Count(&n).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if n > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		profile.ID = user.ID
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		return nil
	})
}

func (r *gormUsers) FindByEmail(ctx context.Context, email string) (*models.Users, error) {
	var u models.Users
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *gormUsers) FindByID(ctx context.Context, id uint) (*models.Users, error) {
	if r.cache != nil {
		if u, ok := r.cache.Get(id); ok {
			return &u, nil
		}
	}
	var u models.Users
	err := r.db.WithContext(ctx).Select("id", "email", "role", "created_at").First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if r.cache != nil {
		r.cache.Add(id, u)
	}
	return &u, nil
}

func (r *gormUsers) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Users{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *gormUsers) SetRole(ctx context.Context, email, role string) error {
	res := r.db.WithContext(ctx).Model(&models.Users{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("set role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	if r.cache != nil {
		// cached entries carry the old role
		r.cache.Purge()
	}
	return nil
}
