package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/zasai/zas-translate/models"
)

type gormProfiles struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &gormProfiles{db: db}
}

func (r *gormProfiles) Get(ctx context.Context, userID uint) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).First(&p, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *gormProfiles) Update(ctx context.Context, userID uint, fields ProfileUpdate) (*models.Profile, error) {
	if _, err := r.Get(ctx, userID); err != nil {
		return nil, err
	}
	// map form so that empty strings are written too
	err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"username":   fields.Username,
		"full_name":  fields.FullName,
		"avatar_url": fields.AvatarURL,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return r.Get(ctx, userID)
}
