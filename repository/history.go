package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/zasai/zas-translate/models"
)

type gormHistory struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &gormHistory{db: db}
}

func (r *gormHistory) Create(ctx context.Context, record *models.TranslationHistory, limit int) error {
	if len(record.TargetLangs) == 0 {
		return ErrEmptyTargets
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
		if limit <= 0 {
			return nil
		}

		var total int64
		if err := tx.Model(&models.TranslationHistory{}).
			Where("user_id = ?", record.UserID).
			Count(&total).Error; err != nil {
			return fmt.Errorf("count history: %w", err)
		}
		extra := int(total) - limit
		if extra <= 0 {
			return nil
		}

		var oldIDs []string
		if err := tx.Model(&models.TranslationHistory{}).
			Where("user_id = ?", record.UserID).
			Order("created_at DESC, id DESC").
			Offset(limit).
			Limit(extra).
			Pluck("id", &oldIDs).Error; err != nil {
			return fmt.Errorf("select overflow history: %w", err)
		}
		if len(oldIDs) == 0 {
			return nil
		}
		if err := tx.Where("id IN ?", oldIDs).Delete(&models.TranslationHistory{}).Error; err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
		return nil
	})
}

func (r *gormHistory) List(ctx context.Context, userID uint, page Page) ([]models.TranslationHistory, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.TranslationHistory{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}

	q := db.Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if page.Size > 0 {
		number := page.Number
		if number < 1 {
			number = 1
		}
		q = q.Limit(page.Size).Offset((number - 1) * page.Size)
	}
	histories := make([]models.TranslationHistory, 0)
	if err := q.Find(&histories).Error; err != nil {
		return nil, 0, fmt.Errorf("list history: %w", err)
	}
	return histories, total, nil
}

func (r *gormHistory) Get(ctx context.Context, userID uint, id string) (*models.TranslationHistory, error) {
	var h models.TranslationHistory
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return &h, nil
}

func (r *gormHistory) Delete(ctx context.Context, userID uint, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.TranslationHistory{})
	if res.Error != nil {
		return fmt.Errorf("delete history: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormHistory) Clear(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.TranslationHistory{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear history: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *gormHistory) All(ctx context.Context) ([]models.TranslationHistory, error) {
	histories := make([]models.TranslationHistory, 0)
	if err := r.db.WithContext(ctx).Select("id", "user_id", "source_lang", "target_langs", "created_at").
		Find(&histories).Error; err != nil {
		return nil, fmt.Errorf("list all history: %w", err)
	}
	return histories, nil
}
