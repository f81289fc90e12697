// Package repository is the data-access layer. Handlers depend on the
// interfaces below, never on gorm directly.
package repository

import (
	"context"
	"errors"

	"github.com/zasai/zas-translate/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrEmptyTargets = errors.New("target language list is empty")
)

type UserRepository interface {
	// Create inserts the user and its profile in one transaction.
	Create(ctx context.Context, user *models.Users, profile *models.Profile) error
	FindByEmail(ctx context.Context, email string) (*models.Users, error)
	FindByID(ctx context.Context, id uint) (*models.Users, error)
	Count(ctx context.Context) (int64, error)
	// SetRole changes the role of the user with email; ErrNotFound when no user matched.
	SetRole(ctx context.Context, email, role string) error
}

type ProfileRepository interface {
	Get(ctx context.Context, userID uint) (*models.Profile, error)
	Update(ctx context.Context, userID uint, fields ProfileUpdate) (*models.Profile, error)
}

// ProfileUpdate lists the editable profile columns.
type ProfileUpdate struct {
	Username  string
	FullName  string
	AvatarURL string
}

// Page restricts a listing; Size 0 means no limit.
type Page struct {
	Number int
	Size   int
}

type HistoryRepository interface {
	// Create stores the record and, when limit > 0, trims the user's oldest
	// records beyond limit in the same transaction.
	Create(ctx context.Context, record *models.TranslationHistory, limit int) error
	// List returns the user's records, newest first.
	List(ctx context.Context, userID uint, page Page) ([]models.TranslationHistory, int64, error)
	Get(ctx context.Context, userID uint, id string) (*models.TranslationHistory, error)
	// Delete removes one record owned by userID; ErrNotFound when nothing matched.
	Delete(ctx context.Context, userID uint, id string) error
	Clear(ctx context.Context, userID uint) (int64, error)
	// All returns every record of every user, for the admin overview.
	All(ctx context.Context) ([]models.TranslationHistory, error)
}
