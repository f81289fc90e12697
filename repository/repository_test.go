package repository

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/zasai/zas-translate/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Users{}, &models.Profile{}, &models.TranslationHistory{}))
	return db
}

func createUser(t *testing.T, repo UserRepository, email string) *models.Users {
	t.Helper()
	u := &models.Users{Email: email, Password: "hash"}
	require.NoError(t, repo.Create(context.Background(), u, &models.Profile{Username: "u"}))
	return u
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	cache, err := lru.New[uint, models.Users](8)
	require.NoError(t, err)
	users := NewUserRepository(db, cache)
	profiles := NewProfileRepository(db)
	ctx := context.Background()

	u := &models.Users{Email: "  Alice@Example.com ", Password: "hash"}
	require.NoError(t, users.Create(ctx, u, &models.Profile{Username: "alice", FullName: "Alice A"}))
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)

	p, err := profiles.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)

	byEmail, err := users.FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.True(t, cache.Contains(u.ID))

	err = users.Create(ctx, &models.Users{Email: "alice@example.com", Password: "x"}, &models.Profile{})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = users.FindByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, users.SetRole(ctx, "Alice@Example.com", models.RoleAdmin))
	assert.False(t, cache.Contains(u.ID))
	byID, err = users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, byID.Role)
	assert.ErrorIs(t, users.SetRole(ctx, "nobody@example.com", models.RoleAdmin), ErrNotFound)
}

func TestProfileRepository_Update(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, NewUserRepository(db, nil), "bob@example.com")
	profiles := NewProfileRepository(db)
	ctx := context.Background()

	p, err := profiles.Update(ctx, u.ID, ProfileUpdate{Username: "bobby", FullName: "Bob B", AvatarURL: "https://a/b.png"})
	require.NoError(t, err)
	assert.Equal(t, "bobby", p.Username)
	assert.Equal(t, "Bob B", p.FullName)
	assert.Equal(t, "https://a/b.png", p.AvatarURL)

	p, err = profiles.Update(ctx, u.ID, ProfileUpdate{Username: "bobby"})
	require.NoError(t, err)
	assert.Empty(t, p.FullName)

	_, err = profiles.Update(ctx, 4242, ProfileUpdate{Username: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryRepository_ListOrderedAndScoped(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db, nil)
	alice := createUser(t, users, "alice@example.com")
	bob := createUser(t, users, "bob@example.com")
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, targets := range [][]string{{"ar"}, {"fr", "de"}, {"ja"}} {
		rec := &models.TranslationHistory{
			UserID: alice.ID, SourceLang: "en", TargetLangs: targets,
			SourceCode: "<p>hi</p>", CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, rec, 0))
		assert.Len(t, rec.ID, 36)
	}
	require.NoError(t, repo.Create(ctx, &models.TranslationHistory{
		UserID: bob.ID, SourceLang: "en", TargetLangs: []string{"es"}, SourceCode: "x",
	}, 0))

	list, total, err := repo.List(ctx, alice.ID, Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"ja"}, list[0].TargetLangs)
	assert.Equal(t, []string{"fr", "de"}, list[1].TargetLangs)
	assert.Equal(t, []string{"ar"}, list[2].TargetLangs)

	paged, _, err := repo.List(ctx, alice.ID, Page{Number: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, []string{"ar"}, paged[0].TargetLangs)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestHistoryRepository_RejectsEmptyTargets(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, NewUserRepository(db, nil), "c@example.com")
	err := NewHistoryRepository(db).Create(context.Background(), &models.TranslationHistory{UserID: u.ID, SourceLang: "en"}, 0)
	assert.ErrorIs(t, err, ErrEmptyTargets)
}

func TestHistoryRepository_DeleteRemovesExactlyOne(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db, nil)
	alice := createUser(t, users, "alice@example.com")
	bob := createUser(t, users, "bob@example.com")
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	var ids []string
	for _, lang := range []string{"ar", "fr", "de"} {
		rec := &models.TranslationHistory{UserID: alice.ID, SourceLang: "en", TargetLangs: []string{lang}, SourceCode: "x"}
		require.NoError(t, repo.Create(ctx, rec, 0))
		ids = append(ids, rec.ID)
	}

	// another user's id is invisible
	assert.ErrorIs(t, repo.Delete(ctx, bob.ID, ids[1]), ErrNotFound)

	require.NoError(t, repo.Delete(ctx, alice.ID, ids[1]))
	assert.ErrorIs(t, repo.Delete(ctx, alice.ID, ids[1]), ErrNotFound)

	list, _, err := repo.List(ctx, alice.ID, Page{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, h := range list {
		assert.NotEqual(t, ids[1], h.ID)
	}

	_, err = repo.Get(ctx, alice.ID, ids[1])
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := repo.Clear(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestHistoryRepository_TrimsToLimit(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, NewUserRepository(db, nil), "d@example.com")
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &models.TranslationHistory{
			UserID: u.ID, SourceLang: "en", TargetLangs: []string{"ar"}, SourceCode: string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}, 3))
	}

	list, total, err := repo.List(ctx, u.ID, Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 3)
	assert.Equal(t, "e", list[0].SourceCode)
	assert.Equal(t, "c", list[2].SourceCode)
}

func TestHistoryRepository_StoresLargeSource(t *testing.T) {
	s, err := schema.Parse(&models.TranslationHistory{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	// MySQL TEXT holds 64 KiB, translate accepts 2 MiB
	assert.Equal(t, "longtext", s.LookUpField("SourceCode").TagSettings["TYPE"])

	db := newTestDB(t)
	users := NewUserRepository(db, nil)
	u := createUser(t, users, "big@example.com")
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	src := "<p>" + strings.Repeat("word ", 40<<10) + "</p>"
	rec := &models.TranslationHistory{UserID: u.ID, SourceLang: "en", TargetLangs: []string{"fr"}, SourceCode: src}
	require.NoError(t, repo.Create(ctx, rec, 0))

	got, err := repo.Get(ctx, u.ID, rec.ID)
	require.NoError(t, err)
	assert.Len(t, got.SourceCode, len(src))
}
