package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/survivalcast/survivalcast-go/internal/model"
)

func newSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	cfg := DBConfig{
		Local:           true,
		SQLitePath:      filepath.Join(t.TempDir(), "test.db"),
		ConnectAttempts: 1,
		ConnectDelay:    time.Millisecond,
	}

	db, err := NewDB(ctx, cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db, cfg.Driver(), discardLogger()))
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newSQLiteDB(t)
	require.NoError(t, Migrate(context.Background(), db, DriverSQLite, discardLogger()))
}

func TestMigrateUnknownDriver(t *testing.T) {
	db := newSQLiteDB(t)
	assert.Error(t, Migrate(context.Background(), db, "postgres", discardLogger()))
}

func TestSQLiteUserEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newSQLiteDB(t))

	first := &model.User{Email: "a@x.com", PasswordHash: "h1"}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotZero(t, first.ID)

	err := repo.Create(ctx, &model.User{Email: "a@x.com", PasswordHash: "h2"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// Uniqueness is exact-match; a differently cased address is a new user.
	upper := &model.User{Email: "A@X.com", PasswordHash: "h3"}
	require.NoError(t, repo.Create(ctx, upper))
	assert.NotEqual(t, first.ID, upper.ID)

	got, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "h1", got.PasswordHash)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSQLiteLedgerOrderingAndIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewPredictionRepository(newSQLiteDB(t))

	owners := []string{"a@x.com", "b@x.com", "c@x.com"}
	const perOwner = 10

	var wg sync.WaitGroup
	for _, owner := range owners {
		wg.Add(1)
		go func(owner string) {
			defer wg.Done()
			for i := 0; i < perOwner; i++ {
				p := &model.Prediction{
					UserEmail: owner, Pclass: 3, Sex: "male", Age: float64(i),
					Embarked: "S", Result: "Not Survived", Probability: 0.1,
				}
				assert.NoError(t, repo.Create(ctx, p))
			}
		}(owner)
	}
	wg.Wait()

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(owners)*perOwner), total)

	for _, owner := range owners {
		got, err := repo.ListByUser(ctx, owner)
		require.NoError(t, err)
		require.Len(t, got, perOwner)

		for i, p := range got {
			assert.Equal(t, owner, p.UserEmail)
			// Each writer inserts ages 0..n-1 in order.
			assert.Equal(t, float64(i), p.Age, "owner %s position %d", owner, i)
			if i > 0 {
				assert.False(t, p.CreatedAt.Before(got[i-1].CreatedAt))
			}
		}
	}
}

func TestSQLiteLedgerSortsByCreationTime(t *testing.T) {
	ctx := context.Background()
	repo := NewPredictionRepository(newSQLiteDB(t))

	base := time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC)
	// Insert out of chronological order; listing must follow created_at.
	offsets := []time.Duration{
		3 * time.Second,
		time.Second,
		2500 * time.Millisecond,
		1100 * time.Millisecond,
		0,
	}
	for i, off := range offsets {
		repo.now = func() time.Time { return base.Add(off) }
		p := &model.Prediction{UserEmail: "a@x.com", Result: fmt.Sprintf("r%d", i)}
		require.NoError(t, repo.Create(ctx, p))
	}

	got, err := repo.ListByUser(ctx, "a@x.com")
	require.NoError(t, err)

	var results []string
	for _, p := range got {
		results = append(results, p.Result)
	}
	assert.Equal(t, []string{"r4", "r1", "r3", "r2", "r0"}, results)
	assert.True(t, got[0].CreatedAt.Equal(base))
}

func TestSQLiteLedgerEmptyOwner(t *testing.T) {
	repo := NewPredictionRepository(newSQLiteDB(t))

	got, err := repo.ListByUser(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewDB_ZeroConnectDelay(t *testing.T) {
	cfg := DBConfig{Local: true, SQLitePath: filepath.Join(t.TempDir(), "test.db")}

	db, err := NewDB(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}
