package profiles

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileCols = []string{"id", "email", "full_name", "avatar_url", "images_generated", "paid", "subscription_id", "created_at", "updated_at"}

func newPGRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoGetByID(t *testing.T) {
	repo, mock := newPGRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)SELECT .+FROM profiles\s+WHERE id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(profileCols).
			AddRow("u1", "u1@example.com", "Ada", nil, 1, false, nil, now, now))

	profile, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)
	assert.Equal(t, "Ada", profile.FullName)
	assert.Empty(t, profile.AvatarURL)
	assert.Equal(t, 1, profile.GenerationsUsed)
	assert.False(t, profile.Paid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectQuery(`(?s)SELECT .+FROM profiles`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(profileCols))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoCreateUpserts(t *testing.T) {
	repo, mock := newPGRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)INSERT INTO profiles .+ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("u1", "u1@example.com", "Ada", nil, 0, false, nil).
		WillReturnRows(sqlmock.NewRows(profileCols).
			AddRow("u1", "u1@example.com", "Ada", nil, 0, false, nil, now, now))

	profile, err := repo.Create(context.Background(), Profile{
		ID:       "u1",
		Email:    "u1@example.com",
		FullName: "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", profile.Email)
	assert.Zero(t, profile.GenerationsUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoIncrementGenerations(t *testing.T) {
	repo, mock := newPGRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`UPDATE profiles\s+SET images_generated = images_generated \+ 1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(profileCols).
			AddRow("u1", "u1@example.com", nil, nil, 2, false, nil, now, now))

	profile, err := repo.IncrementGenerations(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, profile.GenerationsUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoResetGenerations(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectExec(`UPDATE profiles\s+SET images_generated = 0`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ResetGenerations(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoResetGenerationsNotFound(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectExec(`UPDATE profiles\s+SET images_generated = 0`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ResetGenerations(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoClearSubscription(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectExec(`UPDATE profiles\s+SET paid = FALSE, subscription_id = NULL`).
		WithArgs("sub_123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ClearSubscription(context.Background(), "sub_123"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoClearSubscriptionNotFound(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectExec(`UPDATE profiles\s+SET paid = FALSE`).
		WithArgs("sub_missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ClearSubscription(context.Background(), "sub_missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
