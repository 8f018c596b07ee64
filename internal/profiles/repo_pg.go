package profiles

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

const profileColumns = `id, email, full_name, avatar_url, images_generated, paid, subscription_id, created_at, updated_at`

func (r *PGRepo) GetByID(ctx context.Context, userID string) (Profile, error) {
	const query = `
SELECT ` + profileColumns + `
FROM profiles
WHERE id = $1
LIMIT 1`
	return r.scanRow(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) Create(ctx context.Context, profile Profile) (Profile, error) {
	const query = `
INSERT INTO profiles (id, email, full_name, avatar_url, images_generated, paid, subscription_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  updated_at = now()
RETURNING ` + profileColumns
	return r.scanRow(r.DB.QueryRowContext(ctx, query,
		profile.ID,
		profile.Email,
		nullableString(profile.FullName),
		nullableString(profile.AvatarURL),
		profile.GenerationsUsed,
		profile.Paid,
		nullableString(profile.SubscriptionID),
	))
}

func (r *PGRepo) IncrementGenerations(ctx context.Context, userID string) (Profile, error) {
	const query = `
UPDATE profiles
SET images_generated = images_generated + 1, updated_at = now()
WHERE id = $1
RETURNING ` + profileColumns
	return r.scanRow(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) ResetGenerations(ctx context.Context, userID string) error {
	const query = `
UPDATE profiles
SET images_generated = 0, updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ClearSubscription(ctx context.Context, subscriptionID string) error {
	const query = `
UPDATE profiles
SET paid = FALSE, subscription_id = NULL, updated_at = now()
WHERE subscription_id = $1`
	res, err := r.DB.ExecContext(ctx, query, subscriptionID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanRow(row rowScanner) (Profile, error) {
	var profile Profile
	var fullName sql.NullString
	var avatarURL sql.NullString
	var subscriptionID sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(
		&profile.ID,
		&profile.Email,
		&fullName,
		&avatarURL,
		&profile.GenerationsUsed,
		&profile.Paid,
		&subscriptionID,
		&profile.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	if fullName.Valid {
		profile.FullName = fullName.String
	}
	if avatarURL.Valid {
		profile.AvatarURL = avatarURL.String
	}
	if subscriptionID.Valid {
		profile.SubscriptionID = subscriptionID.String
	}
	if updatedAt.Valid {
		profile.UpdatedAt = updatedAt.Time
	} else {
		profile.UpdatedAt = time.Now().UTC()
	}
	return profile, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
