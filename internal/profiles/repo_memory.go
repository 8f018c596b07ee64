package profiles

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo for development and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Profile
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Profile)}
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.data[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return profile, nil
}

func (r *MemoryRepo) Create(ctx context.Context, profile Profile) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.data[profile.ID]; ok {
		existing.Email = profile.Email
		existing.UpdatedAt = time.Now().UTC()
		r.data[profile.ID] = existing
		return existing, nil
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	r.data[profile.ID] = profile
	return profile, nil
}

func (r *MemoryRepo) IncrementGenerations(ctx context.Context, userID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.data[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	profile.GenerationsUsed++
	profile.UpdatedAt = time.Now().UTC()
	r.data[userID] = profile
	return profile, nil
}

func (r *MemoryRepo) ResetGenerations(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.data[userID]
	if !ok {
		return ErrNotFound
	}
	profile.GenerationsUsed = 0
	profile.UpdatedAt = time.Now().UTC()
	r.data[userID] = profile
	return nil
}

func (r *MemoryRepo) ClearSubscription(ctx context.Context, subscriptionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cleared := false
	for id, profile := range r.data {
		if profile.SubscriptionID == subscriptionID && subscriptionID != "" {
			profile.Paid = false
			profile.SubscriptionID = ""
			profile.UpdatedAt = time.Now().UTC()
			r.data[id] = profile
			cleared = true
		}
	}
	if !cleared {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
