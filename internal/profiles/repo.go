package profiles

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("profile not found")

type Repo interface {
	GetByID(ctx context.Context, userID string) (Profile, error)
	Create(ctx context.Context, profile Profile) (Profile, error)
	// IncrementGenerations bumps images_generated by exactly one and returns
	// the updated row. The counter is never decremented through this interface.
	IncrementGenerations(ctx context.Context, userID string) (Profile, error)
	// ResetGenerations is the administrative override allowed by dev tooling.
	ResetGenerations(ctx context.Context, userID string) error
	// ClearSubscription marks every profile holding the subscription as unpaid.
	ClearSubscription(ctx context.Context, subscriptionID string) error
}
