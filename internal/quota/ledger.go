// Package quota meters free-tier generations against a per-user limit.
//
// The check and the commit are intentionally split: CheckAndReserve is an
// advisory pre-flight that avoids wasted model calls, while Commit is the
// authoritative mutation run only after a stream completes. Two in-flight
// requests from the same user can therefore both pass the check and finish,
// overshooting the nominal limit by one. That race is accepted; this is a
// soft limit, not financial-grade accounting.
package quota

import (
	"context"
	"errors"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/profiles"
)

// ErrExceeded indicates an unpaid user has used up their free generations.
var ErrExceeded = errors.New("generation limit reached")

const defaultFreeLimit = 2

// Ledger enforces the free-tier threshold over the profile store.
type Ledger struct {
	Profiles  profiles.Repo
	FreeLimit int
}

func NewLedger(repo profiles.Repo, freeLimit int) *Ledger {
	if freeLimit <= 0 {
		freeLimit = defaultFreeLimit
	}
	return &Ledger{Profiles: repo, FreeLimit: freeLimit}
}

// CheckAndReserve reports whether the profile may start a generation.
// Paid users bypass the threshold regardless of usage.
func (l *Ledger) CheckAndReserve(profile profiles.Profile) error {
	if profile.Paid {
		return nil
	}
	if profile.GenerationsUsed >= l.FreeLimit {
		return ErrExceeded
	}
	return nil
}

// Commit records one completed generation. Paid users are exempt and their
// usage is left untouched.
func (l *Ledger) Commit(ctx context.Context, profile profiles.Profile) (profiles.Profile, error) {
	if profile.Paid {
		return profile, nil
	}
	return l.Profiles.IncrementGenerations(ctx, profile.ID)
}
