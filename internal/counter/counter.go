// Package counter tracks the lifetime total of successful generations across
// all users, for social-proof display.
package counter

import (
	"context"
	"errors"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/storage/kv"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/telemetry"
)

// ErrUnavailable indicates the counter store could not be reached.
var ErrUnavailable = errors.New("counter store unavailable")

const defaultKey = "coffeecounter"

// Service exposes the shared counter over the key-value store.
type Service struct {
	KV  *kv.Client
	Key string
}

func NewService(client *kv.Client, key string) *Service {
	if key == "" {
		key = defaultKey
	}
	return &Service{KV: client, Key: key}
}

// Increment bumps the counter atomically. It never fails the surrounding
// pipeline: store errors are logged and swallowed, and ok reports whether the
// increment actually happened.
func (s *Service) Increment(ctx context.Context) (value int64, ok bool) {
	if s == nil || s.KV == nil {
		telemetry.Error("counter.increment_skipped", map[string]any{
			"reason": "store not configured",
		})
		return 0, false
	}
	val, err := s.KV.Incr(ctx, s.Key)
	if err != nil {
		telemetry.Error("counter.increment_failed", map[string]any{
			"key":   s.Key,
			"error": err.Error(),
		})
		return 0, false
	}
	return val, true
}

// Read returns the current counter value, or ErrUnavailable when the store
// cannot serve it.
func (s *Service) Read(ctx context.Context) (int64, error) {
	if s == nil || s.KV == nil {
		return 0, ErrUnavailable
	}
	val, err := s.KV.GetInt64(ctx, s.Key)
	if err != nil {
		return 0, ErrUnavailable
	}
	return val, nil
}
