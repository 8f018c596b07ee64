package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/profiles"
)

// Service cancels a subscription with the provider and clears the paid flag
// on the owning profile.
type Service struct {
	Billing  Client
	Profiles profiles.Repo
}

func NewService(client Client, repo profiles.Repo) *Service {
	return &Service{Billing: client, Profiles: repo}
}

// Cancel runs the webhook-free cancellation flow: provider first, then the
// profile row. If the provider call fails the profile is left untouched.
func (s *Service) Cancel(ctx context.Context, subscriptionID string) error {
	if s == nil || s.Billing == nil || s.Profiles == nil {
		return errors.New("billing service not configured")
	}
	if strings.TrimSpace(subscriptionID) == "" {
		return errors.New("subscription id is required")
	}

	if err := s.Billing.CancelSubscription(ctx, subscriptionID); err != nil {
		return err
	}
	return s.Profiles.ClearSubscription(ctx, subscriptionID)
}
