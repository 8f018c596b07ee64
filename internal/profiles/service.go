package profiles

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Ensure returns the profile for the given identity, creating it lazily on
// first authenticated access.
func (s *Service) Ensure(ctx context.Context, identity Identity) (Profile, error) {
	if s == nil || s.Repo == nil {
		return Profile{}, errors.New("profiles service not configured")
	}
	if strings.TrimSpace(identity.UserID) == "" {
		return Profile{}, errors.New("user id is required")
	}

	profile, err := s.Repo.GetByID(ctx, identity.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Profile{}, err
	}

	fullName := identity.FullName
	if fullName == "" && identity.Email != "" {
		fullName = strings.SplitN(identity.Email, "@", 2)[0]
	}
	return s.Repo.Create(ctx, Profile{
		ID:        identity.UserID,
		Email:     identity.Email,
		FullName:  fullName,
		AvatarURL: identity.AvatarURL,
	})
}

func (s *Service) GetByID(ctx context.Context, userID string) (Profile, error) {
	if s == nil || s.Repo == nil {
		return Profile{}, errors.New("profiles service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return Profile{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// ResetGenerations zeroes a user's usage. Administrative override only.
func (s *Service) ResetGenerations(ctx context.Context, userID string) error {
	if s == nil || s.Repo == nil {
		return errors.New("profiles service not configured")
	}
	return s.Repo.ResetGenerations(ctx, userID)
}
