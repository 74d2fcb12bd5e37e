// internal/profile/service.go

package profile

import (
	"context"
	"errors"
	"strings"
)

// ErrIncompleteProfile is returned when onboarding is finalized too early
var ErrIncompleteProfile = errors.New("profile is missing required fields")

// Service defines profile business logic
type Service interface {
	GetMyProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error)
	UpdateInterests(ctx context.Context, userID int64, req *UpdateInterestsRequest) (*Profile, error)
	UpdateAvailability(ctx context.Context, userID int64, req *UpdateAvailabilityRequest) (*Profile, error)
	CompleteOnboarding(ctx context.Context, userID int64) (*Profile, error)
}

type service struct {
	repo Repository
}

// NewService creates the profile service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetMyProfile(ctx context.Context, userID int64) (*Profile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// UpdateProfile merges the request into the stored profile and upserts it.
// A first-time update creates the profile row.
func (s *service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		profile = &Profile{UserID: userID, Gender: "other"}
	}

	if req.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	if req.Specialty != nil {
		profile.Specialty = req.Specialty
	}
	if req.City != nil {
		profile.City = req.City
	}
	if req.Gender != nil {
		profile.Gender = *req.Gender
	}
	if req.PreferredGender != nil {
		profile.PreferredGender = req.PreferredGender
	}
	if req.ActivityLevel != nil {
		profile.ActivityLevel = req.ActivityLevel
	}
	if req.ConversationStyle != nil {
		profile.ConversationStyle = req.ConversationStyle
	}

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) UpdateInterests(ctx context.Context, userID int64, req *UpdateInterestsRequest) (*Profile, error) {
	normalized := &UpdateInterestsRequest{
		Sports: normalizeTags(req.Sports),
		Music:  normalizeTags(req.Music),
		Movies: normalizeTags(req.Movies),
		Other:  normalizeTags(req.Other),
	}
	if err := s.repo.ReplaceInterests(ctx, userID, normalized); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) UpdateAvailability(ctx context.Context, userID int64, req *UpdateAvailabilityRequest) (*Profile, error) {
	if err := s.repo.ReplaceAvailability(ctx, userID, normalizeTags(req.Slots)); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, userID)
}

// CompleteOnboarding finalizes the profile so the user enters the weekly pool.
// Display name and gender are the minimum; everything else degrades to
// neutral scoring inside the engine.
func (s *service) CompleteOnboarding(ctx context.Context, userID int64) (*Profile, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(profile.DisplayName) == "" || profile.Gender == "" {
		return nil, ErrIncompleteProfile
	}

	if err := s.repo.SetOnboardingComplete(ctx, userID); err != nil {
		return nil, err
	}
	profile.OnboardingComplete = true
	return profile, nil
}

// normalizeTags lowercases, trims, and dedupes while keeping order
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
