//internal/profile/models.go

package profile

import (
	"time"
)

// Profile is the matching profile a member fills in during onboarding.
// The matching engine consumes these fields when it builds the weekly pool.
type Profile struct {
	ID                 int64     `json:"id" db:"id"`
	UserID             int64     `json:"user_id" db:"user_id"`
	Username           string    `json:"username" db:"username"`
	DisplayName        string    `json:"display_name" db:"display_name"`
	Bio                *string   `json:"bio" db:"bio"`
	Specialty          *string   `json:"specialty" db:"specialty"`
	City               *string   `json:"city" db:"city"`
	Gender             string    `json:"gender" db:"gender"`
	PreferredGender    *string   `json:"preferred_gender" db:"preferred_gender"`
	ActivityLevel      *string   `json:"activity_level" db:"activity_level"`
	ConversationStyle  *string   `json:"conversation_style" db:"conversation_style"`
	OnboardingComplete bool      `json:"onboarding_complete" db:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`

	// Populated from the side tables, not columns on matching_profiles
	SportsInterests   []string `json:"sports_interests" db:"-"`
	MusicInterests    []string `json:"music_interests" db:"-"`
	MovieInterests    []string `json:"movie_interests" db:"-"`
	OtherInterests    []string `json:"other_interests" db:"-"`
	AvailabilitySlots []string `json:"availability_slots" db:"-"`
}

// UpdateProfileRequest carries the editable profile fields. Pointer fields
// distinguish "not sent" from "clear this value".
type UpdateProfileRequest struct {
	DisplayName       *string `json:"display_name" validate:"omitempty,min=1,max=100"`
	Bio               *string `json:"bio" validate:"omitempty,max=500"`
	Specialty         *string `json:"specialty" validate:"omitempty,max=100"`
	City              *string `json:"city" validate:"omitempty,max=100"`
	Gender            *string `json:"gender" validate:"omitempty,oneof=male female non_binary other"`
	PreferredGender   *string `json:"preferred_gender" validate:"omitempty,oneof=male female non_binary other any"`
	ActivityLevel     *string `json:"activity_level" validate:"omitempty,oneof=low medium high"`
	ConversationStyle *string `json:"conversation_style" validate:"omitempty,oneof=listener balanced talker"`
}

// UpdateInterestsRequest replaces the member's interest tags per category
type UpdateInterestsRequest struct {
	Sports []string `json:"sports" validate:"omitempty,max=20,dive,min=1,max=50"`
	Music  []string `json:"music" validate:"omitempty,max=20,dive,min=1,max=50"`
	Movies []string `json:"movies" validate:"omitempty,max=20,dive,min=1,max=50"`
	Other  []string `json:"other" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// UpdateAvailabilityRequest replaces the member's weekly availability slots.
// Slots use the "day-period" form, e.g. "saturday-morning".
type UpdateAvailabilityRequest struct {
	Slots []string `json:"slots" validate:"required,max=21,dive,min=3,max=40"`
}
