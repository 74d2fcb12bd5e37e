// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrProfileNotFound is returned when a user has no matching profile yet
var ErrProfileNotFound = errors.New("profile not found")

// interest categories as stored in user_interests.kind
const (
	kindSports = "sports"
	kindMusic  = "music"
	kindMovies = "movies"
	kindOther  = "other"
)

// Repository defines data access for matching profiles
type Repository interface {
	GetByUserID(ctx context.Context, userID int64) (*Profile, error)
	Upsert(ctx context.Context, profile *Profile) error
	ReplaceInterests(ctx context.Context, userID int64, req *UpdateInterestsRequest) error
	ReplaceAvailability(ctx context.Context, userID int64, slots []string) error
	SetOnboardingComplete(ctx context.Context, userID int64) error
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewRepository creates a PostgreSQL-backed profile repository
func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID int64) (*Profile, error) {
	var profile Profile
	query := `
		SELECT mp.id, mp.user_id, u.username, mp.display_name, mp.bio,
		       mp.specialty, mp.city, mp.gender, mp.preferred_gender,
		       mp.activity_level, mp.conversation_style, mp.onboarding_complete,
		       mp.created_at, mp.updated_at
		FROM matching_profiles mp
		JOIN users u ON u.id = mp.user_id
		WHERE mp.user_id = $1`

	err := r.db.GetContext(ctx, &profile, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if err := r.loadInterests(ctx, &profile); err != nil {
		return nil, err
	}
	if err := r.loadAvailability(ctx, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *postgresRepository) loadInterests(ctx context.Context, profile *Profile) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, COALESCE(array_agg(tag ORDER BY tag), '{}')
		FROM user_interests
		WHERE user_id = $1
		GROUP BY kind`, profile.UserID)
	if err != nil {
		return fmt.Errorf("failed to load interests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var tags pq.StringArray
		if err := rows.Scan(&kind, &tags); err != nil {
			return fmt.Errorf("failed to scan interests: %w", err)
		}
		switch kind {
		case kindSports:
			profile.SportsInterests = tags
		case kindMusic:
			profile.MusicInterests = tags
		case kindMovies:
			profile.MovieInterests = tags
		case kindOther:
			profile.OtherInterests = tags
		}
	}
	return rows.Err()
}

func (r *postgresRepository) loadAvailability(ctx context.Context, profile *Profile) error {
	var slots pq.StringArray
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(array_agg(slot ORDER BY slot), '{}')
		FROM user_availability
		WHERE user_id = $1`, profile.UserID).Scan(&slots)
	if err != nil {
		return fmt.Errorf("failed to load availability: %w", err)
	}
	profile.AvailabilitySlots = slots
	return nil
}

// Upsert creates the profile row on first write and updates it afterwards
func (r *postgresRepository) Upsert(ctx context.Context, profile *Profile) error {
	query := `
		INSERT INTO matching_profiles
			(user_id, display_name, bio, specialty, city, gender, preferred_gender,
			 activity_level, conversation_style, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			bio = EXCLUDED.bio,
			specialty = EXCLUDED.specialty,
			city = EXCLUDED.city,
			gender = EXCLUDED.gender,
			preferred_gender = EXCLUDED.preferred_gender,
			activity_level = EXCLUDED.activity_level,
			conversation_style = EXCLUDED.conversation_style,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		profile.UserID, profile.DisplayName, profile.Bio, profile.Specialty,
		profile.City, profile.Gender, profile.PreferredGender,
		profile.ActivityLevel, profile.ConversationStyle,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// ReplaceInterests swaps out all interest rows for the user in one transaction
func (r *postgresRepository) ReplaceInterests(ctx context.Context, userID int64, req *UpdateInterestsRequest) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_interests WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear interests: %w", err)
	}

	categories := map[string][]string{
		kindSports: req.Sports,
		kindMusic:  req.Music,
		kindMovies: req.Movies,
		kindOther:  req.Other,
	}
	for kind, tags := range categories {
		for _, tag := range tags {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO user_interests (user_id, kind, tag)
				VALUES ($1, $2, $3)
				ON CONFLICT DO NOTHING`, userID, kind, tag); err != nil {
				return fmt.Errorf("failed to insert interest: %w", err)
			}
		}
	}

	return tx.Commit()
}

// ReplaceAvailability swaps out all availability slots for the user
func (r *postgresRepository) ReplaceAvailability(ctx context.Context, userID int64, slots []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_availability WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear availability: %w", err)
	}

	for _, slot := range slots {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_availability (user_id, slot)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, userID, slot); err != nil {
			return fmt.Errorf("failed to insert availability slot: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) SetOnboardingComplete(ctx context.Context, userID int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE matching_profiles
		SET onboarding_complete = TRUE, updated_at = NOW()
		WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark onboarding complete: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
