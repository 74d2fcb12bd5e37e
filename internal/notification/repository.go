// internal/notification/repository.go

package notifications

import (
    "context"
    "fmt"

    "github.com/jmoiron/sqlx"
)

// Repository resolves delivery endpoints for members
type Repository interface {
    GetContacts(ctx context.Context, userIDs []int64) ([]*Contact, error)
    RegisterPushToken(ctx context.Context, token *PushToken) error
    DeactivatePushToken(ctx context.Context, userID int64, deviceID string) error
}

type postgresRepository struct {
    db *sqlx.DB
}

// NewRepository creates a PostgreSQL-backed notification repository
func NewRepository(db *sqlx.DB) Repository {
    return &postgresRepository{db: db}
}

// GetContacts loads contact details and active push tokens for the users
func (r *postgresRepository) GetContacts(ctx context.Context, userIDs []int64) ([]*Contact, error) {
    if len(userIDs) == 0 {
        return nil, nil
    }

    query, args, err := sqlx.In(`
        SELECT u.id AS user_id,
               COALESCE(mp.display_name, u.username) AS display_name,
               u.email,
               u.phone
        FROM users u
        LEFT JOIN matching_profiles mp ON mp.user_id = u.id
        WHERE u.id IN (?)`, userIDs)
    if err != nil {
        return nil, fmt.Errorf("failed to build contacts query: %w", err)
    }

    var contacts []*Contact
    if err := r.db.SelectContext(ctx, &contacts, r.db.Rebind(query), args...); err != nil {
        return nil, fmt.Errorf("failed to load contacts: %w", err)
    }

    tokenQuery, tokenArgs, err := sqlx.In(`
        SELECT user_id, token
        FROM push_tokens
        WHERE is_active = TRUE AND user_id IN (?)`, userIDs)
    if err != nil {
        return nil, fmt.Errorf("failed to build tokens query: %w", err)
    }

    rows, err := r.db.QueryContext(ctx, r.db.Rebind(tokenQuery), tokenArgs...)
    if err != nil {
        return nil, fmt.Errorf("failed to load push tokens: %w", err)
    }
    defer rows.Close()

    tokensByUser := make(map[int64][]string)
    for rows.Next() {
        var userID int64
        var token string
        if err := rows.Scan(&userID, &token); err != nil {
            return nil, err
        }
        tokensByUser[userID] = append(tokensByUser[userID], token)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }

    for _, c := range contacts {
        c.PushTokens = tokensByUser[c.UserID]
    }

    return contacts, nil
}

func (r *postgresRepository) RegisterPushToken(ctx context.Context, token *PushToken) error {
    query := `
        INSERT INTO push_tokens (user_id, platform, token, device_id, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
        ON CONFLICT (user_id, device_id) DO UPDATE SET
            platform = EXCLUDED.platform,
            token = EXCLUDED.token,
            is_active = TRUE,
            updated_at = NOW()
        RETURNING id, created_at, updated_at`

    return r.db.QueryRowContext(ctx, query,
        token.UserID, token.Platform, token.Token, token.DeviceID,
    ).Scan(&token.ID, &token.CreatedAt, &token.UpdatedAt)
}

func (r *postgresRepository) DeactivatePushToken(ctx context.Context, userID int64, deviceID string) error {
    _, err := r.db.ExecContext(ctx, `
        UPDATE push_tokens
        SET is_active = FALSE, updated_at = NOW()
        WHERE user_id = $1 AND device_id = $2`, userID, deviceID)
    return err
}
