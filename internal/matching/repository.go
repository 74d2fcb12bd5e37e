package matching

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    "github.com/jmoiron/sqlx"
    "github.com/lib/pq"
)

// GroupMemberInfo is the member projection returned with stored groups.
type GroupMemberInfo struct {
    UserID      int64   `json:"user_id" db:"user_id"`
    Username    string  `json:"username" db:"username"`
    DisplayName string  `json:"display_name" db:"display_name"`
    Specialty   *string `json:"specialty,omitempty" db:"specialty"`
}

// GroupRecord is a persisted match group as read back from storage.
type GroupRecord struct {
    ID             string            `json:"id" db:"id"`
    Week           string            `json:"week" db:"week"`
    ConversationID int64             `json:"conversation_id" db:"conversation_id"`
    AverageScore   float64           `json:"average_score" db:"average_score"`
    IsActive       bool              `json:"is_active" db:"is_active"`
    ExpiresAt      *time.Time        `json:"expires_at,omitempty" db:"expires_at"`
    CreatedAt      time.Time         `json:"created_at" db:"created_at"`
    Members        []GroupMemberInfo `json:"members"`
}

// RunRecord is one row of the run log, used for the admin dashboard and for
// polling run status.
type RunRecord struct {
    ID             string    `json:"id" db:"id"`
    Week           string    `json:"week" db:"week"`
    Trigger        string    `json:"trigger" db:"trigger"`
    PoolSize       int       `json:"pool_size" db:"pool_size"`
    EligibleUsers  int       `json:"eligible_users" db:"eligible_users"`
    GroupsFormed   int       `json:"groups_formed" db:"groups_formed"`
    UsersMatched   int       `json:"users_matched" db:"users_matched"`
    UsersUnmatched int       `json:"users_unmatched" db:"users_unmatched"`
    AverageScore   float64   `json:"average_score" db:"average_score"`
    DurationMS     int64     `json:"duration_ms" db:"duration_ms"`
    CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type Repository interface {
    // Input collaborators: profile snapshot and pair history.
    GetMatchingPool(ctx context.Context) ([]*EligibleUser, error)
    GetPairHistory(ctx context.Context, since time.Time) (*PairHistory, error)

    // Output collaborator: transactional persistence of a full run.
    SaveRun(ctx context.Context, trigger string, results *MatchingResults) error

    // Reads.
    GetGroupsByWeek(ctx context.Context, week string) ([]*GroupRecord, error)
    GetActiveGroupForUser(ctx context.Context, userID int64) (*GroupRecord, error)
    GetLatestRun(ctx context.Context) (*RunRecord, error)

    GetDB() *sqlx.DB
}

type postgresRepository struct {
    db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
    return &postgresRepository{db: db}
}

func (r *postgresRepository) GetDB() *sqlx.DB {
    return r.db
}

// GetMatchingPool loads the full profile snapshot in the EligibleUser shape.
// Eligibility flags come back raw; the predicates themselves are applied by
// the pure filter so the pipeline stays testable without a database.
func (r *postgresRepository) GetMatchingPool(ctx context.Context) ([]*EligibleUser, error) {
    query := `
        SELECT u.id,
               u.username,
               COALESCE(NULLIF(mp.display_name, ''), u.username) AS display_name,
               mp.specialty,
               mp.city,
               COALESCE(mp.gender, 'other') AS gender,
               mp.preferred_gender,
               COALESCE(EXTRACT(YEAR FROM AGE(u.birth_date))::INT, 0) AS age,
               mp.activity_level,
               mp.conversation_style,
               u.is_verified,
               u.is_banned,
               COALESCE(mp.onboarding_complete, FALSE) AS onboarding_complete,
               EXISTS(
                   SELECT 1 FROM subscriptions s
                   WHERE s.user_id = u.id AND s.status = 'active'
                         AND (s.expires_at IS NULL OR s.expires_at > NOW())
               ) AS is_subscribed,
               EXISTS(
                   SELECT 1 FROM match_group_members mgm
                   JOIN match_groups mg ON mg.id = mgm.group_id
                   WHERE mgm.user_id = u.id AND mg.is_active = TRUE
                         AND (mg.expires_at IS NULL OR mg.expires_at > NOW())
               ) AS in_active_group,
               COALESCE((SELECT array_agg(ui.tag) FROM user_interests ui
                         WHERE ui.user_id = u.id AND ui.kind = 'sports'), '{}') AS sports_interests,
               COALESCE((SELECT array_agg(ui.tag) FROM user_interests ui
                         WHERE ui.user_id = u.id AND ui.kind = 'music'), '{}') AS music_interests,
               COALESCE((SELECT array_agg(ui.tag) FROM user_interests ui
                         WHERE ui.user_id = u.id AND ui.kind = 'movies'), '{}') AS movie_interests,
               COALESCE((SELECT array_agg(ui.tag) FROM user_interests ui
                         WHERE ui.user_id = u.id AND ui.kind = 'other'), '{}') AS other_interests,
               COALESCE((SELECT array_agg(ua.slot) FROM user_availability ua
                         WHERE ua.user_id = u.id), '{}') AS availability_slots
        FROM users u
        LEFT JOIN matching_profiles mp ON mp.user_id = u.id
        ORDER BY u.id
    `

    rows, err := r.db.QueryxContext(ctx, query)
    if err != nil {
        return nil, fmt.Errorf("failed to load matching pool: %w", err)
    }
    defer rows.Close()

    var pool []*EligibleUser
    for rows.Next() {
        var u EligibleUser
        var sports, music, movies, other, slots pq.StringArray

        err := rows.Scan(
            &u.ID, &u.Username, &u.DisplayName,
            &u.Specialty, &u.City, &u.Gender, &u.PreferredGender,
            &u.Age, &u.ActivityLevel, &u.ConversationStyle,
            &u.IsVerified, &u.IsBanned, &u.OnboardingComplete,
            &u.IsSubscribed, &u.InActiveGroup,
            &sports, &music, &movies, &other, &slots,
        )
        if err != nil {
            return nil, fmt.Errorf("failed to scan matching profile: %w", err)
        }

        u.SportsInterests = sports
        u.MusicInterests = music
        u.MovieInterests = movies
        u.OtherInterests = other
        u.AvailabilitySlots = slots
        pool = append(pool, &u)
    }

    return pool, rows.Err()
}

// GetPairHistory loads past co-membership inside the lookback window, keyed
// by canonical pair for O(1) cooldown checks.
func (r *postgresRepository) GetPairHistory(ctx context.Context, since time.Time) (*PairHistory, error) {
    query := `
        SELECT mgm.group_id, mgm.user_id, mg.created_at AS matched_at
        FROM match_group_members mgm
        JOIN match_groups mg ON mg.id = mgm.group_id
        WHERE mg.created_at >= $1
    `

    var records []PastGroupMembership
    if err := r.db.SelectContext(ctx, &records, query, since); err != nil {
        return nil, fmt.Errorf("failed to load pair history: %w", err)
    }

    return NewPairHistory(records), nil
}

// SaveRun persists a full run in one transaction: the run-log row, every
// group with its members, and one chat room per group. Either all of it
// lands or none of it does, so a retried persist never leaves a group half
// written.
func (r *postgresRepository) SaveRun(ctx context.Context, trigger string, results *MatchingResults) error {
    tx, err := r.db.BeginTxx(ctx, nil)
    if err != nil {
        return fmt.Errorf("failed to begin transaction: %w", err)
    }
    defer tx.Rollback()

    runQuery := `
        INSERT INTO matching_runs (
            id, week, trigger, pool_size, eligible_users, groups_formed,
            users_matched, users_unmatched, average_score, duration_ms
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
    _, err = tx.ExecContext(ctx, runQuery,
        results.RunID, results.Week, trigger,
        results.Stats.PoolSize, results.Stats.EligibleUsers, results.Stats.GroupsFormed,
        results.Stats.UsersMatched, results.Stats.UsersUnmatched,
        results.Stats.AverageScore, results.Stats.Duration.Milliseconds(),
    )
    if err != nil {
        return fmt.Errorf("failed to insert run record: %w", err)
    }

    for _, group := range results.Groups {
        var conversationID int64
        convQuery := `
            INSERT INTO conversations (type, name)
            VALUES ('match_group', $1)
            RETURNING id
        `
        title := fmt.Sprintf("PeerCircle %s", results.Week)
        if err := tx.QueryRowxContext(ctx, convQuery, title).Scan(&conversationID); err != nil {
            return fmt.Errorf("failed to create group conversation: %w", err)
        }

        groupQuery := `
            INSERT INTO match_groups (id, run_id, week, conversation_id, average_score, is_active, expires_at)
            VALUES ($1, $2, $3, $4, $5, TRUE, NOW() + INTERVAL '7 days')
        `
        if _, err := tx.ExecContext(ctx, groupQuery,
            group.ID, results.RunID, results.Week, conversationID, group.AverageScore,
        ); err != nil {
            return fmt.Errorf("failed to insert match group: %w", err)
        }

        for position, member := range group.Members {
            if _, err := tx.ExecContext(ctx,
                `INSERT INTO match_group_members (group_id, user_id, position) VALUES ($1, $2, $3)`,
                group.ID, member.ID, position,
            ); err != nil {
                return fmt.Errorf("failed to insert group member: %w", err)
            }
            if _, err := tx.ExecContext(ctx,
                `INSERT INTO conversation_participants (conversation_id, user_id) VALUES ($1, $2)`,
                conversationID, member.ID,
            ); err != nil {
                return fmt.Errorf("failed to add conversation participant: %w", err)
            }
        }
    }

    return tx.Commit()
}

func (r *postgresRepository) GetGroupsByWeek(ctx context.Context, week string) ([]*GroupRecord, error) {
    query := `
        SELECT id, week, conversation_id, average_score, is_active, expires_at, created_at
        FROM match_groups
        WHERE week = $1
        ORDER BY average_score DESC, id
    `

    var groups []*GroupRecord
    if err := r.db.SelectContext(ctx, &groups, query, week); err != nil {
        return nil, fmt.Errorf("failed to load groups for week %s: %w", week, err)
    }

    for _, group := range groups {
        members, err := r.getGroupMembers(ctx, group.ID)
        if err != nil {
            return nil, err
        }
        group.Members = members
    }

    return groups, nil
}

func (r *postgresRepository) GetActiveGroupForUser(ctx context.Context, userID int64) (*GroupRecord, error) {
    query := `
        SELECT mg.id, mg.week, mg.conversation_id, mg.average_score, mg.is_active, mg.expires_at, mg.created_at
        FROM match_groups mg
        JOIN match_group_members mgm ON mgm.group_id = mg.id
        WHERE mgm.user_id = $1 AND mg.is_active = TRUE
              AND (mg.expires_at IS NULL OR mg.expires_at > NOW())
        ORDER BY mg.created_at DESC
        LIMIT 1
    `

    var group GroupRecord
    err := r.db.GetContext(ctx, &group, query, userID)
    if err == sql.ErrNoRows {
        return nil, ErrGroupNotFound
    }
    if err != nil {
        return nil, fmt.Errorf("failed to load active group for user %d: %w", userID, err)
    }

    members, err := r.getGroupMembers(ctx, group.ID)
    if err != nil {
        return nil, err
    }
    group.Members = members
    return &group, nil
}

func (r *postgresRepository) GetLatestRun(ctx context.Context) (*RunRecord, error) {
    query := `
        SELECT id, week, trigger, pool_size, eligible_users, groups_formed,
               users_matched, users_unmatched, average_score, duration_ms, created_at
        FROM matching_runs
        ORDER BY created_at DESC
        LIMIT 1
    `

    var run RunRecord
    err := r.db.GetContext(ctx, &run, query)
    if err == sql.ErrNoRows {
        return nil, ErrNoRunsRecorded
    }
    if err != nil {
        return nil, fmt.Errorf("failed to load latest run: %w", err)
    }
    return &run, nil
}

func (r *postgresRepository) getGroupMembers(ctx context.Context, groupID string) ([]GroupMemberInfo, error) {
    query := `
        SELECT u.id AS user_id, u.username,
               COALESCE(NULLIF(mp.display_name, ''), u.username) AS display_name,
               mp.specialty
        FROM match_group_members mgm
        JOIN users u ON u.id = mgm.user_id
        LEFT JOIN matching_profiles mp ON mp.user_id = u.id
        WHERE mgm.group_id = $1
        ORDER BY mgm.position
    `

    var members []GroupMemberInfo
    if err := r.db.SelectContext(ctx, &members, query, groupID); err != nil {
        return nil, fmt.Errorf("failed to load group members: %w", err)
    }
    return members, nil
}
