// internal/auth/repository.go
// Repository pattern isolates database queries from business logic.

package auth

import (
    "context"
    "database/sql"
    "errors"

    "github.com/jmoiron/sqlx"
    "github.com/lib/pq"
)

var (
    // ErrUserNotFound is returned when no user matches the lookup
    ErrUserNotFound = errors.New("user not found")

    // ErrDuplicateUser is returned when email or username is already taken
    ErrDuplicateUser = errors.New("email or username already in use")
)

// Repository defines data access for the auth package
type Repository interface {
    CreateUser(ctx context.Context, user *User) error
    GetUserByEmail(ctx context.Context, email string) (*User, error)
    GetUserByID(ctx context.Context, id int64) (*User, error)
}

type postgresRepository struct {
    db *sqlx.DB
}

// NewRepository creates a PostgreSQL-backed auth repository
func NewRepository(db *sqlx.DB) Repository {
    return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateUser(ctx context.Context, user *User) error {
    query := `
        INSERT INTO users (email, username, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        RETURNING id, created_at, updated_at`

    err := r.db.QueryRowContext(ctx, query,
        user.Email, user.Username, user.PasswordHash,
    ).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

    if err != nil {
        if isUniqueViolation(err) {
            return ErrDuplicateUser
        }
        return err
    }
    return nil
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
    var user User
    query := `
        SELECT id, email, username, password_hash, display_name, gender, birth_date,
               is_verified, is_admin, is_banned, created_at, updated_at
        FROM users
        WHERE email = $1`

    err := r.db.GetContext(ctx, &user, query, email)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrUserNotFound
        }
        return nil, err
    }
    return &user, nil
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
    var user User
    query := `
        SELECT id, email, username, password_hash, display_name, gender, birth_date,
               is_verified, is_admin, is_banned, created_at, updated_at
        FROM users
        WHERE id = $1`

    err := r.db.GetContext(ctx, &user, query, id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrUserNotFound
        }
        return nil, err
    }
    return &user, nil
}

// isUniqueViolation reports whether err is PostgreSQL's unique violation (23505)
func isUniqueViolation(err error) bool {
    var pqErr *pq.Error
    if errors.As(err, &pqErr) {
        return pqErr.Code == "23505"
    }
    return false
}
