// internal/auth/service.go
// Service layer contains all business logic for authentication.

package auth

import (
    "context"
    "errors"
    "log"
    "strconv"
    "strings"
    "time"

    "golang.org/x/crypto/bcrypt"

    "github.com/peercircle/peercircle-backend/internal/common/utils"
    "github.com/peercircle/peercircle-backend/internal/config"
)

var (
    // ErrInvalidCredentials is returned for a wrong email or password
    ErrInvalidCredentials = errors.New("invalid email or password")

    // ErrAccountBanned is returned when a banned user attempts to sign in
    ErrAccountBanned = errors.New("account is suspended")

    // ErrInvalidToken is returned for malformed, expired, or wrong-type tokens
    ErrInvalidToken = errors.New("invalid or expired token")
)

// Service defines the auth business logic
type Service interface {
    Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error)
    Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
    RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
    ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
    GetUserByID(ctx context.Context, id int64) (*User, error)
}

type service struct {
    repo Repository
    cfg  *config.Config
}

// NewService creates the auth service
func NewService(repo Repository, cfg *config.Config) Service {
    return &service{repo: repo, cfg: cfg}
}

// Signup creates a new account and signs the user in
func (s *service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
    email := strings.ToLower(strings.TrimSpace(req.Email))

    hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BCryptCost)
    if err != nil {
        return nil, err
    }

    user := &User{
        Email:        email,
        Username:     req.Username,
        PasswordHash: string(hash),
    }
    if err := s.repo.CreateUser(ctx, user); err != nil {
        return nil, err
    }

    log.Printf("New signup: user %d (%s)", user.ID, user.Username)
    return s.buildAuthResponse(user)
}

// Login verifies credentials and returns tokens
func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
    email := strings.ToLower(strings.TrimSpace(req.Email))

    user, err := s.repo.GetUserByEmail(ctx, email)
    if err != nil {
        if errors.Is(err, ErrUserNotFound) {
            // Burn a comparison anyway so timing does not leak account existence
            bcrypt.CompareHashAndPassword([]byte("$2a$10$invalidinvalidinvalidinvalidinva"), []byte(req.Password))
            return nil, ErrInvalidCredentials
        }
        return nil, err
    }

    if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
        return nil, ErrInvalidCredentials
    }

    if user.IsBanned {
        return nil, ErrAccountBanned
    }

    return s.buildAuthResponse(user)
}

// RefreshToken exchanges a valid refresh token for a fresh token pair
func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
    claims, err := utils.ValidateJWT(refreshToken, s.cfg.JWTSecret)
    if err != nil || claims.Type != "refresh" {
        return nil, ErrInvalidToken
    }

    user, err := s.repo.GetUserByID(ctx, claims.UserID)
    if err != nil {
        return nil, ErrInvalidToken
    }
    if user.IsBanned {
        return nil, ErrAccountBanned
    }

    return s.buildAuthResponse(user)
}

// ValidateToken parses and verifies an access or refresh token
func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
    claims, err := utils.ValidateJWT(token, s.cfg.JWTSecret)
    if err != nil {
        return nil, ErrInvalidToken
    }
    if time.Now().Unix() > claims.ExpiresAt {
        return nil, ErrInvalidToken
    }
    return claims, nil
}

func (s *service) GetUserByID(ctx context.Context, id int64) (*User, error) {
    return s.repo.GetUserByID(ctx, id)
}

// buildAuthResponse generates the access/refresh token pair for a user
func (s *service) buildAuthResponse(user *User) (*AuthResponse, error) {
    now := time.Now()

    accessToken, err := utils.GenerateJWT(&utils.JWTClaims{
        UserID:    user.ID,
        Email:     user.Email,
        Username:  user.Username,
        IsAdmin:   user.IsAdmin,
        Type:      "access",
        ExpiresAt: now.Add(s.cfg.AccessTokenExpiry).Unix(),
        IssuedAt:  now.Unix(),
        NotBefore: now.Unix(),
        Issuer:    "peercircle",
        Subject:   strconv.FormatInt(user.ID, 10),
    }, s.cfg.JWTSecret)
    if err != nil {
        return nil, err
    }

    refreshToken, err := utils.GenerateJWT(&utils.JWTClaims{
        UserID:    user.ID,
        Type:      "refresh",
        ExpiresAt: now.Add(s.cfg.RefreshTokenExpiry).Unix(),
        IssuedAt:  now.Unix(),
        NotBefore: now.Unix(),
        Issuer:    "peercircle",
        Subject:   strconv.FormatInt(user.ID, 10),
    }, s.cfg.JWTSecret)
    if err != nil {
        return nil, err
    }

    return &AuthResponse{
        User:         user,
        AccessToken:  accessToken,
        RefreshToken: refreshToken,
        ExpiresIn:    int(s.cfg.AccessTokenExpiry.Seconds()),
        TokenType:    "Bearer",
    }, nil
}
