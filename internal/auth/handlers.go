// internal/auth/handlers.go

package auth

import (
    "encoding/json"
    "errors"
    "net/http"

    "github.com/peercircle/peercircle-backend/internal/common/utils"
)

// Handler handles HTTP requests for authentication
type Handler struct {
    service Service
}

// NewHandler creates a new auth handler
func NewHandler(service Service) *Handler {
    return &Handler{service: service}
}

// Signup handles POST /api/v1/auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
    var req SignupRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if err := utils.ValidateStruct(&req); err != nil {
        utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
        return
    }

    resp, err := h.service.Signup(r.Context(), &req)
    if err != nil {
        if errors.Is(err, ErrDuplicateUser) {
            utils.ErrorResponse(w, "Email or username already in use", http.StatusConflict)
            return
        }
        utils.ErrorResponse(w, "Failed to create account", http.StatusInternalServerError)
        return
    }

    utils.SuccessResponse(w, resp, http.StatusCreated)
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
    var req LoginRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if err := utils.ValidateStruct(&req); err != nil {
        utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
        return
    }

    resp, err := h.service.Login(r.Context(), &req)
    if err != nil {
        switch {
        case errors.Is(err, ErrInvalidCredentials):
            utils.ErrorResponse(w, "Invalid email or password", http.StatusUnauthorized)
        case errors.Is(err, ErrAccountBanned):
            utils.ErrorResponse(w, "Account is suspended", http.StatusForbidden)
        default:
            utils.ErrorResponse(w, "Failed to sign in", http.StatusInternalServerError)
        }
        return
    }

    utils.SuccessResponse(w, resp, http.StatusOK)
}

// RefreshToken handles POST /api/v1/auth/refresh
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
    var req RefreshTokenRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if err := utils.ValidateStruct(&req); err != nil {
        utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
        return
    }

    resp, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
    if err != nil {
        utils.ErrorResponse(w, "Invalid or expired refresh token", http.StatusUnauthorized)
        return
    }

    utils.SuccessResponse(w, resp, http.StatusOK)
}

// Me handles GET /api/v1/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
    userID, ok := GetUserIDFromContext(r.Context())
    if !ok {
        utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    user, err := h.service.GetUserByID(r.Context(), userID)
    if err != nil {
        utils.ErrorResponse(w, "User not found", http.StatusNotFound)
        return
    }

    utils.SuccessResponse(w, user, http.StatusOK)
}
