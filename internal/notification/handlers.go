package notifications

import (
    "encoding/json"
    "net/http"

    "github.com/peercircle/peercircle-backend/internal/auth"
    "github.com/peercircle/peercircle-backend/internal/common/utils"
)

// RegisterPushTokenRequest represents request to register a push token
type RegisterPushTokenRequest struct {
    Platform Platform `json:"platform" validate:"required,oneof=ios android web"`
    Token    string   `json:"token" validate:"required"`
    DeviceID string   `json:"device_id" validate:"required"`
}

// Handler handles HTTP requests for notification settings
type Handler struct {
    repo Repository
}

// NewHandler creates a new notification handler
func NewHandler(repo Repository) *Handler {
    return &Handler{repo: repo}
}

// RegisterPushToken handles POST /api/v1/notifications/push-token
func (h *Handler) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
    userID, ok := auth.GetUserIDFromContext(r.Context())
    if !ok {
        utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    var req RegisterPushTokenRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
        return
    }
    if err := utils.ValidateStruct(&req); err != nil {
        utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
        return
    }

    token := &PushToken{
        UserID:   userID,
        Platform: req.Platform,
        Token:    req.Token,
        DeviceID: req.DeviceID,
    }
    if err := h.repo.RegisterPushToken(r.Context(), token); err != nil {
        utils.ErrorResponse(w, "Failed to register push token", http.StatusInternalServerError)
        return
    }

    utils.SuccessResponse(w, token, http.StatusCreated)
}

// UnregisterPushToken handles DELETE /api/v1/notifications/push-token/{deviceID}
func (h *Handler) UnregisterPushToken(w http.ResponseWriter, r *http.Request) {
    userID, ok := auth.GetUserIDFromContext(r.Context())
    if !ok {
        utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    deviceID := r.URL.Query().Get("device_id")
    if deviceID == "" {
        utils.ErrorResponse(w, "device_id is required", http.StatusBadRequest)
        return
    }

    if err := h.repo.DeactivatePushToken(r.Context(), userID, deviceID); err != nil {
        utils.ErrorResponse(w, "Failed to unregister push token", http.StatusInternalServerError)
        return
    }

    utils.SuccessResponse(w, map[string]string{"status": "removed"}, http.StatusOK)
}
