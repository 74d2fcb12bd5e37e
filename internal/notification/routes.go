package notifications

import (
    "net/http"

    "github.com/gorilla/mux"

    "github.com/peercircle/peercircle-backend/internal/auth"
)

// RegisterRoutes wires the notification endpoints onto the router
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    protected := router.PathPrefix("/api/v1/notifications").Subrouter()
    protected.Use(authMiddleware.Authenticate)

    protected.HandleFunc("/push-token", handler.RegisterPushToken).Methods(http.MethodPost)
    protected.HandleFunc("/push-token", handler.UnregisterPushToken).Methods(http.MethodDelete)
}
