// internal/profile/routes.go

package profile

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/peercircle/peercircle-backend/internal/auth"
)

// RegisterRoutes registers all profile routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	protected := router.PathPrefix("/api/v1/profile").Subrouter()
	protected.Use(authMiddleware.Authenticate)

	protected.HandleFunc("", handler.GetMyProfile).Methods(http.MethodGet)
	protected.HandleFunc("", handler.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/interests", handler.UpdateInterests).Methods(http.MethodPut)
	protected.HandleFunc("/availability", handler.UpdateAvailability).Methods(http.MethodPut)
	protected.HandleFunc("/complete", handler.CompleteOnboarding).Methods(http.MethodPost)
}
