// internal/auth/routes.go

package auth

import (
    "net/http"

    "github.com/gorilla/mux"
)

// RegisterRoutes wires the auth endpoints onto the router
func RegisterRoutes(router *mux.Router, handler *Handler, middleware *Middleware) {
    public := router.PathPrefix("/api/v1/auth").Subrouter()
    public.HandleFunc("/signup", handler.Signup).Methods(http.MethodPost)
    public.HandleFunc("/login", handler.Login).Methods(http.MethodPost)
    public.HandleFunc("/refresh", handler.RefreshToken).Methods(http.MethodPost)

    protected := router.PathPrefix("/api/v1/auth").Subrouter()
    protected.Use(middleware.Authenticate)
    protected.HandleFunc("/me", handler.Me).Methods(http.MethodGet)
}
