package matching

import (
    "github.com/gorilla/mux"

    "github.com/peercircle/peercircle-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    api := router.PathPrefix("/api/v1/matching").Subrouter()
    api.Use(authMiddleware.Authenticate)

    // Member surfaces
    api.HandleFunc("/my-group", handler.GetMyGroup).Methods("GET")
    api.HandleFunc("/ws", handler.ServeWS).Methods("GET")

    // Admin surfaces
    admin := api.NewRoute().Subrouter()
    admin.Use(authMiddleware.RequireAdmin)
    admin.HandleFunc("/run", handler.RunMatching).Methods("POST")
    admin.HandleFunc("/preview", handler.PreviewMatching).Methods("GET")
    admin.HandleFunc("/groups", handler.GetGroups).Methods("GET")
    admin.HandleFunc("/runs/latest", handler.GetLatestRun).Methods("GET")
    admin.HandleFunc("/stats", handler.GetStats).Methods("GET")
}
