package matching

import (
    "errors"
    "net/http"

    "github.com/peercircle/peercircle-backend/internal/common/utils"
)

type Handler struct {
    service Service
    admin   *AdminService
    hub     *Hub
}

func NewHandler(service Service, admin *AdminService, hub *Hub) *Handler {
    return &Handler{service: service, admin: admin, hub: hub}
}

// RunMatching triggers a synchronous matching run and persists the outcome.
// A run with zero groups is reported as a success so operators can tell
// "nobody was eligible this week" apart from a crash.
func (h *Handler) RunMatching(w http.ResponseWriter, r *http.Request) {
    results, err := h.service.RunWeeklyMatching(r.Context(), TriggerAdmin)
    if err != nil {
        if errors.Is(err, ErrRunInProgress) {
            utils.RespondWithError(w, http.StatusConflict, err.Error())
            return
        }
        utils.RespondWithError(w, http.StatusInternalServerError, "Matching run failed")
        return
    }

    message := "Matching run completed"
    if results.Stats.GroupsFormed == 0 {
        message = "Matching run completed: no eligible groupings this week"
    }

    utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
        "message": message,
        "run_id":  results.RunID,
        "week":    results.Week,
        "stats":   results.Stats,
    })
}

// PreviewMatching runs the engine without persisting, for inspecting what
// the next run would produce.
func (h *Handler) PreviewMatching(w http.ResponseWriter, r *http.Request) {
    results, err := h.service.PreviewMatching(r.Context())
    if err != nil {
        utils.RespondWithError(w, http.StatusInternalServerError, "Matching preview failed")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, results)
}

func (h *Handler) GetGroups(w http.ResponseWriter, r *http.Request) {
    week := r.URL.Query().Get("week")

    groups, err := h.service.GetGroupsByWeek(r.Context(), week)
    if err != nil {
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get groups")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, groups)
}

func (h *Handler) GetMyGroup(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    group, err := h.service.GetMyGroup(r.Context(), userID)
    if err != nil {
        if errors.Is(err, ErrGroupNotFound) {
            utils.RespondWithError(w, http.StatusNotFound, "No active group this week")
            return
        }
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get group")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, group)
}

func (h *Handler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
    run, err := h.service.GetLatestRun(r.Context())
    if err != nil {
        if errors.Is(err, ErrNoRunsRecorded) {
            utils.RespondWithError(w, http.StatusNotFound, err.Error())
            return
        }
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get latest run")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, run)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
    stats, err := h.admin.GetMatchingStats(r.Context())
    if err != nil {
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to collect matching stats")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
    h.hub.ServeWS(w, r)
}
