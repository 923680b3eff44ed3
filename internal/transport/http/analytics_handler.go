package http

import (
	"net/http"
	"strconv"

	"studysync/internal/app"
)

// AnalyticsHandler serves the dashboard aggregate and the leaderboard.
type AnalyticsHandler struct {
	analytics *app.AnalyticsService
}

func NewAnalyticsHandler(analytics *app.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) get(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Message: "not authenticated"})
		return
	}
	analytics, err := h.analytics.GetAnalytics(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func (h *AnalyticsHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	entries, err := h.analytics.GetLeaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
