package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/mergington/internal/domain/model"
)

// ActivityReader exposes the activity catalogue.
type ActivityReader interface {
	ListActivities(ctx context.Context) map[string]model.Activity
	GetActivity(ctx context.Context, name string) (model.Activity, error)
}

// HistoryReader exposes the registration journal.
type HistoryReader interface {
	History(ctx context.Context, name string, limit int) ([]model.RegistrationEvent, error)
}

// ActivitiesHandler handles the read-only activity routes.
type ActivitiesHandler struct {
	activities ActivityReader
	history    HistoryReader
	maxLimit   int
}

// NewActivitiesHandler creates a new activities handler.
func NewActivitiesHandler(activities ActivityReader, history HistoryReader, maxLimit int) *ActivitiesHandler {
	if maxLimit < 1 {
		maxLimit = defaultMaxHistory
	}
	return &ActivitiesHandler{activities: activities, history: history, maxLimit: maxLimit}
}

// HandleList handles GET /activities.
func (h *ActivitiesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.activities.ListActivities(r.Context()))
}

// HandleGet handles GET /activities/{activity_name}.
func (h *ActivitiesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.activities.GetActivity(r.Context(), r.PathValue("activity_name"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleHistory handles GET /activities/{activity_name}/history?limit=N.
func (h *ActivitiesHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("activity_name")
	if _, err := h.activities.GetActivity(r.Context(), name); err != nil {
		writeServiceError(w, r, err)
		return
	}

	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", "limit must not exceed "+strconv.Itoa(h.maxLimit))
			return
		}
		limit = n
	}

	events, err := h.history.History(r.Context(), name, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
