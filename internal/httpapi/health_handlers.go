package httpapi

import (
	"net/http"

	"hireassist-engine/internal/store"
)

type HealthHandler struct {
	DB *store.DB
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.Pool.PingContext(r.Context()); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "database unavailable"})
		return
	}
	active, err := h.DB.ActiveJobCount(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "active_jobs": active})
}
