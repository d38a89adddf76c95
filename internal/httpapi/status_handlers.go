package httpapi

import (
	"net/http"

	"hireassist-engine/internal/poll"
	"hireassist-engine/internal/store"
)

type StatusHandler struct {
	DB   *store.DB
	Poll *poll.Status
}

func (h StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	var run poll.RunStatus
	if h.Poll != nil {
		run = h.Poll.Load()
	}
	candidates, err := h.DB.CandidateCounts(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"run":        run,
		"candidates": candidates,
	})
}
