package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/stats"
)

type StatsHandler struct {
	Stats *stats.Engine
}

func (h StatsHandler) Companies(w http.ResponseWriter, r *http.Request) {
	day, ok := queryDay(r, "date")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "bad_date", "date must be YYYY-MM-DD")
		return
	}
	rows, err := h.Stats.CompanyStats(r.Context(), day)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if rows == nil {
		rows = []stats.CompanyStat{}
	}
	WriteJSON(w, http.StatusOK, rows)
}

func (h StatsHandler) Company(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rows, err := h.Stats.History(r.Context(), name, queryInt(r, "days", 30))
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if len(rows) == 0 {
		WriteError(w, r, http.StatusNotFound, "unknown_company", "no stats for "+name)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"company": name, "history": rows})
}

func (h StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Stats.Summary(r.Context(), queryInt(r, "days", 7))
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, sum)
}

// Alerts re-evaluates the rules for ?date against stored stats.
func (h StatsHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	day, ok := queryDay(r, "date")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "bad_date", "date must be YYYY-MM-DD")
		return
	}
	alerts, err := h.Stats.DetectAlerts(r.Context(), day)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"date": stats.Day(day), "alerts": alerts})
}
