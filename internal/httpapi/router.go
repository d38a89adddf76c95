package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter wires the query API. Everything except the secrets endpoint is
// read-only.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID, Recover, AccessLog, Cors)

	r.Get("/health", HealthHandler{DB: d.DB}.Health)

	jh := JobsHandler{DB: d.DB}
	r.Get("/jobs", jh.List)
	r.Get("/companies", jh.Companies)

	sh := StatsHandler{Stats: d.Stats}
	r.Route("/stats", func(r chi.Router) {
		r.Get("/companies", sh.Companies)
		r.Get("/company/{name}", sh.Company)
		r.Get("/summary", sh.Summary)
		r.Get("/alerts", sh.Alerts)
	})

	r.Get("/status", StatusHandler{DB: d.DB, Poll: d.Status}.Status)
	r.Get("/events", EventsHandler{Hub: d.Hub}.ServeSSE)

	ch := ConfigHandler{Config: d.Config, Path: d.ConfigPath}
	r.Get("/config", ch.Get)
	r.Get("/config/path", ch.GetPath)
	r.Get("/config/validate", ch.Validate)

	r.Put("/secrets/{name}", SecretsHandler{Set: d.SetSecret}.Put)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, "not_found", "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}
