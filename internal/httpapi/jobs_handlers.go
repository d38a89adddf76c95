package httpapi

import (
	"net/http"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/store"
)

type JobsHandler struct {
	DB *store.DB
}

// List serves GET /jobs. Filters map one-to-one onto store.ListJobsOpts;
// only active jobs are returned unless ?all=true.
func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := h.DB.ListJobs(r.Context(), store.ListJobsOpts{
		Company:    q.Get("company"),
		Source:     q.Get("source"),
		Country:    q.Get("country"),
		City:       q.Get("city"),
		Department: q.Get("department"),
		Tag:        q.Get("tag"),
		Query:      q.Get("q"),
		ActiveOnly: !queryBool(r, "all"),
		Window:     q.Get("window"),
		Sort:       q.Get("sort"),
		Limit:      queryInt(r, "limit", 500),
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	WriteJSON(w, http.StatusOK, jobs)
}

func (h JobsHandler) Companies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	companies, err := h.DB.ListCompanies(r.Context(), store.CompanyFilter{
		Source:     q.Get("source"),
		Name:       q.Get("name"),
		ActiveOnly: !queryBool(r, "all"),
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if companies == nil {
		companies = []domain.Company{}
	}
	WriteJSON(w, http.StatusOK, companies)
}
