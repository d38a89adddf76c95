package poll

import (
	"sync/atomic"
	"time"
)

// RunStatus is the last known state of the runner, served on /status.
type RunStatus struct {
	Running   bool    `json:"running"`
	LastRunAt string  `json:"last_run_at,omitempty"`
	LastOkAt  string  `json:"last_ok_at,omitempty"`
	LastError string  `json:"last_error,omitempty"`
	Last      *Report `json:"last_report,omitempty"`
}

// Status holds a RunStatus behind an atomic.Value so readers never block
// a running stage.
type Status struct {
	v atomic.Value
}

func (s *Status) Load() RunStatus {
	if st, ok := s.v.Load().(RunStatus); ok {
		return st
	}
	return RunStatus{}
}

func (s *Status) start(at time.Time) {
	st := s.Load()
	st.Running = true
	st.LastRunAt = at.Format(time.RFC3339)
	s.v.Store(st)
}

func (s *Status) finish(rep Report, err error) {
	st := s.Load()
	st.Running = false
	st.Last = &rep
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
		st.LastOkAt = rep.FinishedAt.Format(time.RFC3339)
	}
	s.v.Store(st)
}
