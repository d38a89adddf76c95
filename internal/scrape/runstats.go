package scrape

import "sync"

// RunCounts summarises one scrape run.
type RunCounts struct {
	Attempted       int `json:"attempted"`
	SuccessWithJobs int `json:"success_with_jobs"`
	SuccessZeroJobs int `json:"success_zero_jobs"`
	Failed          int `json:"failed"`
	TotalJobs       int `json:"total_jobs"`
	Upgraded        int `json:"upgraded"`
}

// RunStats is safe for concurrent workers.
type RunStats struct {
	mu sync.Mutex
	c  RunCounts
}

func (r *RunStats) Record(res Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.c.Attempted++
	switch {
	case err != nil:
		r.c.Failed++
	case len(res.Jobs) == 0:
		r.c.SuccessZeroJobs++
	default:
		r.c.SuccessWithJobs++
		r.c.TotalJobs += len(res.Jobs)
	}
}

// Upgraded counts a career page moved to a vendor API.
func (r *RunStats) Upgraded() {
	r.mu.Lock()
	r.c.Upgraded++
	r.mu.Unlock()
}

func (r *RunStats) Counts() RunCounts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.c
}
