package domain

type CompanyDailyStat struct {
	StatDate    string `json:"statDate"` // YYYY-MM-DD
	CompanyName string `json:"company"`
	Source      string `json:"source"`
	ActiveJobs  int    `json:"activeJobs"`
	NewJobs     int    `json:"newJobs"`
	ClosedJobs  int    `json:"closedJobs"`
	NetChange   int    `json:"netChange"`
}

const (
	AlertSurge      = "surge"
	AlertGoneDark   = "gone_dark"
	AlertSlowdown   = "slowdown"
	AlertNewEntrant = "new_entrant"
)

type Alert struct {
	Type        string  `json:"type"`
	CompanyName string  `json:"company"`
	Message     string  `json:"message"`
	ActiveJobs  int     `json:"activeJobs"`
	NewJobs     int     `json:"newJobs"`
	NetChange   int     `json:"netChange"`
	Momentum    float64 `json:"momentum"`
}
