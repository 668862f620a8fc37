package models

// DashboardStats is the payload served by GET /api/stats.
type DashboardStats struct {
	TotalStudents    int `json:"totalStudents"`
	ClassesThisWeek  int `json:"classesThisWeek"`
	RevenueThisMonth int `json:"revenueThisMonth"`
	UnpaidCount      int `json:"unpaidCount"`
}

// EarningsBreakdown covers the entire session history, not a calendar window.
type EarningsBreakdown struct {
	TotalEarned      int `json:"totalEarned"`
	TotalCollected   int `json:"totalCollected"`
	TotalOutstanding int `json:"totalOutstanding"`
}
