package dto

// SubjectStanding names a subject sitting below the threshold.
type SubjectStanding struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// WeeklyReportSummary is the per-user recurring report payload.
type WeeklyReportSummary struct {
	UserID            string            `json:"userId"`
	Name              string            `json:"name"`
	Email             string            `json:"email"`
	OverallPercentage float64           `json:"overallPercentage"`
	TotalClasses      int               `json:"totalClasses"`
	AttendedClasses   int               `json:"attendedClasses"`
	BelowThreshold    []SubjectStanding `json:"belowThresholdSubjects"`
}

// WeeklyRunResult summarises one batch execution of the report job.
type WeeklyRunResult struct {
	UsersProcessed int `json:"usersProcessed"`
	ReportsSent    int `json:"reportsSent"`
	Failures       int `json:"failures"`
}
