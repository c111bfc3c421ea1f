package dto

import "github.com/bunkmate/bunkmate-api/pkg/attendance"

// SubjectBreakdown is one subject's computed dashboard row.
type SubjectBreakdown struct {
	SubjectID     string          `json:"subjectId"`
	Name          string          `json:"name"`
	Total         int             `json:"total"`
	Attended      int             `json:"attended"`
	Percentage    float64         `json:"percentage"`
	ClassesNeeded int             `json:"classesNeeded"`
	BunkSlack     int             `json:"bunkSlack"`
	Status        attendance.Band `json:"status"`
}

// DashboardResponse is the per-user rollup shown on page load.
type DashboardResponse struct {
	OverallPercentage float64            `json:"overallPercentage"`
	TotalClasses      int                `json:"totalClasses"`
	AttendedClasses   int                `json:"attendedClasses"`
	Subjects          []SubjectBreakdown `json:"subjects"`
}

// PredictionResponse is the bunk simulator output for one subject.
type PredictionResponse struct {
	SubjectID     string  `json:"subjectId"`
	SubjectName   string  `json:"subjectName"`
	ClassesToMiss int     `json:"classesToMiss"`
	Current       float64 `json:"current"`
	Projected     float64 `json:"projected"`
	Safe          bool    `json:"safe"`
}
