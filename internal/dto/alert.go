package dto

// AlertDecision is the outcome of evaluating a subject update against
// the attendance threshold. It fires only on the transition from at or
// above threshold to below it; delivery is the caller's concern.
type AlertDecision struct {
	ShouldAlert        bool    `json:"shouldAlert"`
	UserID             string  `json:"userId"`
	SubjectID          string  `json:"subjectId"`
	SubjectName        string  `json:"subjectName"`
	PreviousPercentage float64 `json:"previousPercentage"`
	CurrentPercentage  float64 `json:"currentPercentage"`
}
