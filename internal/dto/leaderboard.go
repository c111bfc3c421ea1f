package dto

// LeaderboardEntry is one ranked row of the public leaderboard. Users
// without any recorded classes are excluded before ranking.
type LeaderboardEntry struct {
	Rank            int     `json:"rank"`
	Name            string  `json:"name"`
	Semester        int     `json:"semester"`
	Batch           string  `json:"batch"`
	TotalClasses    int     `json:"totalClasses"`
	AttendedClasses int     `json:"attendedClasses"`
	Percentage      float64 `json:"percentage"`
}
