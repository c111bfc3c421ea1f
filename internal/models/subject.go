package models

import "time"

// Subject is one course's attendance ledger for one user. Total and
// attended are mutated independently by increment edits; the ledger
// intentionally tolerates attended exceeding total (see pkg/attendance).
type Subject struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	Total     int       `db:"total_classes" json:"total"`
	Attended  int       `db:"attended_classes" json:"attended"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
