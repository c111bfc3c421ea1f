package models

import "time"

// User represents an account stored in the users table. Subject records
// reference it through their user_id column.
type User struct {
	ID                   string    `db:"id" json:"id"`
	Email                string    `db:"email" json:"email"`
	PasswordHash         string    `db:"password_hash" json:"-"`
	Name                 string    `db:"name" json:"name"`
	Semester             int       `db:"semester" json:"semester"`
	Batch                string    `db:"batch" json:"batch"`
	NotificationsEnabled bool      `db:"notifications_enabled" json:"notificationsEnabled"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time `db:"updated_at" json:"updatedAt"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	NotificationsEnabled *bool
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
