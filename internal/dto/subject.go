package dto

// CreateSubjectRequest adds a new subject ledger for the current user.
type CreateSubjectRequest struct {
	Name     string `json:"name" validate:"required"`
	Total    int    `json:"total" validate:"min=0"`
	Attended int    `json:"attended" validate:"min=0"`
}

// UpdateSubjectRequest mutates ledger fields independently. Nil pointers
// leave the stored value untouched, matching the original increment
// semantics where total and attended change one at a time.
type UpdateSubjectRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Total    *int    `json:"total" validate:"omitempty,min=0"`
	Attended *int    `json:"attended" validate:"omitempty,min=0"`
}
