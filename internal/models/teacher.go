package models

// Teacher represents an instructor record, optionally linked to an account.
type Teacher struct {
	ID     string  `db:"id" json:"id"`
	UserID *string `db:"user_id" json:"user_id,omitempty"`
	Name   string  `db:"name" json:"name"`
}

// CreateTeacherRequest adds a teacher record to the directory. UserID links
// the record to an existing account so the owner resolves as a teacher.
type CreateTeacherRequest struct {
	Name   string  `json:"name" validate:"required"`
	UserID *string `json:"user_id,omitempty"`
}
