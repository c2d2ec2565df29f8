package models

// Student represents a learner record, optionally linked to an account.
// Avatar holds a path or URL; binary storage is out of scope.
type Student struct {
	ID     string  `db:"id" json:"id"`
	UserID *string `db:"user_id" json:"user_id,omitempty"`
	Name   string  `db:"name" json:"name"`
	Avatar *string `db:"avatar" json:"avatar,omitempty"`
}

// UpdateProfileRequest edits the caller's student name and avatar.
type UpdateProfileRequest struct {
	Name   string  `json:"name" validate:"required"`
	Avatar *string `json:"avatar,omitempty"`
}
