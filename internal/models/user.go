package models

import "time"

// Role classifies an authenticated identity. Exactly one role applies per
// request, resolved with fixed precedence: admin > teacher > student >
// unaffiliated.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleTeacher      Role = "TEACHER"
	RoleStudent      Role = "STUDENT"
	RoleUnaffiliated Role = "UNAFFILIATED"
)

// User represents an account stored in the users table. Credentials and the
// staff flag live here; teacher/student affiliation is held by the linked
// Teacher and Student rows.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	IsStaff      bool      `db:"is_staff" json:"is_staff"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Identity is the per-request view of an authenticated user with its role
// resolved once. TeacherID/StudentID are set whenever a linked record
// exists, independent of the winning role.
type Identity struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email"`
	FullName  string  `json:"full_name"`
	Role      Role    `json:"role"`
	TeacherID *string `json:"teacher_id,omitempty"`
	StudentID *string `json:"student_id,omitempty"`
}
