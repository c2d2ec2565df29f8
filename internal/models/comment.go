package models

import "time"

// Comment is a message posted on a course. Immutable after creation except
// deletion by its author.
type Comment struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CommentDetail enriches Comment with the author's display name.
type CommentDetail struct {
	Comment
	AuthorName string `db:"author_name" json:"author_name"`
}

// CreateCommentRequest posts a comment on a course.
type CreateCommentRequest struct {
	Content string `json:"content"`
}
