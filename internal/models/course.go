package models

// Course represents a taught course. Every course has exactly one teacher.
type Course struct {
	ID         string `db:"id" json:"id"`
	CourseCode string `db:"course_code" json:"course_code"`
	Name       string `db:"name" json:"name"`
	TeacherID  string `db:"teacher_id" json:"teacher_id"`
}

// CourseDetail enriches Course with the teacher name.
type CourseDetail struct {
	Course
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}

// CourseListing is the role-scoped payload of the course list endpoint.
// Admins and teachers receive Courses; students receive the disjoint
// Enrolled/Available partitions plus their semester average.
type CourseListing struct {
	Role            Role               `json:"role"`
	Courses         []CourseDetail     `json:"courses,omitempty"`
	Enrolled        []GradedEnrollment `json:"enrolled,omitempty"`
	Available       []CourseDetail     `json:"available,omitempty"`
	SemesterAverage *float64           `json:"semester_average,omitempty"`
}

// CourseView is the course detail payload: the course, its graded roster
// and its comments, newest first.
type CourseView struct {
	Course   CourseDetail       `json:"course"`
	Roster   []GradedEnrollment `json:"roster"`
	Comments []CommentDetail    `json:"comments"`
}

// CreateCourseRequest creates a course. TeacherID is honored for admins
// only; teacher callers always own the created course.
type CreateCourseRequest struct {
	Name       string `json:"name"`
	CourseCode string `json:"course_code"`
	TeacherID  string `json:"teacher_id,omitempty"`
}
