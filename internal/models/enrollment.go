package models

import "math"

// Enrollment links one student to one course. At most one row exists per
// (student, course) pair, enforced by a storage-level uniqueness constraint.
// Scores default to 0 and are unconstrained in range.
type Enrollment struct {
	ID           string  `db:"id" json:"id"`
	StudentID    string  `db:"student_id" json:"student_id"`
	CourseID     string  `db:"course_id" json:"course_id"`
	MidtermScore float64 `db:"midterm_score" json:"midterm_score"`
	FinalScore   float64 `db:"final_score" json:"final_score"`
}

// Average returns the enrollment average rounded to two decimals.
func (e Enrollment) Average() float64 {
	return round2((e.MidtermScore + e.FinalScore) / 2)
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseName  string `db:"course_name" json:"course_name"`
}

// GradedEnrollment is an EnrollmentDetail with its derived average.
type GradedEnrollment struct {
	EnrollmentDetail
	Average float64 `json:"average"`
}

// Graded attaches the computed average to an enrollment detail.
func Graded(detail EnrollmentDetail) GradedEnrollment {
	return GradedEnrollment{EnrollmentDetail: detail, Average: detail.Average()}
}

// SemesterAverage returns the mean of the enrollment averages rounded to
// two decimals, or 0 for an empty set.
func SemesterAverage(enrollments []EnrollmentDetail) float64 {
	if len(enrollments) == 0 {
		return 0
	}
	var total float64
	for _, e := range enrollments {
		total += e.Average()
	}
	return round2(total / float64(len(enrollments)))
}

// ScoreUpdate carries a per-enrollment partial score update. A nil field
// leaves the corresponding score unchanged.
type ScoreUpdate struct {
	EnrollmentID string   `json:"enrollment_id" validate:"required"`
	Midterm      *float64 `json:"midterm_score,omitempty"`
	Final        *float64 `json:"final_score,omitempty"`
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
