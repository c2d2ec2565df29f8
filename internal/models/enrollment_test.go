package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrollmentAverage(t *testing.T) {
	e := Enrollment{MidtermScore: 80, FinalScore: 90}
	assert.Equal(t, 85.0, e.Average())

	e = Enrollment{MidtermScore: 30, FinalScore: 40}
	assert.Equal(t, 35.0, e.Average())

	// midterm graded, final still at its zero default
	e = Enrollment{MidtermScore: 70}
	assert.Equal(t, 35.0, e.Average())

	e = Enrollment{}
	assert.Equal(t, 0.0, e.Average())

	e = Enrollment{MidtermScore: 70.5, FinalScore: 80.2}
	assert.Equal(t, 75.35, e.Average())
}

func TestSemesterAverageEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, SemesterAverage(nil))
	assert.Equal(t, 0.0, SemesterAverage([]EnrollmentDetail{}))
}

func TestSemesterAverageMeanOfAverages(t *testing.T) {
	enrollments := []EnrollmentDetail{
		{Enrollment: Enrollment{MidtermScore: 80, FinalScore: 90}},
		{Enrollment: Enrollment{MidtermScore: 30, FinalScore: 40}},
	}
	assert.Equal(t, 60.0, SemesterAverage(enrollments))
}

func TestGradedCarriesAverage(t *testing.T) {
	detail := EnrollmentDetail{
		Enrollment:  Enrollment{ID: "enr-1", MidtermScore: 60, FinalScore: 70},
		StudentName: "Alice",
	}
	graded := Graded(detail)
	assert.Equal(t, 65.0, graded.Average)
	assert.Equal(t, "Alice", graded.StudentName)
}
