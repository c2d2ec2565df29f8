package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/course-score-api/internal/models"
	appErrors "github.com/noah-isme/course-score-api/pkg/errors"
	"github.com/noah-isme/course-score-api/pkg/export"
)

// ExportFile bundles rendered export content with its HTTP metadata.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders a course's grade sheet as CSV or PDF. Access
// follows the grading gate: admins and the owning teacher only.
type ExportService struct {
	courses     courseReader
	enrollments enrollmentLister
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(courses courseReader, enrollments enrollmentLister, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{courses: courses, enrollments: enrollments, csv: csv, pdf: pdf, logger: logger}
}

// GradeSheet renders the course grade sheet in the requested format.
func (s *ExportService) GradeSheet(ctx context.Context, identity *models.Identity, courseID, format string) (*ExportFile, error) {
	course, err := s.courses.FindDetailByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if identity == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if identity.Role != models.RoleAdmin && (identity.TeacherID == nil || *identity.TeacherID != course.TeacherID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the course teacher or an admin may export grades")
	}

	roster, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Midterm", "Final", "Average"},
		Rows:    make([]map[string]string, 0, len(roster)),
	}
	for _, e := range roster {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student": e.StudentName,
			"Midterm": formatScore(e.MidtermScore),
			"Final":   formatScore(e.FinalScore),
			"Average": formatScore(e.Average()),
		})
	}

	title := fmt.Sprintf("%s %s", course.CourseCode, course.Name)
	switch format {
	case "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("%s-grades.csv", course.CourseCode),
		}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("%s-grades.pdf", course.CourseCode),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
