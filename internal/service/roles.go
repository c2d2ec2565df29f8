package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/course-score-api/internal/models"
	appErrors "github.com/noah-isme/course-score-api/pkg/errors"
)

type roleUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type roleTeacherReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
}

type roleStudentReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

// RoleResolver classifies an authenticated user into exactly one role per
// request. Precedence is fixed: admin > teacher > student > unaffiliated;
// the staff flag wins even when a Teacher record is linked. Affiliation IDs
// are carried regardless of the winning role so operations gated on "has a
// Student record" keep working for staff accounts.
type RoleResolver struct {
	users    roleUserReader
	teachers roleTeacherReader
	students roleStudentReader
	logger   *zap.Logger
}

// NewRoleResolver constructs a RoleResolver.
func NewRoleResolver(users roleUserReader, teachers roleTeacherReader, students roleStudentReader, logger *zap.Logger) *RoleResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleResolver{users: users, teachers: teachers, students: students, logger: logger}
}

// Resolve loads the account and its affiliations and returns the resolved
// identity for the request.
func (r *RoleResolver) Resolve(ctx context.Context, userID string) (*models.Identity, error) {
	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	identity := &models.Identity{UserID: user.ID, Email: user.Email, FullName: user.FullName}

	teacher, err := r.teachers.FindByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher link")
	}
	if teacher != nil {
		identity.TeacherID = &teacher.ID
	}

	student, err := r.students.FindByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student link")
	}
	if student != nil {
		identity.StudentID = &student.ID
	}

	switch {
	case user.IsStaff:
		identity.Role = models.RoleAdmin
	case identity.TeacherID != nil:
		identity.Role = models.RoleTeacher
	case identity.StudentID != nil:
		identity.Role = models.RoleStudent
	default:
		identity.Role = models.RoleUnaffiliated
	}

	return identity, nil
}
