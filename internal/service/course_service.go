package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/grading"
	"github.com/sigra-edu/sigra-api/internal/models"
	"github.com/sigra-edu/sigra-api/internal/repository"
)

// ErrCourseNotFound indicates the requested course does not exist.
var ErrCourseNotFound = errors.New("course not found")

// ErrNotCourseOwner indicates the acting teacher does not teach the course.
var ErrNotCourseOwner = errors.New("course not owned by teacher")

// Actor identifies the authenticated caller inside service calls. It replaces
// ambient session state: handlers build it from the verified token and pass
// it down explicitly.
type Actor struct {
	ID   uint
	Role string
}

// IsTeacher reports whether the actor holds the teacher role.
func (a Actor) IsTeacher() bool {
	return a.Role == models.RoleTeacher
}

// CourseService exposes course browsing and validation use cases.
type CourseService interface {
	ListForActor(ctx context.Context, actor Actor) ([]dto.CourseResponse, error)
	Roster(ctx context.Context, actor Actor, courseCode string, periodID *uint) ([]dto.RosterEntry, error)
	Periods(ctx context.Context, courseCode string) ([]dto.PeriodResponse, error)
	MyEnrollment(ctx context.Context, actor Actor, courseCode string) (dto.EnrollmentRef, error)
	Validation(ctx context.Context, courseCode string) (dto.CourseValidationResponse, error)
	ResolveAny(ctx context.Context, courseCode string) (models.Course, error)
	ResolveOwned(ctx context.Context, actor Actor, courseCode string) (models.Course, error)
}

type courseService struct {
	courses     repository.CourseRepository
	outcomes    repository.OutcomeRepository
	enrollments repository.EnrollmentRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewCourseService builds a new course service.
func NewCourseService(courses repository.CourseRepository, outcomes repository.OutcomeRepository, enrollments repository.EnrollmentRepository, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:     courses,
		outcomes:    outcomes,
		enrollments: enrollments,
		logger:      logger.With().Str("component", "course_service").Logger(),
		now:         time.Now,
	}
}

func (s *courseService) ListForActor(ctx context.Context, actor Actor) ([]dto.CourseResponse, error) {
	var (
		courses []models.Course
		err     error
	)
	if actor.IsTeacher() {
		courses, err = s.courses.ListByTeacher(ctx, actor.ID)
	} else {
		courses, err = s.courses.ListByStudent(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) Roster(ctx context.Context, actor Actor, courseCode string, periodID *uint) ([]dto.RosterEntry, error) {
	course, err := s.ResolveOwned(ctx, actor, courseCode)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListByCourse(ctx, course.ID, periodID)
	if err != nil {
		return nil, err
	}

	roster := make([]dto.RosterEntry, 0, len(enrollments))
	for _, enrollment := range enrollments {
		roster = append(roster, dto.RosterEntry{
			EnrollmentID: enrollment.ID,
			StudentID:    enrollment.StudentID,
			Name:         enrollment.Student.FullName(),
			Code:         enrollment.Student.Code,
		})
	}

	return roster, nil
}

func (s *courseService) Periods(ctx context.Context, courseCode string) ([]dto.PeriodResponse, error) {
	course, err := s.findCourse(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	periods, err := s.courses.ListPeriods(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewPeriodResponseSlice(periods), nil
}

// MyEnrollment returns the student's most recent enrollment in the course.
// A missing enrollment is reported as nil, not an error.
func (s *courseService) MyEnrollment(ctx context.Context, actor Actor, courseCode string) (dto.EnrollmentRef, error) {
	course, err := s.findCourse(ctx, courseCode)
	if err != nil {
		return dto.EnrollmentRef{}, err
	}

	enrollment, err := s.enrollments.LatestForStudentCourse(ctx, actor.ID, course.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentRef{}, nil
		}
		return dto.EnrollmentRef{}, err
	}

	id := enrollment.ID
	return dto.EnrollmentRef{EnrollmentID: &id}, nil
}

// Validation recomputes the outcome weight distribution for the course. This
// is the single authoritative implementation; clients no longer duplicate it.
func (s *courseService) Validation(ctx context.Context, courseCode string) (dto.CourseValidationResponse, error) {
	course, err := s.findCourse(ctx, courseCode)
	if err != nil {
		return dto.CourseValidationResponse{}, err
	}

	outcomes, err := s.outcomes.ListByCourse(ctx, course.ID)
	if err != nil {
		return dto.CourseValidationResponse{}, err
	}

	weighted := make([]grading.Weighted, 0, len(outcomes))
	for _, outcome := range outcomes {
		weighted = append(weighted, grading.Weighted{Weight: outcome.Weight})
	}

	return dto.CourseValidationResponse{
		CourseCode: course.Code,
		Outcomes:   grading.Validate(weighted),
	}, nil
}

// ResolveAny loads a course by code without an ownership check.
func (s *courseService) ResolveAny(ctx context.Context, courseCode string) (models.Course, error) {
	return s.findCourse(ctx, courseCode)
}

// ResolveOwned loads the course and checks the acting teacher owns it.
func (s *courseService) ResolveOwned(ctx context.Context, actor Actor, courseCode string) (models.Course, error) {
	course, err := s.findCourse(ctx, courseCode)
	if err != nil {
		return models.Course{}, err
	}

	if course.TeacherID != actor.ID {
		return models.Course{}, ErrNotCourseOwner
	}

	return course, nil
}

func (s *courseService) findCourse(ctx context.Context, courseCode string) (models.Course, error) {
	course, err := s.courses.GetByCode(ctx, courseCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}
