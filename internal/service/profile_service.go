package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/models"
	"github.com/sigra-edu/sigra-api/internal/repository"
)

// ProfileService reads and edits the role-shaped account profile.
type ProfileService interface {
	Get(ctx context.Context, actor Actor) (dto.ProfileResponse, error)
	Update(ctx context.Context, actor Actor, payload dto.ProfileUpdateRequest) (dto.ProfileResponse, error)
}

type profileService struct {
	teachers    repository.TeacherRepository
	students    repository.StudentRepository
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(teachers repository.TeacherRepository, students repository.StudentRepository, courses repository.CourseRepository, enrollments repository.EnrollmentRepository, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	return &profileService{
		teachers:    teachers,
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		validator:   validate,
		logger:      logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, actor Actor) (dto.ProfileResponse, error) {
	if actor.IsTeacher() {
		return s.teacherProfile(ctx, actor.ID)
	}
	return s.studentProfile(ctx, actor.ID)
}

// Update edits the contact fields the user owns. Shift only applies to
// students; a teacher sending it gets it silently ignored, matching the
// role-shaped profile.
func (s *profileService) Update(ctx context.Context, actor Actor, payload dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProfileResponse{}, err
	}

	if actor.IsTeacher() {
		teacher, err := s.teachers.GetByID(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ProfileResponse{}, ErrUserNotFound
			}
			return dto.ProfileResponse{}, err
		}
		if payload.Email != nil {
			teacher.Email = strings.TrimSpace(*payload.Email)
		}
		if payload.Phone != nil {
			teacher.Phone = strings.TrimSpace(*payload.Phone)
		}
		if err := s.teachers.Update(ctx, &teacher); err != nil {
			return dto.ProfileResponse{}, err
		}
		return s.teacherProfile(ctx, actor.ID)
	}

	student, err := s.students.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrUserNotFound
		}
		return dto.ProfileResponse{}, err
	}
	if payload.Email != nil {
		student.Email = strings.TrimSpace(*payload.Email)
	}
	if payload.Shift != nil {
		student.Shift = strings.TrimSpace(*payload.Shift)
	}
	if err := s.students.Update(ctx, &student); err != nil {
		return dto.ProfileResponse{}, err
	}
	return s.studentProfile(ctx, actor.ID)
}

func (s *profileService) teacherProfile(ctx context.Context, id uint) (dto.ProfileResponse, error) {
	teacher, err := s.teachers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrUserNotFound
		}
		return dto.ProfileResponse{}, err
	}

	courses, err := s.courses.ListByTeacher(ctx, id)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	refs := make([]dto.CourseRef, 0, len(courses))
	for _, course := range courses {
		refs = append(refs, courseRef(course))
	}

	return dto.ProfileResponse{
		User:           teacherSummary(teacher),
		DocumentNumber: teacher.DocumentNumber,
		Phone:          teacher.Phone,
		Courses:        refs,
	}, nil
}

func (s *profileService) studentProfile(ctx context.Context, id uint) (dto.ProfileResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrUserNotFound
		}
		return dto.ProfileResponse{}, err
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, id)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	refs := make([]dto.CourseRef, 0, len(enrollments))
	byPeriod := []dto.PeriodCourses{}
	index := map[uint]int{}
	for _, enrollment := range enrollments {
		ref := courseRef(enrollment.Course)
		refs = append(refs, ref)

		pos, seen := index[enrollment.PeriodID]
		if !seen {
			pos = len(byPeriod)
			index[enrollment.PeriodID] = pos
			byPeriod = append(byPeriod, dto.PeriodCourses{
				Period:  dto.NewPeriodResponse(enrollment.Period),
				Courses: []dto.CourseRef{},
			})
		}
		byPeriod[pos].Courses = append(byPeriod[pos].Courses, ref)
	}

	return dto.ProfileResponse{
		User:            studentSummary(student),
		DocumentNumber:  student.DocumentNumber,
		Shift:           student.Shift,
		Courses:         refs,
		CoursesByPeriod: byPeriod,
	}, nil
}

func courseRef(course models.Course) dto.CourseRef {
	return dto.CourseRef{
		Code:        course.Code,
		Name:        course.Name,
		Group:       course.Group,
		ProgramName: course.Program.Name,
	}
}
