package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/models"
	"github.com/sigra-edu/sigra-api/internal/observability"
	"github.com/sigra-edu/sigra-api/internal/repository"
)

// ErrGradeOutOfRange indicates the submitted value falls outside the 0-5 scale.
var ErrGradeOutOfRange = errors.New("grade value out of range")

// ErrEnrollmentNotFound indicates the target enrollment does not exist.
var ErrEnrollmentNotFound = errors.New("enrollment not found")

// ErrGradeScopeMismatch indicates the activity link belongs to a different
// course than the enrollment.
var ErrGradeScopeMismatch = errors.New("activity link does not belong to the enrollment course")

// ErrIndicatorNotInOutcome indicates the indicator attribution points outside
// the link's learning outcome.
var ErrIndicatorNotInOutcome = errors.New("indicator does not belong to outcome")

// GradeService records grades for enrolled students.
type GradeService interface {
	Upsert(ctx context.Context, actor Actor, payload dto.GradeUpsertRequest) (dto.GradeResponse, error)
	ListByEnrollment(ctx context.Context, actor Actor, enrollmentID uint) ([]dto.GradeResponse, error)
}

type gradeService struct {
	grades        repository.GradeRepository
	enrollments   repository.EnrollmentRepository
	activities    repository.ActivityRepository
	outcomes      repository.OutcomeRepository
	notifications NotificationService
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	sanitizer     *bluemonday.Policy
}

// NewGradeService constructs a grade service. The notification service is
// optional; without it, grade writes are silent.
func NewGradeService(grades repository.GradeRepository, enrollments repository.EnrollmentRepository, activities repository.ActivityRepository, outcomes repository.OutcomeRepository, notifications NotificationService, validate *validator.Validate, logger zerolog.Logger) GradeService {
	return &gradeService{
		grades:        grades,
		enrollments:   enrollments,
		activities:    activities,
		outcomes:      outcomes,
		notifications: notifications,
		validator:     validate,
		logger:        logger.With().Str("component", "grade_service").Logger(),
		tracer:        otel.Tracer("github.com/sigra-edu/sigra-api/internal/service/grade"),
		sanitizer:     bluemonday.StrictPolicy(),
	}
}

// Upsert creates the grade for the (enrollment, activity link) pair or
// overwrites the existing one. Recorded values are never deleted.
func (s *gradeService) Upsert(ctx context.Context, actor Actor, payload dto.GradeUpsertRequest) (dto.GradeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeResponse{}, err
	}
	if payload.Value == nil || *payload.Value < models.GradeMin || *payload.Value > models.GradeMax {
		return dto.GradeResponse{}, ErrGradeOutOfRange
	}

	spanCtx, span := s.tracer.Start(ctx, "grades.upsert", trace.WithAttributes(
		attribute.Int("grade.enrollment_id", int(payload.EnrollmentID)),
		attribute.Int("grade.activity_outcome_id", int(payload.ActivityOutcomeID)),
	))
	defer span.End()

	enrollment, err := s.enrollments.GetByID(spanCtx, payload.EnrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, ErrEnrollmentNotFound
		}
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}
	if enrollment.Course.TeacherID != actor.ID {
		return dto.GradeResponse{}, ErrNotCourseOwner
	}

	link, err := s.activities.GetLinkByID(spanCtx, payload.ActivityOutcomeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, ErrActivityLinkNotFound
		}
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}
	if link.Outcome.CourseID != enrollment.CourseID {
		return dto.GradeResponse{}, ErrGradeScopeMismatch
	}

	if payload.IndicatorID != nil {
		valid, err := s.outcomes.FilterIndicatorIDs(spanCtx, link.OutcomeID, []uint{*payload.IndicatorID})
		if err != nil {
			span.RecordError(err)
			return dto.GradeResponse{}, err
		}
		if len(valid) == 0 {
			return dto.GradeResponse{}, ErrIndicatorNotInOutcome
		}
	}

	grade := models.Grade{
		EnrollmentID:      payload.EnrollmentID,
		ActivityOutcomeID: payload.ActivityOutcomeID,
		Value:             payload.Value,
		Feedback:          strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback)),
		IndicatorID:       payload.IndicatorID,
	}

	created, err := s.grades.Upsert(spanCtx, &grade)
	if err != nil {
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	operation := "update"
	if created {
		operation = "create"
	}
	observability.GradeWrites().WithLabelValues(operation).Inc()

	s.logger.Info().
		Uint("enrollment_id", grade.EnrollmentID).
		Uint("activity_outcome_id", grade.ActivityOutcomeID).
		Float64("value", *grade.Value).
		Str("operation", operation).
		Msg("grade recorded")

	s.notifyStudent(spanCtx, enrollment, link, grade)

	return dto.NewGradeResponse(grade), nil
}

// ListByEnrollment returns all grades on an enrollment. Teachers must own the
// course; students may only read their own sheet.
func (s *gradeService) ListByEnrollment(ctx context.Context, actor Actor, enrollmentID uint) ([]dto.GradeResponse, error) {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	if actor.IsTeacher() {
		if enrollment.Course.TeacherID != actor.ID {
			return nil, ErrNotCourseOwner
		}
	} else if enrollment.StudentID != actor.ID {
		return nil, ErrEnrollmentNotFound
	}

	grades, err := s.grades.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GradeResponse, 0, len(grades))
	for _, grade := range grades {
		responses = append(responses, dto.NewGradeResponse(grade))
	}
	return responses, nil
}

func (s *gradeService) notifyStudent(ctx context.Context, enrollment models.Enrollment, link models.ActivityOutcome, grade models.Grade) {
	if s.notifications == nil {
		return
	}

	_, err := s.notifications.Publish(ctx, dto.NotificationCreateRequest{
		UserRef: models.UserRef(models.RoleStudent, enrollment.StudentID),
		Kind:    models.NotificationKindGrade,
		Message: fmt.Sprintf("New grade in %s: %s", enrollment.Course.Name, link.Activity.Name),
		Payload: map[string]interface{}{
			"enrollment_id":       grade.EnrollmentID,
			"activity_outcome_id": grade.ActivityOutcomeID,
			"course_code":         enrollment.Course.Code,
			"value":               grade.Value,
		},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish grade notification")
	}
}
