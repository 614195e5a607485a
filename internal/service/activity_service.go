package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/grading"
	"github.com/sigra-edu/sigra-api/internal/models"
	"github.com/sigra-edu/sigra-api/internal/repository"
)

// ErrWeightExceeded indicates the new activity weight would push the
// outcome's distribution past 100%.
var ErrWeightExceeded = errors.New("outcome weight distribution would exceed 100%")

// ErrActivityLinkNotFound indicates the activity-outcome link does not exist.
var ErrActivityLinkNotFound = errors.New("activity link not found")

const dueDateLayout = "2006-01-02"

// ActivityService exposes activity use cases scoped to a learning outcome.
type ActivityService interface {
	ListByOutcome(ctx context.Context, actor Actor, outcomeID uint, enrollmentID *uint) ([]dto.ActivityLinkResponse, error)
	Create(ctx context.Context, actor Actor, outcomeID uint, payload dto.ActivityCreateRequest) (dto.ActivityLinkResponse, error)
	ListTypes(ctx context.Context) ([]dto.ActivityTypeResponse, error)
}

type activityService struct {
	activities  repository.ActivityRepository
	outcomes    repository.OutcomeRepository
	grades      repository.GradeRepository
	enrollments repository.EnrollmentRepository
	courses     CourseService
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewActivityService builds a new activity service.
func NewActivityService(activities repository.ActivityRepository, outcomes repository.OutcomeRepository, grades repository.GradeRepository, enrollments repository.EnrollmentRepository, courses CourseService, validate *validator.Validate, logger zerolog.Logger) ActivityService {
	return &activityService{
		activities:  activities,
		outcomes:    outcomes,
		grades:      grades,
		enrollments: enrollments,
		courses:     courses,
		validator:   validate,
		logger:      logger.With().Str("component", "activity_service").Logger(),
		now:         time.Now,
	}
}

// ListByOutcome returns the outcome's activity links. When an enrollment is
// given, that student's recorded grade and feedback are merged per link.
// Teachers must own the enrollment's course; students may only merge their
// own enrollment.
func (s *activityService) ListByOutcome(ctx context.Context, actor Actor, outcomeID uint, enrollmentID *uint) ([]dto.ActivityLinkResponse, error) {
	if _, err := s.outcomes.GetByID(ctx, outcomeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOutcomeNotFound
		}
		return nil, err
	}

	links, err := s.activities.ListLinksByOutcome(ctx, outcomeID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ActivityLinkResponse, 0, len(links))
	for _, link := range links {
		responses = append(responses, dto.NewActivityLinkResponse(link))
	}

	if enrollmentID != nil {
		enrollment, err := s.enrollments.GetByID(ctx, *enrollmentID)
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

		grades, err := s.grades.ListByEnrollment(ctx, *enrollmentID)
		if err != nil {
			return nil, err
		}

		byLink := make(map[uint]models.Grade, len(grades))
		for _, grade := range grades {
			byLink[grade.ActivityOutcomeID] = grade
		}

		for i := range responses {
			if grade, ok := byLink[responses[i].LinkID]; ok {
				responses[i].Grade = &dto.GradeInfo{
					Value:       grade.Value,
					Feedback:    grade.Feedback,
					IndicatorID: grade.IndicatorID,
				}
			}
		}
	}

	return responses, nil
}

// Create persists a new activity linked to the outcome. The link weight is
// advisory-validated against the current distribution: pushing the sum past
// 100% (beyond float tolerance) is rejected before anything is written.
func (s *activityService) Create(ctx context.Context, actor Actor, outcomeID uint, payload dto.ActivityCreateRequest) (dto.ActivityLinkResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ActivityLinkResponse{}, err
	}

	outcome, err := s.outcomes.GetByID(ctx, outcomeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActivityLinkResponse{}, ErrOutcomeNotFound
		}
		return dto.ActivityLinkResponse{}, err
	}

	if _, err := s.courses.ResolveOwned(ctx, actor, outcome.Course.Code); err != nil {
		return dto.ActivityLinkResponse{}, err
	}

	currentSum, err := s.activities.SumLinkWeights(ctx, outcomeID)
	if err != nil {
		return dto.ActivityLinkResponse{}, err
	}

	if currentSum+payload.Weight > grading.WeightTarget+grading.CompletionEpsilon {
		return dto.ActivityLinkResponse{}, fmt.Errorf("%w: %.2f%%", ErrWeightExceeded, currentSum+payload.Weight)
	}

	var dueDate *time.Time
	if payload.DueDate != "" {
		parsed, err := time.Parse(dueDateLayout, payload.DueDate)
		if err != nil {
			return dto.ActivityLinkResponse{}, fmt.Errorf("invalid due date: %w", err)
		}
		dueDate = &parsed
	}

	indicatorIDs, err := s.outcomes.FilterIndicatorIDs(ctx, outcomeID, payload.IndicatorIDs)
	if err != nil {
		return dto.ActivityLinkResponse{}, err
	}
	valid := make(map[uint]struct{}, len(indicatorIDs))
	for _, id := range indicatorIDs {
		valid[id] = struct{}{}
	}
	for _, id := range payload.IndicatorIDs {
		if _, ok := valid[id]; !ok {
			return dto.ActivityLinkResponse{}, fmt.Errorf("%w: indicator %d", ErrIndicatorNotInOutcome, id)
		}
	}

	activity := models.Activity{
		TypeID:       payload.TypeID,
		Name:         payload.Name,
		Description:  payload.Description,
		RubricWeight: payload.RubricWeight,
		CreatedOn:    s.now(),
		DueDate:      dueDate,
	}
	link := models.ActivityOutcome{
		OutcomeID: outcomeID,
		Weight:    payload.Weight,
	}

	if err := s.activities.CreateWithLink(ctx, &activity, &link, indicatorIDs); err != nil {
		return dto.ActivityLinkResponse{}, err
	}

	s.logger.Info().
		Uint("activity_id", activity.ID).
		Uint("outcome_id", outcomeID).
		Float64("weight", link.Weight).
		Msg("activity created")

	link.Activity = activity
	return dto.NewActivityLinkResponse(link), nil
}

func (s *activityService) ListTypes(ctx context.Context) ([]dto.ActivityTypeResponse, error) {
	types, err := s.activities.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewActivityTypeResponseSlice(types), nil
}
