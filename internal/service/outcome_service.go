package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/grading"
	"github.com/sigra-edu/sigra-api/internal/models"
	"github.com/sigra-edu/sigra-api/internal/repository"
)

// ErrOutcomeNotFound indicates the requested learning outcome does not exist.
var ErrOutcomeNotFound = errors.New("learning outcome not found")

// OutcomeService exposes learning outcome and indicator use cases.
type OutcomeService interface {
	ListByCourse(ctx context.Context, courseCode string) ([]dto.OutcomeResponse, error)
	Create(ctx context.Context, actor Actor, courseCode string, payload dto.OutcomeCreateRequest) (dto.OutcomeResponse, error)
	ListIndicators(ctx context.Context, outcomeID uint) ([]dto.IndicatorResponse, error)
	CreateIndicator(ctx context.Context, actor Actor, outcomeID uint, payload dto.IndicatorCreateRequest) (dto.IndicatorResponse, error)
	Validation(ctx context.Context, outcomeID uint) (dto.OutcomeValidationResponse, error)
}

type outcomeService struct {
	outcomes   repository.OutcomeRepository
	activities repository.ActivityRepository
	courses    CourseService
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewOutcomeService builds a new outcome service.
func NewOutcomeService(outcomes repository.OutcomeRepository, activities repository.ActivityRepository, courses CourseService, validate *validator.Validate, logger zerolog.Logger) OutcomeService {
	return &outcomeService{
		outcomes:   outcomes,
		activities: activities,
		courses:    courses,
		validator:  validate,
		logger:     logger.With().Str("component", "outcome_service").Logger(),
	}
}

func (s *outcomeService) ListByCourse(ctx context.Context, courseCode string) ([]dto.OutcomeResponse, error) {
	course, err := s.courses.ResolveAny(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	outcomes, err := s.outcomes.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewOutcomeResponseSlice(outcomes), nil
}

func (s *outcomeService) Create(ctx context.Context, actor Actor, courseCode string, payload dto.OutcomeCreateRequest) (dto.OutcomeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.OutcomeResponse{}, err
	}

	course, err := s.courses.ResolveOwned(ctx, actor, courseCode)
	if err != nil {
		return dto.OutcomeResponse{}, err
	}

	outcome := models.LearningOutcome{
		CourseID:    course.ID,
		Description: payload.Description,
		Weight:      payload.Weight,
	}

	if err := s.outcomes.Create(ctx, &outcome); err != nil {
		return dto.OutcomeResponse{}, err
	}

	s.logger.Info().Uint("outcome_id", outcome.ID).Uint("course_id", course.ID).Msg("learning outcome created")
	return dto.NewOutcomeResponse(outcome), nil
}

func (s *outcomeService) ListIndicators(ctx context.Context, outcomeID uint) ([]dto.IndicatorResponse, error) {
	if _, err := s.findOutcome(ctx, outcomeID); err != nil {
		return nil, err
	}

	indicators, err := s.outcomes.ListIndicators(ctx, outcomeID)
	if err != nil {
		return nil, err
	}

	return dto.NewIndicatorResponseSlice(indicators), nil
}

func (s *outcomeService) CreateIndicator(ctx context.Context, actor Actor, outcomeID uint, payload dto.IndicatorCreateRequest) (dto.IndicatorResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.IndicatorResponse{}, err
	}

	outcome, err := s.findOutcome(ctx, outcomeID)
	if err != nil {
		return dto.IndicatorResponse{}, err
	}

	if _, err := s.courses.ResolveOwned(ctx, actor, outcome.Course.Code); err != nil {
		return dto.IndicatorResponse{}, err
	}

	indicator := models.Indicator{
		OutcomeID:   outcomeID,
		Description: payload.Description,
		Weight:      payload.Weight,
	}

	if err := s.outcomes.CreateIndicator(ctx, &indicator); err != nil {
		return dto.IndicatorResponse{}, err
	}

	s.logger.Info().Uint("indicator_id", indicator.ID).Uint("outcome_id", outcomeID).Msg("indicator created")
	return dto.NewIndicatorResponse(indicator), nil
}

// Validation recomputes the activity-link and indicator weight distributions
// for one outcome against the 100% target.
func (s *outcomeService) Validation(ctx context.Context, outcomeID uint) (dto.OutcomeValidationResponse, error) {
	if _, err := s.findOutcome(ctx, outcomeID); err != nil {
		return dto.OutcomeValidationResponse{}, err
	}

	links, err := s.activities.ListLinksByOutcome(ctx, outcomeID)
	if err != nil {
		return dto.OutcomeValidationResponse{}, err
	}

	indicators, err := s.outcomes.ListIndicators(ctx, outcomeID)
	if err != nil {
		return dto.OutcomeValidationResponse{}, err
	}

	linkWeights := make([]float64, 0, len(links))
	for _, link := range links {
		linkWeights = append(linkWeights, link.Weight)
	}

	indicatorWeights := make([]float64, 0, len(indicators))
	for _, indicator := range indicators {
		indicatorWeights = append(indicatorWeights, indicator.Weight)
	}

	return dto.OutcomeValidationResponse{
		OutcomeID:  outcomeID,
		Activities: grading.Validate(grading.WeightsOf(linkWeights)),
		Indicators: grading.Validate(grading.WeightsOf(indicatorWeights)),
	}, nil
}

func (s *outcomeService) findOutcome(ctx context.Context, outcomeID uint) (models.LearningOutcome, error) {
	outcome, err := s.outcomes.GetByID(ctx, outcomeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LearningOutcome{}, ErrOutcomeNotFound
		}
		return models.LearningOutcome{}, err
	}
	return outcome, nil
}
