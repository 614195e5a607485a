package dto

import (
	"github.com/sigra-edu/sigra-api/internal/grading"
	"github.com/sigra-edu/sigra-api/internal/models"
)

// OutcomeCreateRequest describes the payload for creating a learning outcome.
type OutcomeCreateRequest struct {
	Description string   `json:"description" validate:"required,min=3"`
	Weight      *float64 `json:"weight" validate:"omitempty,gte=0,lte=100"`
}

// OutcomeResponse is the serialized representation of a learning outcome.
type OutcomeResponse struct {
	ID          uint     `json:"id"`
	CourseID    uint     `json:"course_id"`
	Description string   `json:"description"`
	Weight      *float64 `json:"weight"`
}

// NewOutcomeResponse converts a model into a DTO.
func NewOutcomeResponse(model models.LearningOutcome) OutcomeResponse {
	return OutcomeResponse{
		ID:          model.ID,
		CourseID:    model.CourseID,
		Description: model.Description,
		Weight:      model.Weight,
	}
}

// NewOutcomeResponseSlice converts a slice of models into DTOs.
func NewOutcomeResponseSlice(outcomes []models.LearningOutcome) []OutcomeResponse {
	responses := make([]OutcomeResponse, 0, len(outcomes))
	for _, outcome := range outcomes {
		responses = append(responses, NewOutcomeResponse(outcome))
	}
	return responses
}

// IndicatorCreateRequest describes the payload for creating an indicator.
type IndicatorCreateRequest struct {
	Description string  `json:"description" validate:"required,min=3"`
	Weight      float64 `json:"weight" validate:"gte=0,lte=100"`
}

// IndicatorResponse is the serialized representation of an indicator.
type IndicatorResponse struct {
	ID          uint    `json:"id"`
	OutcomeID   uint    `json:"outcome_id"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// NewIndicatorResponse converts a model into a DTO.
func NewIndicatorResponse(model models.Indicator) IndicatorResponse {
	return IndicatorResponse{
		ID:          model.ID,
		OutcomeID:   model.OutcomeID,
		Description: model.Description,
		Weight:      model.Weight,
	}
}

// NewIndicatorResponseSlice converts a slice of models into DTOs.
func NewIndicatorResponseSlice(indicators []models.Indicator) []IndicatorResponse {
	responses := make([]IndicatorResponse, 0, len(indicators))
	for _, indicator := range indicators {
		responses = append(responses, NewIndicatorResponse(indicator))
	}
	return responses
}

// OutcomeValidationResponse reports how the activity and indicator weight
// distributions of one outcome compare to the 100% target.
type OutcomeValidationResponse struct {
	OutcomeID  uint              `json:"outcome_id"`
	Activities grading.Breakdown `json:"activities"`
	Indicators grading.Breakdown `json:"indicators"`
}

// CourseValidationResponse reports the outcome weight distribution of a course.
type CourseValidationResponse struct {
	CourseCode string            `json:"course_code"`
	Outcomes   grading.Breakdown `json:"outcomes"`
}

// IndicatorChartRow is one bar of the per-student indicator chart: the mean
// of the grades attributed to the indicator, on both the 0-5 and 0-100 scale.
type IndicatorChartRow struct {
	IndicatorID uint     `json:"indicator_id"`
	OutcomeID   uint     `json:"outcome_id"`
	Description string   `json:"description"`
	Weight      float64  `json:"weight"`
	AvgGrade    *float64 `json:"avg_grade"`
	AvgPct      *float64 `json:"avg_pct"`
}
