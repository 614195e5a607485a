package dto

import (
	"time"

	"github.com/sigra-edu/sigra-api/internal/models"
)

// GradeUpsertRequest creates or replaces a grade for one (enrollment,
// activity link) pair.
type GradeUpsertRequest struct {
	EnrollmentID      uint     `json:"enrollment_id" validate:"required"`
	ActivityOutcomeID uint     `json:"activity_outcome_id" validate:"required"`
	Value             *float64 `json:"value" validate:"required"`
	Feedback          string   `json:"feedback"`
	IndicatorID       *uint    `json:"indicator_id"`
}

// GradeResponse is the serialized representation of a recorded grade.
type GradeResponse struct {
	ID                uint      `json:"id"`
	EnrollmentID      uint      `json:"enrollment_id"`
	ActivityOutcomeID uint      `json:"activity_outcome_id"`
	Value             *float64  `json:"value"`
	Feedback          string    `json:"feedback"`
	IndicatorID       *uint     `json:"indicator_id"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewGradeResponse converts a model into a DTO.
func NewGradeResponse(model models.Grade) GradeResponse {
	return GradeResponse{
		ID:                model.ID,
		EnrollmentID:      model.EnrollmentID,
		ActivityOutcomeID: model.ActivityOutcomeID,
		Value:             model.Value,
		Feedback:          model.Feedback,
		IndicatorID:       model.IndicatorID,
		UpdatedAt:         model.UpdatedAt,
	}
}
