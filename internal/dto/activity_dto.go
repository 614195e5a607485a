package dto

import (
	"time"

	"github.com/sigra-edu/sigra-api/internal/models"
)

// ActivityCreateRequest describes the payload for creating an activity and
// linking it to a learning outcome. Weight is the contribution toward the
// outcome; RubricWeight is internal to the activity's own rubric.
type ActivityCreateRequest struct {
	Name         string  `json:"name" validate:"required,min=3"`
	TypeID       uint    `json:"type_id" validate:"required"`
	Description  string  `json:"description"`
	RubricWeight float64 `json:"rubric_weight" validate:"gte=0,lte=100"`
	Weight       float64 `json:"weight" validate:"gt=0,lte=100"`
	DueDate      string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	IndicatorIDs []uint  `json:"indicator_ids"`
}

// GradeInfo is the per-student slice of an activity listing.
type GradeInfo struct {
	Value       *float64 `json:"value"`
	Feedback    string   `json:"feedback"`
	IndicatorID *uint    `json:"indicator_id"`
}

// ActivityLinkResponse is one activity as seen from a learning outcome,
// optionally enriched with one enrollment's grade.
type ActivityLinkResponse struct {
	LinkID       uint                `json:"link_id"`
	ActivityID   uint                `json:"activity_id"`
	Name         string              `json:"name"`
	TypeID       uint                `json:"type_id"`
	TypeName     string              `json:"type_name"`
	RubricWeight float64             `json:"rubric_weight"`
	Weight       float64             `json:"weight"`
	DueDate      *time.Time          `json:"due_date"`
	Indicators   []IndicatorResponse `json:"indicators"`
	Grade        *GradeInfo          `json:"grade,omitempty"`
}

// NewActivityLinkResponse converts an outcome link into a DTO.
func NewActivityLinkResponse(link models.ActivityOutcome) ActivityLinkResponse {
	return ActivityLinkResponse{
		LinkID:       link.ID,
		ActivityID:   link.ActivityID,
		Name:         link.Activity.Name,
		TypeID:       link.Activity.TypeID,
		TypeName:     link.Activity.Type.Description,
		RubricWeight: link.Activity.RubricWeight,
		Weight:       link.Weight,
		DueDate:      link.Activity.DueDate,
		Indicators:   NewIndicatorResponseSlice(link.Indicators),
	}
}

// ActivityTypeResponse is one catalog entry of activity kinds.
type ActivityTypeResponse struct {
	ID          uint   `json:"id"`
	Description string `json:"description"`
}

// NewActivityTypeResponseSlice converts the catalog into DTOs.
func NewActivityTypeResponseSlice(types []models.ActivityType) []ActivityTypeResponse {
	responses := make([]ActivityTypeResponse, 0, len(types))
	for _, t := range types {
		responses = append(responses, ActivityTypeResponse{ID: t.ID, Description: t.Description})
	}
	return responses
}
