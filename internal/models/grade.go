package models

import "time"

// Grade bounds on the national 0-5 scale.
const (
	GradeMin = 0.0
	GradeMax = 5.0
)

// Grade records a student's result for one activity-outcome link. The pair
// (enrollment, activity link) is unique; writes are create-or-update and the
// API never deletes a grade. The indicator attribution is optional.
type Grade struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	EnrollmentID      uint            `gorm:"not null;uniqueIndex:uq_grade" json:"enrollment_id"`
	ActivityOutcomeID uint            `gorm:"not null;uniqueIndex:uq_grade" json:"activity_outcome_id"`
	Value             *float64        `json:"value"`
	Feedback          string          `gorm:"type:text" json:"feedback"`
	IndicatorID       *uint           `json:"indicator_id"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Enrollment        Enrollment      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ActivityOutcome   ActivityOutcome `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Indicator         *Indicator      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

// IsGraded reports whether a numeric value has been recorded.
func (g Grade) IsGraded() bool {
	return g.Value != nil
}
