package models

import "time"

// LearningOutcome (RA) is a course-level competency with a percentage weight
// toward the course grade. The weight stays nil until the instructor sets it.
type LearningOutcome struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	Description string    `gorm:"type:text" json:"description"`
	Weight      *float64  `json:"weight"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Course      Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Indicator is a weighted sub-criterion of a learning outcome.
type Indicator struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OutcomeID   uint            `gorm:"not null;index" json:"outcome_id"`
	Description string          `gorm:"type:text" json:"description"`
	Weight      float64         `gorm:"not null" json:"weight"`
	CreatedAt   time.Time       `json:"created_at"`
	Outcome     LearningOutcome `gorm:"foreignKey:OutcomeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
