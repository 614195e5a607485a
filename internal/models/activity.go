package models

import "time"

// ActivityType is a catalog entry describing the kind of gradable activity
// (exam, workshop, project, ...).
type ActivityType struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Description string `gorm:"size:100;uniqueIndex;not null" json:"description"`
}

// Activity is a gradable assignment. RubricWeight is the activity's internal
// rubric percentage; the contribution toward each learning outcome lives on
// the ActivityOutcome link, since one activity can serve several outcomes.
type Activity struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	TypeID       uint         `gorm:"not null" json:"type_id"`
	Name         string       `gorm:"size:150;not null" json:"name"`
	Description  string       `gorm:"type:text" json:"description"`
	RubricWeight float64      `gorm:"not null" json:"rubric_weight"`
	CreatedOn    time.Time    `gorm:"not null" json:"created_on"`
	DueDate      *time.Time   `json:"due_date"`
	Type         ActivityType `gorm:"foreignKey:TypeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"type"`
}

// IsDue reports whether the activity has a deadline that already passed.
func (a Activity) IsDue(reference time.Time) bool {
	return a.DueDate != nil && reference.After(*a.DueDate)
}

// ActivityOutcome links an activity to a learning outcome with the
// percentage the activity contributes to that outcome. Grades attach to the
// link, not to the bare activity.
type ActivityOutcome struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ActivityID uint            `gorm:"not null;uniqueIndex:uq_activity_outcome" json:"activity_id"`
	OutcomeID  uint            `gorm:"not null;uniqueIndex:uq_activity_outcome;index" json:"outcome_id"`
	Weight     float64         `gorm:"not null" json:"weight"`
	Activity   Activity        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"activity"`
	Outcome    LearningOutcome `gorm:"foreignKey:OutcomeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Indicators []Indicator     `gorm:"many2many:activity_outcome_indicators" json:"indicators"`
}
