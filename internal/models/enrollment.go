package models

import "time"

// Enrollment binds a student to a course offering during one academic
// period. Grades are scoped by enrollment, so repeating a course in a later
// period starts a fresh grade sheet.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StudentID  uint      `gorm:"not null;uniqueIndex:uq_enrollment" json:"student_id"`
	PeriodID   uint      `gorm:"not null;uniqueIndex:uq_enrollment" json:"period_id"`
	CourseID   uint      `gorm:"not null;uniqueIndex:uq_enrollment;index" json:"course_id"`
	FinalGrade *float64  `json:"final_grade"`
	CreatedAt  time.Time `json:"created_at"`
	Student    Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Period     Period    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"period"`
	Course     Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"course"`
}
