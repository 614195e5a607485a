package models

import "time"

// Program is the academic program (track) a course belongs to.
type Program struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:150;not null" json:"name"`
	Code string `gorm:"size:50;uniqueIndex;not null" json:"code"`
}

// Period is an academic term; enrollments are scoped to one.
type Period struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"size:100;uniqueIndex;not null" json:"description"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
}

// Course is a course offering taught by one teacher within a program.
type Course struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Code      string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Group     string    `gorm:"size:20" json:"group"`
	TeacherID uint      `gorm:"not null" json:"teacher_id"`
	ProgramID uint      `gorm:"not null" json:"program_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Teacher   Teacher   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Program   Program   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"program"`
}
