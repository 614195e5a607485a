package models

import "time"

// Role labels for the two kinds of platform users.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Teacher represents an instructor who owns courses and records grades.
type Teacher struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FirstName      string    `gorm:"size:100;not null" json:"first_name"`
	LastName       string    `gorm:"size:100;not null" json:"last_name"`
	Code           string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	DocumentNumber string    `gorm:"size:50;uniqueIndex" json:"document_number"`
	Phone          string    `gorm:"size:30" json:"phone"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FullName joins the teacher's first and last name.
func (t Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// Student represents a learner enrolled in course offerings.
type Student struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FirstName      string    `gorm:"size:100;not null" json:"first_name"`
	LastName       string    `gorm:"size:100;not null" json:"last_name"`
	Code           string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	DocumentNumber string    `gorm:"size:50;uniqueIndex" json:"document_number"`
	Shift          string    `gorm:"size:50" json:"shift"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FullName joins the student's first and last name.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
