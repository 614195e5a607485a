package dto

import (
	"time"

	"github.com/sigra-edu/sigra-api/internal/models"
)

// CourseResponse is the serialized representation of a course offering.
type CourseResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Group       string `json:"group"`
	ProgramName string `json:"program_name"`
	ProgramCode string `json:"program_code"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:          model.ID,
		Name:        model.Name,
		Code:        model.Code,
		Group:       model.Group,
		ProgramName: model.Program.Name,
		ProgramCode: model.Program.Code,
	}
}

// NewCourseResponseSlice converts a slice of models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}

// RosterEntry is one student row in a course roster, carrying the enrollment
// identifier grade writes are scoped by.
type RosterEntry struct {
	EnrollmentID uint   `json:"enrollment_id"`
	StudentID    uint   `json:"student_id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
}

// PeriodResponse is the serialized representation of an academic period.
type PeriodResponse struct {
	ID          uint      `json:"id"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// NewPeriodResponse converts a period model into a DTO.
func NewPeriodResponse(period models.Period) PeriodResponse {
	return PeriodResponse{
		ID:          period.ID,
		Description: period.Description,
		StartDate:   period.StartDate,
		EndDate:     period.EndDate,
	}
}

// NewPeriodResponseSlice converts period models into DTOs.
func NewPeriodResponseSlice(periods []models.Period) []PeriodResponse {
	responses := make([]PeriodResponse, 0, len(periods))
	for _, period := range periods {
		responses = append(responses, NewPeriodResponse(period))
	}
	return responses
}

// EnrollmentRef reports the caller's enrollment in a course, nil when the
// student is not enrolled.
type EnrollmentRef struct {
	EnrollmentID *uint `json:"enrollment_id"`
}
