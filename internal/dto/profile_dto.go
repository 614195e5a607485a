package dto

// CourseRef is a compact course reference used in profiles.
type CourseRef struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Group       string `json:"group"`
	ProgramName string `json:"program_name"`
}

// PeriodCourses groups a student's courses under one academic period.
type PeriodCourses struct {
	Period  PeriodResponse `json:"period"`
	Courses []CourseRef    `json:"courses"`
}

// ProfileResponse is the role-shaped account profile. Teachers carry their
// owned courses; students carry enrollments grouped by period.
type ProfileResponse struct {
	User            UserSummary     `json:"user"`
	DocumentNumber  string          `json:"document_number"`
	Phone           string          `json:"phone,omitempty"`
	Shift           string          `json:"shift,omitempty"`
	Courses         []CourseRef     `json:"courses"`
	CoursesByPeriod []PeriodCourses `json:"courses_by_period,omitempty"`
}

// ProfileUpdateRequest edits the contact fields a user owns.
type ProfileUpdateRequest struct {
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=30"`
	Shift *string `json:"shift" validate:"omitempty,max=50"`
}
