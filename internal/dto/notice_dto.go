package dto

import "time"

// Notice kinds in the derived report.
const (
	NoticeKindDeadline = "deadline"
	NoticeKindAtRisk   = "at_risk"
)

// Task is a pending (ungraded) activity in one of the student's courses.
type Task struct {
	CourseCode   string     `json:"course_code"`
	CourseName   string     `json:"course_name"`
	OutcomeID    uint       `json:"outcome_id"`
	LinkID       uint       `json:"link_id"`
	ActivityName string     `json:"activity_name"`
	Weight       float64    `json:"weight"`
	DueDate      *time.Time `json:"due_date"`
}

// Notice is an advisory derived from the student's current standing.
type Notice struct {
	Kind       string `json:"kind"`
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
	Message    string `json:"message"`
}

// SkippedItem records a per-item fetch failure the derivation tolerated.
type SkippedItem struct {
	Scope  string `json:"scope"`
	Reason string `json:"reason"`
}

// CourseStanding is one course's rolling weighted average in the report.
type CourseStanding struct {
	CourseCode string   `json:"course_code"`
	CourseName string   `json:"course_name"`
	Average    *float64 `json:"average"`
}

// NoticeReport is the best-effort aggregation of pending tasks and notices
// across all of a student's enrollments. Skipped lists items the derivation
// could not read instead of silently dropping them.
type NoticeReport struct {
	Tasks       []Task           `json:"tasks"`
	Notices     []Notice         `json:"notices"`
	Standings   []CourseStanding `json:"standings"`
	Skipped     []SkippedItem    `json:"skipped"`
	GeneratedAt time.Time        `json:"generated_at"`
}
