package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/models"
	"github.com/sigra-edu/sigra-api/internal/repository"
)

// ErrStudentRequired indicates a teacher asked for a per-student chart
// without naming the student.
var ErrStudentRequired = errors.New("student id is required")

// PctPerGradePoint rescales the 0-5 grade scale to percentages for charts.
const PctPerGradePoint = 20.0

// ProgressService exposes per-student aggregates over indicator-attributed
// grades.
type ProgressService interface {
	IndicatorChart(ctx context.Context, actor Actor, courseCode string, studentID *uint) ([]dto.IndicatorChartRow, error)
}

type progressService struct {
	courses     CourseService
	enrollments repository.EnrollmentRepository
	outcomes    repository.OutcomeRepository
	grades      repository.GradeRepository
	logger      zerolog.Logger
}

// NewProgressService constructs the progress aggregation service.
func NewProgressService(courses CourseService, enrollments repository.EnrollmentRepository, outcomes repository.OutcomeRepository, grades repository.GradeRepository, logger zerolog.Logger) ProgressService {
	return &progressService{
		courses:     courses,
		enrollments: enrollments,
		outcomes:    outcomes,
		grades:      grades,
		logger:      logger.With().Str("component", "progress_service").Logger(),
	}
}

// IndicatorChart returns, per indicator of the course, the plain mean of the
// grades attributed to it on the student's latest enrollment. Students see
// their own chart; teachers name a student in a course they own. Indicators
// with no attributed grades keep nil averages so charts can render gaps.
func (s *progressService) IndicatorChart(ctx context.Context, actor Actor, courseCode string, studentID *uint) ([]dto.IndicatorChartRow, error) {
	var course models.Course
	var err error
	target := actor.ID

	if actor.IsTeacher() {
		if studentID == nil {
			return nil, ErrStudentRequired
		}
		target = *studentID
		course, err = s.courses.ResolveOwned(ctx, actor, courseCode)
	} else {
		course, err = s.courses.ResolveAny(ctx, courseCode)
	}
	if err != nil {
		return nil, err
	}

	enrollment, err := s.enrollments.LatestForStudentCourse(ctx, target, course.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	indicators, err := s.outcomes.ListIndicatorsByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	rows := make([]dto.IndicatorChartRow, 0, len(indicators))
	for _, indicator := range indicators {
		row := dto.IndicatorChartRow{
			IndicatorID: indicator.ID,
			OutcomeID:   indicator.OutcomeID,
			Description: indicator.Description,
			Weight:      indicator.Weight,
		}

		grades, err := s.grades.ListByEnrollmentAndIndicator(ctx, enrollment.ID, indicator.ID)
		if err != nil {
			return nil, err
		}

		var sum float64
		var count int
		for _, grade := range grades {
			if grade.IsGraded() {
				sum += *grade.Value
				count++
			}
		}
		if count > 0 {
			avg := sum / float64(count)
			pct := avg * PctPerGradePoint
			row.AvgGrade = &avg
			row.AvgPct = &pct
		}

		rows = append(rows, row)
	}

	return rows, nil
}
