package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/grading"
	"github.com/sigra-edu/sigra-api/internal/models"
	"github.com/sigra-edu/sigra-api/internal/observability"
	"github.com/sigra-edu/sigra-api/internal/repository"
)

// AtRiskThreshold is the course average below which a student is flagged.
// A course sitting exactly at the threshold is not at risk.
const AtRiskThreshold = 3.0

// ErrNoticesForStudentsOnly indicates a non-student asked for a notice report.
var ErrNoticesForStudentsOnly = errors.New("notice reports are only derived for students")

// NoticeService derives pending tasks, deadline warnings and at-risk notices
// from the student's current grade sheet. Nothing here is persisted; the
// report is recomputed from grades and cached briefly.
type NoticeService interface {
	Report(ctx context.Context, actor Actor) (dto.NoticeReport, error)
}

type noticeService struct {
	enrollments repository.EnrollmentRepository
	outcomes    repository.OutcomeRepository
	activities  repository.ActivityRepository
	grades      repository.GradeRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewNoticeService constructs the notice deriver. The Redis client is
// optional; without it every request recomputes the report.
func NewNoticeService(enrollments repository.EnrollmentRepository, outcomes repository.OutcomeRepository, activities repository.ActivityRepository, grades repository.GradeRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) NoticeService {
	return &noticeService{
		enrollments: enrollments,
		outcomes:    outcomes,
		activities:  activities,
		grades:      grades,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "notice_service").Logger(),
		tracer:      otel.Tracer("github.com/sigra-edu/sigra-api/internal/service/notice"),
		now:         time.Now,
	}
}

func (s *noticeService) Report(ctx context.Context, actor Actor) (dto.NoticeReport, error) {
	if actor.IsTeacher() {
		return dto.NoticeReport{}, ErrNoticesForStudentsOnly
	}

	spanCtx, span := s.tracer.Start(ctx, "notices.report", trace.WithAttributes(
		attribute.Int("student.id", int(actor.ID)),
	))
	defer span.End()

	cacheKey := fmt.Sprintf("sigra:notices:%s", models.UserRef(models.RoleStudent, actor.ID))
	if cached, ok := s.fromCache(spanCtx, cacheKey); ok {
		return cached, nil
	}

	report, err := s.derive(spanCtx, actor.ID)
	if err != nil {
		span.RecordError(err)
		return dto.NoticeReport{}, err
	}

	observability.NoticeReports().Inc()
	if len(report.Skipped) > 0 {
		observability.NoticeItemsSkipped().Add(float64(len(report.Skipped)))
	}

	s.store(spanCtx, cacheKey, report)
	return report, nil
}

// derive walks every enrollment of the student. Per-item fetch failures are
// recorded in Skipped and the affected course or outcome is excluded from
// averages instead of aborting the whole report.
func (s *noticeService) derive(ctx context.Context, studentID uint) (dto.NoticeReport, error) {
	reference := s.now()
	report := dto.NoticeReport{
		Tasks:       []dto.Task{},
		Notices:     []dto.Notice{},
		Standings:   []dto.CourseStanding{},
		Skipped:     []dto.SkippedItem{},
		GeneratedAt: reference,
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.NoticeReport{}, err
	}

	for _, enrollment := range enrollments {
		course := enrollment.Course

		outcomes, err := s.outcomes.ListByCourse(ctx, enrollment.CourseID)
		if err != nil {
			report.Skipped = append(report.Skipped, dto.SkippedItem{
				Scope:  fmt.Sprintf("course %s outcomes", course.Code),
				Reason: err.Error(),
			})
			continue
		}

		grades, err := s.grades.ListByEnrollment(ctx, enrollment.ID)
		if err != nil {
			report.Skipped = append(report.Skipped, dto.SkippedItem{
				Scope:  fmt.Sprintf("course %s grades", course.Code),
				Reason: err.Error(),
			})
			continue
		}

		gradeByLink := make(map[uint]*float64, len(grades))
		for _, grade := range grades {
			if grade.IsGraded() {
				gradeByLink[grade.ActivityOutcomeID] = grade.Value
			}
		}

		outcomeItems := make([]grading.GradedItem, 0, len(outcomes))
		for _, outcome := range outcomes {
			links, err := s.activities.ListLinksByOutcome(ctx, outcome.ID)
			if err != nil {
				report.Skipped = append(report.Skipped, dto.SkippedItem{
					Scope:  fmt.Sprintf("course %s outcome %d activities", course.Code, outcome.ID),
					Reason: err.Error(),
				})
				continue
			}

			linkItems := make([]grading.GradedItem, 0, len(links))
			for _, link := range links {
				weight := link.Weight
				value := gradeByLink[link.ID]
				linkItems = append(linkItems, grading.GradedItem{Weight: &weight, Grade: value})

				if value != nil {
					continue
				}

				report.Tasks = append(report.Tasks, dto.Task{
					CourseCode:   course.Code,
					CourseName:   course.Name,
					OutcomeID:    outcome.ID,
					LinkID:       link.ID,
					ActivityName: link.Activity.Name,
					Weight:       link.Weight,
					DueDate:      link.Activity.DueDate,
				})

				if link.Activity.DueDate != nil && grading.InCurrentWeek(*link.Activity.DueDate, reference) {
					report.Notices = append(report.Notices, dto.Notice{
						Kind:       dto.NoticeKindDeadline,
						CourseCode: course.Code,
						CourseName: course.Name,
						Message:    fmt.Sprintf("%s is due this week in %s", link.Activity.Name, course.Name),
					})
				}
			}

			outcomeItems = append(outcomeItems, grading.GradedItem{
				Weight: outcome.Weight,
				Grade:  grading.WeightedAverage(linkItems),
			})
		}

		average := grading.WeightedAverage(outcomeItems)
		report.Standings = append(report.Standings, dto.CourseStanding{
			CourseCode: course.Code,
			CourseName: course.Name,
			Average:    average,
		})

		if average != nil && *average < AtRiskThreshold {
			report.Notices = append(report.Notices, dto.Notice{
				Kind:       dto.NoticeKindAtRisk,
				CourseCode: course.Code,
				CourseName: course.Name,
				Message:    fmt.Sprintf("Your average in %s is %.2f, below the passing mark", course.Name, *average),
			})
		}
	}

	sortTasks(report.Tasks)
	return report, nil
}

// sortTasks orders pending work by urgency: earliest due date first, tasks
// without a deadline last, ties broken by course then activity name.
func sortTasks(tasks []dto.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		left, right := tasks[i], tasks[j]
		switch {
		case left.DueDate != nil && right.DueDate != nil:
			if !left.DueDate.Equal(*right.DueDate) {
				return left.DueDate.Before(*right.DueDate)
			}
		case left.DueDate != nil:
			return true
		case right.DueDate != nil:
			return false
		}
		if left.CourseName != right.CourseName {
			return strings.Compare(left.CourseName, right.CourseName) < 0
		}
		return strings.Compare(left.ActivityName, right.ActivityName) < 0
	})
}

func (s *noticeService) fromCache(ctx context.Context, key string) (dto.NoticeReport, bool) {
	if s.cache == nil {
		return dto.NoticeReport{}, false
	}

	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("notice cache read failed")
		}
		return dto.NoticeReport{}, false
	}

	var report dto.NoticeReport
	if err := json.Unmarshal(payload, &report); err != nil {
		s.logger.Warn().Err(err).Msg("notice cache entry corrupted")
		return dto.NoticeReport{}, false
	}
	return report, true
}

func (s *noticeService) store(ctx context.Context, key string, report dto.NoticeReport) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}

	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode notice report for cache")
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("notice cache write failed")
	}
}
