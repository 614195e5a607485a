package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/models"
	"github.com/sigra-edu/sigra-api/internal/repository"
)

func newOutcomeService(db *gorm.DB) (OutcomeService, CourseService) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	courses := NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewOutcomeRepository(db),
		repository.NewEnrollmentRepository(db),
		zerolog.Nop(),
	)
	outcomes := NewOutcomeService(
		repository.NewOutcomeRepository(db),
		repository.NewActivityRepository(db),
		courses,
		validate,
		zerolog.Nop(),
	)
	return outcomes, courses
}

func TestCourseValidationReportsWeightGap(t *testing.T) {
	db := openNoticeDB(t, "outcome_course_validation")
	course, _ := seedNoticeCourse(t, db, "SOC101")

	require.NoError(t, db.Create(&models.LearningOutcome{CourseID: course.ID, Description: "RA1", Weight: floatPtr(60)}).Error)
	require.NoError(t, db.Create(&models.LearningOutcome{CourseID: course.ID, Description: "RA2"}).Error)

	_, courses := newOutcomeService(db)
	report, err := courses.Validation(context.Background(), course.Code)
	require.NoError(t, err)

	require.Equal(t, course.Code, report.CourseCode)
	require.InDelta(t, 60, report.Outcomes.Sum, 1e-9)
	require.False(t, report.Outcomes.Complete)
	require.InDelta(t, 40, report.Outcomes.Gap, 1e-9)

	// Setting the missing weight closes the gap.
	require.NoError(t, db.Model(&models.LearningOutcome{}).Where("course_id = ? AND description = ?", course.ID, "RA2").Update("weight", 40).Error)

	report, err = courses.Validation(context.Background(), course.Code)
	require.NoError(t, err)
	require.True(t, report.Outcomes.Complete)
	require.InDelta(t, 0, report.Outcomes.Gap, 1e-9)
}

func TestOutcomeValidationCoversActivitiesAndIndicators(t *testing.T) {
	db := openNoticeDB(t, "outcome_validation")
	course, _ := seedNoticeCourse(t, db, "SOC102")
	outcome := models.LearningOutcome{CourseID: course.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&outcome).Error)

	seedLink(t, db, outcome.ID, "Quiz", 60, nil)
	seedLink(t, db, outcome.ID, "Project", 40, nil)
	require.NoError(t, db.Create(&models.Indicator{OutcomeID: outcome.ID, Description: "I1", Weight: 30}).Error)

	outcomes, _ := newOutcomeService(db)
	report, err := outcomes.Validation(context.Background(), outcome.ID)
	require.NoError(t, err)

	require.Equal(t, outcome.ID, report.OutcomeID)
	require.True(t, report.Activities.Complete)
	require.InDelta(t, 100, report.Activities.Sum, 1e-9)
	require.False(t, report.Indicators.Complete)
	require.InDelta(t, 70, report.Indicators.Gap, 1e-9)
}

func TestOutcomeCreateRequiresOwnership(t *testing.T) {
	db := openNoticeDB(t, "outcome_create")
	course, _ := seedNoticeCourse(t, db, "SOC103")

	outcomes, _ := newOutcomeService(db)
	ctx := context.Background()

	created, err := outcomes.Create(ctx, Actor{ID: course.TeacherID, Role: models.RoleTeacher}, course.Code, dto.OutcomeCreateRequest{
		Description: "Models data with relational schemas",
		Weight:      floatPtr(50),
	})
	require.NoError(t, err)
	require.Equal(t, course.ID, created.CourseID)

	_, err = outcomes.Create(ctx, Actor{ID: course.TeacherID + 5, Role: models.RoleTeacher}, course.Code, dto.OutcomeCreateRequest{
		Description: "Should not be allowed",
	})
	require.ErrorIs(t, err, ErrNotCourseOwner)

	_, err = outcomes.Create(ctx, Actor{ID: course.TeacherID, Role: models.RoleTeacher}, "NOPE", dto.OutcomeCreateRequest{
		Description: "Unknown course",
	})
	require.ErrorIs(t, err, ErrCourseNotFound)
}
