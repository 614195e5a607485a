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

func newActivityService(db *gorm.DB) ActivityService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	courses := NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewOutcomeRepository(db),
		repository.NewEnrollmentRepository(db),
		zerolog.Nop(),
	)
	return NewActivityService(
		repository.NewActivityRepository(db),
		repository.NewOutcomeRepository(db),
		repository.NewGradeRepository(db),
		repository.NewEnrollmentRepository(db),
		courses,
		validate,
		zerolog.Nop(),
	)
}

func TestActivityCreateEnforcesWeightCap(t *testing.T) {
	db := openNoticeDB(t, "activity_cap")
	course, _ := seedNoticeCourse(t, db, "ENG101")
	outcome := models.LearningOutcome{CourseID: course.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&outcome).Error)

	activityType := models.ActivityType{Description: "Workshop"}
	require.NoError(t, db.Create(&activityType).Error)

	svc := newActivityService(db)
	teacher := Actor{ID: course.TeacherID, Role: models.RoleTeacher}
	ctx := context.Background()

	_, err := svc.Create(ctx, teacher, outcome.ID, dto.ActivityCreateRequest{
		Name:         "Workshop 1",
		TypeID:       activityType.ID,
		RubricWeight: 100,
		Weight:       60,
	})
	require.NoError(t, err)

	// 60 + 40 reaches the target exactly and is accepted.
	_, err = svc.Create(ctx, teacher, outcome.ID, dto.ActivityCreateRequest{
		Name:         "Workshop 2",
		TypeID:       activityType.ID,
		RubricWeight: 100,
		Weight:       40,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, teacher, outcome.ID, dto.ActivityCreateRequest{
		Name:         "One too many",
		TypeID:       activityType.ID,
		RubricWeight: 100,
		Weight:       1,
	})
	require.ErrorIs(t, err, ErrWeightExceeded)

	// Nothing was written for the rejected activity.
	var count int64
	require.NoError(t, db.Model(&models.ActivityOutcome{}).Where("outcome_id = ?", outcome.ID).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestActivityCreateRequiresOwnership(t *testing.T) {
	db := openNoticeDB(t, "activity_owner")
	course, _ := seedNoticeCourse(t, db, "ENG102")
	outcome := models.LearningOutcome{CourseID: course.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&outcome).Error)

	activityType := models.ActivityType{Description: "Quiz"}
	require.NoError(t, db.Create(&activityType).Error)

	svc := newActivityService(db)
	_, err := svc.Create(context.Background(), Actor{ID: course.TeacherID + 99, Role: models.RoleTeacher}, outcome.ID, dto.ActivityCreateRequest{
		Name:         "Quiz 1",
		TypeID:       activityType.ID,
		RubricWeight: 100,
		Weight:       50,
	})
	require.ErrorIs(t, err, ErrNotCourseOwner)
}

func TestActivityListMergesStudentGrades(t *testing.T) {
	db := openNoticeDB(t, "activity_merge")
	course, enrollment := seedNoticeCourse(t, db, "ENG103")
	outcome := models.LearningOutcome{CourseID: course.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&outcome).Error)

	graded := seedLink(t, db, outcome.ID, "Graded quiz", 50, nil)
	seedLink(t, db, outcome.ID, "Pending quiz", 50, nil)
	require.NoError(t, db.Create(&models.Grade{EnrollmentID: enrollment.ID, ActivityOutcomeID: graded.ID, Value: floatPtr(4.5), Feedback: "Nice"}).Error)

	svc := newActivityService(db)
	student := Actor{ID: enrollment.StudentID, Role: models.RoleStudent}
	links, err := svc.ListByOutcome(context.Background(), student, outcome.ID, &enrollment.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)

	require.NotNil(t, links[0].Grade)
	require.Equal(t, 4.5, *links[0].Grade.Value)
	require.Equal(t, "Nice", links[0].Grade.Feedback)
	require.Nil(t, links[1].Grade)

	// Without an enrollment no grade information is attached.
	bare, err := svc.ListByOutcome(context.Background(), student, outcome.ID, nil)
	require.NoError(t, err)
	require.Nil(t, bare[0].Grade)
}

func TestActivityListGuardsForeignEnrollments(t *testing.T) {
	db := openNoticeDB(t, "activity_guard")
	course, enrollment := seedNoticeCourse(t, db, "ENG104")
	outcome := models.LearningOutcome{CourseID: course.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&outcome).Error)

	link := seedLink(t, db, outcome.ID, "Quiz", 100, nil)
	require.NoError(t, db.Create(&models.Grade{EnrollmentID: enrollment.ID, ActivityOutcomeID: link.ID, Value: floatPtr(1.5), Feedback: "confidential remarks"}).Error)

	svc := newActivityService(db)
	ctx := context.Background()

	// Another student cannot merge someone else's sheet.
	_, err := svc.ListByOutcome(ctx, Actor{ID: enrollment.StudentID + 99, Role: models.RoleStudent}, outcome.ID, &enrollment.ID)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)

	// A teacher from another course cannot either.
	_, err = svc.ListByOutcome(ctx, Actor{ID: course.TeacherID + 99, Role: models.RoleTeacher}, outcome.ID, &enrollment.ID)
	require.ErrorIs(t, err, ErrNotCourseOwner)

	// The owning teacher and the enrolled student still can.
	links, err := svc.ListByOutcome(ctx, Actor{ID: course.TeacherID, Role: models.RoleTeacher}, outcome.ID, &enrollment.ID)
	require.NoError(t, err)
	require.NotNil(t, links[0].Grade)
	require.Equal(t, "confidential remarks", links[0].Grade.Feedback)

	_, err = svc.ListByOutcome(ctx, Actor{ID: enrollment.StudentID, Role: models.RoleStudent}, outcome.ID, &enrollment.ID)
	require.NoError(t, err)

	missing := enrollment.ID + 999
	_, err = svc.ListByOutcome(ctx, Actor{ID: course.TeacherID, Role: models.RoleTeacher}, outcome.ID, &missing)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}

func TestActivityCreateRejectsForeignIndicators(t *testing.T) {
	db := openNoticeDB(t, "activity_indicators")
	course, _ := seedNoticeCourse(t, db, "ENG105")
	outcome := models.LearningOutcome{CourseID: course.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&outcome).Error)
	other := models.LearningOutcome{CourseID: course.ID, Description: "RA2", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&other).Error)

	indicator := models.Indicator{OutcomeID: outcome.ID, Description: "I1", Weight: 100}
	require.NoError(t, db.Create(&indicator).Error)
	foreign := models.Indicator{OutcomeID: other.ID, Description: "I2", Weight: 100}
	require.NoError(t, db.Create(&foreign).Error)

	activityType := models.ActivityType{Description: "Exam"}
	require.NoError(t, db.Create(&activityType).Error)

	svc := newActivityService(db)
	teacher := Actor{ID: course.TeacherID, Role: models.RoleTeacher}

	_, err := svc.Create(context.Background(), teacher, outcome.ID, dto.ActivityCreateRequest{
		Name:         "Exam 1",
		TypeID:       activityType.ID,
		RubricWeight: 100,
		Weight:       50,
		IndicatorIDs: []uint{indicator.ID, foreign.ID},
	})
	require.ErrorIs(t, err, ErrIndicatorNotInOutcome)

	_, err = svc.Create(context.Background(), teacher, outcome.ID, dto.ActivityCreateRequest{
		Name:         "Exam 1",
		TypeID:       activityType.ID,
		RubricWeight: 100,
		Weight:       50,
		IndicatorIDs: []uint{indicator.ID},
	})
	require.NoError(t, err)
}
