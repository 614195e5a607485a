package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/models"
	"github.com/sigra-edu/sigra-api/internal/repository"
)

// Wednesday, so the current ISO week runs Mon Mar 2 through Sun Mar 8.
var noticeReference = time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)

func openNoticeDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Teacher{},
		&models.Student{},
		&models.Program{},
		&models.Period{},
		&models.Course{},
		&models.LearningOutcome{},
		&models.Indicator{},
		&models.ActivityType{},
		&models.Activity{},
		&models.ActivityOutcome{},
		&models.Enrollment{},
		&models.Grade{},
	))
	return db
}

func seedNoticeCourse(t *testing.T, db *gorm.DB, code string) (models.Course, models.Enrollment) {
	t.Helper()

	teacher := models.Teacher{FirstName: "Ana", LastName: "Mora", Code: "T-" + code, Email: code + "-t@example.com", PasswordHash: "x", DocumentNumber: "DT-" + code}
	require.NoError(t, db.Create(&teacher).Error)

	student := models.Student{FirstName: "Luis", LastName: "Rojas", Code: "S-" + code, Email: code + "-s@example.com", PasswordHash: "x", DocumentNumber: "DS-" + code}
	require.NoError(t, db.Create(&student).Error)

	program := models.Program{Name: "Systems Engineering", Code: "P-" + code}
	require.NoError(t, db.Create(&program).Error)

	period := models.Period{
		Description: "2026-1 " + code,
		StartDate:   time.Date(2026, time.January, 19, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, time.June, 12, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&period).Error)

	course := models.Course{Name: "Course " + code, Code: code, TeacherID: teacher.ID, ProgramID: program.ID}
	require.NoError(t, db.Create(&course).Error)

	enrollment := models.Enrollment{StudentID: student.ID, PeriodID: period.ID, CourseID: course.ID}
	require.NoError(t, db.Create(&enrollment).Error)

	return course, enrollment
}

func seedLink(t *testing.T, db *gorm.DB, outcomeID uint, name string, weight float64, dueDate *time.Time) models.ActivityOutcome {
	t.Helper()

	activityType := models.ActivityType{Description: name + " type"}
	require.NoError(t, db.Create(&activityType).Error)

	activity := models.Activity{TypeID: activityType.ID, Name: name, RubricWeight: weight, CreatedOn: noticeReference.AddDate(0, 0, -14), DueDate: dueDate}
	require.NoError(t, db.Create(&activity).Error)

	link := models.ActivityOutcome{ActivityID: activity.ID, OutcomeID: outcomeID, Weight: weight}
	require.NoError(t, db.Create(&link).Error)

	return link
}

func newNoticeService(db *gorm.DB, cache *redis.Client, ttl time.Duration) *noticeService {
	svc := NewNoticeService(
		repository.NewEnrollmentRepository(db),
		repository.NewOutcomeRepository(db),
		repository.NewActivityRepository(db),
		repository.NewGradeRepository(db),
		cache,
		ttl,
		zerolog.Nop(),
	).(*noticeService)
	svc.now = func() time.Time { return noticeReference }
	return svc
}

func TestNoticeReportDerivation(t *testing.T) {
	db := openNoticeDB(t, "notice_derivation")
	course, enrollment := seedNoticeCourse(t, db, "MATH101")

	ra1 := models.LearningOutcome{CourseID: course.ID, Description: "RA1", Weight: floatPtr(60)}
	require.NoError(t, db.Create(&ra1).Error)
	ra2 := models.LearningOutcome{CourseID: course.ID, Description: "RA2", Weight: floatPtr(40)}
	require.NoError(t, db.Create(&ra2).Error)

	// Sunday end of the current week, inclusive.
	sunday := time.Date(2026, time.March, 8, 23, 59, 59, 0, time.UTC)
	nextMonday := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)

	graded := seedLink(t, db, ra1.ID, "Quiz 1", 50, nil)
	pending := seedLink(t, db, ra1.ID, "Workshop 1", 50, &sunday)
	seedLink(t, db, ra1.ID, "Project", 0, &nextMonday)
	lab := seedLink(t, db, ra2.ID, "Lab", 100, nil)

	require.NoError(t, db.Create(&models.Grade{EnrollmentID: enrollment.ID, ActivityOutcomeID: graded.ID, Value: floatPtr(4.0)}).Error)
	require.NoError(t, db.Create(&models.Grade{EnrollmentID: enrollment.ID, ActivityOutcomeID: lab.ID, Value: floatPtr(2.0)}).Error)

	svc := newNoticeService(db, nil, 0)
	report, err := svc.Report(context.Background(), Actor{ID: enrollment.StudentID, Role: models.RoleStudent})
	require.NoError(t, err)

	// Graded links never show up as tasks, deadlines in the current week
	// raise a notice, and later deadlines stay a plain task.
	require.Len(t, report.Tasks, 2)
	require.Equal(t, "Workshop 1", report.Tasks[0].ActivityName)
	require.Equal(t, "Project", report.Tasks[1].ActivityName)
	require.Equal(t, pending.ID, report.Tasks[0].LinkID)

	require.Len(t, report.Notices, 1)
	require.Equal(t, dto.NoticeKindDeadline, report.Notices[0].Kind)
	require.Equal(t, course.Code, report.Notices[0].CourseCode)

	// RA1 averages 4.0 over its graded half, RA2 2.0, course (60*4+40*2)/100.
	require.Len(t, report.Standings, 1)
	require.NotNil(t, report.Standings[0].Average)
	require.InDelta(t, 3.2, *report.Standings[0].Average, 1e-9)

	require.Empty(t, report.Skipped)
	require.Equal(t, noticeReference, report.GeneratedAt)
}

func TestNoticeReportAtRiskThresholdIsStrict(t *testing.T) {
	db := openNoticeDB(t, "notice_at_risk")

	atRisk, atRiskEnrollment := seedNoticeCourse(t, db, "PHY201")
	outcome := models.LearningOutcome{CourseID: atRisk.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&outcome).Error)
	link := seedLink(t, db, outcome.ID, "Exam", 100, nil)
	require.NoError(t, db.Create(&models.Grade{EnrollmentID: atRiskEnrollment.ID, ActivityOutcomeID: link.ID, Value: floatPtr(2.99)}).Error)

	svc := newNoticeService(db, nil, 0)
	report, err := svc.Report(context.Background(), Actor{ID: atRiskEnrollment.StudentID, Role: models.RoleStudent})
	require.NoError(t, err)

	require.Len(t, report.Notices, 1)
	require.Equal(t, dto.NoticeKindAtRisk, report.Notices[0].Kind)
	require.Equal(t, atRisk.Code, report.Notices[0].CourseCode)

	// Sitting exactly on the threshold is not at risk.
	exact, exactEnrollment := seedNoticeCourse(t, db, "PHY202")
	exactOutcome := models.LearningOutcome{CourseID: exact.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&exactOutcome).Error)
	exactLink := seedLink(t, db, exactOutcome.ID, "Final", 100, nil)
	require.NoError(t, db.Create(&models.Grade{EnrollmentID: exactEnrollment.ID, ActivityOutcomeID: exactLink.ID, Value: floatPtr(3.0)}).Error)

	exactReport, err := svc.Report(context.Background(), Actor{ID: exactEnrollment.StudentID, Role: models.RoleStudent})
	require.NoError(t, err)
	require.Empty(t, exactReport.Notices)
}

func TestNoticeReportUngradedCourseHasNilAverage(t *testing.T) {
	db := openNoticeDB(t, "notice_nil_average")
	course, enrollment := seedNoticeCourse(t, db, "CHEM301")

	outcome := models.LearningOutcome{CourseID: course.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&outcome).Error)
	seedLink(t, db, outcome.ID, "Essay", 100, nil)

	svc := newNoticeService(db, nil, 0)
	report, err := svc.Report(context.Background(), Actor{ID: enrollment.StudentID, Role: models.RoleStudent})
	require.NoError(t, err)

	// No grades at all: a pending task, no at-risk notice, nil standing.
	require.Len(t, report.Tasks, 1)
	require.Empty(t, report.Notices)
	require.Len(t, report.Standings, 1)
	require.Nil(t, report.Standings[0].Average)
}

func TestNoticeReportTaskOrdering(t *testing.T) {
	db := openNoticeDB(t, "notice_ordering")
	course, enrollment := seedNoticeCourse(t, db, "BIO101")

	outcome := models.LearningOutcome{CourseID: course.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&outcome).Error)

	later := noticeReference.AddDate(0, 0, 10)
	sooner := noticeReference.AddDate(0, 0, 1)
	seedLink(t, db, outcome.ID, "Due later", 30, &later)
	seedLink(t, db, outcome.ID, "No deadline", 30, nil)
	seedLink(t, db, outcome.ID, "Due sooner", 40, &sooner)

	svc := newNoticeService(db, nil, 0)
	report, err := svc.Report(context.Background(), Actor{ID: enrollment.StudentID, Role: models.RoleStudent})
	require.NoError(t, err)

	require.Len(t, report.Tasks, 3)
	require.Equal(t, "Due sooner", report.Tasks[0].ActivityName)
	require.Equal(t, "Due later", report.Tasks[1].ActivityName)
	require.Equal(t, "No deadline", report.Tasks[2].ActivityName)
}

func TestNoticeReportCache(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := openNoticeDB(t, "notice_cache")
	_, enrollment := seedNoticeCourse(t, db, "HIST101")

	svc := newNoticeService(db, redisClient, time.Minute)
	ctx := context.Background()

	seeded := dto.NoticeReport{
		Tasks:       []dto.Task{{CourseCode: "CACHED", ActivityName: "From cache"}},
		Notices:     []dto.Notice{},
		Standings:   []dto.CourseStanding{},
		Skipped:     []dto.SkippedItem{},
		GeneratedAt: noticeReference,
	}
	payload, err := json.Marshal(seeded)
	require.NoError(t, err)
	key := fmt.Sprintf("sigra:notices:student:%d", enrollment.StudentID)
	require.NoError(t, redisClient.Set(ctx, key, payload, time.Minute).Err())

	report, err := svc.Report(ctx, Actor{ID: enrollment.StudentID, Role: models.RoleStudent})
	require.NoError(t, err)
	require.Equal(t, seeded.Tasks, report.Tasks)
}

func TestNoticeReportRejectsTeachers(t *testing.T) {
	db := openNoticeDB(t, "notice_teacher")
	svc := newNoticeService(db, nil, 0)

	_, err := svc.Report(context.Background(), Actor{ID: 1, Role: models.RoleTeacher})
	require.ErrorIs(t, err, ErrNoticesForStudentsOnly)
}

func floatPtr(v float64) *float64 {
	return &v
}
