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

type recordingNotifier struct {
	published []dto.NotificationCreateRequest
}

func (r *recordingNotifier) Publish(_ context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	r.published = append(r.published, payload)
	return dto.NotificationResponse{}, nil
}

func (r *recordingNotifier) List(context.Context, string, int, int) ([]dto.NotificationResponse, error) {
	return nil, nil
}

func (r *recordingNotifier) MarkRead(context.Context, uint, string) (dto.NotificationResponse, error) {
	return dto.NotificationResponse{}, nil
}

func (r *recordingNotifier) Subscribe(string) (<-chan dto.NotificationResponse, func()) {
	ch := make(chan dto.NotificationResponse)
	return ch, func() { close(ch) }
}

func (r *recordingNotifier) Start(context.Context) {}

func newGradeService(db *gorm.DB, notifier NotificationService) GradeService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewGradeService(
		repository.NewGradeRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewActivityRepository(db),
		repository.NewOutcomeRepository(db),
		notifier,
		validate,
		zerolog.Nop(),
	)
}

func TestGradeUpsertCreateAndOverwrite(t *testing.T) {
	db := openNoticeDB(t, "grade_upsert")
	course, enrollment := seedNoticeCourse(t, db, "CS101")
	outcome := models.LearningOutcome{CourseID: course.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&outcome).Error)
	link := seedLink(t, db, outcome.ID, "Quiz", 100, nil)

	notifier := &recordingNotifier{}
	svc := newGradeService(db, notifier)
	teacher := Actor{ID: course.TeacherID, Role: models.RoleTeacher}
	ctx := context.Background()

	first, err := svc.Upsert(ctx, teacher, dto.GradeUpsertRequest{
		EnrollmentID:      enrollment.ID,
		ActivityOutcomeID: link.ID,
		Value:             floatPtr(3.5),
		Feedback:          "<script>alert(1)</script>Solid work",
	})
	require.NoError(t, err)
	require.Equal(t, 3.5, *first.Value)
	require.Equal(t, "Solid work", first.Feedback)

	second, err := svc.Upsert(ctx, teacher, dto.GradeUpsertRequest{
		EnrollmentID:      enrollment.ID,
		ActivityOutcomeID: link.ID,
		Value:             floatPtr(4.2),
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 4.2, *second.Value)

	var count int64
	require.NoError(t, db.Model(&models.Grade{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	require.Len(t, notifier.published, 2)
	require.Equal(t, models.NotificationKindGrade, notifier.published[0].Kind)
	require.Equal(t, models.UserRef(models.RoleStudent, enrollment.StudentID), notifier.published[0].UserRef)
}

func TestGradeUpsertRejectsOutOfRangeValues(t *testing.T) {
	db := openNoticeDB(t, "grade_range")
	course, enrollment := seedNoticeCourse(t, db, "CS102")
	outcome := models.LearningOutcome{CourseID: course.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&outcome).Error)
	link := seedLink(t, db, outcome.ID, "Quiz", 100, nil)

	svc := newGradeService(db, nil)
	teacher := Actor{ID: course.TeacherID, Role: models.RoleTeacher}

	for _, value := range []float64{-0.01, 5.01} {
		_, err := svc.Upsert(context.Background(), teacher, dto.GradeUpsertRequest{
			EnrollmentID:      enrollment.ID,
			ActivityOutcomeID: link.ID,
			Value:             floatPtr(value),
		})
		require.ErrorIs(t, err, ErrGradeOutOfRange)
	}

	// Zero is a real grade, not an absence.
	_, err := svc.Upsert(context.Background(), teacher, dto.GradeUpsertRequest{
		EnrollmentID:      enrollment.ID,
		ActivityOutcomeID: link.ID,
		Value:             floatPtr(0),
	})
	require.NoError(t, err)
}

func TestGradeUpsertOwnershipAndScope(t *testing.T) {
	db := openNoticeDB(t, "grade_scope")
	course, enrollment := seedNoticeCourse(t, db, "CS103")
	outcome := models.LearningOutcome{CourseID: course.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&outcome).Error)
	link := seedLink(t, db, outcome.ID, "Quiz", 100, nil)

	other, _ := seedNoticeCourse(t, db, "CS104")
	otherOutcome := models.LearningOutcome{CourseID: other.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&otherOutcome).Error)
	otherLink := seedLink(t, db, otherOutcome.ID, "Exam", 100, nil)

	svc := newGradeService(db, nil)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, Actor{ID: other.TeacherID, Role: models.RoleTeacher}, dto.GradeUpsertRequest{
		EnrollmentID:      enrollment.ID,
		ActivityOutcomeID: link.ID,
		Value:             floatPtr(3),
	})
	require.ErrorIs(t, err, ErrNotCourseOwner)

	_, err = svc.Upsert(ctx, Actor{ID: course.TeacherID, Role: models.RoleTeacher}, dto.GradeUpsertRequest{
		EnrollmentID:      enrollment.ID,
		ActivityOutcomeID: otherLink.ID,
		Value:             floatPtr(3),
	})
	require.ErrorIs(t, err, ErrGradeScopeMismatch)

	_, err = svc.Upsert(ctx, Actor{ID: course.TeacherID, Role: models.RoleTeacher}, dto.GradeUpsertRequest{
		EnrollmentID:      enrollment.ID,
		ActivityOutcomeID: link.ID,
		Value:             floatPtr(3),
		IndicatorID:       uintPtr(9999),
	})
	require.ErrorIs(t, err, ErrIndicatorNotInOutcome)
}

func TestGradeListByEnrollmentVisibility(t *testing.T) {
	db := openNoticeDB(t, "grade_visibility")
	course, enrollment := seedNoticeCourse(t, db, "CS105")
	outcome := models.LearningOutcome{CourseID: course.ID, Description: "RA1", Weight: floatPtr(100)}
	require.NoError(t, db.Create(&outcome).Error)
	link := seedLink(t, db, outcome.ID, "Quiz", 100, nil)
	require.NoError(t, db.Create(&models.Grade{EnrollmentID: enrollment.ID, ActivityOutcomeID: link.ID, Value: floatPtr(4)}).Error)

	svc := newGradeService(db, nil)
	ctx := context.Background()

	grades, err := svc.ListByEnrollment(ctx, Actor{ID: enrollment.StudentID, Role: models.RoleStudent}, enrollment.ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)

	_, err = svc.ListByEnrollment(ctx, Actor{ID: enrollment.StudentID + 100, Role: models.RoleStudent}, enrollment.ID)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)

	grades, err = svc.ListByEnrollment(ctx, Actor{ID: course.TeacherID, Role: models.RoleTeacher}, enrollment.ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)
}

func uintPtr(v uint) *uint {
	return &v
}
