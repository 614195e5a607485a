package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/models"
)

func setupGradeDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:grade_repo?mode=memory&cache=shared"), &gorm.Config{})
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

func TestGradeRepositoryUpsertIsConflictSafe(t *testing.T) {
	db := setupGradeDB(t)
	repo := NewGradeRepository(db)
	ctx := context.Background()

	first := 2.5
	grade := models.Grade{EnrollmentID: 1, ActivityOutcomeID: 1, Value: &first, Feedback: "first pass"}
	created, err := repo.Upsert(ctx, &grade)
	require.NoError(t, err)
	require.True(t, created)
	require.NotZero(t, grade.ID)

	// A second write for the same pair lands on the existing row through the
	// unique index, never a duplicate insert.
	second := 4.0
	rewrite := models.Grade{EnrollmentID: 1, ActivityOutcomeID: 1, Value: &second, Feedback: "revised"}
	created, err = repo.Upsert(ctx, &rewrite)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, grade.ID, rewrite.ID)
	require.Equal(t, 4.0, *rewrite.Value)
	require.Equal(t, "revised", rewrite.Feedback)

	var count int64
	require.NoError(t, db.Model(&models.Grade{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// A different pair gets its own row.
	other := models.Grade{EnrollmentID: 1, ActivityOutcomeID: 2, Value: &first}
	created, err = repo.Upsert(ctx, &other)
	require.NoError(t, err)
	require.True(t, created)
	require.NotEqual(t, grade.ID, other.ID)
}
