package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sigra-edu/sigra-api/internal/models"
)

// GradeRepository defines persistence operations for recorded grades.
type GradeRepository interface {
	Upsert(ctx context.Context, grade *models.Grade) (created bool, err error)
	ListByEnrollment(ctx context.Context, enrollmentID uint) ([]models.Grade, error)
	ListByEnrollmentAndIndicator(ctx context.Context, enrollmentID, indicatorID uint) ([]models.Grade, error)
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository instantiates a GORM-backed grade repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

// Upsert creates the grade for the (enrollment, activity link) pair or
// overwrites value, feedback and indicator attribution on the existing row.
// The write rides on the uq_grade unique index so concurrent first writes
// cannot both insert.
func (r *gradeRepository) Upsert(ctx context.Context, grade *models.Grade) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Grade{}).
		Where("enrollment_id = ? AND activity_outcome_id = ?", grade.EnrollmentID, grade.ActivityOutcomeID).
		Count(&count).Error; err != nil {
		return false, err
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "activity_outcome_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "feedback", "indicator_id", "updated_at"}),
		}).
		Create(grade).Error; err != nil {
		return false, err
	}

	// On conflict the model keeps the insert id, not the stored row's.
	var stored models.Grade
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ? AND activity_outcome_id = ?", grade.EnrollmentID, grade.ActivityOutcomeID).
		First(&stored).Error; err != nil {
		return false, err
	}

	*grade = stored
	return count == 0, nil
}

func (r *gradeRepository) ListByEnrollment(ctx context.Context, enrollmentID uint) ([]models.Grade, error) {
	var grades []models.Grade
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Find(&grades).Error; err != nil {
		return nil, err
	}
	return grades, nil
}

func (r *gradeRepository) ListByEnrollmentAndIndicator(ctx context.Context, enrollmentID, indicatorID uint) ([]models.Grade, error) {
	var grades []models.Grade
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ? AND indicator_id = ?", enrollmentID, indicatorID).
		Find(&grades).Error; err != nil {
		return nil, err
	}
	return grades, nil
}
