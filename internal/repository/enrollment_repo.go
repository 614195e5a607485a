package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/models"
)

// EnrollmentRepository defines persistence operations for enrollments.
type EnrollmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error)
	ListByCourse(ctx context.Context, courseID uint, periodID *uint) ([]models.Enrollment, error)
	LatestForStudentCourse(ctx context.Context, studentID, courseID uint) (models.Enrollment, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository instantiates a GORM-backed enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Period").
		Preload("Course").
		First(&enrollment, id).Error; err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("Period").
		Preload("Course").
		Preload("Course.Program").
		Where("student_id = ?", studentID).
		Order("id ASC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepository) ListByCourse(ctx context.Context, courseID uint, periodID *uint) ([]models.Enrollment, error) {
	query := r.db.WithContext(ctx).
		Preload("Student").
		Where("course_id = ?", courseID)
	if periodID != nil {
		query = query.Where("period_id = ?", *periodID)
	}

	var enrollments []models.Enrollment
	if err := query.Order("id ASC").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

// LatestForStudentCourse returns the most recent enrollment of the student
// in the course; repeated courses keep one enrollment per period.
func (r *enrollmentRepository) LatestForStudentCourse(ctx context.Context, studentID, courseID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Order("id DESC").
		First(&enrollment).Error; err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}
