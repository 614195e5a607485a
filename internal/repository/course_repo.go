package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/models"
)

// CourseRepository defines persistence operations for course offerings.
type CourseRepository interface {
	GetByCode(ctx context.Context, code string) (models.Course, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Course, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Course, error)
	ListPeriods(ctx context.Context, courseID uint) ([]models.Period, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByCode(ctx context.Context, code string) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Preload("Program").Where("code = ?", code).First(&course).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).
		Preload("Program").
		Where("teacher_id = ?", teacherID).
		Order("name ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).
		Preload("Program").
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.student_id = ?", studentID).
		Group("courses.id").
		Order("courses.name ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) ListPeriods(ctx context.Context, courseID uint) ([]models.Period, error) {
	var periods []models.Period
	if err := r.db.WithContext(ctx).
		Joins("JOIN enrollments ON enrollments.period_id = periods.id").
		Where("enrollments.course_id = ?", courseID).
		Group("periods.id").
		Order("periods.start_date ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}
