package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/models"
)

// TeacherRepository defines persistence operations for teacher accounts.
type TeacherRepository interface {
	GetByID(ctx context.Context, id uint) (models.Teacher, error)
	FindByLogin(ctx context.Context, email, code string) (models.Teacher, error)
	Update(ctx context.Context, teacher *models.Teacher) error
}

// StudentRepository defines persistence operations for student accounts.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	FindByLogin(ctx context.Context, email, code string) (models.Student, error)
	Update(ctx context.Context, student *models.Student) error
}

type teacherRepository struct {
	db *gorm.DB
}

// NewTeacherRepository instantiates a GORM-backed teacher repository.
func NewTeacherRepository(db *gorm.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) GetByID(ctx context.Context, id uint) (models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.WithContext(ctx).First(&teacher, id).Error; err != nil {
		return models.Teacher{}, err
	}
	return teacher, nil
}

func (r *teacherRepository) FindByLogin(ctx context.Context, email, code string) (models.Teacher, error) {
	var teacher models.Teacher
	query := r.db.WithContext(ctx)
	switch {
	case code != "":
		query = query.Where("code = ?", code)
	case email != "":
		query = query.Where("email = ?", email)
	default:
		return models.Teacher{}, gorm.ErrRecordNotFound
	}
	if err := query.First(&teacher).Error; err != nil {
		return models.Teacher{}, err
	}
	return teacher, nil
}

func (r *teacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	return r.db.WithContext(ctx).Save(teacher).Error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository instantiates a GORM-backed student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) FindByLogin(ctx context.Context, email, code string) (models.Student, error) {
	var student models.Student
	query := r.db.WithContext(ctx)
	switch {
	case code != "":
		query = query.Where("code = ?", code)
	case email != "":
		query = query.Where("email = ?", email)
	default:
		return models.Student{}, gorm.ErrRecordNotFound
	}
	if err := query.First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}
