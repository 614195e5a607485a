package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/models"
)

// ResourceRepository defines persistence operations for course resources.
type ResourceRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.Resource, error)
	Create(ctx context.Context, resource *models.Resource) error
}

type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository instantiates a GORM-backed resource repository.
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Resource, error) {
	var resources []models.Resource
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("uploaded_at DESC").
		Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *resourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}
