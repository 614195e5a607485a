package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/models"
)

// OutcomeRepository defines persistence operations for learning outcomes and
// their indicators.
type OutcomeRepository interface {
	GetByID(ctx context.Context, id uint) (models.LearningOutcome, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.LearningOutcome, error)
	Create(ctx context.Context, outcome *models.LearningOutcome) error
	Update(ctx context.Context, outcome *models.LearningOutcome) error
	ListIndicators(ctx context.Context, outcomeID uint) ([]models.Indicator, error)
	ListIndicatorsByCourse(ctx context.Context, courseID uint) ([]models.Indicator, error)
	CreateIndicator(ctx context.Context, indicator *models.Indicator) error
	FilterIndicatorIDs(ctx context.Context, outcomeID uint, ids []uint) ([]uint, error)
}

type outcomeRepository struct {
	db *gorm.DB
}

// NewOutcomeRepository instantiates a GORM-backed outcome repository.
func NewOutcomeRepository(db *gorm.DB) OutcomeRepository {
	return &outcomeRepository{db: db}
}

func (r *outcomeRepository) GetByID(ctx context.Context, id uint) (models.LearningOutcome, error) {
	var outcome models.LearningOutcome
	if err := r.db.WithContext(ctx).Preload("Course").First(&outcome, id).Error; err != nil {
		return models.LearningOutcome{}, err
	}
	return outcome, nil
}

func (r *outcomeRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.LearningOutcome, error) {
	var outcomes []models.LearningOutcome
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Find(&outcomes).Error; err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (r *outcomeRepository) Create(ctx context.Context, outcome *models.LearningOutcome) error {
	return r.db.WithContext(ctx).Create(outcome).Error
}

func (r *outcomeRepository) Update(ctx context.Context, outcome *models.LearningOutcome) error {
	return r.db.WithContext(ctx).Save(outcome).Error
}

func (r *outcomeRepository) ListIndicators(ctx context.Context, outcomeID uint) ([]models.Indicator, error) {
	var indicators []models.Indicator
	if err := r.db.WithContext(ctx).
		Where("outcome_id = ?", outcomeID).
		Order("id ASC").
		Find(&indicators).Error; err != nil {
		return nil, err
	}
	return indicators, nil
}

func (r *outcomeRepository) ListIndicatorsByCourse(ctx context.Context, courseID uint) ([]models.Indicator, error) {
	var indicators []models.Indicator
	if err := r.db.WithContext(ctx).
		Joins("JOIN learning_outcomes ON learning_outcomes.id = indicators.outcome_id").
		Where("learning_outcomes.course_id = ?", courseID).
		Order("indicators.id ASC").
		Find(&indicators).Error; err != nil {
		return nil, err
	}
	return indicators, nil
}

func (r *outcomeRepository) CreateIndicator(ctx context.Context, indicator *models.Indicator) error {
	return r.db.WithContext(ctx).Create(indicator).Error
}

// FilterIndicatorIDs returns the subset of ids that are indicators of the
// given outcome. Used to reject cross-outcome indicator assignments.
func (r *outcomeRepository) FilterIndicatorIDs(ctx context.Context, outcomeID uint, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var valid []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Indicator{}).
		Where("outcome_id = ? AND id IN ?", outcomeID, ids).
		Pluck("id", &valid).Error; err != nil {
		return nil, err
	}
	return valid, nil
}
