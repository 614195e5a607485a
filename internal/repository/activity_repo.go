package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/models"
)

// ActivityRepository defines persistence operations for activities and their
// outcome links.
type ActivityRepository interface {
	ListLinksByOutcome(ctx context.Context, outcomeID uint) ([]models.ActivityOutcome, error)
	GetLinkByID(ctx context.Context, linkID uint) (models.ActivityOutcome, error)
	SumLinkWeights(ctx context.Context, outcomeID uint) (float64, error)
	CreateWithLink(ctx context.Context, activity *models.Activity, link *models.ActivityOutcome, indicatorIDs []uint) error
	ListTypes(ctx context.Context) ([]models.ActivityType, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository instantiates a GORM-backed activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) ListLinksByOutcome(ctx context.Context, outcomeID uint) ([]models.ActivityOutcome, error) {
	var links []models.ActivityOutcome
	if err := r.db.WithContext(ctx).
		Preload("Activity").
		Preload("Activity.Type").
		Preload("Indicators").
		Where("outcome_id = ?", outcomeID).
		Order("id ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *activityRepository) GetLinkByID(ctx context.Context, linkID uint) (models.ActivityOutcome, error) {
	var link models.ActivityOutcome
	if err := r.db.WithContext(ctx).
		Preload("Activity").
		Preload("Outcome").
		First(&link, linkID).Error; err != nil {
		return models.ActivityOutcome{}, err
	}
	return link, nil
}

func (r *activityRepository) SumLinkWeights(ctx context.Context, outcomeID uint) (float64, error) {
	var sum *float64
	if err := r.db.WithContext(ctx).
		Model(&models.ActivityOutcome{}).
		Where("outcome_id = ?", outcomeID).
		Select("SUM(weight)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// CreateWithLink persists the activity, its outcome link and any indicator
// assignments in one transaction.
func (r *activityRepository) CreateWithLink(ctx context.Context, activity *models.Activity, link *models.ActivityOutcome, indicatorIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(activity).Error; err != nil {
			return err
		}

		link.ActivityID = activity.ID
		if err := tx.Create(link).Error; err != nil {
			return err
		}

		if len(indicatorIDs) > 0 {
			indicators := make([]models.Indicator, 0, len(indicatorIDs))
			for _, id := range indicatorIDs {
				indicators = append(indicators, models.Indicator{ID: id})
			}
			if err := tx.Model(link).Association("Indicators").Append(indicators); err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *activityRepository) ListTypes(ctx context.Context) ([]models.ActivityType, error) {
	var types []models.ActivityType
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}
