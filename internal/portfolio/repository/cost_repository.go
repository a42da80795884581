package repository

import (
	"context"

	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"gorm.io/gorm"
)

type CostRepository struct {
	db *gorm.DB
}

func NewCostRepository(db *gorm.DB) *CostRepository {
	return &CostRepository{db: db}
}

func (r *CostRepository) FindByID(ctx context.Context, id uint) (*entity.Cost, error) {
	var cost entity.Cost
	if err := r.db.WithContext(ctx).First(&cost, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &cost, nil
}

func (r *CostRepository) ListByProject(ctx context.Context, projectID uint) ([]entity.Cost, error) {
	var costs []entity.Cost
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id").
		Find(&costs).Error
	return costs, err
}

func (r *CostRepository) Create(ctx context.Context, cost *entity.Cost) error {
	return r.db.WithContext(ctx).Create(cost).Error
}

func (r *CostRepository) UpdateColumns(ctx context.Context, id uint, columns map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&entity.Cost{}).
		Where("id = ?", id).
		Updates(columns).Error
}

func (r *CostRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Cost{}, id).Error
}

func (r *CostRepository) DeleteByProject(ctx context.Context, projectID uint) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&entity.Cost{}).Error
}
