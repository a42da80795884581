package repository

import (
	"context"
	"time"

	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"gorm.io/gorm"
)

type RevenueRepository struct {
	db *gorm.DB
}

func NewRevenueRepository(db *gorm.DB) *RevenueRepository {
	return &RevenueRepository{db: db}
}

func (r *RevenueRepository) FindByID(ctx context.Context, id uint) (*entity.Revenue, error) {
	var revenue entity.Revenue
	if err := r.db.WithContext(ctx).First(&revenue, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &revenue, nil
}

func (r *RevenueRepository) ListByProject(ctx context.Context, projectID uint) ([]entity.Revenue, error) {
	var revenues []entity.Revenue
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id").
		Find(&revenues).Error
	return revenues, err
}

func (r *RevenueRepository) Create(ctx context.Context, revenue *entity.Revenue) error {
	return r.db.WithContext(ctx).Create(revenue).Error
}

func (r *RevenueRepository) UpdateColumns(ctx context.Context, id uint, columns map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&entity.Revenue{}).
		Where("id = ?", id).
		Updates(columns).Error
}

func (r *RevenueRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Revenue{}, id).Error
}

func (r *RevenueRepository) DeleteByProject(ctx context.Context, projectID uint) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&entity.Revenue{}).Error
}

// SumCreatedBetween totals revenue amounts created inside [start, end].
// Returns 0 when the window is empty.
func (r *RevenueRepository) SumCreatedBetween(ctx context.Context, start, end time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&entity.Revenue{}).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
