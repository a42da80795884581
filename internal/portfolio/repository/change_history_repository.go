package repository

import (
	"context"
	"time"

	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"gorm.io/gorm"
)

type ChangeHistoryRepository struct {
	db *gorm.DB
}

func NewChangeHistoryRepository(db *gorm.DB) *ChangeHistoryRepository {
	return &ChangeHistoryRepository{db: db}
}

// Create appends one audit entry. Entries are never updated or deleted.
func (r *ChangeHistoryRepository) Create(ctx context.Context, change *entity.ChangeHistory) error {
	if change.ChangedAt.IsZero() {
		change.ChangedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(change).Error
}

func (r *ChangeHistoryRepository) ListByProject(ctx context.Context, projectID uint, limit int) ([]entity.ChangeHistory, error) {
	var changes []entity.ChangeHistory
	query := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("changed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&changes).Error
	return changes, err
}

// ListStageChanges loads every stage transition ordered so the dwell-time
// scan can pair each row with the next transition of the same project in a
// single pass.
func (r *ChangeHistoryRepository) ListStageChanges(ctx context.Context) ([]entity.ChangeHistory, error) {
	var changes []entity.ChangeHistory
	err := r.db.WithContext(ctx).
		Where("field = ?", entity.FieldStageID).
		Order("project_id, changed_at").
		Find(&changes).Error
	return changes, err
}

// ListStageChangesByProject returns one project's stage transitions in
// chronological order, for the gantt view.
func (r *ChangeHistoryRepository) ListStageChangesByProject(ctx context.Context, projectID uint) ([]entity.ChangeHistory, error) {
	var changes []entity.ChangeHistory
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND field = ?", projectID, entity.FieldStageID).
		Order("changed_at").
		Find(&changes).Error
	return changes, err
}
