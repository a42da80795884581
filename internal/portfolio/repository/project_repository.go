package repository

import (
	"context"

	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) FindByID(ctx context.Context, id uint) (*entity.Project, error) {
	var project entity.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &project, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]entity.Project, error) {
	var projects []entity.Project
	err := r.db.WithContext(ctx).Order("id").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// UpdateColumns persists only the given columns in one UPDATE.
func (r *ProjectRepository) UpdateColumns(ctx context.Context, id uint, columns map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Where("id = ?", id).
		Updates(columns).Error
}

func (r *ProjectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Project{}, id).Error
}

func (r *ProjectRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Project{}).Count(&count).Error
	return count, err
}

func (r *ProjectRepository) CountByStage(ctx context.Context, stageID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Where("stage_id = ?", stageID).
		Count(&count).Error
	return count, err
}

// GroupRow is one grouped dashboard aggregate: projects per key plus the sum
// of their probabilities.
type GroupRow struct {
	Key            string  `json:"key"`
	Count          int64   `json:"count"`
	ProbabilitySum float64 `json:"probability_sum"`
}

// GroupBy aggregates projects by one of the grouping columns. The column is
// chosen from a fixed set by the caller, never from user input.
func (r *ProjectRepository) GroupBy(ctx context.Context, column string) ([]GroupRow, error) {
	var rows []GroupRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+column+`::text AS key,
		       COUNT(*) AS count,
		       COALESCE(SUM(probability), 0) AS probability_sum
		FROM projects
		GROUP BY `+column+`
		ORDER BY count DESC
	`).Scan(&rows).Error
	return rows, err
}

// FindFiltered returns projects matching the report engine's pre-validated
// where clauses, optionally preloading the two fixed relations.
func (r *ProjectRepository) FindFiltered(ctx context.Context, conds []FilterCond, withRevenues, withCosts bool) ([]entity.Project, error) {
	query := r.db.WithContext(ctx).Model(&entity.Project{}).Order("id")
	for _, c := range conds {
		query = query.Where(c.Clause, c.Args...)
	}
	if withRevenues {
		query = query.Preload("Revenues")
	}
	if withCosts {
		query = query.Preload("Costs")
	}
	var projects []entity.Project
	err := query.Find(&projects).Error
	return projects, err
}

// FilterCond is a single pre-built SQL condition. The report engine constructs
// these from its enumerated filter grammar only.
type FilterCond struct {
	Clause string
	Args   []interface{}
}
