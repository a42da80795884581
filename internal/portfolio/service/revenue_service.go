package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/repository"
	"gorm.io/gorm"
)

// RevenueService mutates revenue lines; every mutation writes audit entries
// scoped to the owning project in the same transaction.
type RevenueService struct {
	db    *gorm.DB
	repos *repository.Repositories
	dict  *DictionaryService
}

func NewRevenueService(db *gorm.DB, repos *repository.Repositories, dict *DictionaryService) *RevenueService {
	return &RevenueService{db: db, repos: repos, dict: dict}
}

type CreateRevenueInput struct {
	Year     *int    `json:"year"`
	Month    *int    `json:"month"`
	Amount   float64 `json:"amount"`
	StatusID uint    `json:"status_id" binding:"required"`
}

type RevenuePatch struct {
	Year     *int     `json:"year"`
	Month    *int     `json:"month"`
	Amount   *float64 `json:"amount"`
	StatusID *uint    `json:"status_id"`
}

// revenueColumns is the fixed set of diffable revenue fields. Audit entries
// carry the field name prefixed with the entity, e.g. "revenue_amount".
type revenueColumn struct {
	name  string
	old   func(r *entity.Revenue) string
	patch func(in *RevenuePatch) (value interface{}, str string, set bool)
}

var revenueColumns = []revenueColumn{
	{"year", func(r *entity.Revenue) string { return fmtIntPtr(r.Year) },
		func(in *RevenuePatch) (interface{}, string, bool) {
			if in.Year == nil {
				return nil, "", false
			}
			return *in.Year, fmtIntPtr(in.Year), true
		}},
	{"month", func(r *entity.Revenue) string { return fmtIntPtr(r.Month) },
		func(in *RevenuePatch) (interface{}, string, bool) {
			if in.Month == nil {
				return nil, "", false
			}
			return *in.Month, fmtIntPtr(in.Month), true
		}},
	{"amount", func(r *entity.Revenue) string { return fmtFloat(r.Amount) },
		func(in *RevenuePatch) (interface{}, string, bool) {
			if in.Amount == nil {
				return nil, "", false
			}
			return *in.Amount, fmtFloat(*in.Amount), true
		}},
	{"status_id", func(r *entity.Revenue) string { return fmtUint(r.StatusID) },
		func(in *RevenuePatch) (interface{}, string, bool) {
			if in.StatusID == nil {
				return nil, "", false
			}
			return *in.StatusID, fmtUint(*in.StatusID), true
		}},
}

func (s *RevenueService) requireProject(ctx context.Context, projectID uint) error {
	_, err := s.repos.Project.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("project %d: %w", projectID, ErrNotFound)
		}
		return fmt.Errorf("find project %d: %w", projectID, err)
	}
	return nil
}

// findScoped resolves a revenue and confirms it belongs to the project from
// the request path.
func (s *RevenueService) findScoped(ctx context.Context, projectID, id uint) (*entity.Revenue, error) {
	revenue, err := s.repos.Revenue.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("revenue %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("find revenue %d: %w", id, err)
	}
	if revenue.ProjectID != projectID {
		return nil, fmt.Errorf("revenue %d: %w", id, ErrNotFound)
	}
	return revenue, nil
}

func (s *RevenueService) CreateRevenue(ctx context.Context, actorID, projectID uint, in *CreateRevenueInput) (*entity.Revenue, error) {
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	if _, err := s.dict.ValidateItem(ctx, in.StatusID, entity.DictTypeRevenueStatus); err != nil {
		return nil, err
	}

	revenue := &entity.Revenue{
		ProjectID: projectID,
		Year:      in.Year,
		Month:     in.Month,
		Amount:    in.Amount,
		StatusID:  in.StatusID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := repository.NewRepositories(tx)
		if err := txRepos.Revenue.Create(ctx, revenue); err != nil {
			return fmt.Errorf("create revenue: %w", err)
		}
		return txRepos.ChangeHistory.Create(ctx, &entity.ChangeHistory{
			ProjectID: projectID,
			UserID:    actorID,
			Field:     entity.FieldRevenueAdded,
			OldValue:  "",
			NewValue:  fmtUint(revenue.ID),
		})
	})
	if err != nil {
		return nil, err
	}
	return revenue, nil
}

func (s *RevenueService) UpdateRevenue(ctx context.Context, actorID, projectID, id uint, patch *RevenuePatch) (*entity.Revenue, error) {
	revenue, err := s.findScoped(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if patch.StatusID != nil {
		if _, err := s.dict.ValidateItem(ctx, *patch.StatusID, entity.DictTypeRevenueStatus); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	var changes []entity.ChangeHistory
	for _, col := range revenueColumns {
		value, newStr, set := col.patch(patch)
		if !set {
			continue
		}
		oldStr := col.old(revenue)
		if oldStr == newStr {
			continue
		}
		updates[col.name] = value
		changes = append(changes, entity.ChangeHistory{
			ProjectID: projectID,
			UserID:    actorID,
			Field:     "revenue_" + col.name,
			OldValue:  oldStr,
			NewValue:  newStr,
		})
	}
	if len(updates) == 0 {
		return revenue, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := repository.NewRepositories(tx)
		if err := txRepos.Revenue.UpdateColumns(ctx, id, updates); err != nil {
			return fmt.Errorf("update revenue %d: %w", id, err)
		}
		for i := range changes {
			if err := txRepos.ChangeHistory.Create(ctx, &changes[i]); err != nil {
				return fmt.Errorf("log revenue change: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.findScoped(ctx, projectID, id)
}

func (s *RevenueService) DeleteRevenue(ctx context.Context, actorID, projectID, id uint) error {
	revenue, err := s.findScoped(ctx, projectID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := repository.NewRepositories(tx)
		if err := txRepos.Revenue.Delete(ctx, revenue.ID); err != nil {
			return fmt.Errorf("delete revenue %d: %w", id, err)
		}
		return txRepos.ChangeHistory.Create(ctx, &entity.ChangeHistory{
			ProjectID: projectID,
			UserID:    actorID,
			Field:     entity.FieldRevenueDeleted,
			OldValue:  fmtUint(revenue.ID),
			NewValue:  "",
		})
	})
}

func (s *RevenueService) GetRevenue(ctx context.Context, projectID, id uint) (*entity.Revenue, error) {
	return s.findScoped(ctx, projectID, id)
}

func (s *RevenueService) ListRevenues(ctx context.Context, projectID uint) ([]entity.Revenue, error) {
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repos.Revenue.ListByProject(ctx, projectID)
}
