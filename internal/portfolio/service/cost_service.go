package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/repository"
	"gorm.io/gorm"
)

// CostService mirrors RevenueService for cost lines; costs additionally carry
// a cost type reference validated against its own dictionary.
type CostService struct {
	db    *gorm.DB
	repos *repository.Repositories
	dict  *DictionaryService
}

func NewCostService(db *gorm.DB, repos *repository.Repositories, dict *DictionaryService) *CostService {
	return &CostService{db: db, repos: repos, dict: dict}
}

type CreateCostInput struct {
	Year       *int    `json:"year"`
	Month      *int    `json:"month"`
	Amount     float64 `json:"amount"`
	CostTypeID uint    `json:"cost_type_id" binding:"required"`
	StatusID   uint    `json:"status_id" binding:"required"`
}

type CostPatch struct {
	Year       *int     `json:"year"`
	Month      *int     `json:"month"`
	Amount     *float64 `json:"amount"`
	CostTypeID *uint    `json:"cost_type_id"`
	StatusID   *uint    `json:"status_id"`
}

type costColumn struct {
	name  string
	old   func(c *entity.Cost) string
	patch func(in *CostPatch) (value interface{}, str string, set bool)
}

var costColumns = []costColumn{
	{"year", func(c *entity.Cost) string { return fmtIntPtr(c.Year) },
		func(in *CostPatch) (interface{}, string, bool) {
			if in.Year == nil {
				return nil, "", false
			}
			return *in.Year, fmtIntPtr(in.Year), true
		}},
	{"month", func(c *entity.Cost) string { return fmtIntPtr(c.Month) },
		func(in *CostPatch) (interface{}, string, bool) {
			if in.Month == nil {
				return nil, "", false
			}
			return *in.Month, fmtIntPtr(in.Month), true
		}},
	{"amount", func(c *entity.Cost) string { return fmtFloat(c.Amount) },
		func(in *CostPatch) (interface{}, string, bool) {
			if in.Amount == nil {
				return nil, "", false
			}
			return *in.Amount, fmtFloat(*in.Amount), true
		}},
	{"cost_type_id", func(c *entity.Cost) string { return fmtUint(c.CostTypeID) },
		func(in *CostPatch) (interface{}, string, bool) {
			if in.CostTypeID == nil {
				return nil, "", false
			}
			return *in.CostTypeID, fmtUint(*in.CostTypeID), true
		}},
	{"status_id", func(c *entity.Cost) string { return fmtUint(c.StatusID) },
		func(in *CostPatch) (interface{}, string, bool) {
			if in.StatusID == nil {
				return nil, "", false
			}
			return *in.StatusID, fmtUint(*in.StatusID), true
		}},
}

func (s *CostService) requireProject(ctx context.Context, projectID uint) error {
	_, err := s.repos.Project.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("project %d: %w", projectID, ErrNotFound)
		}
		return fmt.Errorf("find project %d: %w", projectID, err)
	}
	return nil
}

func (s *CostService) findScoped(ctx context.Context, projectID, id uint) (*entity.Cost, error) {
	cost, err := s.repos.Cost.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("cost %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("find cost %d: %w", id, err)
	}
	if cost.ProjectID != projectID {
		return nil, fmt.Errorf("cost %d: %w", id, ErrNotFound)
	}
	return cost, nil
}

func (s *CostService) CreateCost(ctx context.Context, actorID, projectID uint, in *CreateCostInput) (*entity.Cost, error) {
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	if _, err := s.dict.ValidateItem(ctx, in.CostTypeID, entity.DictTypeCostType); err != nil {
		return nil, err
	}
	if _, err := s.dict.ValidateItem(ctx, in.StatusID, entity.DictTypeCostStatus); err != nil {
		return nil, err
	}

	cost := &entity.Cost{
		ProjectID:  projectID,
		Year:       in.Year,
		Month:      in.Month,
		Amount:     in.Amount,
		CostTypeID: in.CostTypeID,
		StatusID:   in.StatusID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := repository.NewRepositories(tx)
		if err := txRepos.Cost.Create(ctx, cost); err != nil {
			return fmt.Errorf("create cost: %w", err)
		}
		return txRepos.ChangeHistory.Create(ctx, &entity.ChangeHistory{
			ProjectID: projectID,
			UserID:    actorID,
			Field:     entity.FieldCostAdded,
			OldValue:  "",
			NewValue:  fmtUint(cost.ID),
		})
	})
	if err != nil {
		return nil, err
	}
	return cost, nil
}

func (s *CostService) UpdateCost(ctx context.Context, actorID, projectID, id uint, patch *CostPatch) (*entity.Cost, error) {
	cost, err := s.findScoped(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if patch.CostTypeID != nil {
		if _, err := s.dict.ValidateItem(ctx, *patch.CostTypeID, entity.DictTypeCostType); err != nil {
			return nil, err
		}
	}
	if patch.StatusID != nil {
		if _, err := s.dict.ValidateItem(ctx, *patch.StatusID, entity.DictTypeCostStatus); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	var changes []entity.ChangeHistory
	for _, col := range costColumns {
		value, newStr, set := col.patch(patch)
		if !set {
			continue
		}
		oldStr := col.old(cost)
		if oldStr == newStr {
			continue
		}
		updates[col.name] = value
		changes = append(changes, entity.ChangeHistory{
			ProjectID: projectID,
			UserID:    actorID,
			Field:     "cost_" + col.name,
			OldValue:  oldStr,
			NewValue:  newStr,
		})
	}
	if len(updates) == 0 {
		return cost, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := repository.NewRepositories(tx)
		if err := txRepos.Cost.UpdateColumns(ctx, id, updates); err != nil {
			return fmt.Errorf("update cost %d: %w", id, err)
		}
		for i := range changes {
			if err := txRepos.ChangeHistory.Create(ctx, &changes[i]); err != nil {
				return fmt.Errorf("log cost change: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.findScoped(ctx, projectID, id)
}

func (s *CostService) DeleteCost(ctx context.Context, actorID, projectID, id uint) error {
	cost, err := s.findScoped(ctx, projectID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := repository.NewRepositories(tx)
		if err := txRepos.Cost.Delete(ctx, cost.ID); err != nil {
			return fmt.Errorf("delete cost %d: %w", id, err)
		}
		return txRepos.ChangeHistory.Create(ctx, &entity.ChangeHistory{
			ProjectID: projectID,
			UserID:    actorID,
			Field:     entity.FieldCostDeleted,
			OldValue:  fmtUint(cost.ID),
			NewValue:  "",
		})
	})
}

func (s *CostService) GetCost(ctx context.Context, projectID, id uint) (*entity.Cost, error) {
	return s.findScoped(ctx, projectID, id)
}

func (s *CostService) ListCosts(ctx context.Context, projectID uint) ([]entity.Cost, error) {
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repos.Cost.ListByProject(ctx, projectID)
}
