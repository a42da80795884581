package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/repository"
	"gorm.io/gorm"
)

// ProjectService is the change-tracked mutation engine for projects: it
// validates dictionary references, derives probability from the stage, and
// commits every write together with its audit entries in one transaction.
type ProjectService struct {
	db    *gorm.DB
	repos *repository.Repositories
	dict  *DictionaryService
}

func NewProjectService(db *gorm.DB, repos *repository.Repositories, dict *DictionaryService) *ProjectService {
	return &ProjectService{db: db, repos: repos, dict: dict}
}

// CreateProjectInput carries a validated create request. Probability is
// deliberately absent: it is derived from the stage, never accepted.
type CreateProjectInput struct {
	OrgName     string `json:"org_name" binding:"required"`
	OrgINN      string `json:"org_inn" binding:"required"`
	ProjectName string `json:"project_name" binding:"required"`

	ServiceID         uint   `json:"service_id" binding:"required"`
	PaymentTypeID     uint   `json:"payment_type_id" binding:"required"`
	StageID           uint   `json:"stage_id" binding:"required"`
	Manager           string `json:"manager" binding:"required"`
	BusinessSegmentID uint   `json:"business_segment_id" binding:"required"`

	RealizationYear        *time.Time `json:"realization_year"`
	IndustrySolution       bool       `json:"industry_solution"`
	ForecastAccepted       bool       `json:"forecast_accepted"`
	ViaDZO                 bool       `json:"via_dzo"`
	NeedsLeadershipControl bool       `json:"needs_leadership_control"`

	AssessmentID    *int    `json:"assessment_id"`
	IndustryManager *string `json:"industry_manager"`
	ProjectNumber   *string `json:"project_number"`
	Status          *string `json:"status"`
	DoneInPeriod    *string `json:"done_in_period"`
	PlansNextPeriod *string `json:"plans_next_period"`
}

// ProjectPatch is a partial update; nil means "field not present".
type ProjectPatch struct {
	OrgName     *string `json:"org_name"`
	OrgINN      *string `json:"org_inn"`
	ProjectName *string `json:"project_name"`

	ServiceID         *uint   `json:"service_id"`
	PaymentTypeID     *uint   `json:"payment_type_id"`
	StageID           *uint   `json:"stage_id"`
	Manager           *string `json:"manager"`
	BusinessSegmentID *uint   `json:"business_segment_id"`

	RealizationYear        *time.Time `json:"realization_year"`
	IndustrySolution       *bool      `json:"industry_solution"`
	ForecastAccepted       *bool      `json:"forecast_accepted"`
	ViaDZO                 *bool      `json:"via_dzo"`
	NeedsLeadershipControl *bool      `json:"needs_leadership_control"`

	AssessmentID    *int    `json:"assessment_id"`
	IndustryManager *string `json:"industry_manager"`
	ProjectNumber   *string `json:"project_number"`
	Status          *string `json:"status"`
	DoneInPeriod    *string `json:"done_in_period"`
	PlansNextPeriod *string `json:"plans_next_period"`
}

// projectColumn enumerates one auditable column: how to stringify the stored
// value and how to read the patch. The table below is the complete, fixed set
// of diffable project fields; probability is excluded on purpose (derived,
// not independently audited).
type projectColumn struct {
	name  string
	old   func(p *entity.Project) string
	patch func(in *ProjectPatch) (value interface{}, str string, set bool)
}

func strPatch(v *string) (interface{}, string, bool) {
	if v == nil {
		return nil, "", false
	}
	return *v, *v, true
}

func uintPatch(v *uint) (interface{}, string, bool) {
	if v == nil {
		return nil, "", false
	}
	return *v, fmtUint(*v), true
}

func boolPatch(v *bool) (interface{}, string, bool) {
	if v == nil {
		return nil, "", false
	}
	return *v, fmtBool(*v), true
}

var projectColumns = []projectColumn{
	{"org_name", func(p *entity.Project) string { return p.OrgName },
		func(in *ProjectPatch) (interface{}, string, bool) { return strPatch(in.OrgName) }},
	{"org_inn", func(p *entity.Project) string { return p.OrgINN },
		func(in *ProjectPatch) (interface{}, string, bool) { return strPatch(in.OrgINN) }},
	{"project_name", func(p *entity.Project) string { return p.ProjectName },
		func(in *ProjectPatch) (interface{}, string, bool) { return strPatch(in.ProjectName) }},
	{"service_id", func(p *entity.Project) string { return fmtUint(p.ServiceID) },
		func(in *ProjectPatch) (interface{}, string, bool) { return uintPatch(in.ServiceID) }},
	{"payment_type_id", func(p *entity.Project) string { return fmtUint(p.PaymentTypeID) },
		func(in *ProjectPatch) (interface{}, string, bool) { return uintPatch(in.PaymentTypeID) }},
	{"stage_id", func(p *entity.Project) string { return fmtUint(p.StageID) },
		func(in *ProjectPatch) (interface{}, string, bool) { return uintPatch(in.StageID) }},
	{"manager", func(p *entity.Project) string { return p.Manager },
		func(in *ProjectPatch) (interface{}, string, bool) { return strPatch(in.Manager) }},
	{"business_segment_id", func(p *entity.Project) string { return fmtUint(p.BusinessSegmentID) },
		func(in *ProjectPatch) (interface{}, string, bool) { return uintPatch(in.BusinessSegmentID) }},
	{"realization_year", func(p *entity.Project) string { return fmtTimePtr(p.RealizationYear) },
		func(in *ProjectPatch) (interface{}, string, bool) {
			if in.RealizationYear == nil {
				return nil, "", false
			}
			return *in.RealizationYear, fmtTimePtr(in.RealizationYear), true
		}},
	{"industry_solution", func(p *entity.Project) string { return fmtBool(p.IndustrySolution) },
		func(in *ProjectPatch) (interface{}, string, bool) { return boolPatch(in.IndustrySolution) }},
	{"forecast_accepted", func(p *entity.Project) string { return fmtBool(p.ForecastAccepted) },
		func(in *ProjectPatch) (interface{}, string, bool) { return boolPatch(in.ForecastAccepted) }},
	{"via_dzo", func(p *entity.Project) string { return fmtBool(p.ViaDZO) },
		func(in *ProjectPatch) (interface{}, string, bool) { return boolPatch(in.ViaDZO) }},
	{"needs_leadership_control", func(p *entity.Project) string { return fmtBool(p.NeedsLeadershipControl) },
		func(in *ProjectPatch) (interface{}, string, bool) { return boolPatch(in.NeedsLeadershipControl) }},
	{"assessment_id", func(p *entity.Project) string { return fmtIntPtr(p.AssessmentID) },
		func(in *ProjectPatch) (interface{}, string, bool) {
			if in.AssessmentID == nil {
				return nil, "", false
			}
			return *in.AssessmentID, fmtIntPtr(in.AssessmentID), true
		}},
	{"industry_manager", func(p *entity.Project) string { return fmtStrPtr(p.IndustryManager) },
		func(in *ProjectPatch) (interface{}, string, bool) { return strPatch(in.IndustryManager) }},
	{"project_number", func(p *entity.Project) string { return fmtStrPtr(p.ProjectNumber) },
		func(in *ProjectPatch) (interface{}, string, bool) { return strPatch(in.ProjectNumber) }},
	{"status", func(p *entity.Project) string { return fmtStrPtr(p.Status) },
		func(in *ProjectPatch) (interface{}, string, bool) { return strPatch(in.Status) }},
	{"done_in_period", func(p *entity.Project) string { return fmtStrPtr(p.DoneInPeriod) },
		func(in *ProjectPatch) (interface{}, string, bool) { return strPatch(in.DoneInPeriod) }},
	{"plans_next_period", func(p *entity.Project) string { return fmtStrPtr(p.PlansNextPeriod) },
		func(in *ProjectPatch) (interface{}, string, bool) { return strPatch(in.PlansNextPeriod) }},
}

func checkProjectConstraints(in *CreateProjectInput) error {
	if in.AssessmentID != nil && !in.ForecastAccepted {
		return fmt.Errorf("assessment_id requires forecast_accepted: %w", ErrConstraintViolation)
	}
	if in.IndustryManager != nil && *in.IndustryManager != "" && !in.IndustrySolution {
		return fmt.Errorf("industry_manager requires industry_solution: %w", ErrConstraintViolation)
	}
	if in.ProjectNumber != nil && *in.ProjectNumber != "" && !in.IndustrySolution {
		return fmt.Errorf("project_number requires industry_solution: %w", ErrConstraintViolation)
	}
	return nil
}

// CreateProject validates every dictionary reference and the conditional
// field invariants before anything is written, then persists the project and
// its "created" audit entry atomically.
func (s *ProjectService) CreateProject(ctx context.Context, actorID uint, in *CreateProjectInput) (*entity.Project, error) {
	if _, err := s.dict.ValidateItem(ctx, in.ServiceID, entity.DictTypeService); err != nil {
		return nil, err
	}
	if _, err := s.dict.ValidateItem(ctx, in.PaymentTypeID, entity.DictTypePaymentType); err != nil {
		return nil, err
	}
	if _, err := s.dict.ValidateItem(ctx, in.BusinessSegmentID, entity.DictTypeBusinessSegment); err != nil {
		return nil, err
	}
	stage, err := s.dict.ValidateStage(ctx, in.StageID)
	if err != nil {
		return nil, err
	}
	if err := checkProjectConstraints(in); err != nil {
		return nil, err
	}

	project := &entity.Project{
		OrgName:                in.OrgName,
		OrgINN:                 in.OrgINN,
		ProjectName:            in.ProjectName,
		ServiceID:              in.ServiceID,
		PaymentTypeID:          in.PaymentTypeID,
		StageID:                in.StageID,
		Probability:            *stage.Probability,
		Manager:                in.Manager,
		BusinessSegmentID:      in.BusinessSegmentID,
		RealizationYear:        in.RealizationYear,
		IndustrySolution:       in.IndustrySolution,
		ForecastAccepted:       in.ForecastAccepted,
		ViaDZO:                 in.ViaDZO,
		NeedsLeadershipControl: in.NeedsLeadershipControl,
		AssessmentID:           in.AssessmentID,
		IndustryManager:        in.IndustryManager,
		ProjectNumber:          in.ProjectNumber,
		Status:                 in.Status,
		DoneInPeriod:           in.DoneInPeriod,
		PlansNextPeriod:        in.PlansNextPeriod,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := repository.NewRepositories(tx)
		if err := txRepos.Project.Create(ctx, project); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		return txRepos.ChangeHistory.Create(ctx, &entity.ChangeHistory{
			ProjectID: project.ID,
			UserID:    actorID,
			Field:     entity.FieldCreated,
			OldValue:  "",
			NewValue:  fmtUint(project.ID),
		})
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProject applies a partial update. A stage change re-validates the
// stage and recomputes the derived probability; every other changed field is
// diffed through the explicit column table. Fields equal to their current
// value produce no audit entry. Concurrent updates to the same project race
// at last-write-wins granularity per field; no conflict detection is done.
func (s *ProjectService) UpdateProject(ctx context.Context, actorID uint, id uint, patch *ProjectPatch) (*entity.Project, error) {
	current, err := s.repos.Project.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("find project %d: %w", id, err)
	}

	updates := make(map[string]interface{})
	var changes []entity.ChangeHistory

	if patch.StageID != nil {
		stage, err := s.dict.ValidateStage(ctx, *patch.StageID)
		if err != nil {
			return nil, err
		}
		updates["probability"] = *stage.Probability
	}

	for _, col := range projectColumns {
		value, newStr, set := col.patch(patch)
		if !set {
			continue
		}
		oldStr := col.old(current)
		if oldStr == newStr {
			continue
		}
		updates[col.name] = value
		changes = append(changes, entity.ChangeHistory{
			ProjectID: id,
			UserID:    actorID,
			Field:     col.name,
			OldValue:  oldStr,
			NewValue:  newStr,
		})
	}

	if len(updates) == 0 {
		return current, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := repository.NewRepositories(tx)
		if err := txRepos.Project.UpdateColumns(ctx, id, updates); err != nil {
			return fmt.Errorf("update project %d: %w", id, err)
		}
		for i := range changes {
			if err := txRepos.ChangeHistory.Create(ctx, &changes[i]); err != nil {
				return fmt.Errorf("log project change: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repos.Project.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload project %d: %w", id, err)
	}
	return updated, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id uint) (*entity.Project, error) {
	project, err := s.repos.Project.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("find project %d: %w", id, err)
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]entity.Project, error) {
	return s.repos.Project.List(ctx)
}

// DeleteProject removes a project together with its revenues and costs in one
// transaction. Admin-only at the route.
func (s *ProjectService) DeleteProject(ctx context.Context, id uint) error {
	if _, err := s.GetProject(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := repository.NewRepositories(tx)
		if err := txRepos.Revenue.DeleteByProject(ctx, id); err != nil {
			return fmt.Errorf("delete project %d revenues: %w", id, err)
		}
		if err := txRepos.Cost.DeleteByProject(ctx, id); err != nil {
			return fmt.Errorf("delete project %d costs: %w", id, err)
		}
		if err := txRepos.Project.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete project %d: %w", id, err)
		}
		return nil
	})
}

// ListChanges returns the most recent audit entries for a project.
func (s *ProjectService) ListChanges(ctx context.Context, projectID uint, limit int) ([]entity.ChangeHistory, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repos.ChangeHistory.ListByProject(ctx, projectID, limit)
}
