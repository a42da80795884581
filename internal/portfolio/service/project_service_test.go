package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
)

func TestCreateProjectDerivesProbability(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()

	project, err := svc.Project.CreateProject(ctx, 1, baseProjectInput(fx))
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if project.ID == 0 {
		t.Fatal("expected project to get an id")
	}
	if project.Probability != 0.1 {
		t.Fatalf("expected probability 0.1 from stage, got %v", project.Probability)
	}

	// Creation is audited as a single "created" entry.
	changes, err := svc.Project.ListChanges(ctx, project.ID, 10)
	if err != nil {
		t.Fatalf("ListChanges failed: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(changes))
	}
	if changes[0].Field != entity.FieldCreated {
		t.Fatalf("expected field %q, got %q", entity.FieldCreated, changes[0].Field)
	}
	if changes[0].UserID != 1 {
		t.Fatalf("expected actor 1, got %d", changes[0].UserID)
	}
}

func TestCreateProjectRejectsWrongTypeReference(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()

	// A stage item is not a valid service reference.
	in := baseProjectInput(fx)
	in.ServiceID = fx.StageLeadID
	if _, err := svc.Project.CreateProject(ctx, 1, in); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}

	// A stage without a probability cannot be used as a stage.
	in = baseProjectInput(fx)
	in.StageID = fx.StageBrokenID
	if _, err := svc.Project.CreateProject(ctx, 1, in); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("expected ErrInvalidStage, got %v", err)
	}

	// Nothing was persisted by the failed attempts.
	var count int64
	db.Model(&entity.Project{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no projects after failed creates, got %d", count)
	}
	db.Model(&entity.ChangeHistory{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no audit entries after failed creates, got %d", count)
	}
}

func TestCreateProjectConditionalConstraints(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()

	in := baseProjectInput(fx)
	in.AssessmentID = intPtr(42)
	if _, err := svc.Project.CreateProject(ctx, 1, in); !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for assessment without forecast, got %v", err)
	}

	in = baseProjectInput(fx)
	in.IndustryManager = strPtr2("Petrov")
	if _, err := svc.Project.CreateProject(ctx, 1, in); !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for industry_manager without industry_solution, got %v", err)
	}

	// The same fields pass when their companion flag is set.
	in = baseProjectInput(fx)
	in.AssessmentID = intPtr(42)
	in.ForecastAccepted = true
	in.IndustryManager = strPtr2("Petrov")
	in.ProjectNumber = strPtr2("PN-001")
	in.IndustrySolution = true
	if _, err := svc.Project.CreateProject(ctx, 1, in); err != nil {
		t.Fatalf("expected valid combination to pass, got %v", err)
	}
}

func TestUpdateProjectStageRecomputesProbability(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()
	project := createTestProject(t, svc, fx)

	updated, err := svc.Project.UpdateProject(ctx, 2, project.ID, &ProjectPatch{StageID: &fx.StageWonID})
	if err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}
	if updated.StageID != fx.StageWonID {
		t.Fatalf("expected stage %d, got %d", fx.StageWonID, updated.StageID)
	}
	if updated.Probability != 1.0 {
		t.Fatalf("expected probability 1.0 after stage change, got %v", updated.Probability)
	}

	// Exactly one stage_id audit entry on top of the created one; the derived
	// probability itself is never logged.
	changes, err := svc.Project.ListChanges(ctx, project.ID, 10)
	if err != nil {
		t.Fatalf("ListChanges failed: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(changes))
	}
	latest := changes[0]
	if latest.Field != "stage_id" {
		t.Fatalf("expected stage_id entry, got %q", latest.Field)
	}
	if latest.UserID != 2 {
		t.Fatalf("expected actor 2, got %d", latest.UserID)
	}
}

func TestUpdateProjectRejectsInvalidStage(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()
	project := createTestProject(t, svc, fx)

	if _, err := svc.Project.UpdateProject(ctx, 1, project.ID, &ProjectPatch{StageID: &fx.StageBrokenID}); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("expected ErrInvalidStage, got %v", err)
	}

	// The project keeps its original stage and probability.
	reloaded, err := svc.Project.GetProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if reloaded.StageID != fx.StageLeadID || reloaded.Probability != 0.1 {
		t.Fatalf("expected stage/probability unchanged, got %d/%v", reloaded.StageID, reloaded.Probability)
	}
}

func TestUpdateProjectNoOpPatchLogsNothing(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()
	project := createTestProject(t, svc, fx)

	// Patching fields to their current values must not produce audit entries.
	same := project.OrgName
	updated, err := svc.Project.UpdateProject(ctx, 1, project.ID, &ProjectPatch{
		OrgName: &same,
		Manager: &project.Manager,
	})
	if err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}
	if updated.UpdatedAt.Before(project.UpdatedAt) {
		t.Fatal("unexpected timestamp regression")
	}

	changes, err := svc.Project.ListChanges(ctx, project.ID, 10)
	if err != nil {
		t.Fatalf("ListChanges failed: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected only the created entry, got %d entries", len(changes))
	}
}

func TestUpdateProjectDiffsEachChangedField(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()
	project := createTestProject(t, svc, fx)

	newName := "Network modernization"
	newManager := "Sidorov"
	if _, err := svc.Project.UpdateProject(ctx, 3, project.ID, &ProjectPatch{
		ProjectName: &newName,
		Manager:     &newManager,
	}); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}

	var entries []entity.ChangeHistory
	db.Where("project_id = ? AND field IN ?", project.ID, []string{"project_name", "manager"}).Find(&entries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 field entries, got %d", len(entries))
	}
	for _, e := range entries {
		switch e.Field {
		case "project_name":
			if e.OldValue != "Data center migration" || e.NewValue != newName {
				t.Fatalf("project_name diff wrong: %q -> %q", e.OldValue, e.NewValue)
			}
		case "manager":
			if e.OldValue != "Ivanov" || e.NewValue != newManager {
				t.Fatalf("manager diff wrong: %q -> %q", e.OldValue, e.NewValue)
			}
		}
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()
	project := createTestProject(t, svc, fx)

	if _, err := svc.Revenue.CreateRevenue(ctx, 1, project.ID, &CreateRevenueInput{
		Amount: 100000, StatusID: fx.RevenueStatusID,
	}); err != nil {
		t.Fatalf("CreateRevenue failed: %v", err)
	}

	if err := svc.Project.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}
	if _, err := svc.Project.GetProject(ctx, project.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	var count int64
	db.Model(&entity.Revenue{}).Where("project_id = ?", project.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected revenues cascaded, got %d left", count)
	}
}

func TestUpdateProjectNotFound(t *testing.T) {
	svc, db := setupServices(t)
	seedDictionaries(t, db)
	ctx := context.Background()

	name := "whatever"
	if _, err := svc.Project.UpdateProject(ctx, 1, 9999, &ProjectPatch{ProjectName: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func intPtr(v int) *int       { return &v }
func strPtr2(v string) *string { return &v }
