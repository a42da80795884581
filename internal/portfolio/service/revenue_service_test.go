package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
)

func TestCreateRevenueLogsAudit(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()
	project := createTestProject(t, svc, fx)

	revenue, err := svc.Revenue.CreateRevenue(ctx, 5, project.ID, &CreateRevenueInput{
		Year:     intPtr(2026),
		Month:    intPtr(3),
		Amount:   250000,
		StatusID: fx.RevenueStatusID,
	})
	if err != nil {
		t.Fatalf("CreateRevenue failed: %v", err)
	}
	if revenue.ID == 0 {
		t.Fatal("expected revenue to get an id")
	}

	var entry entity.ChangeHistory
	if err := db.Where("project_id = ? AND field = ?", project.ID, entity.FieldRevenueAdded).First(&entry).Error; err != nil {
		t.Fatalf("expected revenue_added audit entry: %v", err)
	}
	if entry.UserID != 5 {
		t.Fatalf("expected actor 5, got %d", entry.UserID)
	}
	if entry.OldValue != "" {
		t.Fatalf("expected empty old value, got %q", entry.OldValue)
	}
}

func TestCreateRevenueRejectsWrongStatus(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()
	project := createTestProject(t, svc, fx)

	// A cost status is not a revenue status.
	_, err := svc.Revenue.CreateRevenue(ctx, 1, project.ID, &CreateRevenueInput{
		Amount:   1000,
		StatusID: fx.CostStatusID,
	})
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}

	var count int64
	db.Model(&entity.Revenue{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no revenues after failed create, got %d", count)
	}
}

func TestUpdateRevenuePrefixedFieldDiffs(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()
	project := createTestProject(t, svc, fx)

	revenue, err := svc.Revenue.CreateRevenue(ctx, 1, project.ID, &CreateRevenueInput{
		Amount:   1000,
		StatusID: fx.RevenueStatusID,
	})
	if err != nil {
		t.Fatalf("CreateRevenue failed: %v", err)
	}

	newAmount := 2500.0
	updated, err := svc.Revenue.UpdateRevenue(ctx, 2, project.ID, revenue.ID, &RevenuePatch{
		Amount:   &newAmount,
		StatusID: &fx.RevenueStatus2ID,
	})
	if err != nil {
		t.Fatalf("UpdateRevenue failed: %v", err)
	}
	if updated.Amount != 2500 {
		t.Fatalf("expected amount 2500, got %v", updated.Amount)
	}

	var entries []entity.ChangeHistory
	db.Where("project_id = ? AND field IN ?", project.ID,
		[]string{"revenue_amount", "revenue_status_id"}).Find(&entries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 prefixed audit entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Field == "revenue_amount" && (e.OldValue != "1000" || e.NewValue != "2500") {
			t.Fatalf("revenue_amount diff wrong: %q -> %q", e.OldValue, e.NewValue)
		}
	}
}

func TestDeleteRevenueLogsAudit(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()
	project := createTestProject(t, svc, fx)

	revenue, err := svc.Revenue.CreateRevenue(ctx, 1, project.ID, &CreateRevenueInput{
		Amount:   1000,
		StatusID: fx.RevenueStatusID,
	})
	if err != nil {
		t.Fatalf("CreateRevenue failed: %v", err)
	}

	if err := svc.Revenue.DeleteRevenue(ctx, 7, project.ID, revenue.ID); err != nil {
		t.Fatalf("DeleteRevenue failed: %v", err)
	}
	if _, err := svc.Revenue.GetRevenue(ctx, project.ID, revenue.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	var entry entity.ChangeHistory
	if err := db.Where("project_id = ? AND field = ?", project.ID, entity.FieldRevenueDeleted).First(&entry).Error; err != nil {
		t.Fatalf("expected revenue_deleted audit entry: %v", err)
	}
	if entry.NewValue != "" {
		t.Fatalf("expected empty new value on delete, got %q", entry.NewValue)
	}
}

func TestRevenueScopedToProject(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()
	first := createTestProject(t, svc, fx)
	second := createTestProject(t, svc, fx)

	revenue, err := svc.Revenue.CreateRevenue(ctx, 1, first.ID, &CreateRevenueInput{
		Amount:   1000,
		StatusID: fx.RevenueStatusID,
	})
	if err != nil {
		t.Fatalf("CreateRevenue failed: %v", err)
	}

	// Addressing the revenue through the wrong project must look absent.
	if _, err := svc.Revenue.GetRevenue(ctx, second.ID, revenue.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for cross-project access, got %v", err)
	}
	if err := svc.Revenue.DeleteRevenue(ctx, 1, second.ID, revenue.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for cross-project delete, got %v", err)
	}
}

func TestCostLifecycle(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()
	project := createTestProject(t, svc, fx)

	cost, err := svc.Cost.CreateCost(ctx, 1, project.ID, &CreateCostInput{
		Year:       intPtr(2026),
		Amount:     50000,
		CostTypeID: fx.CostTypeID,
		StatusID:   fx.CostStatusID,
	})
	if err != nil {
		t.Fatalf("CreateCost failed: %v", err)
	}

	var entry entity.ChangeHistory
	if err := db.Where("project_id = ? AND field = ?", project.ID, entity.FieldCostAdded).First(&entry).Error; err != nil {
		t.Fatalf("expected cost_added audit entry: %v", err)
	}

	newAmount := 60000.0
	if _, err := svc.Cost.UpdateCost(ctx, 1, project.ID, cost.ID, &CostPatch{Amount: &newAmount}); err != nil {
		t.Fatalf("UpdateCost failed: %v", err)
	}
	// Reset so the previous row's primary key doesn't constrain the next query.
	entry = entity.ChangeHistory{}
	if err := db.Where("project_id = ? AND field = ?", project.ID, "cost_amount").First(&entry).Error; err != nil {
		t.Fatalf("expected cost_amount audit entry: %v", err)
	}

	if err := svc.Cost.DeleteCost(ctx, 1, project.ID, cost.ID); err != nil {
		t.Fatalf("DeleteCost failed: %v", err)
	}
	entry = entity.ChangeHistory{}
	if err := db.Where("project_id = ? AND field = ?", project.ID, entity.FieldCostDeleted).First(&entry).Error; err != nil {
		t.Fatalf("expected cost_deleted audit entry: %v", err)
	}
}
