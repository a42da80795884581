package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
)

func TestEnsureTypesIsIdempotent(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()

	if err := svc.Dictionary.EnsureTypes(ctx); err != nil {
		t.Fatalf("EnsureTypes failed: %v", err)
	}
	if err := svc.Dictionary.EnsureTypes(ctx); err != nil {
		t.Fatalf("second EnsureTypes failed: %v", err)
	}

	var count int64
	db.Model(&entity.DictionaryType{}).Count(&count)
	if int(count) != len(entity.DictTypeNames) {
		t.Fatalf("expected %d types, got %d", len(entity.DictTypeNames), count)
	}
}

func TestValidateItemWrongType(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()

	if _, err := svc.Dictionary.ValidateItem(ctx, fx.ServiceID, entity.DictTypeService); err != nil {
		t.Fatalf("expected valid item to pass: %v", err)
	}
	if _, err := svc.Dictionary.ValidateItem(ctx, fx.ServiceID, entity.DictTypePaymentType); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference for type mismatch, got %v", err)
	}
	if _, err := svc.Dictionary.ValidateItem(ctx, 9999, entity.DictTypeService); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference for missing item, got %v", err)
	}
}

func TestValidateStageRequiresProbability(t *testing.T) {
	svc, db := setupServices(t)
	fx := seedDictionaries(t, db)
	ctx := context.Background()

	stage, err := svc.Dictionary.ValidateStage(ctx, fx.StageWonID)
	if err != nil {
		t.Fatalf("expected stage with probability to pass: %v", err)
	}
	if stage.Probability == nil || *stage.Probability != 1.0 {
		t.Fatalf("expected probability 1.0, got %v", stage.Probability)
	}

	if _, err := svc.Dictionary.ValidateStage(ctx, fx.StageBrokenID); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("expected ErrInvalidStage without probability, got %v", err)
	}
	if _, err := svc.Dictionary.ValidateStage(ctx, fx.ServiceID); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("expected ErrInvalidStage for non-stage item, got %v", err)
	}
}

func TestLoadSeedFileIdempotent(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()

	if err := svc.Dictionary.EnsureTypes(ctx); err != nil {
		t.Fatalf("EnsureTypes failed: %v", err)
	}

	seed := map[string][]SeedItem{
		entity.DictTypeStage: {
			{Value: "Lead", Probability: testFloat(0.1)},
			{Value: "Won", Probability: testFloat(1.0)},
		},
		entity.DictTypeService: {
			{Value: "Cloud hosting"},
		},
	}
	raw, _ := json.Marshal(seed)
	path := filepath.Join(t.TempDir(), "dict.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}

	if err := svc.Dictionary.LoadSeedFile(ctx, path); err != nil {
		t.Fatalf("LoadSeedFile failed: %v", err)
	}
	if err := svc.Dictionary.LoadSeedFile(ctx, path); err != nil {
		t.Fatalf("second LoadSeedFile failed: %v", err)
	}

	var count int64
	db.Model(&entity.DictionaryItem{}).Count(&count)
	if count != 3 {
		t.Fatalf("expected 3 items after double seed, got %d", count)
	}
}

func testFloat(v float64) *float64 { return &v }
