package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hifushiri/rostelecom-backend/internal/config"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/repository"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/testutil"
)

func setupServices(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	jwtCfg := config.JWTConfig{Secret: testutil.JWTSecret, Issuer: "portfolio-test", ExpiresIn: 24 * time.Hour}
	svc := NewServices(db, repos, nil, jwtCfg, zap.NewNop())
	return svc, db
}

// dictFixture holds the item IDs seeded for mutation tests.
type dictFixture struct {
	ServiceID     uint
	PaymentTypeID uint
	SegmentID     uint

	StageLeadID     uint // probability 0.1
	StageProposalID uint // probability 0.5
	StageWonID      uint // probability 1.0
	StageBrokenID   uint // stage item without probability

	RevenueStatusID  uint
	RevenueStatus2ID uint
	CostTypeID       uint
	CostStatusID     uint
}

func seedDictionaries(t *testing.T, db *gorm.DB) dictFixture {
	t.Helper()

	serviceType := testutil.SeedType(t, db, entity.DictTypeService)
	stageType := testutil.SeedType(t, db, entity.DictTypeStage)
	costTypeType := testutil.SeedType(t, db, entity.DictTypeCostType)
	costStatusType := testutil.SeedType(t, db, entity.DictTypeCostStatus)
	revenueStatusType := testutil.SeedType(t, db, entity.DictTypeRevenueStatus)
	segmentType := testutil.SeedType(t, db, entity.DictTypeBusinessSegment)
	paymentType := testutil.SeedType(t, db, entity.DictTypePaymentType)

	return dictFixture{
		ServiceID:     testutil.SeedItem(t, db, serviceType.ID, "Cloud hosting", nil).ID,
		PaymentTypeID: testutil.SeedItem(t, db, paymentType.ID, "Recurring", nil).ID,
		SegmentID:     testutil.SeedItem(t, db, segmentType.ID, "B2B", nil).ID,

		StageLeadID:     testutil.SeedItem(t, db, stageType.ID, "Lead", testutil.Float(0.1)).ID,
		StageProposalID: testutil.SeedItem(t, db, stageType.ID, "Proposal", testutil.Float(0.5)).ID,
		StageWonID:      testutil.SeedItem(t, db, stageType.ID, "Won", testutil.Float(1.0)).ID,
		StageBrokenID:   testutil.SeedItem(t, db, stageType.ID, "Draft", nil).ID,

		RevenueStatusID:  testutil.SeedItem(t, db, revenueStatusType.ID, "Forecast", nil).ID,
		RevenueStatus2ID: testutil.SeedItem(t, db, revenueStatusType.ID, "Contracted", nil).ID,
		CostTypeID:       testutil.SeedItem(t, db, costTypeType.ID, "Capex", nil).ID,
		CostStatusID:     testutil.SeedItem(t, db, costStatusType.ID, "Planned", nil).ID,
	}
}

func baseProjectInput(fx dictFixture) *CreateProjectInput {
	return &CreateProjectInput{
		OrgName:           "ACME LLC",
		OrgINN:            "7707049388",
		ProjectName:       "Data center migration",
		ServiceID:         fx.ServiceID,
		PaymentTypeID:     fx.PaymentTypeID,
		StageID:           fx.StageLeadID,
		Manager:           "Ivanov",
		BusinessSegmentID: fx.SegmentID,
	}
}

func createTestProject(t *testing.T, svc *Services, fx dictFixture) *entity.Project {
	t.Helper()
	project, err := svc.Project.CreateProject(context.Background(), 1, baseProjectInput(fx))
	if err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}
	return project
}
