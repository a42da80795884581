package handler

import (
	"fmt"
	"net/http"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
	"github.com/hifushiri/rostelecom-backend/internal/config"
	"github.com/hifushiri/rostelecom-backend/internal/middleware"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/repository"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/service"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/testutil"
)

type projectTestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine

	serviceID     uint
	paymentTypeID uint
	segmentID     uint
	stageLeadID   uint
	stageWonID    uint
}

func setupProjectTest(t *testing.T) *projectTestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	jwtCfg := config.JWTConfig{Secret: testutil.JWTSecret, Issuer: "portfolio-test"}
	services := service.NewServices(db, repos, nil, jwtCfg, zap.NewNop())
	handlers := NewHandlers(services)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	anyRole := middleware.RequireRole(entity.RoleAdmin, entity.RoleAnalyst, entity.RoleUser)
	adminOnly := middleware.RequireRole(entity.RoleAdmin)

	projects := api.Group("/projects")
	projects.GET("", handlers.Project.List)
	projects.GET("/:id", handlers.Project.Get)
	projects.GET("/:id/changes", handlers.Project.Changes)
	projects.POST("", anyRole, handlers.Project.Create)
	projects.PATCH("/:id", anyRole, handlers.Project.Update)
	projects.DELETE("/:id", adminOnly, handlers.Project.Delete)
	projects.POST("/:id/revenues", anyRole, handlers.Revenue.Create)
	projects.DELETE("/:id/revenues/:revenueId", adminOnly, handlers.Revenue.Delete)

	env := &projectTestEnv{DB: db, Router: router}

	serviceType := testutil.SeedType(t, db, entity.DictTypeService)
	stageType := testutil.SeedType(t, db, entity.DictTypeStage)
	segmentType := testutil.SeedType(t, db, entity.DictTypeBusinessSegment)
	paymentType := testutil.SeedType(t, db, entity.DictTypePaymentType)
	testutil.SeedType(t, db, entity.DictTypeRevenueStatus)

	env.serviceID = testutil.SeedItem(t, db, serviceType.ID, "Cloud hosting", nil).ID
	env.paymentTypeID = testutil.SeedItem(t, db, paymentType.ID, "Recurring", nil).ID
	env.segmentID = testutil.SeedItem(t, db, segmentType.ID, "B2B", nil).ID
	env.stageLeadID = testutil.SeedItem(t, db, stageType.ID, "Lead", testutil.Float(0.1)).ID
	env.stageWonID = testutil.SeedItem(t, db, stageType.ID, "Won", testutil.Float(1.0)).ID

	return env
}

func (env *projectTestEnv) createBody() map[string]interface{} {
	return map[string]interface{}{
		"org_name":            "ACME LLC",
		"org_inn":             "7707049388",
		"project_name":        "Data center migration",
		"service_id":          env.serviceID,
		"payment_type_id":     env.paymentTypeID,
		"stage_id":            env.stageLeadID,
		"manager":             "Ivanov",
		"business_segment_id": env.segmentID,
	}
}

func TestProjectCreateDerivesProbability(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.AdminToken()

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/projects", env.createBody(), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 0 {
		t.Fatalf("expected code 0, got %v", resp["code"])
	}
	data := resp["data"].(map[string]interface{})
	if data["probability"].(float64) != 0.1 {
		t.Fatalf("expected derived probability 0.1, got %v", data["probability"])
	}
}

func TestProjectCreateRejectsMissingFields(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.AdminToken()

	body := env.createBody()
	delete(body, "org_inn")
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/projects", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectRequiresAuth(t *testing.T) {
	env := setupProjectTest(t)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/projects", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestProjectDeleteIsAdminOnly(t *testing.T) {
	env := setupProjectTest(t)
	admin := testutil.AdminToken()
	user := testutil.GenerateTestToken(2, "Plain User", entity.RoleUser)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/projects", env.createBody(), user)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	projectID := uint(data["id"].(float64))
	path := fmt.Sprintf("/api/v1/projects/%d", projectID)

	// USER may create but not delete.
	w = testutil.DoRequest(env.Router, http.MethodDelete, path, nil, user)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for USER delete, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodDelete, path, nil, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for ADMIN delete, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, path, nil, admin)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestProjectStagePatchWritesAudit(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.GenerateTestToken(7, "Analyst", entity.RoleAnalyst)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/projects", env.createBody(), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	projectID := uint(data["id"].(float64))

	patch := map[string]interface{}{"stage_id": env.stageWonID}
	w = testutil.DoRequest(env.Router, http.MethodPatch, fmt.Sprintf("/api/v1/projects/%d", projectID), patch, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	updated := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if updated["probability"].(float64) != 1.0 {
		t.Fatalf("expected probability 1.0 after stage change, got %v", updated["probability"])
	}

	// The audit entry carries the authenticated actor from the token.
	var entry entity.ChangeHistory
	if err := env.DB.Where("project_id = ? AND field = ?", projectID, "stage_id").First(&entry).Error; err != nil {
		t.Fatalf("expected stage_id audit entry: %v", err)
	}
	if entry.UserID != 7 {
		t.Fatalf("expected actor 7 from token, got %d", entry.UserID)
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/changes", projectID), nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectCreateInvalidReference(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.AdminToken()

	body := env.createBody()
	body["service_id"] = env.stageLeadID // stage item is not a service
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/projects", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong-type reference, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40000 {
		t.Fatalf("expected code 40000, got %v", resp["code"])
	}
}
