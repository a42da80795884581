package service

import (
	"errors"

	"github.com/hifushiri/rostelecom-backend/internal/config"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Error kinds surfaced to handlers. Handlers map each kind to its own HTTP
// status; kinds are never collapsed into a generic failure.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidReference    = errors.New("invalid dictionary reference")
	ErrInvalidStage        = errors.New("invalid stage")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInvalidField        = errors.New("invalid report field")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

// Services bundles the business services over the shared storage handle.
type Services struct {
	Dictionary *DictionaryService
	Project    *ProjectService
	Revenue    *RevenueService
	Cost       *CostService
	Report     *ReportService
	Dashboard  *DashboardService
	Auth       *AuthService
}

func NewServices(db *gorm.DB, repos *repository.Repositories, rdb *redis.Client, jwtCfg config.JWTConfig, logger *zap.Logger) *Services {
	dictSvc := NewDictionaryService(repos, logger)
	return &Services{
		Dictionary: dictSvc,
		Project:    NewProjectService(db, repos, dictSvc),
		Revenue:    NewRevenueService(db, repos, dictSvc),
		Cost:       NewCostService(db, repos, dictSvc),
		Report:     NewReportService(repos),
		Dashboard:  NewDashboardService(repos),
		Auth:       NewAuthService(repos, rdb, jwtCfg),
	}
}
