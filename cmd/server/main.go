package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hifushiri/rostelecom-backend/internal/config"
	"github.com/hifushiri/rostelecom-backend/internal/middleware"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/handler"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/repository"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting portfolio service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.DictionaryType{},
		&entity.DictionaryItem{},
		&entity.Project{},
		&entity.Revenue{},
		&entity.Cost{},
		&entity.ChangeHistory{},
	); err != nil {
		zapLogger.Fatal("Database migration failed", zap.Error(err))
	}
	zapLogger.Info("Database migration completed")

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, rdb, cfg.JWT, zapLogger)

	// Dictionary bootstrap: types are mandatory, the item seed is optional.
	ctx := context.Background()
	if err := services.Dictionary.EnsureTypes(ctx); err != nil {
		zapLogger.Fatal("Failed to ensure dictionary types", zap.Error(err))
	}
	if path := cfg.Dictionary.SeedPath; path != "" {
		if err := services.Dictionary.LoadSeedFile(ctx, path); err != nil {
			zapLogger.Warn("Dictionary seed file not loaded", zap.String("path", path), zap.Error(err))
		}
	}

	handlers := handler.NewHandlers(services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config, rdb *redis.Client) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		// Login is the only unauthenticated endpoint.
		v1.POST("/auth/login", h.Auth.Login)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			anyRole := middleware.RequireRole(entity.RoleAdmin, entity.RoleAnalyst, entity.RoleUser)
			adminOnly := middleware.RequireRole(entity.RoleAdmin)
			reporting := middleware.RequireRole(entity.RoleAdmin, entity.RoleAnalyst)

			users := authorized.Group("/users", adminOnly)
			{
				users.POST("", h.Auth.CreateUser)
				users.GET("", h.Auth.ListUsers)
			}

			dicts := authorized.Group("/dictionaries")
			{
				dicts.GET("/types", h.Dictionary.ListTypes)
				dicts.GET("/items", h.Dictionary.ListItems)
				dicts.POST("/types", adminOnly, h.Dictionary.CreateType)
				dicts.POST("/items", adminOnly, h.Dictionary.CreateItem)
			}

			projects := authorized.Group("/projects")
			{
				projects.GET("", h.Project.List)
				projects.GET("/:id", h.Project.Get)
				projects.GET("/:id/changes", h.Project.Changes)
				projects.POST("", anyRole, h.Project.Create)
				projects.PATCH("/:id", anyRole, h.Project.Update)
				projects.DELETE("/:id", adminOnly, h.Project.Delete)

				projects.GET("/:id/revenues", h.Revenue.List)
				projects.GET("/:id/revenues/:revenueId", h.Revenue.Get)
				projects.POST("/:id/revenues", anyRole, h.Revenue.Create)
				projects.PATCH("/:id/revenues/:revenueId", anyRole, h.Revenue.Update)
				projects.DELETE("/:id/revenues/:revenueId", adminOnly, h.Revenue.Delete)

				projects.GET("/:id/costs", h.Cost.List)
				projects.GET("/:id/costs/:costId", h.Cost.Get)
				projects.POST("/:id/costs", anyRole, h.Cost.Create)
				projects.PATCH("/:id/costs/:costId", anyRole, h.Cost.Update)
				projects.DELETE("/:id/costs/:costId", adminOnly, h.Cost.Delete)
			}

			reports := authorized.Group("/reports", reporting)
			{
				reports.POST("", h.Report.Generate)
				reports.POST("/export", h.Report.Export)
			}

			dashboard := authorized.Group("/dashboard", reporting)
			{
				dashboard.GET("/stats", h.Dashboard.Stats)
				dashboard.GET("/gantt/:id", h.Dashboard.Gantt)
			}
		}
	}
}
