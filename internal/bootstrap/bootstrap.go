package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/lms/internal/app/controllers"
	appMigrations "github.com/yigit/lms/internal/app/migrations"
	appRepos "github.com/yigit/lms/internal/app/repositories"
	appRoutes "github.com/yigit/lms/internal/app/routes"
	appServices "github.com/yigit/lms/internal/app/services"
	"github.com/yigit/lms/internal/config"
	"github.com/yigit/lms/internal/db"
	appMiddleware "github.com/yigit/lms/internal/middleware"
	"github.com/yigit/lms/internal/pkg/logger"
	"github.com/yigit/lms/internal/pkg/metrics"
	"github.com/yigit/lms/internal/pkg/ratelimit"
	"github.com/yigit/lms/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos                *appRepos.Repositories
	Services             *appServices.Services
	EnrollmentController *appControllers.EnrollmentController
	CourseController     *appControllers.CourseController
	UserController       *appControllers.UserController
	Metrics              *metrics.Metrics // nil when metrics are disabled
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.Database, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing database connection...")
	database, err := db.Open(ctx, db.OptionsFromConfig(cfg))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if err := RunMigrations(ctx, database, lgr); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// RunMigrations applies the embedded schema migrations
func RunMigrations(ctx context.Context, database *db.Database, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database, lgr).Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	return nil
}

// SeedDatabase loads the demo data configured under seed.
func SeedDatabase(ctx context.Context, cfg *config.Config, database *db.Database, lgr zerolog.Logger, reset bool) (*seed.Result, error) {
	source, err := seed.SourceFS(cfg.Seed.Dir)
	if err != nil {
		return nil, err
	}
	return seed.NewLoader(database, lgr).Load(ctx, source, reset)
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.Database, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr}

	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.New()
	}

	deps.Repos = appRepos.NewRepositories(database)
	deps.Services = appServices.NewServices(deps.Repos, deps.Metrics)

	deps.EnrollmentController = appControllers.NewEnrollmentController(deps.Services.EnrollmentService)
	deps.CourseController = appControllers.NewCourseController(deps.Services.CourseService)
	deps.UserController = appControllers.NewUserController(deps.Services.UserService)

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(lgr.With().Str("component", "http").Logger()),
	)

	if deps.Metrics != nil {
		router.Use(appMiddleware.Metrics(deps.Metrics))
		router.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	appRoutes.SetupSwagger(router)

	var apiMiddleware []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewClientLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute)
		apiMiddleware = append(apiMiddleware, appMiddleware.RateLimit(limiter))
		lgr.Info().Float64("rps", cfg.RateLimit.RPS).Int("burst", cfg.RateLimit.Burst).Msg("Rate limiting enabled")
	}

	appRoutes.SetupRouter(router,
		deps.EnrollmentController,
		deps.CourseController,
		deps.UserController,
		apiMiddleware...,
	)

	return router
}
