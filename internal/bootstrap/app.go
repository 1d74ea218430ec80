package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"nutrisnap-backend/internal/analyzer"
	"nutrisnap-backend/internal/meals"
	"nutrisnap-backend/internal/pipeline"
	"nutrisnap-backend/internal/profiles"
	"nutrisnap-backend/internal/recent"
	"nutrisnap-backend/internal/services/health"
	"nutrisnap-backend/internal/shared/auth"
	"nutrisnap-backend/internal/shared/config"
	"nutrisnap-backend/internal/shared/server"
	"nutrisnap-backend/internal/shared/storage/db"
	"nutrisnap-backend/internal/shared/storage/kv"
	filekv "nutrisnap-backend/internal/shared/storage/kv/file"
	memorykv "nutrisnap-backend/internal/shared/storage/kv/memory"
	sqlitekv "nutrisnap-backend/internal/shared/storage/kv/sqlite"
	"nutrisnap-backend/internal/shared/storage/object"
	localstore "nutrisnap-backend/internal/shared/storage/object/local"
	s3store "nutrisnap-backend/internal/shared/storage/object/s3"
	"nutrisnap-backend/internal/shared/telemetry"
	"nutrisnap-backend/internal/uploads"
)

// App holds shared dependencies. Router is nil for CLI builds.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	DB           *sql.DB
	Store        object.ObjectStore
	KV           kv.Store
	MealsRepo    meals.Repo
	ProfilesRepo profiles.Repo
	Caches       recent.Resolver
	Pipeline     *pipeline.Pipeline

	closers []func() error
}

// Build prepares the HTTP service: per-user cache slots and the full router.
func Build(cfg config.Config) (*App, error) {
	verifier, err := auth.NewVerifier(cfg.JWTSecret, !cfg.IsDevLike())
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	app, err := build(ctx, cfg, db.DefaultServerOptions())
	if err != nil {
		return nil, err
	}
	app.Caches = recent.Slots{Store: app.KV}
	app.Pipeline.Caches = app.Caches

	deps := server.RouterDeps{
		Config:          app.Config,
		Verifier:        verifier,
		ScanHandler:     pipeline.NewHandler(app.Pipeline, app.Caches),
		MealsHandler:    meals.NewHandler(meals.NewService(app.MealsRepo)),
		ProfilesHandler: profiles.NewHandler(profiles.NewService(app.ProfilesRepo)),
	}
	if app.Config.ObjectStoreType == "local" {
		deps.Media = app.Store
	}
	if app.DB != nil {
		deps.Health = health.NewService(app.DB)
	}
	app.Router = server.NewRouter(deps)
	return app, nil
}

// BuildCLI prepares the single-user command line client, which keeps one cache slot.
func BuildCLI(ctx context.Context, cfg config.Config) (*App, error) {
	app, err := build(ctx, cfg, db.DefaultCLIOptions())
	if err != nil {
		return nil, err
	}
	app.Caches = recent.Shared{Cache: recent.New(app.KV, recent.DefaultSlot)}
	app.Pipeline.Caches = app.Caches
	return app, nil
}

// Close releases the database and cache store.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func build(ctx context.Context, cfg config.Config, dbOpts db.Options) (*App, error) {
	cfg.Normalize()
	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg, dbOpts)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB.Close)
		app.MealsRepo = &meals.PGRepo{DB: sqlDB}
		app.ProfilesRepo = &profiles.PGRepo{DB: sqlDB}
	} else {
		app.MealsRepo = meals.NewMemoryRepo()
		app.ProfilesRepo = profiles.NewMemoryRepo()
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Store = store

	kvStore, closeKV, err := buildKV(cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.KV = kvStore
	if closeKV != nil {
		app.closers = append(app.closers, closeKV)
	}

	client, err := buildAnalyzer(cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Pipeline = &pipeline.Pipeline{
		Uploads:  &uploads.Service{Store: store},
		Analyzer: client,
		Meals:    app.MealsRepo,
	}
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config, defaults db.Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(defaults))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.S3PublicBaseURL)
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL), nil
	}
}

func buildKV(cfg config.Config) (kv.Store, func() error, error) {
	switch cfg.CacheStore {
	case "memory":
		return memorykv.New(), nil, nil
	case "sqlite":
		store, err := sqlitekv.Open(cfg.CachePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open cache store: %w", err)
		}
		return store, store.Close, nil
	default:
		return filekv.New(cfg.CacheDir), nil, nil
	}
}

func buildAnalyzer(cfg config.Config) (pipeline.Analyzer, error) {
	if strings.TrimSpace(cfg.AnalysisURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.analysis_unconfigured", map[string]any{"reason": "ANALYSIS_URL empty"})
			return analyzer.Unavailable{}, nil
		}
		return nil, fmt.Errorf("ANALYSIS_URL is required")
	}
	return analyzer.New(analyzer.Options{
		URL:          cfg.AnalysisURL,
		Timeout:      cfg.AnalysisTimeout(),
		AuthHeader:   cfg.AnalysisAuthHeader,
		AuthToken:    cfg.AnalysisAuthToken,
		ClientID:     cfg.AnalysisOAuthClientID,
		ClientSecret: cfg.AnalysisOAuthSecret,
		TokenURL:     cfg.AnalysisOAuthTokenURL,
		Scopes:       cfg.AnalysisOAuthScopes,
	})
}
