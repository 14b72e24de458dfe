package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"analyst-backend/internal/analysis"
	"analyst-backend/internal/executor"
	"analyst-backend/internal/llm"
	"analyst-backend/internal/llm/gemini"
	"analyst-backend/internal/llm/openai"
	"analyst-backend/internal/services/health"
	"analyst-backend/internal/shared/apierr"
	"analyst-backend/internal/shared/config"
	"analyst-backend/internal/shared/server"
	"analyst-backend/internal/shared/server/middleware"
	"analyst-backend/internal/shared/storage/db"
	"analyst-backend/internal/shared/storage/object"
	localstore "analyst-backend/internal/shared/storage/object/local"
	s3store "analyst-backend/internal/shared/storage/object/s3"
	"analyst-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Archive         object.ObjectStore
	LLM             llm.Client
	AnalysisRepo    analysis.Repo
	AnalysisService *analysis.Service
	AnalysisHandler *analysis.Handler
	Health          *health.Service
	Executor        *executor.Executor
}

// Options overrides pieces of the dependency graph, mainly for tests.
type Options struct {
	LLM llm.Client
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	return BuildWithOptions(context.Background(), cfg, Options{})
}

// BuildWithOptions is Build with overrides.
func BuildWithOptions(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	cfg.Normalize()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	client := opts.LLM
	llmConfigured := client != nil || strings.TrimSpace(cfg.APIKey) != ""
	if client == nil {
		client, err = buildLLM(ctx, cfg)
		if err != nil {
			closeDB(sqlDB)
			return nil, err
		}
	}
	client = llm.WithTimeout(llm.WithRetry(client, cfg.LLMRetryAttempts), cfg.LLMTimeout)

	var repo analysis.Repo = analysis.NewMemoryRepoWithLimit(cfg.HistoryMemoryLimit)
	if sqlDB != nil {
		repo = &analysis.PGRepo{DB: sqlDB}
	}

	svc := analysis.NewService(client, repo, archive, cfg.LLMProvider, cfg.LLMModel)
	handler := analysis.NewHandler(svc, apierr.ParseMode(cfg.ErrorStatusMode), cfg.MaxUploadBytes)

	runner := NewExecutor(cfg)

	app := &App{
		Config:          cfg,
		DB:              sqlDB,
		Archive:         archive,
		LLM:             client,
		AnalysisRepo:    repo,
		AnalysisService: svc,
		AnalysisHandler: handler,
		Health:          health.NewService(sqlDB, llmConfigured, cfg.LLMProvider),
		Executor:        runner,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: handler,
		Health:          app.Health,
		RateLimiter:     middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":           cfg.Env,
		"llm_provider":  cfg.LLMProvider,
		"llm_model":     cfg.LLMModel,
		"archive_store": cfg.ArchiveStore,
		"history":       historyBackend(sqlDB),
		"error_mode":    cfg.ErrorStatusMode,
	})
	return app, nil
}

// NewExecutor builds the code executor from cfg alone. It touches no other
// dependency, so callers that only run code need not Build.
func NewExecutor(cfg config.Config) *executor.Executor {
	return executor.New(executor.Config{
		Interpreter:    cfg.ExecutorInterpreter,
		Timeout:        cfg.ExecutorTimeout,
		MaxOutputBytes: cfg.ExecutorMaxOutputBytes,
	})
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"provider": cfg.LLMProvider})
		return llm.PlaceholderClient{}, nil
	}
	switch cfg.LLMProvider {
	case "openai":
		return openai.NewClient(cfg.APIKey, cfg.LLMModel, cfg.LLMBaseURL)
	case "gemini":
		return gemini.NewClient(ctx, cfg.APIKey, cfg.LLMModel, cfg.LLMBaseURL)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}

	defaults := db.DefaultServerOptions()
	if db.IsLambdaRuntime() {
		defaults = db.DefaultLambdaOptions()
	}
	opts, err := db.OptionsFromEnv(defaults)
	if err != nil {
		return nil, err
	}

	var sqlDB *sql.DB
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db_fallback_memory", map[string]any{"err": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildArchive(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ArchiveStore {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("ARCHIVE_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, nil
	}
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil && !db.IsLambdaRuntime() {
		_ = sqlDB.Close()
	}
}

func historyBackend(sqlDB *sql.DB) string {
	if sqlDB != nil {
		return "postgres"
	}
	return "memory"
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
