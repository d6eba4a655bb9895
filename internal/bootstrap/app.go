package bootstrap

import (
	"context"
	"database/sql"
	"log"

	"github.com/gin-gonic/gin"

	"vantage-backend/internal/analyses"
	"vantage-backend/internal/llm"
	"vantage-backend/internal/orchestrate"
	"vantage-backend/internal/patents"
	"vantage-backend/internal/patentsearch"
	"vantage-backend/internal/reports"
	"vantage-backend/internal/shared/config"
	"vantage-backend/internal/shared/server"
	"vantage-backend/internal/shared/storage/db"
	"vantage-backend/internal/shared/storage/object"
	localstore "vantage-backend/internal/shared/storage/object/local"
)

// App holds the wired application dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	AnalysesRepo    analyses.Repo
	PatentsRepo     patents.Repo
	LogsRepo        orchestrate.LogRepo
	LLM             llm.Client
	Conductor       *orchestrate.Conductor
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
}

// Build wires all dependencies from configuration. Without a reachable
// database the repos fall back to in-memory implementations.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Store:  localstore.New(cfg.LocalStoreDir),
	}

	if cfg.DatabaseURL != "" {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		conn, err := db.Connect(ctx, cfg.DatabaseURL, opts)
		if err != nil {
			log.Printf("database unreachable, falling back to memory repos: %v", err)
		} else if err := db.RunMigrations(ctx, conn); err != nil {
			log.Printf("migrations failed, falling back to memory repos: %v", err)
			_ = conn.Close()
		} else {
			app.DB = conn
		}
	}

	if app.DB != nil {
		app.AnalysesRepo = &analyses.PGRepo{DB: app.DB}
		app.PatentsRepo = &patents.PGRepo{DB: app.DB}
		app.LogsRepo = &orchestrate.PGLogRepo{DB: app.DB}
	} else {
		app.AnalysesRepo = analyses.NewMemoryRepo()
		app.PatentsRepo = patents.NewMemoryRepo()
		app.LogsRepo = orchestrate.NewMemoryLogRepo()
	}

	app.LLM = buildLLM(cfg)

	app.Conductor = &orchestrate.Conductor{
		LLM:      app.LLM,
		Searcher: patentsearch.NewSearcher(cfg.PatentsAPIURL, cfg.PatentsAPIKey),
		Executor: orchestrate.NewClient(cfg.OrchestrateURL, cfg.OrchestrateAPIKey, cfg.OrchestrateTeamID, cfg.OrchestrateWorkflow),
		Logs:     app.LogsRepo,
		Workflow: cfg.OrchestrateWorkflow,
	}

	app.AnalysesService = &analyses.Service{
		Repo:     app.AnalysesRepo,
		Patents:  app.PatentsRepo,
		Store:    app.Store,
		Workflow: app.Conductor,
		Reports:  &reports.Generator{Dir: cfg.ReportsDir},
		Logs:     app.LogsRepo,
	}
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService, cfg.ReportsDir)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
	})

	return app, nil
}

// Close releases held resources.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildLLM(cfg config.Config) llm.Client {
	if cfg.LLMAPIKey == "" {
		log.Printf("no LLM API key configured, using placeholder client")
		return llm.PlaceholderClient{}
	}
	switch cfg.LLMProvider {
	case "openai", "":
		client, err := llm.NewOpenAIClient(cfg.LLMAPIKey, cfg.LLMModel)
		if err != nil {
			log.Printf("openai client init failed, using placeholder client: %v", err)
			return llm.PlaceholderClient{}
		}
		return llm.WithRetry(client)
	default:
		log.Printf("unknown LLM provider %q, using placeholder client", cfg.LLMProvider)
		return llm.PlaceholderClient{}
	}
}
