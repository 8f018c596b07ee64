package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/billing"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/counter"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/extract"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/generate"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/llm"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/llm/anthropic"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/llm/openai"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/profiles"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/quota"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/config"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/server"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/storage/db"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/storage/kv"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	KV              *kv.Client
	ProfilesRepo    profiles.Repo
	ProfilesService *profiles.Service
	Ledger          *quota.Ledger
	Counter         *counter.Service
	Extractor       extract.Extractor
	LLM             llm.Client
	GenerateService *generate.Service
	BillingService  *billing.Service
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		KV:     buildKV(cfg),
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		GenerateHandler: generate.NewHandler(app.GenerateService, app.ProfilesService),
		CounterHandler:  counter.NewHandler(app.Counter),
		ProfileHandler:  profiles.NewHandler(app.ProfilesService),
		BillingHandler:  billing.NewHandler(app.BillingService),
	})

	return app, nil
}

// Close releases held connections.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.KV != nil {
		_ = a.KV.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}

func buildKV(cfg config.Config) *kv.Client {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Printf("bootstrap: REDIS_ADDR empty; global counter disabled")
		return nil
	}
	return kv.New(kv.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.ProfilesRepo = &profiles.PGRepo{DB: app.DB}
	} else {
		app.ProfilesRepo = profiles.NewMemoryRepo()
	}
	app.ProfilesService = profiles.NewService(app.ProfilesRepo)
	app.Ledger = quota.NewLedger(app.ProfilesRepo, app.Config.FreeGenerationLimit)
	app.Counter = counter.NewService(app.KV, app.Config.CounterKey)

	if key := strings.TrimSpace(os.Getenv("FIRECRAWL_API_KEY")); key != "" {
		extractor, err := extract.NewClient(key, app.Config.ExtractorURL, app.Config.ExtractorTimeoutMS)
		if err != nil {
			return err
		}
		app.Extractor = extractor
	} else {
		log.Printf("bootstrap: FIRECRAWL_API_KEY empty; url input disabled")
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	switch app.Config.LLMProvider {
	case "anthropic":
		client, err := anthropic.NewClient(os.Getenv("ANTHROPIC_API_KEY"), app.Config.LLMModel)
		if err != nil {
			return err
		}
		llmClient = client
	case "openai":
		client, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), app.Config.LLMModel)
		if err != nil {
			return err
		}
		llmClient = client
	}

	app.GenerateService = &generate.Service{
		Ledger:    app.Ledger,
		Counter:   app.Counter,
		Extractor: app.Extractor,
		LLM:       llmClient,
		Prompt: llm.PromptOptions{
			QuestionCount: app.Config.QuestionCount,
			MaxChars:      app.Config.QuestionMaxChars,
		},
	}

	billingClient := billing.Client(billing.PlaceholderClient{})
	if key := strings.TrimSpace(os.Getenv("BILLING_SECRET_KEY")); key != "" {
		client, err := billing.NewHTTPClient(key, app.Config.BillingAPIURL)
		if err != nil {
			return err
		}
		billingClient = client
	}
	app.BillingService = billing.NewService(billingClient, app.ProfilesRepo)

	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
