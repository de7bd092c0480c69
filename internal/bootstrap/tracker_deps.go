package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"jobtracker_server/adapter/out/mongodb"
	"jobtracker_server/adapter/out/persistence"
	"jobtracker_server/adapter/out/provider"
	"jobtracker_server/config"
	"jobtracker_server/core/agent/llm"
	"jobtracker_server/core/port/out"
	"jobtracker_server/core/service/application"
	"jobtracker_server/core/service/auth"
	"jobtracker_server/core/service/email"
	"jobtracker_server/core/service/suggestion"
	"jobtracker_server/infra/database"
	"jobtracker_server/pkg/cache"
	"jobtracker_server/pkg/httputil"
	"jobtracker_server/pkg/logger"
)

type Dependencies struct {
	Config *config.Config
	Log    zerolog.Logger

	SQLDB *sqlx.DB
	// Pool is set only for postgres and backs the readiness pool stats.
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	MongoDB *mongo.Client

	// Repositories
	ApplicationRepo *persistence.ApplicationRepository
	SuggestionStore out.SuggestionCacheStore
	ReportRepo      out.SyncReportRepository
	RedisCache      *cache.RedisCache

	// Providers
	GmailProvider *provider.GmailAdapter
	LLMClient     *llm.Client

	// Services
	OAuthService       *auth.MailboxOAuth
	ApplicationService *application.Service
	SuggestionService  *suggestion.Service
	SyncPipeline       *email.SyncPipeline
}

// NewDependencies wires every component. Optional backends (Redis, MongoDB,
// Gmail OAuth, the model API) are skipped when their config is empty.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	log := logger.New(logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Service: "jobtracker",
		Console: cfg.IsDevelopment(),
	}).Zerolog()

	deps := &Dependencies{Config: cfg, Log: log}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*Dependencies, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// =========================================================================
	// Confirmed application store
	// =========================================================================
	dsn := cfg.DatabaseURL
	if cfg.DatabaseDriver == "sqlite3" {
		dsn = cfg.SQLiteDSN()
	}
	db, err := database.OpenSQL(ctx, database.SQLConfig{Driver: cfg.DatabaseDriver, DSN: dsn})
	if err != nil {
		return fail(err)
	}
	deps.SQLDB = db
	cleanups = append(cleanups, func() { _ = db.Close() })

	if err := persistence.Migrate(db); err != nil {
		return fail(err)
	}
	deps.ApplicationRepo = persistence.NewApplicationRepository(db)

	if cfg.DatabaseDriver == "postgres" {
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, database.DefaultPostgresConfig())
		if err != nil {
			log.Warn().Err(err).Msg("postgres pool unavailable, readiness stats disabled")
		} else {
			deps.Pool = pool
			cleanups = append(cleanups, pool.Close)
		}
	}

	// =========================================================================
	// Suggestion cache: Redis when configured, otherwise a local file
	// =========================================================================
	deps.SuggestionStore = persistence.NewSuggestionFileStore(cfg.SuggestionCacheFile())
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedis(ctx, cfg.RedisURL, database.DefaultRedisConfig())
		if err != nil {
			return fail(fmt.Errorf("connect redis: %w", err))
		}
		deps.Redis = rdb
		cleanups = append(cleanups, func() { _ = rdb.Close() })

		deps.RedisCache = cache.NewRedisCache(rdb, "jobtracker")
		deps.SuggestionStore = persistence.NewRedisSuggestionStore(deps.RedisCache, cfg.CacheClientID)
		log.Info().Msg("suggestion cache backed by redis")
	}

	// =========================================================================
	// Sync reports: MongoDB when configured, otherwise in memory
	// =========================================================================
	deps.ReportRepo = persistence.NewMemoryReportStore(0)
	if cfg.MongoDBURL != "" {
		mc, err := mongodb.NewClient(ctx, cfg.MongoDBURL)
		if err != nil {
			return fail(err)
		}
		deps.MongoDB = mc
		cleanups = append(cleanups, func() { _ = mc.Disconnect(context.Background()) })

		reports := mongodb.NewSyncReportAdapter(mc.Database(cfg.MongoDBName))
		if err := reports.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to create sync report indexes")
		}
		deps.ReportRepo = reports
	}

	// =========================================================================
	// Mailbox
	// =========================================================================
	deps.GmailProvider = provider.NewGmailAdapter(&provider.GmailConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GmailRedirectURL,
		FetchRPS:     cfg.MailboxFetchRPS,
		HTTPClient:   httputil.NewClient(httputil.GmailClientConfig()),
	}, log)

	// a nil authenticator makes the OAuth service report "not configured"
	var authenticator out.MailboxAuthenticator
	if cfg.GmailConfigured() {
		authenticator = deps.GmailProvider
	} else {
		log.Warn().Msg("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set, gmail sync disabled")
	}
	tokens := persistence.NewTokenFileStore(cfg.TokenFile())
	deps.OAuthService = auth.NewMailboxOAuth(authenticator, tokens, log)

	// =========================================================================
	// Model stages
	// =========================================================================
	deps.LLMClient = llm.NewClientWithConfig(llm.ClientConfig{
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
		HTTPClient:  httputil.NewClient(httputil.LLMClientConfig(cfg.LLMTimeout)),
	})
	if !deps.LLMClient.Configured() {
		log.Warn().Msg("LLM_API_KEY not set, AI classification and summaries disabled")
	}

	// =========================================================================
	// Services
	// =========================================================================
	deps.SuggestionService = suggestion.NewService(deps.SuggestionStore, deps.ApplicationRepo, deps.OAuthService, log)
	deps.ApplicationService = application.NewService(deps.ApplicationRepo, deps.SuggestionService, log)
	deps.SuggestionService.SetCreator(deps.ApplicationService)

	deps.SyncPipeline = email.NewSyncPipeline(
		deps.OAuthService,
		deps.GmailProvider,
		llm.NewClassifier(deps.LLMClient),
		llm.NewSummarizer(deps.LLMClient),
		deps.ApplicationRepo,
		email.PipelineConfig{
			MaxMessages:     cfg.SyncMaxMessages,
			FetchWindow:     cfg.SyncFetchWindow,
			AcceptAnyWindow: cfg.SyncAcceptAnyWindow,
			Query:           cfg.SyncQuery,
		},
		log,
	).WithReports(deps.ReportRepo).WithSink(deps.SuggestionService)

	if _, err := deps.SuggestionService.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to restore cached suggestions")
	}

	return deps, cleanup, nil
}
