package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/wordbook/internal/activity"
	"github.com/mrlokans/wordbook/internal/api"
	"github.com/mrlokans/wordbook/internal/auth"
	"github.com/mrlokans/wordbook/internal/config"
	"github.com/mrlokans/wordbook/internal/covers"
	"github.com/mrlokans/wordbook/internal/database"
	activitydb "github.com/mrlokans/wordbook/internal/database/activity"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/events"
	http_controllers "github.com/mrlokans/wordbook/internal/http"
	"github.com/mrlokans/wordbook/internal/logging"
	"github.com/mrlokans/wordbook/internal/notebooks"
	"github.com/mrlokans/wordbook/internal/scheduler"
	"github.com/mrlokans/wordbook/internal/selection"
	"github.com/mrlokans/wordbook/internal/view"
	"github.com/mrlokans/wordbook/internal/wordentry"
	"github.com/mrlokans/wordbook/internal/wordlist"
)

// wordsPageSize is how many words the detail view shows per page.
const wordsPageSize = 50

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so nothing touches the backend mid-shutdown.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	// Open event streams never finish on their own; Shutdown gives up on them
	// at the deadline.
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	logger.Info("Server exiting")
}

// sessionSecret returns the CSRF key, generating a throwaway one when none
// is configured.
func sessionSecret(cfg config.Auth, logger *zap.Logger) []byte {
	if cfg.SessionSecret != "" {
		return auth.SecretBytes(cfg.SessionSecret)
	}
	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		logger.Fatal("Failed to generate session secret", zap.Error(err))
	}
	logger.Info("Generated session secret (set AUTH_SESSION_SECRET to keep sessions across restarts)")
	return auth.SecretBytes(secret)
}

func Run(cfg *config.Config, version string) {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting Wordbook UI",
		zap.String("version", version),
		zap.String("backend", cfg.API.BaseURL))

	platform, ok := entities.ParsePlatform(cfg.Translator.DefaultPlatform)
	if !ok {
		logger.Warn("unknown default translation platform, using youdao",
			zap.String("platform", cfg.Translator.DefaultPlatform))
		platform = entities.PlatformYoudao
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, api.WithLogger(logger.Named("api")))
	bus := events.NewBus(logger)

	// Client-side state
	store := notebooks.NewStore(client, notebooks.Options{
		RetryAttempts: cfg.Refresh.RetryAttempts,
		RetryDelay:    cfg.Refresh.RetryDelay,
		Policy:        notebooks.ParseStalePolicy(string(cfg.Refresh.StalePolicy)),
		Emitter:       bus,
		Logger:        logger,
	})
	defer store.Close()

	entry := wordentry.NewWorkflow(client, store, wordentry.Options{
		DefaultPlatform: platform,
		Emitter:         bus,
		Logger:          logger,
	})
	words := wordlist.New(client, wordlist.Options{PageSize: wordsPageSize, Emitter: bus, Logger: logger})
	batch := selection.NewEngine(client, words, bus, logger)
	shell := view.NewShell(store, words, batch, entry, logger)
	detach := shell.Attach(bus)
	defer detach()

	// Local database: sessions and the activity log
	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database", zap.Error(err))
		}
	}()

	sqlDB, err := db.SQLDB()
	if err != nil {
		logger.Fatal("Failed to get SQL DB for sessions", zap.Error(err))
	}
	sessions, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		logger.Fatal("Failed to initialize session manager", zap.Error(err))
	}

	var csrfSecret []byte
	if cfg.Auth.Mode == config.AuthModeLocal {
		if cfg.Auth.PasswordHash == "" {
			logger.Fatal("AUTH_MODE=local needs AUTH_PASSWORD_HASH; generate one with the hash-password command")
		}
		csrfSecret = sessionSecret(cfg.Auth, logger)
		logger.Info("Authentication mode: local")
	} else {
		logger.Info("Authentication mode: none (no authentication required)")
	}

	activityService := activity.NewService(activitydb.NewRepository(db.DB), logger)

	coverCache, err := covers.NewCache(cfg.UI.CoverCacheDir, cfg.API.BaseURL)
	if err != nil {
		logger.Warn("Failed to initialize cover cache, covers load from the backend", zap.Error(err))
	} else {
		logger.Info("Cover cache initialized", zap.String("dir", coverCache.CacheDir()))
	}

	// Background jobs
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	refresher := scheduler.NewRefreshScheduler(store, cfg.Refresh.Interval, logger)
	if err := refresher.Start(bgCtx); err != nil {
		logger.Fatal("Failed to start refresh scheduler", zap.Error(err))
	}
	cleanup := scheduler.NewActivityCleanupScheduler(activityService, cfg.Activity.CleanupSchedule, cfg.Activity.RetentionDays, logger)
	if err := cleanup.Start(bgCtx); err != nil {
		logger.Warn("Activity cleanup disabled", zap.Error(err))
	}

	// First load; the scheduler keeps retrying if the backend is not up yet.
	refresher.RunNow()

	routerCfg := http_controllers.RouterConfig{
		Notebooks:     store,
		Entry:         entry,
		Words:         words,
		Selection:     batch,
		Shell:         shell,
		Bus:           bus,
		Transfer:      client,
		Search:        client,
		Backend:       client,
		Database:      db,
		Activity:      activityService,
		BackendURL:    cfg.API.BaseURL,
		Sessions:      sessions,
		AuthConfig:    cfg.Auth,
		CSRFSecret:    csrfSecret,
		TemplatesPath: cfg.UI.TemplatesPath,
		StaticPath:    cfg.UI.StaticPath,
		Version:       version,
		Logger:        logger,
	}
	// A nil *covers.Cache must not become a non-nil interface.
	if coverCache != nil {
		routerCfg.Covers = coverCache
	}

	gin.SetMode(gin.ReleaseMode)
	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, logger, func(ctx context.Context) {
		refresher.Stop()
		cleanup.Stop()
		bgCancel()
		store.Close()
	})
}
