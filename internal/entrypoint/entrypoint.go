// Package entrypoint wires the application together: database, covers,
// mirror client, syncer, task queue, reminders, auth, and the HTTP router.
package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avelichko/inkwell/internal/auth"
	"github.com/avelichko/inkwell/internal/config"
	"github.com/avelichko/inkwell/internal/covers"
	"github.com/avelichko/inkwell/internal/database"
	"github.com/avelichko/inkwell/internal/database/books"
	"github.com/avelichko/inkwell/internal/database/chapters"
	"github.com/avelichko/inkwell/internal/entities"
	http_controllers "github.com/avelichko/inkwell/internal/http"
	"github.com/avelichko/inkwell/internal/mirror"
	"github.com/avelichko/inkwell/internal/reminders"
	"github.com/avelichko/inkwell/internal/services"
	"github.com/avelichko/inkwell/internal/syncer"
	"github.com/avelichko/inkwell/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before closing listeners
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run builds the full application and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Inkwell v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	booksRepo := books.NewRepository(db)
	chaptersRepo := chapters.NewRepository(db)

	coversDir := cfg.Covers.Dir
	if coversDir == "" {
		coversDir = filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
	}
	coverStore, err := covers.NewStore(coversDir)
	if err != nil {
		log.Printf("WARNING: Failed to initialize cover storage: %v", err)
	} else {
		log.Printf("Cover storage initialized at %s", coversDir)
	}

	bookService := services.NewBookService(booksRepo, chaptersRepo, coverStore)

	var sync *syncer.Syncer
	if cfg.Mirror.BaseURL != "" {
		mirrorClient := mirror.NewClient(cfg.Mirror.BaseURL, cfg.Mirror.Token)
		sync = syncer.New(booksRepo, chaptersRepo, mirrorClient)
	} else {
		log.Printf("Mirror base URL not set, running local-only")
	}

	// Reminder scheduler
	reminderSettings := reminders.NewSettingsStore()
	if cfg.Reminders.Enabled {
		interval := entities.ReminderInterval(cfg.Reminders.Interval)
		if interval.Valid() {
			reminderSettings.Set(entities.ReminderSettings{Enabled: true, Interval: interval})
		} else {
			log.Printf("WARNING: invalid reminder interval %q, reminders disabled", cfg.Reminders.Interval)
		}
	}
	reminderScheduler := reminders.NewScheduler(reminderSettings, reminders.LogNotifier{})
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	if err := reminderScheduler.Start(schedulerCtx); err != nil {
		log.Printf("WARNING: Failed to start reminder scheduler: %v", err)
	}

	// Task queue
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled && sync != nil {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromApp(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewSyncBookQueue(sync),
			tasks.NewMirrorChapterQueue(sync, chaptersRepo),
			tasks.NewReconcileQueue(sync),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Authentication
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(db.DB, cfg.Auth)

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:          db,
		Books:             booksRepo,
		Chapters:          chaptersRepo,
		BookService:       bookService,
		Syncer:            sync,
		FallbackUID:       cfg.Mirror.UID,
		ReminderSettings:  reminderSettings,
		ReminderScheduler: reminderScheduler,
		AuthService:       authService,
		SessionManager:    sessionManager,
		AuthMiddleware:    authMiddleware,
		AuthConfig:        cfg.Auth,
		CSRFSecret:        csrfSecret,
		SecureCookies:     cfg.Auth.SecureCookies,
		TaskClient:        taskClient,
		Version:           version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		reminderScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// RunSync performs a one-shot reconciliation pass and exits. Used by the
// "sync" CLI command; the uid must be configured via MIRROR_UID.
func RunSync(cfg *config.Config) error {
	if cfg.Mirror.BaseURL == "" {
		return fmt.Errorf("MIRROR_BASE_URL is not set")
	}
	if cfg.Mirror.UID == "" {
		return fmt.Errorf("MIRROR_UID is not set")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	booksRepo := books.NewRepository(db)
	chaptersRepo := chapters.NewRepository(db)
	mirrorClient := mirror.NewClient(cfg.Mirror.BaseURL, cfg.Mirror.Token)
	sync := syncer.New(booksRepo, chaptersRepo, mirrorClient)

	summary, err := sync.Run(context.Background(), cfg.Mirror.UID)
	if err != nil {
		return err
	}
	log.Printf("Reconciliation finished: %d books processed, %d failed",
		summary.Processed, summary.Failed)
	return nil
}
