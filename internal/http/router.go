package http

import (
	"github.com/gin-gonic/gin"

	"github.com/avelichko/inkwell/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// RouterConfig carries the dependencies so tests can wire their own.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, uint(0))
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	taskClient := cfg.taskEnqueuer()

	health := NewHealthController(cfg.Database, cfg.Syncer != nil, cfg.Version)
	booksController := NewBooksController(cfg.Books, cfg.BookService, taskClient, cfg.FallbackUID)
	chaptersController := NewChaptersController(cfg.Chapters, cfg.BookService, taskClient, cfg.FallbackUID)
	coversController := NewCoversController(cfg.Books, cfg.BookService)
	liveController := NewLiveController(cfg.Books, cfg.Chapters)

	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	router.GET("/api/books", booksController.GetAllBooks)
	router.GET("/api/books/live", liveController.StreamBooks)
	router.POST("/api/books", booksController.CreateBook)
	router.GET("/api/books/:id", booksController.GetBook)
	router.PUT("/api/books/:id", booksController.UpdateBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)

	router.GET("/api/books/:id/chapters", chaptersController.ListChapters)
	router.GET("/api/books/:id/chapters/live", liveController.StreamChapters)
	router.GET("/api/books/:id/chapters/:position", chaptersController.GetChapter)
	router.PUT("/api/books/:id/chapters/:position", chaptersController.SaveChapter)
	router.DELETE("/api/books/:id/chapters/:position", chaptersController.DeleteChapter)

	router.GET("/api/books/:id/cover", coversController.GetCover)
	router.PUT("/api/books/:id/cover", coversController.UploadCover)
	router.DELETE("/api/books/:id/cover", coversController.DeleteCover)

	if cfg.Syncer != nil {
		syncController := NewSyncController(cfg.Syncer, taskClient, cfg.FallbackUID)
		router.POST("/api/sync", syncController.TriggerReconcile)
		router.GET("/api/sync/status", syncController.GetStatus)
		router.POST("/api/books/:id/sync", syncController.PushBook)
		router.DELETE("/api/books/:id/mirror", syncController.RemoveRemote)
	}

	if cfg.ReminderSettings != nil && cfg.ReminderScheduler != nil {
		remindersController := NewRemindersController(cfg.ReminderSettings, cfg.ReminderScheduler)
		router.GET("/api/reminders", remindersController.GetSettings)
		router.PUT("/api/reminders", remindersController.UpdateSettings)
	}

	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() && cfg.SessionManager != nil {
		accountsController := NewAccountsController(cfg.AuthService, cfg.SessionManager, taskClient)
		router.POST("/api/auth/register", accountsController.Register)
		router.POST("/api/auth/login", accountsController.Login)
		router.POST("/api/auth/logout", accountsController.Logout)
		router.GET("/api/auth/me", accountsController.Me)
		router.POST("/api/auth/token", accountsController.GenerateToken)
		router.DELETE("/api/auth/token", accountsController.RevokeToken)
		router.POST("/api/auth/password", accountsController.ChangePassword)
	}

	return router
}
