package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "taskmanager/docs"
	"taskmanager/internal/config"
	"taskmanager/internal/database"
	"taskmanager/internal/handlers"
	"taskmanager/internal/logging"
	"taskmanager/internal/middleware"
	"taskmanager/internal/models"
	"taskmanager/internal/pdf"
	"taskmanager/internal/realtime"
	"taskmanager/internal/repositories"
	"taskmanager/internal/routes"
	"taskmanager/internal/services"
	"taskmanager/internal/storage"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	cfg   *config.Config
	mongo *database.Mongo

	users   repositories.UserRepository
	tasks   repositories.TaskRepository
	notices repositories.NoticeRepository

	authService   services.AuthService
	userService   services.UserService
	noticeService services.NoticeService
	taskService   services.TaskService

	notifier *services.Notifier
	hub      *realtime.NoticeHub
}

// New configures logging, connects to MongoDB and builds the service graph.
// Outbound integrations that fail to start are logged and skipped.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := logging.Init(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		JSON:       cfg.IsProduction(),
		SystemName: "taskmanager",
	}); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	// === DB ===
	mongo, err := database.Connect(ctx, cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("[app] connected to mongodb db=%s", cfg.Database.Name)

	a := &App{
		cfg:     cfg,
		mongo:   mongo,
		users:   repositories.NewUserRepository(mongo.DB),
		tasks:   repositories.NewTaskRepository(mongo.DB),
		notices: repositories.NewNoticeRepository(mongo.DB),
		hub:     realtime.NewNoticeHub(),
	}

	// === Services ===
	a.authService = services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var emailService services.EmailService
	if cfg.Email.Enabled() {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	} else {
		logging.Logger.Info("[app] smtp not configured, emails disabled")
	}

	a.notifier = services.NewNotifier(a.users, a.hub)
	if emailService != nil {
		a.notifier.AddSink(services.EmailSink{Email: emailService})
	}
	if cfg.Telegram.Enabled() {
		tg, err := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logging.Logger.Warnf("[app] telegram disabled: %v", err)
		} else {
			a.notifier.AddSink(tg)
		}
	}

	var tx database.Transactor = database.NoTransaction{}
	if cfg.Database.Transactions {
		tx = database.NewTransactor(mongo.Client)
	}

	a.userService = services.NewUserService(a.users, emailService, a.authService, a.notifier)
	a.noticeService = services.NewNoticeService(a.notices, a.tasks, a.notifier)
	a.taskService = services.NewTaskService(a.tasks, a.users, a.noticeService, tx)

	return a, nil
}

// Migrate creates the indexes every collection relies on.
func (a *App) Migrate(ctx context.Context) error {
	for name, ix := range map[string]repositories.Indexer{
		repositories.UsersCollection:   a.users,
		repositories.TasksCollection:   a.tasks,
		repositories.NoticesCollection: a.notices,
	} {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("indexes %s: %w", name, err)
		}
	}
	logging.Logger.Info("[app] indexes ensured")
	return nil
}

// CreateAdmin registers an administrator account.
func (a *App) CreateAdmin(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.IsAdmin = true
	return a.userService.Register(ctx, req)
}

// Router builds the HTTP engine with middleware and every route mounted.
func (a *App) Router(ctx context.Context) (*gin.Engine, error) {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	router := gin.New()
	if len(a.cfg.Server.CORSOrigins) == 0 {
		logging.Logger.Warn("[app] cors_origins is empty, cross-origin requests are refused")
	}
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(logging.Logger),
		metrics.Handler(),
		middleware.CORS(a.cfg.Server.CORSOrigins),
		middleware.ErrorHandler(a.cfg.IsProduction()),
	)
	router.NoRoute(middleware.NotFound())

	router.GET("/healthz", handlers.Health(a.mongo))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(a.userService, a.authService, a.cfg.IsProduction()),
		User:         handlers.NewUserHandler(a.userService),
		Notification: handlers.NewNotificationHandler(a.noticeService, a.hub),
		Task:         handlers.NewTaskHandler(a.taskService),
		Report:       handlers.NewReportHandler(a.taskService, pdf.NewReportGenerator(a.cfg.Server.ReportFont)),
	}
	if a.cfg.Minio.Enabled() {
		store, err := storage.NewMinIO(ctx, a.cfg.Minio)
		if err != nil {
			logging.Logger.Warnf("[app] asset storage disabled: %v", err)
		} else {
			h.Asset = handlers.NewAssetHandler(store)
		}
	}

	protect := middleware.Protect(a.authService, a.userService)
	return routes.SetupRoutes(router, h, protect), nil
}

// Serve runs the HTTP server until ctx is cancelled, then drains requests and
// pending notice deliveries.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Migrate(ctx); err != nil {
		return err
	}
	router, err := a.Router(ctx)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.Infof("[app] server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Logger.Info("[app] shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logging.Logger.Errorf("[app] server forced to shutdown: %v", err)
	}
	// hijacked websocket connections are not tracked by Shutdown
	a.hub.CloseAll()
	a.notifier.Wait()
	return nil
}

func (a *App) Close(ctx context.Context) {
	a.notifier.Wait()
	if err := a.mongo.Close(ctx); err != nil {
		logging.Logger.Warnf("[app] close mongodb: %v", err)
	}
}
