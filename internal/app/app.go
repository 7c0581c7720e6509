package app

import (
	"context"
	"learnhub_backend/internal/achievement"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/controller"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/pkg/configwatcher"
	"learnhub_backend/pkg/database"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"
	"learnhub_backend/pkg/security"
	"learnhub_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigFile 热更新监听的配置文件
const ConfigFile = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	// ctx 随应用关闭而取消，后台协程据此退出
	ctx             context.Context
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	assignment  *repository.AssignmentRepository
	submission  *repository.SubmissionRepository
	stats       *repository.UserStatsRepository
	achievement *repository.AchievementRepository
}

type services struct {
	achievement  *service.AchievementService
	submission   *service.SubmissionService
	notification *service.NotificationService
}

type controllers struct {
	achievement *controller.AchievementController
	submission  *controller.SubmissionController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		assignment:  repository.NewAssignmentRepository(db),
		submission:  repository.NewSubmissionRepository(db),
		stats:       repository.NewUserStatsRepository(db),
		achievement: repository.NewAchievementRepository(db),
	}
}

// newUserLocker 多实例部署时使用 redis 锁
func newUserLocker(cfg *config.Config, rdb *redis.Client) service.UserLocker {
	if cfg.Achievement.LockBackend == "redis" && rdb != nil {
		return service.NewRedisUserLocker(rdb, cfg.Achievement.LockTTL)
	}
	return service.NewLocalUserLocker()
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	mode, err := achievement.ParseConsistencyMode(cfg.Achievement.ConsistencyMode)
	if err != nil {
		logger.Log.Fatal("Invalid achievement config", zap.Error(err))
	}

	s.achievement = service.NewAchievementService(
		db,
		repos.stats,
		repos.achievement,
		repos.assignment,
		service.WithLocation(cfg.Achievement.Location()),
		service.WithConsistencyMode(mode),
		service.WithLocker(newUserLocker(cfg, rdb)),
	)

	var notifier service.GradeNotifier
	if cfg.Notification.Enabled {
		s.notification = service.NewNotificationService(cfg.Notification)
		notifier = s.notification
	}

	s.submission = service.NewSubmissionService(
		repos.submission,
		repos.assignment,
		repos.user,
		s.achievement,
		notifier,
		cfg.Grading.PerfectThreshold,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		achievement: controller.NewAchievementController(s.achievement),
		submission:  controller.NewSubmissionController(s.submission),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.AccessLogMiddleware())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if cfg.RateLimit.MaxRequests > 0 && window > 0 {
		limiter := security.NewRateLimiter(a.ctx, cfg.RateLimit.MaxRequests, window)
		router.Use(limiter.Middleware(security.ClientIPKey))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// eventLimiter 成就事件接口按用户限流，未配置时不限制
func (a *App) eventLimiter(cfg *config.Config) gin.HandlerFunc {
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if cfg.RateLimit.UserMaxRequests <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := security.NewRateLimiter(a.ctx, cfg.RateLimit.UserMaxRequests, window)
	return limiter.Middleware(middleware.UserRateKey)
}

// startBackgroundTasks 配置热更新
func (a *App) startBackgroundTasks() {
	configFile, _ := filepath.Abs(ConfigFile)
	go func() {
		err := configwatcher.WatchConfig(a.ctx, configFile, func(cfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(cfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		DB:     db,
		ctx:    ctx,
		cancel: cancel,
	}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Achievement.LockBackend == "redis" {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, app.Redis)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("learnhub-achievements", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	router := gin.New()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	// 日志级别跟随 server.mode
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
		logger.Log.Info("Log level updated", zap.String("level", logger.Level().String()))
	})
	app.startBackgroundTasks()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
