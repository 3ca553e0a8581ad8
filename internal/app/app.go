package app

import (
	"context"
	"examhub_backend/internal/config"
	"examhub_backend/internal/controller"
	"examhub_backend/internal/middleware"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/service"
	"examhub_backend/pkg/configwatcher"
	"examhub_backend/pkg/database"
	"examhub_backend/pkg/logger"
	"examhub_backend/pkg/monitoring"
	"examhub_backend/pkg/security"
	"examhub_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	sweepStop       chan struct{}
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	questionBank *repository.QuestionBankRepository
	blueprint    *repository.BlueprintRepository
	class        *repository.ClassRepository
	exam         *repository.ExamRepository
	submission   *repository.SubmissionRepository
}

type services struct {
	auth       *service.AuthService
	question   *service.QuestionService
	blueprint  *service.BlueprintService
	assignment *service.AssignmentService
	submission *service.SubmissionService
	analytics  *service.AnalyticsService
}

type controllers struct {
	auth        *controller.AuthController
	question    *controller.QuestionController
	blueprint   *controller.BlueprintController
	assignment  *controller.AssignmentController
	studentExam *controller.StudentExamController
	examAdmin   *controller.ExamAdminController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		questionBank: repository.NewQuestionBankRepository(db),
		blueprint:    repository.NewBlueprintRepository(db),
		class:        repository.NewClassRepository(db),
		exam:         repository.NewExamRepository(db),
		submission:   repository.NewSubmissionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.question = service.NewQuestionService(repos.questionBank, rdb)
	s.blueprint = service.NewBlueprintService(repos.blueprint, repos.questionBank, rdb)
	s.assignment = service.NewAssignmentService(repos.exam, repos.blueprint, repos.questionBank, repos.class, repos.user)
	s.submission = service.NewSubmissionService(repos.submission, repos.exam, repos.class)
	s.analytics = service.NewAnalyticsService(repos.submission, repos.exam, repos.questionBank)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		question:    controller.NewQuestionController(s.question),
		blueprint:   controller.NewBlueprintController(s.blueprint),
		assignment:  controller.NewAssignmentController(s.assignment),
		studentExam: controller.NewStudentExamController(s.submission),
		examAdmin:   controller.NewExamAdminController(s.submission, s.analytics),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 6000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 超时提交的强制交卷扫描由进程内定时器驱动
func (a *App) startBackgroundTasks(s *services) {
	a.sweepStop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.submission.SweepAllOverdue(); err != nil {
					logger.Log.Error("overdue sweep error", zap.Error(err))
				}
			case <-a.sweepStop:
				return
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// redis 只承载参考数据缓存，挂了就降级为直接回源
		logger.Log.Warn("Failed to initialize redis, availability cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("examhub", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.startBackgroundTasks(services)

	// 配置热更新：目前仅影响注册过回调的组件
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		reloaded, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		logger.Log.Info("Config reloaded")
		app.Config = reloaded
		for _, cb := range app.configCallbacks {
			cb(reloaded)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.sweepStop != nil {
		close(a.sweepStop)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
