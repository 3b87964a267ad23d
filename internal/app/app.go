package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"testprep_backend/internal/config"
	"testprep_backend/internal/controller"
	"testprep_backend/internal/repository"
	"testprep_backend/internal/service"
	"testprep_backend/pkg/database"
	"testprep_backend/pkg/logger"
	"testprep_backend/pkg/monitoring"
	"testprep_backend/pkg/security"
	"testprep_backend/pkg/tracing"

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
	configCallbacks []func(*config.Config)
	tracerShutdown  func(context.Context) error
}

type repositories struct {
	user         *repository.UserRepository
	test         *repository.TestRepository
	question     *repository.QuestionRepository
	attempt      *repository.AttemptRepository
	payment      *repository.PaymentRepository
	plan         *repository.PlanRepository
	subscription *repository.SubscriptionRepository
}

type services struct {
	entitlement *service.EntitlementService
	assembler   *service.Assembler
	attempt     *service.AttemptService
	payment     *service.PaymentService
	test        *service.TestService
}

type controllers struct {
	attempt *controller.AttemptController
	payment *controller.PaymentController
	test    *controller.TestController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig pushes a reloaded configuration to every registered consumer.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		test:         repository.NewTestRepository(db),
		question:     repository.NewQuestionRepository(db, rdb),
		attempt:      repository.NewAttemptRepository(db),
		payment:      repository.NewPaymentRepository(db),
		plan:         repository.NewPlanRepository(db),
		subscription: repository.NewSubscriptionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.entitlement = service.NewEntitlementService(repos.user, repos.subscription, cfg.Engine.FreeTestLimit)
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.entitlement.FreeTestLimit = newCfg.Engine.FreeTestLimit
	})
	s.assembler = service.NewAssembler(repos.question, repos.test)
	s.attempt = service.NewAttemptService(db, repos.attempt, repos.test, repos.question, repos.user, s.entitlement, s.assembler)

	gateway := service.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	s.payment = service.NewPaymentService(db, repos.payment, repos.plan, gateway, cfg.Razorpay)

	s.test = service.NewTestService(repos.test)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		attempt: controller.NewAttemptController(s.attempt),
		payment: controller.NewPaymentController(s.payment),
		test:    controller.NewTestController(s.test),
		health:  controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests == 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window == 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// the question-pool cache is an optimization, not a dependency
		logger.Log.Warn("Redis unavailable, running without question-pool cache", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg, db)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("testprep-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerShutdown = tp.Shutdown
	}

	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
