// Package app 提供应用程序的装配、启动与优雅退出.
package app

import (
	contextPkg "context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sujaykar/echovault/pkg/api"
	appcache "github.com/sujaykar/echovault/pkg/cache"
	"github.com/sujaykar/echovault/pkg/configs"
	"github.com/sujaykar/echovault/pkg/internal/events"
	"github.com/sujaykar/echovault/pkg/internal/jobs"
	"github.com/sujaykar/echovault/pkg/internal/model"
	"github.com/sujaykar/echovault/pkg/internal/storage"
	"github.com/sujaykar/echovault/pkg/log"
	"github.com/sujaykar/echovault/pkg/metrics"
	"github.com/sujaykar/echovault/pkg/middleware"
	"github.com/sujaykar/echovault/pkg/scheduler"
	"github.com/sujaykar/echovault/pkg/tracing"
)

// App 聚合 HTTP 引擎与各基础设施句柄.
type App struct {
	Engine  *gin.Engine
	config  *configs.AppConfig
	manager *storage.Manager
	sched   *scheduler.Scheduler
	cancel  contextPkg.CancelFunc
}

// NewApp 完成全部装配：配置、追踪、指标、存储、路由、调度与事件消费.
// 关键组件初始化失败会直接退出进程.
func NewApp(configPath string) *App {
	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	config := configs.GetConfig()

	if config.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := tracing.InitTracer(config.Tracing); err != nil {
		fmt.Printf("Error initializing tracing: %v\n", err)
		os.Exit(1)
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := contextPkg.WithCancel(contextPkg.Background())

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	l := log.Logger()

	if dbi := manager.GetDBClient(); dbi != nil && dbi.GetDB() != nil {
		if err := dbi.GetDB().AutoMigrate(&model.Echo{}); err != nil {
			l.Error().Err(err).Msg("自动迁移数据库失败")
			os.Exit(1)
		}
	}

	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	sched, err := scheduler.NewScheduler()
	if err != nil {
		l.Error().Err(err).Msg("初始化调度器失败")
		os.Exit(1)
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(),
		middleware.GzipMiddleware(),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
		middleware.AuthMiddleware(config.Auth),
		middleware.RoleMiddleware(),
		middleware.StorageMiddleware(manager),
		middleware.SchedulerMiddleware(sched),
	)

	var respCache *appcache.Cache
	if kvi := manager.GetKVClient(); kvi != nil {
		respCache = appcache.NewCache(kvi)
	}

	api.RegisterGroup(engine, respCache)

	if err := jobs.RegisterCronJobs(sched, manager); err != nil {
		l.Error().Err(err).Msg("注册定时任务失败")
		os.Exit(1)
	}

	sched.Start()

	// 事件消费失败只降级审计与指标，不影响请求处理
	if config.Events.Enabled && manager.GetMQClient() != nil {
		if err := events.NewConsumer(manager).Start(ctx); err != nil {
			l.Warn().Err(err).Msg("事件消费者启动失败")
		}
	}

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	return &App{
		Engine:  engine,
		config:  config,
		manager: manager,
		sched:   sched,
		cancel:  cancel,
	}
}

// Run 启动 HTTP 服务并阻塞，收到 SIGINT/SIGTERM 后优雅退出.
func (a *App) Run() error {
	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	errCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Logger().Info().Str("addr", addr).Msg("HTTP 服务已启动")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		_ = a.shutdown(srv)
		return err
	case sig := <-quit:
		log.Logger().Info().Str("signal", sig.String()).Msg("收到退出信号")
		return a.shutdown(srv)
	}
}

// shutdown 依次停止 HTTP、调度器、事件消费与存储资源.
func (a *App) shutdown(srv *http.Server) error {
	ctx, cancel := contextPkg.WithTimeout(contextPkg.Background(), a.config.Server.GetTimeoutDuration())
	defer cancel()

	err := srv.Shutdown(ctx)

	if a.cancel != nil {
		a.cancel()
	}

	if a.sched != nil {
		if e := a.sched.Shutdown(); e != nil && err == nil {
			err = e
		}
	}

	if a.manager != nil {
		if e := a.manager.Close(); e != nil && err == nil {
			err = e
		}
	}

	if e := tracing.ShutdownTracer(ctx); e != nil && err == nil {
		err = e
	}

	log.Logger().Info().Msg("服务已退出")

	return err
}
