package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"storeshift_v1_202610/internal/config"
	"storeshift_v1_202610/internal/controller"
	"storeshift_v1_202610/internal/logger"
	"storeshift_v1_202610/internal/middleware"
	"storeshift_v1_202610/internal/model"
	"storeshift_v1_202610/internal/repository"
	"storeshift_v1_202610/internal/router"
	"storeshift_v1_202610/internal/service"
	"storeshift_v1_202610/internal/task"
	"storeshift_v1_202610/pkg/cache"
	"storeshift_v1_202610/pkg/database"
	"storeshift_v1_202610/pkg/mailer"
)

// ==================== 依赖容器 ====================

// Container 依赖容器，HTTP 服务和命令行共用
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	Redis       *redis.Client
	Repos       *Repositories
	Services    *Services
	Controllers router.Controllers
	Tasks       *task.TaskManager
}

// Repositories 仓库集合
type Repositories struct {
	Schedule      *repository.ScheduleUnitOfWork
	Employees     repository.EmployeeRepository
	Stores        repository.StoreRepository
	Notifications repository.NotificationRepository
}

// Services 服务集合
type Services struct {
	Directory   *service.DirectoryService
	Notify      *service.NotificationService
	Publication *service.PublicationService
	Patches     *service.PatchApprovalService
	Archival    *service.ArchivalService
	Generation  *service.GenerationService
	Query       *service.ScheduleQueryService
}

// ==================== 初始化函数 ====================

// Build 按配置组装全部依赖
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger.SetLevel(cfg.LogLevel)

	if cfg.JWTSecret != "" {
		jwtCfg := middleware.DefaultJWTConfig()
		jwtCfg.SecretKey = cfg.JWTSecret
		middleware.SetJWTConfig(jwtCfg)
	} else {
		logger.GetLogger().Warn("JWT_SECRET 未配置，使用默认密钥")
	}

	db, err := database.InitDB(cfg.DatabaseDSN, database.DefaultOptions(), model.AllModels()...)
	if err != nil {
		return nil, err
	}
	if err := middleware.RegisterAuditCallbacks(db); err != nil {
		return nil, fmt.Errorf("注册审计回调失败: %w", err)
	}

	// redis 可选，未配置时缓存和分布式锁降级为本地直通
	rdb, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		logger.LogError("app", "Build", "redis unavailable, running without cache", cfg.RedisAddr, err)
		rdb = nil
	}

	c := &Container{Config: cfg, DB: db, Redis: rdb}
	c.Repos = initRepositories(db)
	c.Services = initServices(cfg, c.Repos, rdb)
	c.Controllers = initControllers(cfg, c.Services)
	c.Tasks = task.NewTaskManager(&task.TaskManagerDeps{
		Generation: c.Services.Generation,
		Archival:   c.Services.Archival,
		Locker:     cache.NewLocker(rdb),
	}, &task.TaskManagerConfig{
		Enabled:        cfg.SchedulerEnabled,
		GenerationSpec: cfg.GenerationCron,
		ArchivalSpec:   cfg.ArchivalCron,
		Location:       cfg.Location(),
	})
	return c, nil
}

func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Schedule:      repository.NewScheduleUnitOfWork(db),
		Employees:     repository.NewEmployeeRepository(db),
		Stores:        repository.NewStoreRepository(db),
		Notifications: repository.NewNotificationRepository(db),
	}
}

func initServices(cfg *config.Config, repos *Repositories, rdb *redis.Client) *Services {
	directory := service.NewDirectoryService(repos.Employees, cache.NewStore(rdb))

	mail := mailer.New(mailer.Config{
		APIURL:  cfg.MailAPIURL,
		APIKey:  cfg.MailAPIKey,
		From:    cfg.MailFrom,
		Timeout: 15 * time.Second,
	})
	if mail == nil {
		logger.GetLogger().Warn("MAIL_API_URL 未配置，邮件通知关闭")
	}
	notify := service.NewNotificationService(service.NewAppNotifier(repos.Notifications, mail), cfg.NotifyConcurrency)

	if cfg.GeneratorURL == "" {
		logger.GetLogger().Warn("GENERATOR_URL 未配置，每周生成会全部失败")
	}
	generator := service.NewHTTPGenerator(service.HTTPGeneratorConfig{
		BaseURL: cfg.GeneratorURL,
		APIKey:  cfg.GeneratorAPIKey,
		Timeout: cfg.GeneratorTimeout,
	})

	uow := repos.Schedule
	return &Services{
		Directory:   directory,
		Notify:      notify,
		Publication: service.NewPublicationService(uow, directory, notify, cfg.AppBaseURL),
		Patches:     service.NewPatchApprovalService(uow, directory, notify, cfg.AppBaseURL),
		Archival:    service.NewArchivalService(uow, directory),
		Generation:  service.NewGenerationService(repos.Stores, uow.Runs, generator, directory, notify, cfg.AppBaseURL),
		Query:       service.NewScheduleQueryService(uow.Runs, uow.Shifts, uow.Balances, repos.Notifications),
	}
}

func initControllers(cfg *config.Config, svc *Services) router.Controllers {
	return router.Controllers{
		Schedule:     controller.NewScheduleController(svc.Publication, svc.Patches, svc.Query),
		Cron:         controller.NewCronController(svc.Archival, svc.Generation, cfg.Location()),
		Notification: controller.NewNotificationController(svc.Query),
	}
}

// RouterDeps 路由中间件依赖
func (c *Container) RouterDeps() router.Deps {
	return router.Deps{
		Roles:      c.Services.Directory,
		CronSecret: c.Config.CronSecret,
		Limiter:    middleware.NewTriggerLimiter(),
	}
}

// Close 释放连接
func (c *Container) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
