/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-11-28 11:35:28
 * @LastEditTime: 2025-12-02 21:45:28
 * @LastEditors: 安知鱼
 */
package server

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/xyhcode/tidecms/internal/app/middleware"
	"github.com/xyhcode/tidecms/internal/app/task"
	"github.com/xyhcode/tidecms/internal/infra/persistence/database"
	"github.com/xyhcode/tidecms/internal/infra/persistence/gormdb"
	"github.com/xyhcode/tidecms/internal/infra/router"
	"github.com/xyhcode/tidecms/internal/pkg/event"
	"github.com/xyhcode/tidecms/pkg/config"
	"github.com/xyhcode/tidecms/pkg/domain/model"
	"github.com/xyhcode/tidecms/pkg/domain/repository"
	comment_handler "github.com/xyhcode/tidecms/pkg/handler/comment"
	moderation_handler "github.com/xyhcode/tidecms/pkg/handler/moderation"
	setting_handler "github.com/xyhcode/tidecms/pkg/handler/setting"
	"github.com/xyhcode/tidecms/pkg/idgen"
	comment_service "github.com/xyhcode/tidecms/pkg/service/comment"
	moderation_service "github.com/xyhcode/tidecms/pkg/service/moderation"
	"github.com/xyhcode/tidecms/pkg/service/setting"
	"github.com/xyhcode/tidecms/pkg/service/utility"
)

// App 结构体，用于封装应用的所有核心组件
type App struct {
	cfg           *config.Config
	engine        *gin.Engine
	db            *gorm.DB
	scheduler     *task.Scheduler
	mw            *middleware.Middleware
	settingSvc    setting.SettingService
	cacheSvc      utility.CacheService
	eventBus      *event.EventBus
	commentSvc    *comment_service.Service
	moderationSvc *moderation_service.Service
}

func (a *App) PrintBanner() {
	banner := `

      ████████╗██╗██████╗ ███████╗ ██████╗███╗   ███╗███████╗
      ╚══██╔══╝██║██╔══██╗██╔════╝██╔════╝████╗ ████║██╔════╝
         ██║   ██║██║  ██║█████╗  ██║     ██╔████╔██║███████╗
         ██║   ██║██║  ██║██╔══╝  ██║     ██║╚██╔╝██║╚════██║
         ██║   ██║██████╔╝███████╗╚██████╗██║ ╚═╝ ██║███████║
         ╚═╝   ╚═╝╚═════╝ ╚══════╝ ╚═════╝╚═╝     ╚═╝╚══════╝

`
	log.Println(banner)
}

// NewApp 构建整个应用：加载配置、初始化基础设施、装配业务层和路由。
// 返回的 cleanup 函数负责释放数据库和缓存连接。
func NewApp() (*App, func(), error) {
	// --- Phase 1: 加载外部配置 ---
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	// --- Phase 2: 初始化基础设施 ---
	db, err := database.NewGormDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("创建数据库连接失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("获取底层连接池失败: %w", err)
	}

	if err := gormdb.AutoMigrate(db); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	// 尝试连接 Redis（如果失败，将自动降级到内存缓存）
	redisClient, err := database.NewRedisClient(context.Background(), cfg)
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("redis 初始化失败: %w", err)
	}

	eventBus := event.NewEventBus()

	// 调试模式下打印所有评论事件，方便排查审核流转
	if cfg.GetBool(config.KeyServerDebug) {
		for _, topic := range []event.Topic{event.CommentCreated, event.CommentStatusChanged, event.CommentDeleted} {
			t := topic
			eventBus.Subscribe(t, func(payload interface{}) {
				log.Printf("[DEBUG] 事件 %s: %v", t, payload)
			})
		}
	}

	cleanup := func() {
		log.Println("执行清理操作：关闭事件总线...")
		eventBus.Shutdown()
		log.Println("关闭数据库连接...")
		sqlDB.Close()
		if redisClient != nil {
			log.Println("关闭 Redis 连接...")
			redisClient.Close()
		}
	}

	// --- Phase 3: 初始化数据仓库层 ---
	settingRepo := gormdb.NewSettingRepo(db)
	userRepo := gormdb.NewUserRepo(db)
	postRepo := gormdb.NewPostRepo(db)
	commentRepo := gormdb.NewCommentRepo(db)
	txManager := gormdb.NewTransactionManager(db)

	// --- Phase 4: 初始化 ID 编码器 ---
	// IDSeed 优先取配置，缺省时落库保存，防止重启后公共ID变化
	idSeed, err := getOrCreateIDSeed(context.Background(), cfg, settingRepo)
	if err != nil {
		return nil, cleanup, fmt.Errorf("获取 IDSeed 失败: %w", err)
	}
	if err := idgen.InitSqidsEncoderWithSeed(idSeed); err != nil {
		return nil, cleanup, fmt.Errorf("初始化 ID 编码器失败: %w", err)
	}
	log.Println("✅ ID 编码器初始化成功")

	// --- Phase 5: 初始化业务逻辑层 ---
	settingSvc := setting.NewSettingService(settingRepo, eventBus)
	if err := settingSvc.LoadAllSettings(context.Background()); err != nil {
		return nil, cleanup, fmt.Errorf("加载系统配置失败: %w", err)
	}

	cacheSvc := utility.NewCacheServiceWithFallback(redisClient)

	commentSvc := comment_service.NewService(commentRepo, postRepo, userRepo, txManager, settingSvc, cacheSvc, eventBus)
	moderationSvc := moderation_service.NewService(commentRepo, userRepo, settingSvc, cacheSvc, eventBus, commentSvc)

	// --- Phase 6: 初始化接口层 ---
	mw := middleware.NewMiddleware(cfg.GetString(config.KeyJWTSecret))
	commentHandler := comment_handler.NewHandler(commentSvc)
	moderationHandler := moderation_handler.NewHandler(moderationSvc)
	settingHandler := setting_handler.NewHandler(settingSvc)

	if cfg.GetBool(config.KeyServerDebug) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()

	appRouter := router.NewRouter(commentHandler, moderationHandler, settingHandler, mw)
	appRouter.Setup(engine)

	// --- Phase 7: 初始化定时任务 ---
	scheduler := task.NewScheduler(moderationSvc)

	app := &App{
		cfg:           cfg,
		engine:        engine,
		db:            db,
		scheduler:     scheduler,
		mw:            mw,
		settingSvc:    settingSvc,
		cacheSvc:      cacheSvc,
		eventBus:      eventBus,
		commentSvc:    commentSvc,
		moderationSvc: moderationSvc,
	}

	return app, cleanup, nil
}

// SettingService 返回配置服务实例
func (a *App) SettingService() setting.SettingService {
	return a.settingSvc
}

// CacheService 返回缓存服务实例
func (a *App) CacheService() utility.CacheService {
	return a.cacheSvc
}

// EventBus 返回事件总线，用于发布和订阅事件
func (a *App) EventBus() *event.EventBus {
	return a.eventBus
}

// CommentService 返回评论服务实例
func (a *App) CommentService() *comment_service.Service {
	return a.commentSvc
}

// ModerationService 返回审核服务实例
func (a *App) ModerationService() *moderation_service.Service {
	return a.moderationSvc
}

func (a *App) Run() error {
	a.scheduler.RegisterJobs()
	a.scheduler.Start()

	port := a.cfg.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	fmt.Printf("应用程序启动成功，正在监听端口: %s\n", port)

	return a.engine.Run(":" + port)
}

func (a *App) Stop() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		log.Println("任务调度器已停止。")
	}
}

// getOrCreateIDSeed 获取用于公共ID编码的种子。
// 配置文件中显式指定的种子优先；否则使用数据库中保存的种子；
// 两者都没有时生成一个随机种子并落库。
func getOrCreateIDSeed(ctx context.Context, cfg *config.Config, settingRepo repository.SettingRepository) (string, error) {
	if seed := cfg.GetString(config.KeyIDSeed); seed != "" {
		return seed, nil
	}

	const idSeedKey = "id_seed"

	s, err := settingRepo.FindByKey(ctx, idSeedKey)
	if err == nil && s != nil {
		log.Println("📦 已从数据库加载 IDSeed")
		return s.Value, nil
	}

	newSeed, err := idgen.GenerateRandomSeed()
	if err != nil {
		return "", fmt.Errorf("生成随机 IDSeed 失败: %w", err)
	}

	newSetting := &model.Setting{
		ConfigKey: idSeedKey,
		Value:     newSeed,
		Comment:   "系统自动生成的ID种子，用于生成唯一的公共ID，请勿修改",
	}
	if err := settingRepo.Save(ctx, newSetting); err != nil {
		return "", fmt.Errorf("保存 IDSeed 到数据库失败: %w", err)
	}
	log.Println("✅ 已生成随机 IDSeed")

	return newSeed, nil
}
