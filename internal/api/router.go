package api

import (
	"net/http"

	"noticias/config"
	"noticias/internal/api/admin"
	"noticias/internal/api/apis"
	"noticias/internal/api/handler"
	"noticias/internal/auth"
	"noticias/internal/constants"
	"noticias/internal/middleware"
	"noticias/internal/repository"
	"noticias/internal/service"
	"noticias/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// AnnouncementService 公告查询与发布
type AnnouncementService interface {
	handler.AnnouncementReader
	admin.AnnouncementPublisher
}

// Dependencies 路由依赖，显式注入，便于使用假实现测试
type Dependencies struct {
	Logger        *logger.Logger
	Tokens        middleware.TokenVerifier
	Auth          handler.Authenticator
	Announcements AnnouncementService
}

// SetupRouter 基于数据库连接池构建全部依赖并设置API路由
func SetupRouter(cfg *config.Config, logger *logger.Logger, db *sqlx.DB) *gin.Engine {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化存储库
	userRepo := repository.NewUserRepository(db, cfg.Database.QueryTimeout)
	announcementRepo := repository.NewAnnouncementRepository(db, cfg.Database.QueryTimeout)

	// 初始化服务
	tokens := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), auth.DefaultTokenTTL)
	authService := service.NewAuthService(userRepo, tokens, logger)
	announcementService := service.NewAnnouncementService(announcementRepo, logger)

	return NewRouter(Dependencies{
		Logger:        logger,
		Tokens:        tokens,
		Auth:          authService,
		Announcements: announcementService,
	})
}

// NewRouter 设置API路由
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()

	// 使用中间件
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS())

	// 初始化处理器
	systemHandler := handler.NewSystemHandler()
	announcementHandler := handler.NewAnnouncementHandler(deps.Announcements, deps.Logger)
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Logger)
	announcementAdminHandler := admin.NewAnnouncementAdminHandler(deps.Announcements, deps.Logger)

	root := router.Group("")

	// 注册不需要认证的路由
	apis.RegisterPublicRoutes(root, systemHandler, announcementHandler, authHandler)

	// 注册管理员路由：先认证（401），再检查管理员（403）
	adminRouter := root.Group("")
	adminRouter.Use(middleware.Authenticate(deps.Tokens, deps.Logger))
	adminRouter.Use(middleware.RequireAdmin(deps.Logger))
	admin.RegisterAdminRoutes(adminRouter, announcementAdminHandler)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": constants.ErrNotFound})
	})

	return router
}
