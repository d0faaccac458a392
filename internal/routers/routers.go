package routers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/SocialHub/config"
	"github.com/Gopher0727/SocialHub/internal/handlers"
	"github.com/Gopher0727/SocialHub/internal/middlewares"
	redispkg "github.com/Gopher0727/SocialHub/internal/pkg/redis"
	"github.com/Gopher0727/SocialHub/internal/services"
	"github.com/Gopher0727/SocialHub/internal/ws"
	"github.com/Gopher0727/SocialHub/pkg/logger"
	pkgmw "github.com/Gopher0727/SocialHub/pkg/middlewares"
)

// SetupRoutes 设置所有路由
func SetupRoutes(r *gin.Engine, cfg *config.Config,
	authHandler *handlers.AuthHandler,
	groupHandler *handlers.GroupHandler,
	messageHandler *handlers.MessageHandler,
	notificationHandler *handlers.NotificationHandler,
	eventHandler *handlers.EventHandler,
	presenceHandler *handlers.PresenceHandler,
	hub *ws.Hub,
	membershipService *services.MembershipService,
	messageService *services.MessageService,
	rdb *redispkg.Client,
	log *logger.Logger,
) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// 全局限流中间件 (防止 QPS 过高)
	r.Use(pkgmw.RateLimitMiddleware(2 * time.Second))
	r.Use(pkgmw.MaxConcurrencyMiddleware(cfg.RateLimit.MaxConcurrency))

	// WebSocket 路由 (必须在 AsyncMiddleware 之前注册，避免握手请求被放入 Worker Pool)
	r.GET("/ws", middlewares.AuthMiddleware(), func(c *gin.Context) {
		ws.ServeWs(hub, membershipService, messageService, rdb, log, c)
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"Status": "OK",
		})
	})

	// 异步处理中间件
	// 将请求放入 Worker Pool 中排队执行
	r.Use(middlewares.AsyncMiddleware())

	RegisterAuthRoutes(r, authHandler)
	RegisterGroupRoutes(r, cfg, groupHandler, messageHandler, rdb)
	RegisterMessageRoutes(r, cfg, messageHandler, rdb)
	RegisterNotificationRoutes(r, notificationHandler)
	RegisterEventRoutes(r, eventHandler)
	RegisterPresenceRoutes(r, presenceHandler)
}

// RegisterAuthRoutes 注册认证路由
func RegisterAuthRoutes(r *gin.Engine, authHandler *handlers.AuthHandler) {
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/register", authHandler.Register) // 注册
		authGroup.POST("/login", authHandler.Login)       // 登录
	}
}

// RegisterGroupRoutes 注册群组与成员路由
func RegisterGroupRoutes(r *gin.Engine, cfg *config.Config,
	groupHandler *handlers.GroupHandler,
	messageHandler *handlers.MessageHandler,
	rdb *redispkg.Client,
) {
	groupGroup := r.Group("/api/v1/groups")
	groupGroup.Use(middlewares.AuthMiddleware())
	{
		groupGroup.POST("", groupHandler.CreateGroup) // 创建群组

		// 成员管理
		groupGroup.POST("/:group_id/members", groupHandler.AddMember)              // 添加成员
		groupGroup.DELETE("/:group_id/members/:user_id", groupHandler.RemoveMember) // 移除成员
		groupGroup.GET("/:group_id/members", groupHandler.ListMembers)             // 成员列表
		groupGroup.GET("/:group_id/role", groupHandler.GetMyRole)                  // 我的角色

		// 群消息
		groupGroup.POST("/:group_id/messages",
			middlewares.UserMessageRateLimit(rdb, cfg.RateLimit.UserMessageLimit, cfg.RateLimit.UserMessageWindow),
			messageHandler.SendGroupMessage) // 发送群消息
		groupGroup.GET("/:group_id/messages", messageHandler.ListGroupMessages) // 消息列表

		// 已读状态
		groupGroup.POST("/:group_id/read", groupHandler.MarkGroupRead)  // 全部标记已读
		groupGroup.GET("/:group_id/unread", groupHandler.GetUnreadCount) // 未读数
	}
}

// RegisterMessageRoutes 注册私信与消息审计路由
func RegisterMessageRoutes(r *gin.Engine, cfg *config.Config,
	messageHandler *handlers.MessageHandler,
	rdb *redispkg.Client,
) {
	msgGroup := r.Group("/api/v1/messages")
	msgGroup.Use(middlewares.AuthMiddleware())
	{
		msgGroup.POST("/direct",
			middlewares.UserMessageRateLimit(rdb, cfg.RateLimit.UserMessageLimit, cfg.RateLimit.UserMessageWindow),
			messageHandler.SendDirectMessage) // 发送私信
		msgGroup.GET("/conversations/:user_id", messageHandler.ListConversation) // 私信记录
		msgGroup.POST("/:message_id/read", messageHandler.MarkDirectRead)        // 私信已读
		msgGroup.GET("/:message_id", messageHandler.GetMessage)                  // 审计查询（含已删除）
		msgGroup.DELETE("/:message_id", messageHandler.DeleteMessage)            // 审核删除
	}
}

// RegisterNotificationRoutes 注册通知路由
func RegisterNotificationRoutes(r *gin.Engine, notificationHandler *handlers.NotificationHandler) {
	notifyGroup := r.Group("/api/v1/notifications")
	notifyGroup.Use(middlewares.AuthMiddleware())
	{
		notifyGroup.GET("", notificationHandler.ListNotifications)              // 通知列表
		notifyGroup.POST("/:notification_id/read", notificationHandler.MarkRead) // 单条已读
		notifyGroup.POST("/read-all", notificationHandler.MarkAllRead)          // 全部已读
		notifyGroup.GET("/unread", notificationHandler.GetUnreadCount)          // 未读角标
		notifyGroup.DELETE("/purge", notificationHandler.Purge)                 // 历史清理
	}
}

// RegisterEventRoutes 注册业务事件扇出路由
func RegisterEventRoutes(r *gin.Engine, eventHandler *handlers.EventHandler) {
	eventGroup := r.Group("/api/v1/events")
	eventGroup.Use(middlewares.AuthMiddleware())
	{
		eventGroup.POST("/like", eventHandler.Like)            // 点赞
		eventGroup.POST("/comment", eventHandler.Comment)      // 评论
		eventGroup.POST("/follow", eventHandler.Follow)        // 关注
		eventGroup.POST("/story-view", eventHandler.StoryView) // 动态浏览
		eventGroup.POST("/mention", eventHandler.Mention)      // 提及
	}
}

// RegisterPresenceRoutes 注册在线状态路由
func RegisterPresenceRoutes(r *gin.Engine, presenceHandler *handlers.PresenceHandler) {
	presenceGroup := r.Group("/api/v1/users")
	presenceGroup.Use(middlewares.AuthMiddleware())
	{
		presenceGroup.GET("/:user_id/online", presenceHandler.IsOnline) // 是否在线
	}
}
