package main

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/SocialHub/config"
	"github.com/Gopher0727/SocialHub/internal/consumer"
	"github.com/Gopher0727/SocialHub/internal/handlers"
	redispkg "github.com/Gopher0727/SocialHub/internal/pkg/redis"
	"github.com/Gopher0727/SocialHub/internal/repositories"
	"github.com/Gopher0727/SocialHub/internal/routers"
	"github.com/Gopher0727/SocialHub/internal/services"
	"github.com/Gopher0727/SocialHub/internal/storage"
	"github.com/Gopher0727/SocialHub/internal/utils"
	"github.com/Gopher0727/SocialHub/internal/ws"
	"github.com/Gopher0727/SocialHub/pkg/logger"
	"github.com/Gopher0727/SocialHub/pkg/middlewares"
	"github.com/Gopher0727/SocialHub/pkg/mq"
	"github.com/Gopher0727/SocialHub/utils/snowflake"
)

func main() {
	cfg, err := config.LoadConfig("./config.toml")
	if err != nil {
		log.Fatalf("配置初始化失败: %v", err)
	}

	// 初始化日志
	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer appLogger.Close()

	// 初始化 JWT 密钥
	utils.SetJWTSecret(cfg.JWT.Secret)

	// 初始化全局限流器
	middlewares.InitGlobalLimiter(cfg.RateLimit.Burst, cfg.RateLimit.QPS)

	// 初始化全局 Worker Pool (协程池)
	// 用于异步处理请求，防止高并发下 Goroutine 暴涨
	utils.InitGlobalWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)

	// 初始化雪花 ID 生成器
	idgen, err := snowflake.NewNode(cfg.Snowflake.WorkerID)
	if err != nil {
		appLogger.Fatal("雪花 ID 生成器初始化失败", zap.Error(err))
	}

	// 初始化 PostgreSQL
	dsn := storage.BuildDSN(cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName)
	postgres, err := storage.InitPostgres(dsn, cfg.Postgres.MaxIdleConns, cfg.Postgres.MaxOpenConns)
	if err != nil {
		appLogger.Fatal("postgres 初始化失败", zap.Error(err))
	}
	if err := storage.AutoMigrate(postgres); err != nil {
		appLogger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 初始化 Redis（失败降级：序列号、在线状态、单用户限流不可用）
	redisClient, err := redispkg.NewClient(&cfg.Redis)
	if err != nil {
		appLogger.Warn("redis 初始化失败，相关功能降级", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// 初始化仓储层
	userRepo := repositories.NewUserRepository(postgres)
	membershipRepo := repositories.NewMembershipRepository(postgres)
	messageRepo := repositories.NewMessageRepository(postgres)
	receiptRepo := repositories.NewReceiptRepository(postgres)
	notificationRepo := repositories.NewNotificationRepository(postgres)

	// 初始化 WebSocket Hub 与推送器
	hub := ws.NewHub(appLogger)
	notifier := ws.NewHubNotifier(hub)

	// 初始化 Kafka Producer
	var publisher services.GroupMessagePublisher
	kafkaProducer, err := mq.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		appLogger.Warn("Kafka 生产者初始化失败，群消息降级为直接广播", zap.Error(err))
	} else {
		publisher = kafkaProducer
		defer kafkaProducer.Close()
	}

	// 初始化服务层
	authService := services.NewAuthService(userRepo)
	membershipService := services.NewMembershipService(membershipRepo)
	notificationService := services.NewNotificationService(notificationRepo, idgen, notifier, appLogger)
	messageService := services.NewMessageService(messageRepo, membershipRepo, notificationService, notifier, publisher, redisClient, idgen, appLogger)
	readService := services.NewReadService(messageRepo, receiptRepo)

	// 初始化 Kafka Consumer (如果 Kafka 可用)
	if kafkaProducer != nil {
		msgConsumer := consumer.NewGroupMessageConsumer(notifier, appLogger)
		if err := consumer.StartConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, msgConsumer, appLogger); err != nil {
			appLogger.Warn("Kafka 消费者启动失败", zap.Error(err))
		}
	}

	// 初始化处理器
	authHandler := handlers.NewAuthHandler(authService)
	groupHandler := handlers.NewGroupHandler(membershipService, readService)
	messageHandler := handlers.NewMessageHandler(messageService, readService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	eventHandler := handlers.NewEventHandler(notificationService)
	presenceHandler := handlers.NewPresenceHandler(redisClient)

	// 配置并创建 Gin 引擎
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	routers.SetupRoutes(r, cfg,
		authHandler,
		groupHandler,
		messageHandler,
		notificationHandler,
		eventHandler,
		presenceHandler,
		hub,
		membershipService,
		messageService,
		redisClient,
		appLogger,
	)

	// 启动服务器
	appLogger.Info("正在启动服务器", zap.Int("port", cfg.Server.Port))
	if err := r.Run(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
		appLogger.Fatal("启动服务器失败", zap.Error(err))
	}
}
