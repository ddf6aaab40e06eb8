package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redisDriver "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"edu-network/internal/auth"
	"edu-network/internal/config"
	"edu-network/internal/events"
	"edu-network/internal/handlers/apiserver"
	appKafka "edu-network/internal/kafka"
	kafkahandlers "edu-network/internal/kafka/handlers"
	"edu-network/internal/logger"
	"edu-network/internal/middleware"
	appRedis "edu-network/internal/redis"
	"edu-network/internal/services"
	"edu-network/internal/storage"
)

func main() {
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// 1. 加载配置
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}

	// 2. 初始化日志
	if err := logger.Init(cfg.Log, cfg.Mode); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	defer logger.Sync()
	zap.L().Info("API 服务器配置加载成功", zap.String("app", cfg.AppName), zap.String("version", cfg.AppVersion), zap.String("mode", cfg.Mode))

	// 3. 初始化数据库连接
	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		zap.L().Fatal("无法初始化数据库", zap.Error(err))
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		zap.L().Fatal("数据库表迁移失败", zap.Error(err))
	}

	// 4. 令牌黑名单：配置了 Redis 时多实例共享，否则只在本进程内生效
	var tokenBlacklist auth.TokenBlacklist
	if cfg.Redis.Addr != "" {
		redisClient := redisDriver.NewClient(&redisDriver.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			zap.L().Fatal("无法连接到 Redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer redisClient.Close()
		tokenBlacklist = appRedis.NewRedisTokenBlacklist(redisClient)
		zap.L().Info("成功连接到 Redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		tokenBlacklist = auth.NewMemoryBlacklist()
		zap.L().Warn("REDIS.ADDR 未配置，令牌黑名单仅在本进程内生效")
	}

	// 5. 初始化 Repositories
	userRepo := storage.NewGormUserRepository(db)
	privacyRepo := storage.NewGormPrivacyRepository(db)
	requestRepo := storage.NewGormConnectionRequestRepository(db)
	connRepo := storage.NewGormConnectionRepository(db)
	followRepo := storage.NewGormFollowRepository(db)
	jobRepo := storage.NewGormJobRepository(db)
	profileRepo := storage.NewGormEducatorProfileRepository(db)
	notificationRepo := storage.NewGormNotificationRepository(db)

	notificationService := services.NewNotificationService(notificationRepo)

	// 6. 关系事件：Kafka 可用时走 Kafka，否则在进程内直接生成通知
	consumerCtx, cancelConsumers := context.WithCancel(context.Background())
	defer cancelConsumers()
	var consumersDone sync.WaitGroup

	publisher := events.Publisher(&events.LocalPublisher{
		Handle:  notificationService.HandleRelationshipEvent,
		Timeout: cfg.Kafka.PublishTimeout,
		OnError: func(e events.RelationshipEvent, err error) {
			zap.L().Error("local notification delivery failed", zap.String("type", string(e.Type)), zap.Error(err))
		},
	})
	if cfg.Kafka.Enabled {
		producer, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka)
		if err != nil {
			zap.L().Error("无法创建 Kafka 生产者，关系事件改为进程内处理", zap.Error(err))
		} else {
			defer producer.Close()
			publisher = appKafka.NewRelationshipPublisher(producer, cfg.Kafka.RelationshipEventsTopic, cfg.Kafka.PublishTimeout)

			consumer, err := appKafka.NewConfluentKafkaConsumer(cfg.Kafka)
			if err != nil {
				zap.L().Fatal("无法创建通知 Kafka 消费者", zap.Error(err))
			}
			defer consumer.Close()

			consumerLogic := kafkahandlers.NewNotificationConsumerLogic(notificationService)
			consumersDone.Add(1)
			go func() {
				defer consumersDone.Done()
				topics := []string{cfg.Kafka.RelationshipEventsTopic}
				zap.L().Info("通知消费者启动", zap.Strings("topics", topics), zap.String("group", cfg.Kafka.ConsumerGroup))
				err := consumer.Consume(consumerCtx, topics, cfg.Kafka.ConsumerGroup, consumerLogic.HandleRelationshipEvent)
				if err != nil && !errors.Is(err, context.Canceled) {
					zap.L().Error("通知消费者错误", zap.Error(err))
				}
				zap.L().Info("通知消费者已停止")
			}()
		}
	}

	// 7. 初始化 Services
	privacyService := services.NewPrivacyService(userRepo, privacyRepo, connRepo)
	networkService := services.NewNetworkService(db, userRepo, requestRepo, connRepo, followRepo, privacyService, publisher)
	jobService := services.NewJobService(jobRepo, profileRepo, cfg.Matching.RecommendationLimit)
	authService := services.NewAuthService(userRepo, cfg.Auth, tokenBlacklist)
	userService := services.NewUserService(userRepo)

	// 8. 设置 HTTP 路由
	r := apiserver.NewRouter(apiserver.Handlers{
		Auth:          apiserver.NewAuthHandler(authService),
		Users:         apiserver.NewUserHandler(userService, privacyService),
		Network:       apiserver.NewNetworkHandler(networkService),
		Jobs:          apiserver.NewJobHandler(jobService),
		Notifications: apiserver.NewNotificationHandler(notificationService),
	}, middleware.AuthMiddleware(cfg.Auth.JWTSecretKey, tokenBlacklist))
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		handlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		handlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}

	// 9. 启动 HTTP 服务器并实现优雅关闭
	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      handlers.CORS(corsOptions...)(r),
		ReadTimeout:  cfg.APIServer.ReadTimeout,
		WriteTimeout: cfg.APIServer.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	}

	go func() {
		zap.L().Info("API 服务器启动", zap.String("addr", serverAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("API 服务器启动失败", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("收到关闭信号，正在关闭 API 服务器...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zap.L().Error("API 服务器强制关闭", zap.Error(err))
	}

	cancelConsumers()
	consumersDone.Wait()
	zap.L().Info("API 服务器已成功关闭")
}
