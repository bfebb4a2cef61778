// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"tutor-connect-go/internal/config"
	"tutor-connect-go/internal/handler"
	"tutor-connect-go/internal/middleware"
	"tutor-connect-go/internal/model"
	"tutor-connect-go/internal/pipeline"
	"tutor-connect-go/internal/repository"
	"tutor-connect-go/internal/service"
	"tutor-connect-go/internal/subscription"
	"tutor-connect-go/pkg/database"
	"tutor-connect-go/pkg/es"
	"tutor-connect-go/pkg/kafka"
	"tutor-connect-go/pkg/log"
	"tutor-connect-go/pkg/storage"
	"tutor-connect-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis、对象存储、搜索索引与事件流
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 建表
	if err := database.DB.AutoMigrate(
		&model.User{},
		&model.UserProfile{},
		&model.Rating{},
		&model.StudentRequest{},
		&model.ChatRoom{},
		&model.RoomMessage{},
	); err != nil {
		log.Fatal("数据库迁移失败", err)
	}

	// 5. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	profileRepo := repository.NewProfileRepository(database.DB)
	ratingRepo := repository.NewRatingRepository(database.DB)
	requestRepo := repository.NewRequestRepository(database.DB)
	roomRepo := repository.NewRoomRepository(database.DB)
	profileCache := repository.NewProfileCache(database.RDB)

	// 6. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	userService := service.NewUserService(userRepo, profileRepo, jwtManager)
	profileService := service.NewProfileService(profileRepo, profileCache)
	ratingService := service.NewRatingService(ratingRepo)
	requestService := service.NewRequestService(requestRepo)
	chatService := service.NewChatService(roomRepo)
	searchService := service.NewSearchService(es.ESClient, cfg.Elasticsearch.IndexName)
	assistantService := service.NewAssistantService(searchService, cfg.Assistant)

	// 7. 初始化变更事件消费端：索引刷新 + 快照作废 + 在线推送
	hub := subscription.NewHub()
	indexer := pipeline.NewIndexer(profileRepo, roomRepo, profileCache, hub, cfg.Elasticsearch.IndexName)
	go kafka.StartConsumer(cfg.Kafka, indexer)

	// 7.1 启动时维护默认公共房间：先清理重复，再补齐缺失
	go func() {
		if err := chatService.EnsureDefaultRooms(context.Background()); err != nil {
			log.Error("默认公共房间初始化失败", err)
		}
	}()

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 9. 注册路由
	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(userService)
	profileHandler := handler.NewProfileHandler(profileService, searchService)
	ratingHandler := handler.NewRatingHandler(ratingService)
	requestHandler := handler.NewRequestHandler(requestService)
	chatHandler := handler.NewChatHandler(chatService, userService, hub, jwtManager)
	assistantHandler := handler.NewAssistantHandler(assistantService, jwtManager)
	adminHandler := handler.NewAdminHandler(userService, chatService)

	authed := middleware.AuthMiddleware(jwtManager, userService)

	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", authHandler.RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			// 无需认证的路由 (公开访问)
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			// 需要认证的路由
			me := users.Group("/")
			me.Use(authed)
			{
				me.GET("/me", userHandler.Me)
				me.POST("/logout", userHandler.Logout)
			}
		}

		// 档案路由组
		profiles := apiV1.Group("/profiles")
		profiles.Use(authed)
		{
			profiles.GET("/me", profileHandler.GetMyProfile)
			profiles.PUT("/me", profileHandler.UpdateMyProfile)
			profiles.POST("/me/tutor", profileHandler.BecomeTutor)
			profiles.POST("/me/avatar", profileHandler.UploadAvatar)
			profiles.GET("/:uid", profileHandler.GetProfile)
		}

		// 导师/队友列表与评分
		tutors := apiV1.Group("/tutors")
		tutors.Use(authed)
		{
			tutors.GET("", profileHandler.ListTutors)
			tutors.POST("/:uid/ratings", ratingHandler.SubmitRating)
			tutors.GET("/:uid/ratings", ratingHandler.ListRatings)
			tutors.GET("/:uid/ratings/me", ratingHandler.GetMyRating)
		}

		teammates := apiV1.Group("/teammates")
		teammates.Use(authed)
		{
			teammates.GET("", profileHandler.ListTeammates)
		}

		// 档案全文检索
		search := apiV1.Group("/search")
		search.Use(authed)
		{
			search.GET("/profiles", profileHandler.SearchProfiles)
		}

		// 学生求助请求
		requests := apiV1.Group("/requests")
		requests.Use(authed)
		{
			requests.POST("", requestHandler.PostRequest)
			requests.GET("", requestHandler.ListRequests)
		}

		// 聊天室 REST 接口
		chat := apiV1.Group("/chat")
		chat.Use(authed)
		{
			chat.GET("/rooms", chatHandler.ListPublicRooms)
			chat.GET("/dms", chatHandler.ListMyDmRooms)
			chat.POST("/dms", chatHandler.OpenDm)
			chat.GET("/rooms/:id/messages", chatHandler.ListMessages)
		}

		// 管理员路由组，需要同时通过认证和管理员授权两个中间件
		admin := apiV1.Group("/admin")
		admin.Use(authed, middleware.AdminAuthMiddleware())
		{
			admin.GET("/users/list", adminHandler.ListUsers)
			admin.POST("/rooms/reseed", adminHandler.ReseedRooms)
		}
	}

	// WebSocket 路由：浏览器无法自定义请求头，token 走路径参数
	r.GET("/ws/rooms/:id/:token", chatHandler.HandleRoom)
	r.GET("/ws/assistant/:token", assistantHandler.Handle)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
