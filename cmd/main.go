package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hcissey0/flux-backend/config"
	"github.com/hcissey0/flux-backend/internal/api/chat"
	"github.com/hcissey0/flux-backend/internal/api/comment"
	"github.com/hcissey0/flux-backend/internal/api/message"
	"github.com/hcissey0/flux-backend/internal/api/post"
	"github.com/hcissey0/flux-backend/internal/api/system"
	"github.com/hcissey0/flux-backend/internal/api/user"
	"github.com/hcissey0/flux-backend/internal/common"
	"github.com/hcissey0/flux-backend/internal/middleware"
	"github.com/hcissey0/flux-backend/internal/repository/interfaces"
	"github.com/hcissey0/flux-backend/internal/repository/memory"
	"github.com/hcissey0/flux-backend/internal/repository/mysql"
	redisrepo "github.com/hcissey0/flux-backend/internal/repository/redis"
	"github.com/hcissey0/flux-backend/internal/service"
	"github.com/hcissey0/flux-backend/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 设置数据库连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName)

	// 连接数据库
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Close()

	// 测试数据库连接
	err = db.Ping()
	if err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	util.Logger.Info("数据库连接池配置完成")

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("notblank", util.ValidateNotBlank)
	}

	// 令牌黑名单：配置了Redis则用Redis，否则退化为进程内存储
	var blacklist interfaces.TokenBlacklist
	if config.AppConfig.RedisAddr != "" {
		client, err := redisrepo.NewClient(config.AppConfig.RedisAddr)
		if err != nil {
			util.Logger.Fatal("连接Redis失败", zap.Error(err))
		}
		defer client.Close()
		blacklist = redisrepo.NewTokenBlacklist(client)
		util.Logger.Info("令牌黑名单使用Redis存储", zap.String("addr", config.AppConfig.RedisAddr))
	} else {
		blacklist = memory.NewTokenBlacklist()
		util.Logger.Warn("未配置Redis，令牌黑名单使用进程内存储")
	}

	// 初始化存储库、服务和处理器
	userRepo := mysql.NewUserRepository(db)
	postRepo := mysql.NewPostRepository(db)
	commentRepo := mysql.NewCommentRepository(db)
	chatRepo := mysql.NewChatRepository(db)
	messageRepo := mysql.NewMessageRepository(db)

	locks := common.NewEdgeLocks()

	userService := service.NewUserService(userRepo, postRepo, chatRepo, blacklist)
	relationshipService := service.NewRelationshipService(userRepo, postRepo, commentRepo, locks)
	chatService := service.NewChatService(chatRepo, userRepo, messageRepo, locks)
	threadService := service.NewThreadService(commentRepo, postRepo, userRepo, locks)
	postService := service.NewPostService(postRepo, userRepo, commentRepo)
	messageService := service.NewMessageService(messageRepo, chatRepo, locks)
	overviewService := service.NewOverviewService(userRepo, postRepo, commentRepo, chatRepo, messageRepo)

	authHandler := user.NewAuthHandler(userService)
	userHandler := user.NewUserHandler(userService, relationshipService)
	postHandler := post.NewPostHandler(postService, relationshipService, threadService)
	commentHandler := comment.NewCommentHandler(threadService, relationshipService)
	chatHandler := chat.NewChatHandler(chatService)
	messageHandler := message.NewMessageHandler(messageService)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()
	systemHandler := system.NewSystemHandler(overviewService, errorMonitor)

	// 设置 Gin 路由
	r := gin.Default()

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Access-Control-Allow-Origin",
	}
	r.Use(cors.New(corsConfig))

	auth := middleware.AuthMiddleware(userService)

	// 定义 API 路由
	api := r.Group("/api")
	{
		api.GET("/status", systemHandler.Status)
		if config.AppConfig.Debug {
			api.GET("/all", auth, systemHandler.Dump)
		}

		// 认证相关路由
		authRoutes := api.Group("/auth")
		{
			authRoutes.GET("/connect", authHandler.Connect)

			me := authRoutes.Group("/")
			me.Use(auth)
			{
				me.GET("/me", authHandler.Me)
				me.POST("/logout", authHandler.Logout)
				me.GET("/me/posts", authHandler.MePosts)
				me.GET("/me/chats", authHandler.MeChats)
				me.GET("/me/followers", authHandler.MeFollowers)
				me.GET("/me/following", authHandler.MeFollowing)
				me.GET("/me/saved", authHandler.MeSaved)
			}
		}

		// 用户相关路由
		api.POST("/users", userHandler.CreateUser)
		api.GET("/users", auth, userHandler.ListUsers)
		api.GET("/users/:id", auth, userHandler.GetUser)
		api.PUT("/users/:id", auth, userHandler.UpdateUser)
		api.DELETE("/users/:id", auth, userHandler.DeleteUser)
		api.POST("/users/:id/follow", auth, userHandler.ToggleFollow)
		api.GET("/users/:id/posts", auth, userHandler.GetUserPosts)
		api.GET("/users/:id/followers", auth, userHandler.GetFollowers)
		api.GET("/users/:id/following", auth, userHandler.GetFollowing)

		// 帖子相关路由
		api.POST("/posts", auth, postHandler.CreatePost)
		api.GET("/posts", auth, postHandler.ListPosts)
		api.GET("/posts/:id", auth, postHandler.GetPost)
		api.PUT("/posts/:id", auth, postHandler.UpdatePost)
		api.DELETE("/posts/:id", auth, postHandler.DeletePost)
		api.POST("/posts/:id/likes", auth, postHandler.ToggleLike)
		api.GET("/posts/:id/likes", auth, postHandler.ListLikes)
		api.POST("/posts/:id/saves", auth, postHandler.ToggleSave)
		api.GET("/posts/:id/saves", auth, postHandler.ListSaves)
		api.POST("/posts/:id/comments", auth, postHandler.CreateComment)
		api.GET("/posts/:id/comments", auth, postHandler.ListComments)

		// 评论相关路由
		api.GET("/comments", auth, commentHandler.ListComments)
		api.GET("/comments/:id", auth, commentHandler.GetComment)
		api.PUT("/comments/:id", auth, commentHandler.UpdateComment)
		api.DELETE("/comments/:id", auth, commentHandler.DeleteComment)
		api.POST("/comments/:id/likes", auth, commentHandler.ToggleLike)
		api.GET("/comments/:id/likes", auth, commentHandler.ListLikes)
		api.POST("/comments/:id/replies", auth, commentHandler.Reply)
		api.GET("/comments/:id/replies", auth, commentHandler.ListReplies)

		// 会话相关路由
		api.POST("/chats", auth, chatHandler.CreateChat)
		api.GET("/chats", auth, chatHandler.ListChats)
		api.GET("/chats/:id", auth, chatHandler.GetChat)
		api.PUT("/chats/:id", auth, chatHandler.UpdateChat)
		api.DELETE("/chats/:id", auth, chatHandler.DeleteChat)
		api.POST("/chats/:id/messages", auth, chatHandler.PostMessage)
		api.GET("/chats/:id/messages", auth, chatHandler.ListMessages)
		api.POST("/chats/:id/participants", auth, chatHandler.ToggleParticipant)
		api.GET("/chats/:id/participants", auth, chatHandler.ListParticipants)

		// 消息相关路由
		api.GET("/messages", auth, messageHandler.ListMessages)
		api.GET("/messages/:id", auth, messageHandler.GetMessage)
		api.PUT("/messages/:id", auth, messageHandler.UpdateMessage)
		api.DELETE("/messages/:id", auth, messageHandler.DeleteMessage)
	}

	// 创建 http.Server 以支持优雅关闭
	srv := &http.Server{
		Addr:    ":" + config.AppConfig.Port,
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动", zap.String("port", config.AppConfig.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器（设置 5 秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}
