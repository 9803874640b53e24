package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"imovelhub/internal/config"
	"imovelhub/internal/database"
	"imovelhub/internal/domain/chat"
	"imovelhub/internal/domain/grant"
	"imovelhub/internal/domain/notification"
	"imovelhub/internal/domain/payment"
	"imovelhub/internal/domain/profile"
	"imovelhub/internal/domain/request"
	"imovelhub/internal/middleware"
	"imovelhub/internal/pkg/jwt"
	"imovelhub/internal/pkg/logger"
	"imovelhub/internal/realtime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog := logger.New(cfg.Environment)
	defer zlog.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("db connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("db migrate failed", zap.Error(err))
	}

	j := jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	hub := realtime.NewHub()

	chatRepo := chat.NewRepository(db)
	chatService := chat.NewService(chatRepo, hub)
	chatHandler := chat.NewHandler(chatService)

	notifRepo := notification.NewRepository(db)
	notifService := notification.NewService(notifRepo, chatService, hub, zlog)
	notifHandler := notification.NewHandler(notifService)

	grantService := grant.NewService(grant.NewRepository(db))
	grantHandler := grant.NewHandler(grantService)
	profileService := profile.NewService(profile.NewRepository(db))

	requestRepo := request.NewRepository(db)
	requestService := request.NewService(
		requestRepo,
		notifService,
		chatService,
		grantService,
		profileService,
		hub,
		request.Config{
			Expiry:             cfg.RequestExpiry,
			BuyerVaultCooldown: cfg.BuyerVaultCooldown,
			VaultAccessWindow:  cfg.VaultAccessWindow,
		},
		zlog,
	)
	requestHandler := request.NewHandler(requestService)

	paymentService := payment.NewService(requestService, cfg.PaymentPassword2, zlog)
	paymentHandler := payment.NewHandler(paymentService)

	wsHandler := realtime.NewWSHandler(hub, j, zlog)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		// public: provider webhook and the change feed (token via query)
		payment.RegisterRoutes(v1, paymentHandler)
		v1.GET("/ws", wsHandler.Handle)

		protected := v1.Group("/")
		protected.Use(middleware.RequireAuth(j))
		{
			request.RegisterRoutes(protected, requestHandler)
			notification.RegisterRoutes(protected, notifHandler)
			chat.RegisterRoutes(protected, chatHandler)
			grant.RegisterRoutes(protected, grantHandler)
		}
	}

	zlog.Info("starting api", zap.String("addr", cfg.HTTPAddr))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
