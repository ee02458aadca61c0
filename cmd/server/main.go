package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Vetinfrajer/VetinChatApp/internal/auth"
	"github.com/Vetinfrajer/VetinChatApp/internal/config"
	apphttp "github.com/Vetinfrajer/VetinChatApp/internal/http"
	"github.com/Vetinfrajer/VetinChatApp/internal/presence"
	"github.com/Vetinfrajer/VetinChatApp/internal/repository/sqlite"
	"github.com/Vetinfrajer/VetinChatApp/internal/service"
	"github.com/Vetinfrajer/VetinChatApp/internal/socket"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	friendRepo := sqlite.NewFriendRepository(db)
	messageRepo := sqlite.NewMessageRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := friendRepo.Init(ctx); err != nil {
		logger.Fatalf("init friend repository: %v", err)
	}
	if err := messageRepo.Init(ctx); err != nil {
		logger.Fatalf("init message repository: %v", err)
	}

	tokens := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	registry := presence.NewRegistry()

	userService := service.NewUserService(userRepo, friendRepo, messageRepo, registry)
	friendService := service.NewFriendService(userRepo, friendRepo, registry)
	conversationService := service.NewConversationService(friendRepo, messageRepo, registry)
	deliveryService := service.NewDeliveryService(messageRepo, registry, logger)

	wsHandler := socket.NewHandler(tokens, registry, deliveryService, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		tokens,
		userService,
		friendService,
		conversationService,
		wsHandler,
		cfg.CORS.Origin,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
