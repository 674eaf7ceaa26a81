package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeprep_backend/internal/api"
	"codeprep_backend/internal/app/service"
	"codeprep_backend/internal/common/logger"
	"codeprep_backend/internal/common/security"
	"codeprep_backend/internal/domain/repository"
	"codeprep_backend/internal/platform/cache"
	"codeprep_backend/internal/platform/config"
	"codeprep_backend/internal/platform/database"
	"codeprep_backend/internal/platform/mail"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Development)
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		zlog.Fatal("mongo connect failed", zap.Error(err))
	}
	defer database.Close(client)
	db := client.Database(cfg.MongoDB)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		zlog.Fatal("index creation failed", zap.Error(err))
	}
	zlog.Info("database connected", zap.String("db", cfg.MongoDB))

	redisCache, redisClient, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		zlog.Fatal("redis connect failed", zap.Error(err))
	}
	defer redisClient.Close()
	zlog.Info("cache connected", zap.String("addr", cfg.RedisAddr))

	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromName, cfg.FromEmail)
	tokens := security.NewTokenIssuer(cfg.JWTKey, cfg.JWTExp)

	userRepo := repository.NewMongoUserRepository(db)
	topicRepo := repository.NewMongoTopicRepository(db)
	assignmentRepo := repository.NewMongoAssignmentRepository(db)
	submissionRepo := repository.NewMongoSubmissionRepository(db)
	progressRepo := repository.NewMongoProgressRepository(db)
	paymentRepo := repository.NewMongoPaymentRepository(db)

	authService := service.NewAuthService(userRepo, tokens, mailer, service.AuthPolicy{
		RequireVerification: cfg.RequireVerification,
		MaxLoginAttempts:    cfg.MaxLoginAttempts,
		LockDuration:        cfg.LockDuration,
		VerifyTokenTTL:      cfg.VerifyTokenTTL,
		ResetTokenTTL:       cfg.ResetTokenTTL,
	}, zlog)
	topicService := service.NewTopicService(topicRepo, redisCache, cfg.CacheTTL, zlog)
	assignmentService := service.NewAssignmentService(assignmentRepo, topicRepo, redisCache, cfg.CacheTTL, zlog)
	progressService := service.NewProgressService(progressRepo, topicRepo, zlog)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, userRepo, progressService, zlog)
	paymentService := service.NewPaymentService(paymentRepo, userRepo, cfg.RazorpayKeySecret, zlog)

	router := api.NewRouter(tokens, authService, topicService, assignmentService, submissionService, progressService, paymentService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		zlog.Info("server starting", zap.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-stop

	zlog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal("shutdown failed", zap.Error(err))
	}
	zlog.Info("server stopped")
}
