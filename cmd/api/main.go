package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/api/routes"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/config"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/handlers"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/migrate"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/quiz"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/repositories"
	mongorepo "github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/repositories/mongodb"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/services"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store/mongostore"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/pkg/mongodb"
)

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

func main() {
	// .env is optional; real deployments set environment variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		slog.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Quiz domain rides on the document store adapter; the CRUD modules use
	// plain repositories.
	st := mongostore.New(db)
	quizService := quiz.NewService(st, cfg.Quiz.ID, quiz.DefaultBackoff)

	var userRepo repositories.UserRepository = mongorepo.NewUserRepository(db)
	var sessionRepo repositories.SessionRepository = mongorepo.NewSessionRepository(db)
	var tosRepo repositories.ToSRepository = mongorepo.NewToSRepository(db)
	var adminRepo repositories.AdminRepository = mongorepo.NewAdminRepository(db)

	authService := services.NewAuthService(adminRepo, cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)
	userService := services.NewUserService(userRepo)
	sessionService := services.NewSessionService(sessionRepo)
	tosService := services.NewToSService(tosRepo)

	// Schema migrations run before any traffic is served. A failed
	// migration is fatal.
	for _, database := range []migrate.Database{quizService, tosService} {
		if err := migrate.Run(ctx, database); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}

	if err := quizService.Start(ctx); err != nil {
		slog.Error("failed to start quiz service", "error", err)
		os.Exit(1)
	}
	defer quizService.Close()

	handlerSet := routes.Handlers{
		Quiz:    handlers.NewQuizHandler(quizService),
		Raffle:  handlers.NewRaffleHandler(quizService),
		Auth:    handlers.NewAuthHandler(authService),
		User:    handlers.NewUserHandler(userService),
		Session: handlers.NewSessionHandler(sessionService),
		ToS:     handlers.NewToSHandler(tosService),
	}

	router := routes.SetupRouter(cfg, handlerSet)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
}
