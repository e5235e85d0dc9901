// Package main runs the meeting cost tracker HTTP server with WebSocket
// push, the retention sweeper, and graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meetingmeter/backend/config"
	"github.com/meetingmeter/backend/internal/meeting"
	"github.com/meetingmeter/backend/internal/meetings"
	"github.com/meetingmeter/backend/internal/middleware"
	"github.com/meetingmeter/backend/internal/profile"
	"github.com/meetingmeter/backend/internal/realtime"
	"github.com/meetingmeter/backend/pkg/database"
	"github.com/meetingmeter/backend/pkg/redis"
	"github.com/meetingmeter/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Meeting records
	store := meeting.NewStore(logger, meeting.WithTTL(cfg.Meeting.RetentionTTL))
	store.SetCommitHook(func(rec *meeting.Record) {
		hub.PublishToMeeting(rec.MeetingID, realtime.EventRateUpdated, rec)
	})
	sweeper := meeting.NewSweeper(store, cfg.Meeting.SweepInterval, logger)

	// Profiles and session history
	profileStore := profile.NewStore(rdb.Client)
	historyRepo := profile.NewHistoryRepository(pool)
	profileHandler := profile.NewHandler(profileStore, historyRepo)

	// When a socket drops, log the finished session for the user. The
	// participant stays in the meeting record.
	hub.SetSessionHooks(nil, func(meetingID, userID string, joinedAt time.Time) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rec, err := store.Get(meetingID)
		if err != nil {
			return
		}
		p := rec.Find(userID)
		if p == nil {
			return
		}
		minutes := time.Since(joinedAt).Minutes()
		if err := historyRepo.Log(ctx, &profile.MeetingSession{
			UserID:          userID,
			UserName:        p.Name,
			MeetingID:       meetingID,
			Date:            joinedAt,
			DurationMinutes: int(minutes),
			HourlyRate:      p.HourlyRate,
			Cost:            meeting.IndividualCost(*p, minutes),
			Participants:    len(rec.Participants),
		}); err != nil {
			logger.Warn("log session", zap.String("user_id", userID), zap.Error(err))
		}
	})

	meetingHandler := meetings.NewHandler(store)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	meetingHandler.RegisterRoutes(router)
	profileHandler.RegisterRoutes(router)

	// WebSocket push (identity in query params)
	router.GET("/ws", realtime.ServeWs(hub, store, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go sweeper.Run(sweepCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sweepCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
