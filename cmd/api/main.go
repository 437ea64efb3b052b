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
	"github.com/redis/go-redis/v9"

	"boqtracker/internal/config"
	"boqtracker/internal/database"
	jwtsvc "boqtracker/internal/pkg/jwt"
	"boqtracker/internal/pkg/lock"
	"boqtracker/internal/pkg/logger"
	"boqtracker/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.Connect(cfg.DatabaseURL, database.Options{Silent: cfg.IsProdLike()})
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed", "error", err)
	}
	store := repository.NewStore(db)

	var locker lock.Locker = lock.NewLocal()
	if cfg.RedisAddress != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress, Password: cfg.RedisPassword})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal("redis unreachable", "address", cfg.RedisAddress, "error", err)
		}
		defer rdb.Close()
		locker = lock.NewRedis(rdb, cfg.SequenceLockTTL)
		log.Info("contract update sequence lock uses redis", "address", cfg.RedisAddress)
	}

	var j *jwtsvc.Service
	if cfg.AuthEnabled() {
		j = jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	} else {
		log.Warn("JWT_SECRET is empty, mutating routes are unguarded")
	}

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(routerDeps{
		store:       store,
		locker:      locker,
		jwt:         j,
		log:         log,
		corsOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr, "env", cfg.AppEnv, "postgres", cfg.UsesPostgres())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http server shutdown failed", "error", err)
	}
	log.Info("http server stopped")
}
