package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"casino_ledger/internal/account"
	"casino_ledger/internal/api"
	"casino_ledger/internal/config"
	"casino_ledger/internal/db"
	"casino_ledger/internal/leaderboard"
	"casino_ledger/internal/ledger"
	"casino_ledger/internal/logger"
	"casino_ledger/internal/metrics"
	"casino_ledger/internal/roulette"
)

func main() {
	cfg, envFound, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New("casino-ledger", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	if !envFound {
		log.Info("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(cfg.DBDriver, cfg.DBConnStr)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close(gdb)

	if err := account.Migrate(gdb); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	accountRepo := account.NewAccountRepositoryImpl(gdb, cfg.StoreTimeout)

	var cache leaderboard.Cache
	if cfg.RedisAddr != "" {
		rdb, err := leaderboard.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		defer rdb.Close()
		cache = leaderboard.NewRedisCache(rdb, cfg.LeaderboardCacheTTL)
	}

	ledgerService := ledger.NewService(accountRepo, log)
	wagerService := roulette.NewService(accountRepo, roulette.UniformDrawer{}, log)
	boardService := leaderboard.NewService(accountRepo, cache, log)

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := api.NewServer(ledgerService, wagerService, boardService, []byte(cfg.JWTSecret), log)

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := metrics.NewServer(cfg.MetricsPort, accountRepo.Ping)

	go func() {
		log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.Error(err))
		}
	}()

	go func() {
		log.Info("api listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("api shutdown", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics shutdown", zap.Error(err))
	}
}
