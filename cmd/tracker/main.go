package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"shopledger/backend/internal/alert"
	"shopledger/backend/internal/clock"
	"shopledger/backend/internal/config"
	"shopledger/backend/internal/kv"
	"shopledger/backend/internal/kv/memory"
	kvpg "shopledger/backend/internal/kv/postgres"
	kvredis "shopledger/backend/internal/kv/redis"
	"shopledger/backend/internal/ledger"
	"shopledger/backend/internal/notify"
)

func main() {
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	initCtx, initCancel := context.WithTimeout(ctx, 10*time.Second)
	defer initCancel()

	var store kv.Store
	closers := make([]func() error, 0, 1)

	switch {
	case cfg.DatabaseURL != "":
		pg, err := kvpg.New(initCtx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		store = pg
		closers = append(closers, pg.Close)
		log.Println("store: postgres")
	case cfg.RedisAddr != "":
		rd := kvredis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rd.Ping(initCtx); err != nil {
			log.Fatalf("redis unavailable (%v) and REDIS_ADDR is set; refusing to start with in-memory fallback", err)
		}
		store = rd
		closers = append(closers, rd.Close)
		log.Println("store: redis")
	default:
		store = memory.New()
		log.Println("store: in-memory (data is lost on exit)")
	}

	clk := clock.System()
	notifier := notify.LogNotifier{}

	svc := ledger.New(store, clk, notifier)
	engine := alert.NewEngine(store, svc, notifier, clk, time.Duration(cfg.AlertIntervalMinutes)*time.Minute)
	svc.AttachAlerts(engine)

	log.Printf("retail tracker running, alert interval %dm", cfg.AlertIntervalMinutes)
	engine.Run(ctx)

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("tracker stopped")
}
