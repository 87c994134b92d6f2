package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dapurmanis/engine/internal/cache"
	"dapurmanis/engine/internal/config"
	"dapurmanis/engine/internal/hpp"
	"dapurmanis/engine/internal/httpapi"
	"dapurmanis/engine/internal/pricing"
	"dapurmanis/engine/internal/store"
	"dapurmanis/engine/internal/store/memory"
	pgstore "dapurmanis/engine/internal/store/postgres"
	"dapurmanis/engine/internal/workflow"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv: %v", err)
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("schema migration failed: %v", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Println("repository: postgres")
	} else {
		repo = memory.NewSeeded()
		log.Println("repository: in-memory")
	}

	pricingCache := cache.PricingCache(cache.NoopPricingCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisPricingCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
		} else {
			pricingCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("cache: redis")
		}
	} else {
		log.Println("cache: noop")
	}

	costs := hpp.NewCalculator(cfg.OverheadPercent, cfg.LaborPercent, cfg.PackagingPercent)
	pricingEngine := pricing.NewEngine(pricing.Config{
		MinimumProfitMargin: cfg.MinimumProfitMargin,
		DefaultProfitMargin: cfg.DefaultProfitMargin,
		FixedCostReference:  cfg.FixedCostReference,
	})
	engine := workflow.New(repo, costs, pricingEngine, pricingCache, workflow.Options{
		StrictReservations: cfg.StrictReservations,
		PricingTTL:         time.Duration(cfg.PricingTTLSeconds) * time.Second,
		DefaultActorID:     cfg.DefaultActorID,
	})
	api := httpapi.New(engine, pricingEngine, repo, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("workflow engine listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}
