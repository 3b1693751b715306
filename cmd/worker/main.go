package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/adpulse/internal/archive"
	"github.com/ignite/adpulse/internal/cache"
	"github.com/ignite/adpulse/internal/config"
	"github.com/ignite/adpulse/internal/observability"
	"github.com/ignite/adpulse/internal/repository/postgres"
	"github.com/ignite/adpulse/internal/worker"
)

func main() {
	log.Println("Starting adpulse classification worker...")

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadFromEnv(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to ping database: %v", err)
	}
	cancel()
	log.Println("Connected to database")

	metricsRepo := postgres.NewMetricsRepo(db)
	classRepo := postgres.NewClassificationRepo(db)
	findingRepo := postgres.NewFindingRepo(db)
	configStore := postgres.NewEngineConfigStore(db)

	// Seed default thresholds for any client that has never been tuned.
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if ids, err := metricsRepo.ListClientIDs(seedCtx); err == nil {
		configStore.SeedDefaults(seedCtx, ids)
	} else {
		log.Printf("Failed to list clients for seeding: %v", err)
	}
	seedCancel()

	runner := worker.NewRunner(metricsRepo, classRepo, findingRepo, configStore)
	runner.SetInterval(cfg.WorkerInterval())
	runner.SetMetrics(observability.NewMetrics(prometheus.DefaultRegisterer))

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		runner.SetResultCache(cache.NewResultCache(rdb, cfg.RedisTTL()))
		log.Printf("Result cache enabled at %s", cfg.Redis.Addr)
	}
	if cfg.Archive.Enabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Archive.S3Region))
		if err != nil {
			log.Fatalf("Failed to load AWS config: %v", err)
		}
		runner.SetArchive(archive.New(s3.NewFromConfig(awsCfg), cfg.Archive.S3Bucket))
		log.Printf("Run archive enabled, bucket %s", cfg.Archive.S3Bucket)
	}

	if err := runner.Start(); err != nil {
		log.Fatalf("Failed to start runner: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")
	runner.Stop()
	log.Println("Worker stopped")
}
