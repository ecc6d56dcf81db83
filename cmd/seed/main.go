package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"exam-hub/internal/adapter"
	"exam-hub/internal/cache"
	"exam-hub/internal/config"
	"exam-hub/internal/database"
	"exam-hub/internal/logger"
	"exam-hub/internal/seed"
	"exam-hub/internal/service"

	"go.uber.org/zap"
)

const defaultSeedFile = "seed/initial.yaml"

func main() {
	seedFile := flag.String("file", defaultSeedFile, "YAML seed bundle to load")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	ctx := context.Background()

	log.Info("Loading seed bundle", zap.String("path", *seedFile))
	bundle, err := seed.LoadFile(*seedFile)
	if err != nil {
		log.Fatal("Failed to load seed bundle", zap.Error(err))
	}

	store, err := database.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open content store", zap.Error(err))
	}
	defer store.Close()

	auth, err := service.NewAuthService(store.Users, cfg.JWT)
	if err != nil {
		log.Fatal("Failed to create AuthService", zap.Error(err))
	}
	// Seeded writes bump the shared stats generation so the API drops cached stats.
	var stats *service.StatsCache
	if cfg.Redis.Address != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer client.Close()
		stats = service.NewStatsCache(adapter.NewRedisCacheAdapter(client), cfg.Cache.StatsTTL)
	}
	seeder := seed.NewSeeder(store, auth,
		service.NewSubjectService(store, stats),
		service.NewTopicService(store, stats),
		service.NewQuestionService(store, stats, cfg.Questions),
	)

	report, err := seeder.Apply(ctx, bundle)
	if err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
	log.Info("Seeding completed",
		zap.Bool("admin_created", report.AdminCreated),
		zap.Int("subjects_created", report.SubjectsCreated),
		zap.Int("subjects_skipped", report.SubjectsSkipped),
		zap.Int("topics_created", report.TopicsCreated),
		zap.Int("questions_created", report.QuestionsCreated),
	)
}
