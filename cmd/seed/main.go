// Command seed loads the default temple set into an empty database.
package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"ms-edarshan/internal/apperr"
	"ms-edarshan/internal/config"
	"ms-edarshan/internal/database"
	"ms-edarshan/internal/database/migrations"
	"ms-edarshan/internal/kafka"
	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/sse"
	templedb "ms-edarshan/internal/temples/db"
	templeservice "ms-edarshan/internal/temples/service"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(logger.Options{Service: "edarshan-seed"})
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal("CONFIG", err.Error())
	}

	ctx := context.Background()
	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if err := migrations.Prepare(ctx, cfg.Database, bunDB, log); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to prepare schema: %v", err))
	}

	svc := templeservice.NewTempleService(&templedb.DB{Bun: bunDB},
		sse.LocalBroadcaster{Emitter: sse.NewVisitorEventEmitter()}, kafka.NoopPublisher{}, log)

	temples, err := svc.Seed(ctx, templeservice.DefaultTemples())
	if apperr.Is(err, apperr.KindValidation) {
		log.Info("SEED", "Temples already exist, nothing to do")
		return
	}
	if err != nil {
		log.Fatal("SEED", err.Error())
	}

	for _, t := range temples {
		log.Info("SEED", fmt.Sprintf("%s  %s", t.ID, t.Name))
	}
	log.Info("SEED", fmt.Sprintf("✅ Seeded %d temples successfully", len(temples)))
}
