// Command migrate applies or rolls back the embedded Postgres migrations.
//
//	migrate up          # latest version (default)
//	migrate down        # roll everything back
//	migrate goto 2      # move to version 2
//	migrate version     # print the current version
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"ms-edarshan/internal/config"
	"ms-edarshan/internal/database/migrations"
	"ms-edarshan/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(logger.Options{Service: "edarshan-migrate"})
	defer log.Close()

	if cfg.Database.Driver != "postgres" {
		log.Fatal("CONFIG", fmt.Sprintf("migrations target postgres, DATABASE_DRIVER is %q", cfg.Database.Driver))
	}

	runner := migrations.NewRunner(cfg.Database.DSN, log)
	defer func() {
		if err := runner.Close(); err != nil {
			log.Warn("DATABASE", err.Error())
		}
	}()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var err error
	switch command {
	case "up":
		err = runner.RunMigrations()
	case "down":
		err = runner.MigrateDown()
	case "goto":
		if len(os.Args) < 3 {
			log.Fatal("MIGRATE", "usage: migrate goto <version>")
		}
		version, parseErr := strconv.ParseUint(os.Args[2], 10, 32)
		if parseErr != nil {
			log.Fatal("MIGRATE", fmt.Sprintf("invalid version %q", os.Args[2]))
		}
		err = runner.MigrateTo(uint(version))
	case "version":
	default:
		log.Fatal("MIGRATE", fmt.Sprintf("unknown command %q (want up, down, goto or version)", command))
	}
	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}

	version, dirty, err := runner.Version()
	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}
	log.Info("MIGRATE", fmt.Sprintf("schema version %d (dirty: %t)", version, dirty))
}
