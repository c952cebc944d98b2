package main

import (
	"os"

	"github.com/RobertDurfee/Gerrymandering/internal/config"
	"github.com/RobertDurfee/Gerrymandering/internal/db"
	"github.com/RobertDurfee/Gerrymandering/internal/geography"
	"github.com/RobertDurfee/Gerrymandering/internal/logger"
	"github.com/joho/godotenv"
)

// migrate creates the geo schema, its tables and indexes. The API never
// writes to the database, so this runs out of band before ingest.
func main() {
	_ = godotenv.Load(".env.local")
	log := logger.Setup()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	conn, err := db.Connect(cfg.Database)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close(conn)

	if err := geography.Migrate(conn); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("geo schema ready")
}
