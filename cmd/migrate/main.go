// Command migrate applies the database schema for the backend.
package main

import (
	"context"
	"flag"
	"log"

	"mingle/internal/config"
	"mingle/internal/database"
)

func main() {
	rollback := flag.Int("rollback", 0, "roll back the migration with this version instead of migrating")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	if *rollback > 0 {
		if err := database.RollbackMigration(ctx, db, *rollback); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		log.Printf("Rolled back migration %06d", *rollback)
		return
	}

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations applied")
}
