package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	log "github.com/sirupsen/logrus"

	"github.com/foxxcyber/hisab-kitab/internal/config"
	"github.com/foxxcyber/hisab-kitab/internal/database"
	"github.com/foxxcyber/hisab-kitab/internal/models"
)

func main() {
	// Load .env so DATABASE_URL is picked up the same way the server does
	godotenv.Load()
	cfg := config.Load()

	fs := ff.NewFlagSet("hisab-kitab-seeder")
	var (
		email       = fs.StringLong("email", "", "Email of the user to seed default categories for")
		databaseURL = fs.StringLong("database-url", cfg.DatabaseURL, "PostgreSQL connection string")
		dryRun      = fs.BoolLong("dry-run", "Preview changes without writing to database")
		migrate     = fs.BoolLong("migrate", "Run database migrations before seeding")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("HISABKITAB_SEEDER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *email == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --email is required")
		os.Exit(1)
	}

	db, err := database.Connect(*databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if *migrate {
		if err := database.RunMigrations(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	user, err := db.GetUserByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("Failed to find user %s: %v", *email, err)
	}

	if *dryRun {
		// Empty range: only names matter here, not spend
		now := time.Now()
		existing, err := db.ListCategories(ctx, user.ID, now, now)
		if err != nil {
			log.Fatalf("Failed to list categories: %v", err)
		}
		have := make(map[string]bool, len(existing))
		for _, c := range existing {
			have[c.Name] = true
		}

		log.Printf("[DRY RUN] Default categories for %s (user %d):", user.Email, user.ID)
		for _, c := range models.DefaultCategories {
			status := "create"
			if have[c.Name] {
				status = "exists, skip"
			}
			log.Printf("  %-14s %-8s %s", c.Name, c.Type, status)
		}
		return
	}

	created, err := db.CreateDefaultCategories(ctx, user.ID, models.DefaultCategories)
	if err != nil {
		log.Fatalf("Failed to create categories: %v", err)
	}

	log.WithFields(log.Fields{
		"user":    user.Email,
		"created": created,
		"skipped": len(models.DefaultCategories) - created,
	}).Info("Seeding complete")
}
