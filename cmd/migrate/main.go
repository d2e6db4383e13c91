package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"stock-empire/internal/repository"
	"stock-empire/pkg/database"
)

const usage = "Usage: go run ./cmd/migrate [up|drop|status|prune <retention-days>]"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Get database URL
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	// Get command
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	// Connect to database
	ctx := context.Background()
	db, err := database.NewPostgresDB(ctx, dbURL, "")
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ Schema applied successfully")

	case "drop":
		if err := dropTables(ctx, db); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "status":
		count, err := repository.NewSnapshotRepository(db).GetSnapshotCount(ctx)
		if err != nil {
			log.Fatalf("Failed to count snapshots: %v", err)
		}
		fmt.Printf("ledger_snapshots: %d rows\n", count)

	case "prune":
		days, err := retentionArg(os.Args[2:])
		if err != nil {
			log.Fatal(err)
		}
		deleted, err := repository.NewSnapshotRepository(db).DeleteOldSnapshots(ctx, days)
		if err != nil {
			log.Fatalf("Failed to prune snapshots: %v", err)
		}
		fmt.Printf("✅ Deleted %d snapshots older than %d days\n", deleted, days)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, db *database.PostgresDB) error {
	queries := []string{
		`DROP TABLE IF EXISTS ledger_snapshots CASCADE`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Dropped: %s\n", query)
	}

	return nil
}

func retentionArg(args []string) (int, error) {
	if len(args) == 0 {
		return 30, nil
	}
	days, err := strconv.Atoi(args[0])
	if err != nil || days < 1 {
		return 0, fmt.Errorf("retention days must be a positive integer, got %q", args[0])
	}
	return days, nil
}
