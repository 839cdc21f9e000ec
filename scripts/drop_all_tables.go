package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Drops the namespace tables of one environment from a Postgres database.
func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	prefix, ok := os.LookupEnv("TABLE_PREFIX")
	if !ok {
		env := os.Getenv("ENVIRONMENT")
		if env == "" {
			env = "dev"
		}
		prefix = env + "_"
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	// files reference folders, drop them first
	dropSQL := fmt.Sprintf(`
		DROP TABLE IF EXISTS %sfiles CASCADE;
		DROP TABLE IF EXISTS %sfolders CASCADE;
	`, prefix, prefix)

	if _, err := db.Exec(dropSQL); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	fmt.Printf("All tables dropped successfully (prefix: %s)\n", prefix)
}
