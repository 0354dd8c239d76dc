package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/cheikhmama/soundage/internal/config"
)

// Applies every *up.sql file in the migrations directory, in name order. An
// optional argument restricts the run to migrations whose name contains it.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var only string
	if len(os.Args) > 1 {
		only = os.Args[1]
	}

	cfg := config.Load()
	db, err := sql.Open("postgres", cfg.DBConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	basePath := filepath.Join(".", "internal", "adapters", "repository", "postgres", "migrations")
	entries, err := os.ReadDir(basePath)
	if err != nil {
		log.Fatalf("Failed to read migrations directory: %v", err)
	}

	applied := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}
		if only != "" && !strings.Contains(entry.Name(), only) {
			continue
		}

		content, err := os.ReadFile(filepath.Join(basePath, entry.Name()))
		if err != nil {
			log.Fatalf("Failed to read migration %s: %v", entry.Name(), err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			log.Fatalf("Failed to execute migration %s: %v", entry.Name(), err)
		}
		fmt.Printf("Applied %s\n", entry.Name())
		applied++
	}

	if applied == 0 {
		log.Fatal("no matching migration files found")
	}
}
