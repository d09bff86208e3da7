package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Skotchmaster/inventory/internal/config"
	pkgdb "github.com/Skotchmaster/inventory/pkg/db"
)

const usage = `usage: migrate [-steps N] <up|down|version>`

func main() {
	steps := flag.Int("steps", 1, "number of migrations to roll back with down")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	switch flag.Arg(0) {
	case "up":
		if err := pkgdb.RunMigrations(url); err != nil {
			log.Fatalf("migrate up: %v", err)
		}
		log.Println("migrations applied")
	case "down":
		if err := pkgdb.RollbackMigrations(url, *steps); err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		log.Printf("rolled back %d migration(s)", *steps)
	case "version":
		v, dirty, err := pkgdb.MigrationVersion(url)
		if err != nil {
			log.Fatalf("migrate version: %v", err)
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
	default:
		flag.Usage()
		os.Exit(2)
	}
}
