package main

import (
	"fmt"
	"log"
	"time"

	"game-lab/internal"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	DebugPort      int    `env:"DEBUG_PORT,default=8090"`
}

// The viewer serves the inspector over a badger log without starting the engine.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// BypassLockGuard allows opening while the server holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	stats := func() any {
		return map[string]any{
			"status": "Viewer Mode (Read-Only)",
			"time":   time.Now().Format(time.RFC822),
		}
	}

	server := internal.NewDebugServer(db, config.DebugPort, internal.LogRowMapper, stats, nil)
	fmt.Printf("Viewer started at http://localhost:%d/inspect\n", config.DebugPort)
	if err := server.ListenAndServe(); err != nil {
		log.Printf("Viewer stopped: %v", err)
	}
}
