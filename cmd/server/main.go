package main

import (
	"context"
	"log"
	"os"

	"github.com/tanakrit/slipbook/internal/ai"
	"github.com/tanakrit/slipbook/internal/api"
	"github.com/tanakrit/slipbook/internal/db"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	gemini := ai.NewGeminiClient(os.Getenv("GEMINI_BASE_URL"), os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))

	srv, err := api.NewServer(pool, gemini)
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}

	log.Printf("Server starting on port %s...", port)
	if err := srv.Start(port); err != nil {
		log.Fatal(err)
	}
}
