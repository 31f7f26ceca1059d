package main

import (
	"context"
	"fmt"
	"log"

	"github.com/tanakrit/slipbook/internal/db"
)

func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	var users, entries, income, expense int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM users").Scan(&users); err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	err = pool.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE type = 'income'),
			count(*) FILTER (WHERE type = 'expense')
		FROM entries
	`).Scan(&entries, &income, &expense)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	var applied int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM schema_migrations").Scan(&applied); err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	fmt.Printf("Users: %d\n", users)
	fmt.Printf("Entries: %d (income %d / expense %d)\n", entries, income, expense)
	fmt.Printf("Migrations applied: %d\n", applied)
}
