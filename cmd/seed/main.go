// seed inserts a verified test user into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/ErlanBelekov/swinggity/internal/domain"
	"github.com/ErlanBelekov/swinggity/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/swinggity/internal/password"
)

const (
	seedEmail    = "seed@swinggity.local"
	seedPassword = "Seed-Pass1!"
)

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL, postgres.ToolPool)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	hasher, err := password.NewBcrypt(password.DefaultCost)
	if err != nil {
		log.Fatalf("hasher: %v", err)
	}
	hash, err := hasher.Hash(seedPassword)
	if err != nil {
		log.Fatalf("hash: %v", err)
	}

	users := postgres.NewUserRepository(pool)
	user, err := users.Create(ctx, &domain.User{
		Email:        seedEmail,
		PasswordHash: hash,
		FirstName:    "Seed",
		LastName:     "User",
		IsVerified:   true,
	})
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		if user, err = users.FindByEmail(ctx, seedEmail); err != nil {
			log.Fatalf("find existing seed user: %v", err)
		}
		fmt.Println("Seed user already exists")
	case err != nil:
		log.Fatalf("create user: %v", err)
	default:
		fmt.Println("Seed complete")
	}

	fmt.Println()
	fmt.Printf("  User:     %s\n", seedEmail)
	fmt.Printf("  Password: %s\n", seedPassword)
	fmt.Printf("  User ID:  %s\n", user.ID)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: get a CSRF token (keeps the cookie in jar.txt):")
	fmt.Println()
	fmt.Println("    curl -s -c jar.txt http://localhost:5000/api/csrf-token")
	fmt.Println("    # → {\"csrfToken\":\"...\"}")
	fmt.Println()
	fmt.Println("  Step 2: log in:")
	fmt.Println()
	fmt.Println("    curl -s -b jar.txt -c jar.txt -X POST http://localhost:5000/api/auth/login \\")
	fmt.Println("      -H 'Content-Type: application/json' -H 'X-CSRF-Token: CSRF_TOKEN' \\")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println()
	fmt.Println("  Step 3: check the session:")
	fmt.Println()
	fmt.Println("    curl -s -b jar.txt http://localhost:5000/api/auth/check-auth")
}
