package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/hexclash/backend/internal/admin"
	"github.com/hexclash/backend/internal/config"
	"github.com/hexclash/backend/internal/database"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Seed operator account
	username := os.Getenv("OPERATOR_USERNAME")
	if username == "" {
		username = "operator"
		log.Printf("Using default operator username: %s", username)
	}

	password := os.Getenv("OPERATOR_PASSWORD")
	if password == "" {
		password = "change-me-in-production"
		log.Printf("WARNING: Using default operator password. Set OPERATOR_PASSWORD env var in production!")
	}

	role := os.Getenv("OPERATOR_ROLE")
	if role == "" {
		role = admin.RoleAdmin
	}

	if err := admin.CreateOperator(db, username, password, role); err != nil {
		log.Fatalf("Failed to create operator account: %v", err)
	}

	log.Printf("✓ Operator account created/updated successfully")
	log.Printf("  Username: %s", username)
	log.Printf("  Role: %s", role)
	log.Println("\nYou can now login via POST /api/v1/auth/login")
}
