package main

import (
	"log"
	"os"

	"churnguard-be/internal/model"
	"churnguard-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions (things AutoMigrate does not handle)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models (The Core Task)
	log.Println("Step 2: Running AutoMigrate for 12 Tables...")

	models := []interface{}{
		&model.User{},
		&model.BusinessProfile{},
		&model.CustomerSnapshot{},
		&model.SubscriptionSnapshot{},
		&model.InvoiceSnapshot{},
		&model.ProcessedEvent{},
		&model.ChurnRiskEvent{},
		&model.ChurnRiskSnapshot{},
		&model.RecoveryCase{},
		&model.RecoveryAction{},
		&model.CancelSession{},
		&model.SavedCustomerRecord{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}

	log.Println("Migration completed successfully.")
}
