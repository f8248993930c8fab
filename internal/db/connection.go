package db

import (
	"fmt"
	"log"
	"os"

	"github.com/logvault/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect initializes the database connection for the Postgres store
// backend
func Connect() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Reduce logging to avoid issues
	})

	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("✅ Database connected successfully")
}

// AutoMigrate runs database migrations for the storage tables
func AutoMigrate() {
	err := DB.AutoMigrate(&models.StoredFolder{})
	if err != nil {
		log.Printf("Folder migration failed: %v", err)
		return
	}
	log.Println("✅ Folders table migrated successfully")

	err = DB.AutoMigrate(&models.StoredBlob{})
	if err != nil {
		log.Printf("Blob migration failed: %v", err)
		return
	}
	log.Println("✅ Blobs table migrated successfully")
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
