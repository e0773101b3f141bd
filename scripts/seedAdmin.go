package main

import (
	"log"
	"os"

	"govlearn/config"
	"govlearn/database"
	"govlearn/models"

	"golang.org/x/crypto/bcrypt"
)

// Seeds the first ADMIN account. Run once after the database is up:
//
//	ADMIN_EMAIL=admin@gov.example ADMIN_PASSWORD=... go run ./scripts
func main() {
	config.LoadConfig()
	database.ConnectDb()

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	db := database.Database.Db

	var existing models.User
	if err := db.Where("email = ? AND is_deleted = ?", email, false).First(&existing).Error; err == nil {
		log.Printf("Admin %s already exists, nothing to do", email)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), config.AppConfig.SaltRound)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := models.User{
		Name:     "Administrator",
		Email:    email,
		Password: string(hashed),
		Role:     "ADMIN",
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	log.Printf("Admin %s created", email)
}
