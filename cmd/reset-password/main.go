package main

import (
	"flag"
	"log"

	"go-pharma-store/internal/model"
	"go-pharma-store/pkg/database"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "admin@example.com", "account to reset")
	password := flag.String("password", "admin123", "new password")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB()

	// 3. Find the account
	var user model.User
	if err := db.Where("email = ?", *email).First(&user).Error; err != nil {
		log.Fatalf("User %s not found in database: %v", *email, err)
	}

	// 4. Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	// 5. Update and invalidate the current session
	updates := map[string]interface{}{
		"password":      string(hashedPassword),
		"token_version": "",
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		log.Fatalf("Failed to update password in DB: %v", err)
	}

	log.Printf("Password for %s has been reset", *email)
}
