package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"homesite/internal/config"
	"homesite/internal/db"
	"homesite/internal/model"
	"homesite/internal/repository"
)

const bcryptCost = 10

// SeedUserData is one entry of the demo users file.
type SeedUserData struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	AboutMe  string `json:"about_me"`
}

func main() {
	usersFile := flag.String("users", "users.json", "path to the demo users JSON file")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	seedUsers, err := loadUsersFile(*usersFile)
	if err != nil {
		log.Fatalf("Failed to load users file: %v", err)
	}
	log.Printf("Loaded %d users from %s", len(seedUsers), *usersFile)

	userRepo := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	created, updated, err := seedUsersIntoDB(ctx, userRepo, seedUsers)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users updated: %d", updated)
}

// loadUsersFile reads and parses the demo users JSON file.
func loadUsersFile(path string) ([]SeedUserData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var users []SeedUserData
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return users, nil
}

// seedUsersIntoDB upserts the demo users by email, hashing passwords the same
// way registration does.
func seedUsersIntoDB(ctx context.Context, repo repository.UserRepository, users []SeedUserData) (created int, updated int, err error) {
	for _, item := range users {
		if item.Username == "" || item.Email == "" || item.Password == "" {
			log.Printf("Skipping incomplete entry %q", item.Username)
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(item.Password), bcryptCost)
		if err != nil {
			return created, updated, fmt.Errorf("hash password for %s: %w", item.Email, err)
		}

		existing, err := repo.FindByEmail(ctx, item.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, updated, fmt.Errorf("check user %s: %w", item.Email, err)
		}

		if existing != nil {
			existing.Username = item.Username
			existing.PasswordHash = string(hashed)
			existing.AboutMe = item.AboutMe
			if err := repo.Update(ctx, existing); err != nil {
				return created, updated, fmt.Errorf("update user %s: %w", item.Email, err)
			}
			updated++
			continue
		}

		user := &model.User{
			Username:     item.Username,
			Email:        item.Email,
			PasswordHash: string(hashed),
			AboutMe:      item.AboutMe,
			ImageFile:    model.DefaultImageFile,
			LastSeen:     time.Now(),
		}
		if err := repo.Create(ctx, user); err != nil {
			return created, updated, fmt.Errorf("create user %s: %w", item.Email, err)
		}
		created++
	}

	return created, updated, nil
}
