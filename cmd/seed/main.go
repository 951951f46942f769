package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/khidmah/backend/internal/config"
	"github.com/khidmah/backend/internal/database"
	"github.com/khidmah/backend/internal/logger"
	"github.com/khidmah/backend/internal/models"
	"github.com/khidmah/backend/internal/repository"
)

// Seeds the admin account. Safe to run repeatedly; exits cleanly when an
// admin already exists.
func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	zlog := logger.New(cfg.App.Env)
	defer func() { _ = zlog.Sync() }()

	db, client, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, zlog)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)
	if _, err := users.FindAdmin(ctx); err == nil {
		zlog.Info("admin already exists, skipping seed")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Fatalf("check admin: %v", err)
	}

	email := cfg.Admin.Email
	password := cfg.Admin.Password
	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		log.Fatal("ADMIN_PASSWORD is required to seed the admin account")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.PasswordHashCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	admin := &models.User{
		Email:         email,
		Password:      string(hashed),
		IsAdmin:       true,
		Location:      models.DefaultLocation(),
		AccountStatus: models.StatusActive,
		LastActive:    now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := users.Insert(ctx, admin); err != nil {
		log.Fatalf("insert admin: %v", err)
	}
	zlog.Info("admin user created successfully")
}
