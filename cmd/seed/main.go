package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/hostel-api/internal/config"
	"github.com/sjperalta/hostel-api/internal/database"
	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/sjperalta/hostel-api/internal/repository"
	"github.com/sjperalta/hostel-api/internal/services"
	"github.com/sjperalta/hostel-api/pkg/logger"
)

// Seeds the first admin account and, with -demo, two dormitories of beds.
func main() {
	demo := flag.Bool("demo", false, "also create demo dormitories and beds")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup(cfg.Environment)

	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()
	repos := repository.NewRepositories(db)
	audit := services.NewAuditService(repos.Audit, nil)

	auth := services.NewAuthService(repos.User, cfg)
	admin, err := auth.CreateUser(ctx, services.CreateUserInput{
		Email:    email,
		Password: password,
		FullName: "Administrator",
		Role:     models.RoleAdmin,
	})
	switch {
	case errors.Is(err, services.ErrDuplicate):
		log.Printf("Admin %s already exists", email)
	case err != nil:
		log.Fatalf("Failed to create admin: %v", err)
	default:
		log.Printf("Created admin %s", admin.Email)
	}

	if !*demo {
		return
	}

	beds := services.NewBedService(repos, audit, cfg)
	actor := services.Actor{IP: "seed"}
	layout := []struct {
		dorm  string
		beds  []string
		kind  string
		price string
	}{
		{"Dorm A", []string{"A1", "A2", "A3", "A4", "A5", "A6"}, "Bunk", "25.00"},
		{"Private Rooms", []string{"P1", "P2"}, "Double", "75.00"},
	}

	for _, l := range layout {
		capacity := len(l.beds)
		dorm, err := beds.CreateDormitory(ctx, services.CreateDormitoryInput{Name: l.dorm, Capacity: &capacity}, actor)
		if err != nil {
			log.Fatalf("Failed to create dormitory %s: %v", l.dorm, err)
		}
		for _, number := range l.beds {
			_, err := beds.CreateBed(ctx, services.CreateBedInput{
				DormitoryID: dorm.ID,
				BedNumber:   number,
				BedType:     l.kind,
				Price:       decimal.RequireFromString(l.price),
			}, actor)
			if err != nil {
				log.Fatalf("Failed to create bed %s: %v", number, err)
			}
		}
		log.Printf("Created %s with %d beds", l.dorm, capacity)
	}
}
