// File: cmd/seed/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"webharbour/internal/config"
	"webharbour/internal/domain"
	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/repository"
	pg "webharbour/internal/infra/db/postgres"
)

func main() {
	// ---- Config ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	adminEmail := flag.String("admin-email", "admin@webharbour.local", "initial admin account email")
	adminPassword := flag.String("admin-password", "", "initial admin account password (required on first run)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	userRepo := pg.NewUserRepo(pool)
	categoryRepo := pg.NewCategoryRepo(pool)

	// ---- Categories ----
	seed := []struct {
		Name string
		Slug string
		Type model.ProductCategory
		Icon string
	}{
		{"Apps", "apps", model.CategoryApp, "grid"},
		{"Games", "games", model.CategoryGame, "gamepad"},
		{"Software", "software", model.CategorySoftware, "cpu"},
		{"PDFs & Books", "pdfs", model.CategoryPDF, "book"},
		{"Movies", "movies", model.CategoryMovie, "film"},
	}
	for i, s := range seed {
		c := &model.Category{
			ID:        uuid.NewString(),
			Name:      s.Name,
			Slug:      s.Slug,
			Type:      s.Type,
			Icon:      s.Icon,
			IsActive:  true,
			Order:     i,
			CreatedAt: time.Now(),
		}
		if err := categoryRepo.Save(ctx, repository.NoTX, c); err != nil {
			log.Fatalf("seed category %s: %v", s.Slug, err)
		}
	}
	fmt.Printf("%d categories in place\n", len(seed))

	// ---- Admin account ----
	if _, err := userRepo.FindByEmail(ctx, repository.NoTX, *adminEmail); err == nil {
		fmt.Println("admin account already present. No changes.")
		return
	}
	if *adminPassword == "" {
		log.Fatal("no admin account found: -admin-password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash admin password: %v", err)
	}
	admin, err := model.NewUser("", "admin", *adminEmail, string(hash), model.RoleAdmin)
	if err != nil {
		log.Fatalf("build admin user: %v", err)
	}
	if err := userRepo.Save(ctx, repository.NoTX, admin); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			fmt.Println("admin account already present. No changes.")
			return
		}
		log.Fatalf("save admin user: %v", err)
	}
	fmt.Printf("admin account created: %s\n", *adminEmail)
}
