// Package bootstrap seeds the database as an explicit deployment step. It
// is only reachable through the "bootstrap" CLI command and refuses to run
// unless enabled by configuration; the server itself never seeds anything
// on startup.
package bootstrap

import (
	"errors"
	"fmt"
	"log"

	"github.com/inkwell-hq/inkwell/internal/auth"
	"github.com/inkwell-hq/inkwell/internal/config"
	"github.com/inkwell-hq/inkwell/internal/database"
	"github.com/inkwell-hq/inkwell/internal/database/genres"
	"github.com/inkwell-hq/inkwell/internal/database/users"
	"github.com/inkwell-hq/inkwell/internal/entities"
	"gorm.io/gorm"
)

// ErrDisabled is returned when the seed step has not been enabled by
// configuration.
var ErrDisabled = errors.New("bootstrap is disabled; set BOOTSTRAP_ENABLED=true to run it")

var defaultGenres = []string{
	"Fiction",
	"Non-fiction",
	"Science Fiction",
	"Fantasy",
	"Mystery",
	"Biography",
	"History",
	"Poetry",
	"Children",
	"Technology",
}

// Result summarizes what a seed run changed.
type Result struct {
	GenresCreated int
	AdminCreated  bool
}

// Run migrates the schema and seeds default genres plus the configured
// admin account. Idempotent: existing rows are left untouched, so it can be
// part of every deployment.
func Run(db *database.Database, cfg config.Bootstrap, bcryptCost int) (*Result, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	if err := db.Migrate(); err != nil {
		return nil, err
	}

	result := &Result{}

	genreRepo := genres.NewRepository(db.DB)
	existing, err := genreRepo.GetAll()
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, genre := range existing {
		known[genre.Name] = true
	}
	for _, name := range defaultGenres {
		if known[name] {
			continue
		}
		if _, err := genreRepo.GetOrCreate(name); err != nil {
			return nil, fmt.Errorf("seed genre %q: %w", name, err)
		}
		result.GenresCreated++
	}

	if cfg.AdminEmail != "" {
		created, err := seedAdmin(db.DB, cfg, bcryptCost)
		if err != nil {
			return nil, err
		}
		result.AdminCreated = created
	} else {
		has, err := users.NewRepository(db.DB).HasUsers()
		if err != nil {
			return nil, err
		}
		if !has {
			log.Printf("No accounts exist yet; set BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD to seed an admin")
		}
	}

	log.Printf("Bootstrap complete: %d genre(s) created, admin created: %v",
		result.GenresCreated, result.AdminCreated)
	return result, nil
}

func seedAdmin(db *gorm.DB, cfg config.Bootstrap, bcryptCost int) (bool, error) {
	if cfg.AdminPassword == "" {
		return false, errors.New("BOOTSTRAP_ADMIN_PASSWORD is required when BOOTSTRAP_ADMIN_EMAIL is set")
	}

	userRepo := users.NewRepository(db)
	if _, err := userRepo.GetByEmail(cfg.AdminEmail); err == nil {
		return false, nil // already seeded
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword, bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &entities.User{
		FullName:     cfg.AdminName,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
	}
	if err := userRepo.Create(admin); err != nil {
		return false, fmt.Errorf("create admin user: %w", err)
	}
	return true, nil
}
