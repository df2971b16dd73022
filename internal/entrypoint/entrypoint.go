package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-hq/inkwell/internal/auth"
	"github.com/inkwell-hq/inkwell/internal/config"
	"github.com/inkwell-hq/inkwell/internal/covers"
	"github.com/inkwell-hq/inkwell/internal/database"
	"github.com/inkwell-hq/inkwell/internal/database/books"
	http_controllers "github.com/inkwell-hq/inkwell/internal/http"
	"github.com/inkwell-hq/inkwell/internal/maintenance"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown signal received, waiting up to %v", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the full service together and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Inkwell v%s", version)

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Token key: use the configured one, or generate a throwaway key.
	tokenKey := cfg.Auth.TokenKey
	if tokenKey == "" {
		tokenKey, err = auth.GenerateKey()
		if err != nil {
			log.Fatalf("Failed to generate token key: %v", err)
		}
		log.Printf("Generated token key; issued tokens will not survive a restart (set AUTH_TOKEN_KEY to persist)")
	}
	tokens, err := auth.NewTokenService(tokenKey, cfg.Auth.TokenExpiry)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	var (
		coverStorage covers.Storage
		coversDir    string
	)
	switch cfg.Covers.Backend {
	case "s3":
		coverStorage, err = covers.NewS3Storage(covers.S3Config{
			Bucket:    cfg.Covers.S3Bucket,
			Region:    cfg.Covers.S3Region,
			Endpoint:  cfg.Covers.S3Endpoint,
			AccessKey: cfg.Covers.S3AccessKey,
			SecretKey: cfg.Covers.S3SecretKey,
		})
		if err != nil {
			log.Fatalf("Failed to initialize S3 cover storage: %v", err)
		}
		log.Printf("Cover storage: s3 bucket %s", cfg.Covers.S3Bucket)
	case "local", "":
		local, err := covers.NewLocalStorage(cfg.Covers.Dir)
		if err != nil {
			log.Fatalf("Failed to initialize cover storage: %v", err)
		}
		coverStorage = local
		coversDir = local.Dir()
		log.Printf("Cover storage: local directory %s", coversDir)
	default:
		log.Fatalf("Unknown covers backend %q", cfg.Covers.Backend)
	}

	var sweeper *maintenance.Sweeper
	if cfg.Maintenance.CoverSweepSchedule != "" {
		sweeper = maintenance.NewSweeper(coverStorage, books.NewRepository(db.DB))
		if err := sweeper.Start(cfg.Maintenance.CoverSweepSchedule); err != nil {
			log.Fatalf("Failed to schedule cover sweep: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:   db,
		Tokens:     tokens,
		Covers:     coverStorage,
		CoversDir:  coversDir,
		BcryptCost: cfg.Auth.BcryptCost,
		Version:    version,
	})

	onShutdown := func(ctx context.Context) {
		if sweeper != nil {
			sweeper.Stop()
		}
	}

	Serve(router, cfg, onShutdown)
}
