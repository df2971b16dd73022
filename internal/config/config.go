package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Auth
		Covers
		Maintenance
		Bootstrap
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Driver      string // "sqlite" or "postgres"
		Path        string // sqlite file path
		DSN         string // postgres DSN
		AutoMigrate bool   // run migrations on "serve"; bootstrap always migrates
	}
	Auth struct {
		TokenKey    string // 64 hex chars; auto-generated if empty
		TokenExpiry time.Duration
		BcryptCost  int
	}
	Covers struct {
		Backend     string // "local" or "s3"
		Dir         string // local backend storage directory
		S3Bucket    string
		S3Region    string
		S3Endpoint  string
		S3AccessKey string
		S3SecretKey string
	}
	Maintenance struct {
		CoverSweepSchedule string // cron format; empty disables the sweep
	}
	Bootstrap struct {
		Enabled       bool
		AdminName     string
		AdminEmail    string
		AdminPassword string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_auto_migrate", false)

	// Auth defaults
	v.SetDefault("auth_token_key", "") // Auto-generated if empty
	v.SetDefault("auth_token_expiry", "24h")
	v.SetDefault("auth_bcrypt_cost", 12)

	// Cover storage defaults
	v.SetDefault("covers_backend", "local")
	v.SetDefault("covers_dir", "./covers")
	v.SetDefault("covers_s3_bucket", "")
	v.SetDefault("covers_s3_region", "us-east-1")
	v.SetDefault("covers_s3_endpoint", "")
	v.SetDefault("covers_s3_access_key", "")
	v.SetDefault("covers_s3_secret_key", "")

	// Maintenance defaults
	v.SetDefault("cover_sweep_schedule", "0 * * * *") // Hourly at :00

	// Bootstrap defaults: the seed step must be asked for explicitly
	v.SetDefault("bootstrap_enabled", false)
	v.SetDefault("bootstrap_admin_name", "Administrator")
	v.SetDefault("bootstrap_admin_email", "")
	v.SetDefault("bootstrap_admin_password", "")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Driver:      v.GetString("DATABASE_DRIVER"),
			Path:        v.GetString("DATABASE_PATH"),
			DSN:         v.GetString("DATABASE_DSN"),
			AutoMigrate: v.GetBool("DATABASE_AUTO_MIGRATE"),
		},
		Auth: Auth{
			TokenKey:    v.GetString("AUTH_TOKEN_KEY"),
			TokenExpiry: v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:  v.GetInt("AUTH_BCRYPT_COST"),
		},
		Covers: Covers{
			Backend:     v.GetString("COVERS_BACKEND"),
			Dir:         v.GetString("COVERS_DIR"),
			S3Bucket:    v.GetString("COVERS_S3_BUCKET"),
			S3Region:    v.GetString("COVERS_S3_REGION"),
			S3Endpoint:  v.GetString("COVERS_S3_ENDPOINT"),
			S3AccessKey: v.GetString("COVERS_S3_ACCESS_KEY"),
			S3SecretKey: v.GetString("COVERS_S3_SECRET_KEY"),
		},
		Maintenance: Maintenance{
			CoverSweepSchedule: v.GetString("COVER_SWEEP_SCHEDULE"),
		},
		Bootstrap: Bootstrap{
			Enabled:       v.GetBool("BOOTSTRAP_ENABLED"),
			AdminName:     v.GetString("BOOTSTRAP_ADMIN_NAME"),
			AdminEmail:    v.GetString("BOOTSTRAP_ADMIN_EMAIL"),
			AdminPassword: v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
