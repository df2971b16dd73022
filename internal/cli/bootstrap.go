package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/inkwell-hq/inkwell/internal/bootstrap"
	"github.com/inkwell-hq/inkwell/internal/config"
	"github.com/inkwell-hq/inkwell/internal/database"
)

// BootstrapCommand runs the idempotent deployment seed: schema migration,
// default genres and the configured admin account.
type BootstrapCommand struct {
	Verbose bool
}

// NewBootstrapCommand creates a new BootstrapCommand.
func NewBootstrapCommand() *BootstrapCommand {
	return &BootstrapCommand{}
}

// ParseFlags parses command line flags.
func (cmd *BootstrapCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("bootstrap", flag.ExitOnError)
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s bootstrap [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Migrate the database and seed default genres and the admin account.\n")
		fmt.Fprintf(os.Stderr, "Safe to run on every deployment; existing rows are never modified.\n\n")
		fmt.Fprintf(os.Stderr, "Requires BOOTSTRAP_ENABLED=true. The admin account is only created when\n")
		fmt.Fprintf(os.Stderr, "BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD are set.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the seed.
func (cmd *BootstrapCommand) Run() error {
	cfg := config.NewConfig()

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	result, err := bootstrap.Run(db, cfg.Bootstrap, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	if cmd.Verbose {
		fmt.Printf("Genres created: %d\n", result.GenresCreated)
		fmt.Printf("Admin created:  %v\n", result.AdminCreated)
	}
	return nil
}
