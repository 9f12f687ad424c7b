package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"cern-sync/core/config"
	"cern-sync/core/database"
	"cern-sync/core/logger"
	"cern-sync/feature/groups"
	"cern-sync/feature/identity/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// Flags for sync commands
	syncMethod string
	syncSince  string
)

// syncCmd is the parent command for all sync operations.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the local store with the CERN identity directory",
}

// syncUsersCmd runs one users sync from the command line.
var syncUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Sync user identities into local accounts",
	Long: `Fetch all user identities from the configured source and reconcile them
against the local account store.

Examples:
  # Full sync from the AuthZ service
  cern-sync sync users

  # Sync from LDAP instead
  cern-sync sync users --method ldap

  # Incremental sync of identities modified since a date
  cern-sync sync users --since 2026-08-01`,
	Run: func(cmd *cobra.Command, args []string) {
		runSync(func(ctx context.Context, cfg *config.Config, db *gorm.DB, logg *zap.Logger) error {
			usersService, _ := buildSyncServices(cfg, db, logg)
			_, err := usersService.SyncUsers(ctx, syncMethod, syncSince)
			return err
		})
	},
}

// syncGroupsCmd runs one groups sync from the command line.
var syncGroupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Sync directory groups into local roles",
	Run: func(cmd *cobra.Command, args []string) {
		runSync(func(ctx context.Context, cfg *config.Config, db *gorm.DB, logg *zap.Logger) error {
			_, groupsService := buildSyncServices(cfg, db, logg)
			_, err := groupsService.SyncGroups(ctx, syncSince)
			return err
		})
	},
}

// runSync loads configuration, connects the database, migrates the schema
// and hands off to the given run. A SIGINT/SIGTERM cancels the run context.
func runSync(run func(ctx context.Context, cfg *config.Config, db *gorm.DB, logg *zap.Logger) error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Sync.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logg.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		logg.Fatal("Failed to migrate accounts schema", zap.Error(err))
	}
	if err := groups.Migrate(db); err != nil {
		logg.Fatal("Failed to migrate roles schema", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, db, logg); err != nil {
		logg.Fatal("Sync failed", zap.Error(err))
	}
}

func init() {
	syncUsersCmd.Flags().StringVar(&syncMethod, "method", "", "identity source: authz or ldap (default from config)")
	syncUsersCmd.Flags().StringVar(&syncSince, "since", "", "only records modified since this date (YYYY-MM-DD)")
	syncGroupsCmd.Flags().StringVar(&syncSince, "since", "", "only records modified since this date (YYYY-MM-DD)")

	syncCmd.AddCommand(syncUsersCmd)
	syncCmd.AddCommand(syncGroupsCmd)
	RootCmd.AddCommand(syncCmd)
}
