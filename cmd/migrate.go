package cmd

import (
	"context"
	"log"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateStatus   bool
	migrateTo       int64
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print the applied state of every migration and exit")
	migrateCmd.Flags().Int64Var(&migrateTo, "to", 0, "migrate up (or roll back with -r) to this version instead of the latest")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v\n", err)
	}
	defer db.Close()
	goose.SetTableName("schema_migrations")

	switch {
	case migrateStatus:
		err = goose.StatusContext(ctx, db, migrateDir)
	case migrateRollback && migrateTo > 0:
		err = goose.DownToContext(ctx, db, migrateDir, migrateTo)
	case migrateRollback:
		err = goose.DownContext(ctx, db, migrateDir)
	case migrateTo > 0:
		err = goose.UpToContext(ctx, db, migrateDir, migrateTo)
	default:
		err = goose.UpContext(ctx, db, migrateDir)
	}
	if err != nil {
		log.Fatalf("goose: %v", err)
	}

	return nil
}
