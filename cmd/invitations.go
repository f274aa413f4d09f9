package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/elementar/internal/core/events"
	"github.com/frahmantamala/elementar/internal/invitation"
	invitationPostgres "github.com/frahmantamala/elementar/internal/invitation/postgres"
	"github.com/frahmantamala/elementar/internal/role"
	rolePostgres "github.com/frahmantamala/elementar/internal/role/postgres"
	"github.com/frahmantamala/elementar/pkg/logger"
	"github.com/spf13/cobra"
)

var invitationsCmd = &cobra.Command{
	Use:   "invitations",
	Short: "Invitation maintenance commands",
}

var pruneInvitationsCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired invitations",
	Long:  `Delete every invitation whose expiry has passed. Safe to run from cron.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, db, err := openDatabase(cfg)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		lg := logger.LoggerWrapper()
		svc := invitation.NewService(
			invitationPostgres.NewInvitationRepository(db),
			role.NewScopeValidator(rolePostgres.NewRoleRepository(db)),
			events.NewEventBus(lg),
			cfg.Tenancy.InvitationTTL,
			cfg.Security.BCryptCost,
			lg,
		)

		n, err := svc.PruneExpired(context.Background())
		if err != nil {
			log.Fatalf("prune failed: %v", err)
		}
		lg.Info("expired invitations pruned", "deleted", n)
	},
}

func init() {
	invitationsCmd.AddCommand(pruneInvitationsCmd)
}
