package commands

import (
	"github.com/spf13/cobra"
	"github.com/statelink/statelink-backend/config"
	"github.com/statelink/statelink-backend/internal/app/repository"
	"github.com/statelink/statelink-backend/internal/db"
	"github.com/statelink/statelink-backend/pkg/logger"
)

var (
	cfg      *config.Config
	logLevel string
)

// Execute runs the operator CLI against the configured database.
func Execute() error {
	root := &cobra.Command{
		Use:           "statelinkctl",
		Short:         "StateLink back-office operations",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Initialize(logger.Config{
				Level:       logLevel,
				Format:      "console",
				EnableColor: true,
			})

			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			if err := db.Initialize(&cfg.Database); err != nil {
				return err
			}
			return db.Migrate()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return db.Close()
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	root.AddCommand(importBusinessesCmd(), createAdminCmd(), exportCmd())
	return root.Execute()
}

func requestRepo() repository.ComplianceRequestRepository {
	return repository.NewComplianceRequestRepository(db.GetDB())
}
