package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joestump/shelf/internal/config"
	"github.com/joestump/shelf/internal/db"
	"github.com/joestump/shelf/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, dsn, err := config.LoadDB()
			if err != nil {
				return err
			}

			database, err := db.New(driver, dsn)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, driver); err != nil {
				return err
			}

			log, err := logger.New("info", "console")
			if err != nil {
				return err
			}
			log.Info("migrations complete", zap.String("driver", driver))
			return nil
		},
	}
}
