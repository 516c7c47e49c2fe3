package main

import (
	"github.com/spf13/cobra"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/app"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the service tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := app.NewLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			pg, err := db.NewPostgresService(log)
			if err != nil {
				return err
			}
			defer pg.Close()
			if err := pg.AutoMigrateAll(); err != nil {
				return err
			}
			log.Info("Migrations applied")
			return nil
		},
	}
}
