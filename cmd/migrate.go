package main

import (
	"github.com/spf13/cobra"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/app"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/data/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := app.NewLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		pg, err := db.NewPostgresService(db.DSN(log), log)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := db.AutoMigrateAll(pg.DB()); err != nil {
			return err
		}
		log.Info("Schema up to date")
		return nil
	},
}
