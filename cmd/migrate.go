package cmd

import (
	"github.com/spf13/cobra"

	"github.com/amrbasha900/mobile-endpoints/logger"
	"github.com/amrbasha900/mobile-endpoints/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		repo, err := repository.NewRepository(logger.WithComponent("repository"))
		if err != nil {
			return err
		}
		if err := repo.ConnectDB(cfg.Database.DSN()); err != nil {
			return err
		}
		return repo.Migrate()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
