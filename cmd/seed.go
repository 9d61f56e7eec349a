package cmd

import (
	"github.com/spf13/cobra"

	"github.com/amrbasha900/mobile-endpoints/logger"
	"github.com/amrbasha900/mobile-endpoints/repository"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load initial lookup data and a default API user",
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
		if err := repo.Migrate(); err != nil {
			return err
		}
		return repo.Seed()
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
