package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amrbasha900/mobile-endpoints/logger"
	"github.com/amrbasha900/mobile-endpoints/repository"
	"github.com/amrbasha900/mobile-endpoints/server"
	"github.com/amrbasha900/mobile-endpoints/srvreg"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.WithComponent("serve")

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

		registry := srvreg.NewServiceRegistry(repo, logger.WithComponent("srvreg"))
		registry.RegisterDefaultServices()

		webserver := server.NewWebServer(cfg.HTTPPort, registry, repo, logger.WithComponent("server"))
		webserver.Start()

		// Wait for interrupt signal to gracefully shut down the server
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := webserver.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutting down HTTP web server")
			return err
		}
		log.Info().Msg("HTTP web server gracefully stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
