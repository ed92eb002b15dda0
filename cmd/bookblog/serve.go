package main

import (
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bookblog/bookblog-server/internal/di"
	"github.com/bookblog/bookblog-server/internal/logger"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			injector := di.NewContainer(c.flags)
			if err := di.Bootstrap(injector); err != nil {
				_ = injector.Shutdown()
				return err
			}
			log := do.MustInvoke[*logger.Logger](injector)

			<-ctx.Done()
			log.Info("Shutting down server gracefully...")
			if err := injector.Shutdown(); err != nil {
				log.Error("Shutdown error", "error", err)
			}
			return nil
		},
	}
}
