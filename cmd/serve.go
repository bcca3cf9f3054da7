package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin HTTP API and the daily scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := app.NewLogger()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, log)
	if err != nil {
		log.Error("Startup failed", "error", err)
		log.Sync()
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("Shutdown finished with errors", "error", err)
		}
	}()

	a.Start(ctx)
	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("HTTP server stopped", "error", err)
		return err
	}
	log.Info("Shut down cleanly")
	return nil
}

// cmdContext keeps cobra's nil-context default from reaching the app.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
