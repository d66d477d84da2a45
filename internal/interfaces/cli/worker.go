package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/complyhub/gst-sentinel/internal/bootstrap"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the background worker",
		Long: "Start the scheduler, check-request consumer, and health listener\n" +
			"in the foreground until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			app, err := bootstrap.NewApp(cliCtx.Config, cliCtx.Logger, "gstsentinel-worker")
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := bootstrap.RunWorker(ctx, cliCtx.ConfigPath, app); err != nil &&
				!errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
