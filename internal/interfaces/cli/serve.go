package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/complyhub/gst-sentinel/internal/bootstrap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		Long:  "Start the REST API server in the foreground until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			app, err := bootstrap.NewApp(cliCtx.Config, cliCtx.Logger, "gstsentinel-serve")
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return bootstrap.RunServer(ctx, cliCtx.ConfigPath, app)
		},
	}
}
