package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "userdir/internal/adapter/http"
	"userdir/pkg/config"
)

func newServeCmd(opts *options, version string) *cobra.Command {
	var (
		port string
		seed bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg

			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			if cmd.Flags().Changed("seed") {
				cfg.SeedSample = seed
			}

			if version != "dev" {
				cfg.ServiceVersion = version
			}

			logger, err := config.NewLogger(cfg.ServiceName, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return httpadapter.StartServerWithConfig(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&port, "port", "8080", "HTTP port")
	cmd.Flags().BoolVar(&seed, "seed", false, "Start the directory with the sample users")

	return cmd
}
