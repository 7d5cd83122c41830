package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/dev"
)

func devCmd(opts *globalOptions) *cobra.Command {
	var (
		port int
		host string
		poll string
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Watch the project and regenerate on change",
		Long: `Generate every artifact, then watch the component, module and page
roots and regenerate what each change affects.

While watching, an inspection API is served:
  /_autoroute/routes     current route table
  /_autoroute/resolve    resolve ?path= against the table
  /_autoroute/status     watcher state
  /_autoroute/ws         regeneration notices
  /metrics               Prometheus metrics

Examples:
  autoroute dev
  autoroute dev --port=9000
  autoroute dev --poll=1s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			if port > 0 {
				cfg.Dev.Port = port
			}
			if host != "" {
				cfg.Dev.Host = host
			}
			if poll != "" {
				cfg.Dev.Poll = poll
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			info(out, "Watching %s", cfg.Dir())
			info(out, "Inspection API at %s", mutedStyle.Render(cfg.DevURL()))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := dev.NewServer(dev.ServerOptions{
				Config: cfg,
				Logger: newLogger(cmd.ErrOrStderr(), cfg.Dev.Verbose),
			})
			if err := server.Start(ctx); err != nil {
				return err
			}
			success(out, "Stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Inspection API port (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Inspection API host (default from config)")
	cmd.Flags().StringVar(&poll, "poll", "", "Watcher polling interval, e.g. 250ms (default from config)")

	return cmd
}
