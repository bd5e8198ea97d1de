package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/sunwheel/internal/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	cfg := server.Config{Addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline as an HTTP API",
		Long: `Serve the pipeline as an HTTP API.

The serve command exposes the same aggregate/layout/render pipeline used
by the CLI over HTTP. Datasets are sent inline as JSON; artifacts come
back base64-encoded.

With --redis, results are cached in a shared Redis instance so multiple
server replicas reuse each other's work. Without it, requests are
recomputed every time.

Endpoints:
  GET  /healthz    liveness probe
  POST /v1/render  run the pipeline for an inline dataset
  POST /v1/focus   compute a zoom transition`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			srv, err := server.New(ctx, cfg, c.Logger)
			if err != nil {
				return fmt.Errorf("initialize server: %w", err)
			}
			defer srv.Close()

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	cmd.Flags().StringVar(&cfg.RedisAddr, "redis", "", "Redis address for shared caching (host:port)")
	cmd.Flags().StringVar(&cfg.RedisPassword, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&cfg.RedisDB, "redis-db", 0, "Redis logical database")
	cmd.Flags().StringVar(&cfg.CacheScope, "cache-scope", "", "prefix for cache keys (isolates shared Redis)")

	return cmd
}
