package cli

import (
	"github.com/spf13/cobra"

	"github.com/reqsmith/reqsmith/internal/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	noCache bool
}

// serveCommand creates the serve command, exposing parse/check/verify over
// HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the manifest API over HTTP",
		Long: `Serve starts an HTTP server exposing the manifest operations as a
JSON API: POST /v1/parse, POST /v1/check, and POST /v1/verify, plus
/healthz and /version. The server shuts down gracefully on SIGINT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			idx, err := c.newIndex(opts.noCache)
			if err != nil {
				return err
			}

			srv := server.New(server.Options{
				Addr:   opts.addr,
				Logger: loggerFromContext(cmd.Context()),
				Index:  idx,
				Lint:   cfg.LintOptions(),
			})
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable response caching")

	return cmd
}
