package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/inkfold/diagramprep/internal/api"
	"github.com/inkfold/diagramprep/pkg/renderer"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string // listen address
	engine  string // rendering engine
	noCache bool   // disable caching
}

// serveCommand creates the serve command exposing the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline as a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().StringVarP(&opts.engine, "engine", "e", "", "rendering engine: dot (default), mmdc")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts *serveOpts) error {
	engine, err := c.newEngine(opts.engine)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache, engine)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The server owns the shared render surface. Every successful render
	// lands on it, and the janitor sweeps it for the server's lifetime.
	surface := renderer.NewSurface()
	runner.Surface = surface

	janitor := renderer.NewJanitor(surface, nil, 0, c.Logger)
	janitor.Start(ctx)
	defer janitor.Stop()

	router := api.NewRouter(api.NewHandler(runner, c.Logger))
	server := api.NewServer(opts.addr, router, c.Logger)
	return server.ListenAndServe(ctx)
}
