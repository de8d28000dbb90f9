package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lzdw/lzdraw/pkg/api"
	"github.com/lzdw/lzdraw/pkg/extract"
	"github.com/lzdw/lzdraw/pkg/store"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the generate, download and render endpoints over HTTP.

Without a model API key the server still renders and converts architectures;
only /api/generate answers 501.`,
		Example: `  lzdraw serve
  lzdraw serve --addr 127.0.0.1:9000
  LZDRAW_STORE_BACKEND=mongo LZDRAW_MONGO_URI=mongodb://localhost lzdraw serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the pipeline cache")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg := c.settings()
	srvCfg := cfg.Server
	if addr != "" {
		srvCfg.Addr = addr
	}

	var ex extract.Extractor
	if e, err := c.newExtractor(ctx); err != nil {
		c.Logger.Warn("generation disabled", "err", err)
	} else {
		ex = e
		c.Logger.Info("extractor ready", "provider", e.Provider(), "model", e.Model())
	}

	runner := c.newRunner(ctx, noCache, ex)
	defer runner.Close()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	srv := api.New(runner, st,
		api.WithLogger(c.Logger),
		api.WithConfig(srvCfg),
		api.WithTheme(cfg.Render.Theme),
		api.WithLayout(cfg.Layout),
	)
	c.Logger.Info("listening", "addr", srvCfg.Addr, "store", cfg.Store.Kind(), "cache", cfg.Cache.Kind())
	return srv.ListenAndServe(ctx)
}
