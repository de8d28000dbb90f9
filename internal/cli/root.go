package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/lzdw/lzdraw/pkg/buildinfo"
	"github.com/lzdw/lzdraw/pkg/config"
	"github.com/lzdw/lzdraw/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "lzdraw draws AWS landing zone diagrams from workshop output",
		Long: `lzdraw turns Landing Zone Design Workshop output into AWS landing zone
diagrams. It renders architecture descriptions to draw.io, SVG and Terraform,
extracts architectures from questionnaire text with a language model, and
serves both over HTTP.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/lzdraw/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup runs before every command: it applies --verbose, loads the
// configuration and attaches the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "path", c.configPath, "provider", cfg.LLM.Provider, "cache", cfg.Cache.Kind())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// Execute runs the lzdraw CLI with ctx and returns an error if any command
// fails.
//
//	func main() {
//	    if err := cli.Execute(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	return New(os.Stderr, LogInfo).RootCommand().ExecuteContext(ctx)
}
