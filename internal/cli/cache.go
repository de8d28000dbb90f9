package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lzdw/lzdraw/pkg/cache"
	"github.com/lzdw/lzdraw/pkg/config"
)

// cacheCommand groups the pipeline cache subcommands.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the pipeline cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove cached extractions, layouts and renders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.settings().Cache
			if kind := cfg.Kind(); kind != config.CacheFile {
				printInfo("The %s cache backend is not cleared from the CLI", kind)
				return nil
			}
			fc, err := cache.NewFileCache(cfg.Dir)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cache cleared")
			printDetail("%s", fc.Dir())
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.settings().Cache.Dir
			if dir == "" {
				d, err := cache.DefaultDir()
				if err != nil {
					return err
				}
				dir = d
			}
			fmt.Println(dir)
			return nil
		},
	}
}
