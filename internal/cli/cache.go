package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtree/internal/config"
	"github.com/matzehuels/mindtree/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached layouts and renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend == config.BackendRedis {
				printWarning("The redis cache expires on its own; only the local cache is cleared")
			}

			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Clear()
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if !verbose {
				fmt.Println(dir)
				return nil
			}
			printKeyValue("directory", dir)
			printKeyValue("backend", c.Config.Cache.Backend)
			if c.Config.Cache.Backend == config.BackendRedis {
				printKeyValue("redis", c.Config.Cache.Redis.Addr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "long", "l", false, "also show the configured backend")
	return cmd
}
