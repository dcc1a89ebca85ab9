// Command mindtree renders JSON or YAML trees as interactive mind maps.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtree/internal/cli"
	apperr "github.com/matzehuels/mindtree/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, apperr.UserMessage(err))
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// The level must be set before the config is loaded so loading is logged.
	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if loadConfig != nil {
			return loadConfig(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

// exitCode separates rejected input from everything else.
func exitCode(err error) int {
	switch apperr.GetCode(err) {
	case apperr.ErrCodeInvalidInput, apperr.ErrCodeInvalidJSON, apperr.ErrCodeInvalidShape,
		apperr.ErrCodeInvalidCanvas, apperr.ErrCodeInvalidFormat, apperr.ErrCodeFileNotFound:
		return 2
	}
	return 1
}
