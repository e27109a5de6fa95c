// Command contentaudit finds and removes unused content in a Contentful
// space.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/contentaudit/internal/cli"
	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
)

// exitInterrupted follows the shell convention for SIGINT.
const exitInterrupted = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	os.Exit(report(os.Stderr, err))
}

// run builds the command tree and executes it with args.
func run(ctx context.Context, args []string) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.SetArgs(args)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output, including every API call")

	// Flags are parsed before the pre-run, so the level is known here.
	inner := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if inner == nil {
			return nil
		}
		return inner(cmd, args)
	}

	return root.ExecuteContext(ctx)
}

// report prints err for the user and returns the exit status.
func report(w io.Writer, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	}
	fmt.Fprintln(w, "Error:", apperrors.UserMessage(err))
	if hint := apperrors.Hint(err); hint != "" {
		fmt.Fprintln(w, "Hint: ", hint)
	}
	return apperrors.ExitCode(err)
}
