package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harry-hov/abi-aggregator/internal/env"
	"github.com/harry-hov/abi-aggregator/internal/logging"
)

const usage = "Usage: abi-aggregator --branch <repo branch>"

// UsageError is a malformed aggregator invocation.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	if e.Err == nil {
		return usage
	}
	return usage + ": " + e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// app is the state shared by the command tree, filled in before any command
// runs.
type app struct {
	out    io.Writer
	env    *env.Env
	logger *zap.Logger
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	e, err := env.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(e.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.env = e
	a.logger = logger
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func AggregatorCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	var branch string

	cmd := &cobra.Command{
		Use:                "abi-aggregator --branch <repo branch>",
		Short:              "Publish the contract ABIs the Admin UI depends on",
		DisableSuggestions: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return &UsageError{Err: fmt.Errorf("unexpected arguments %q", args)}
			}
			if branch == "" {
				return &UsageError{}
			}
			return nil
		},
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.aggregate(cmd.Context(), branch)
		},
	}

	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		if c != c.Root() {
			return err
		}
		return &UsageError{Err: err}
	})
	cmd.Flags().StringVarP(&branch, "branch", "", "", "repo branch to publish ABIs for")

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.AddCommand(CmdTable(a))
	cmd.AddCommand(CmdRecordABI(a))
	cmd.AddCommand(CmdRecordFacets(a))
	cmd.AddCommand(CmdVersion())

	return cmd
}

// run executes one invocation and returns the process exit code. It is the
// only place errors turn into output and exit status.
func run(ctx context.Context, args []string, out io.Writer) int {
	if args == nil {
		args = []string{}
	}
	cmd := AggregatorCmd(out)
	if !isSubcommand(cmd, args) && !isAggregation(args) {
		fmt.Fprintln(out, usage)
		return 1
	}
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(out, usage)
		} else {
			fmt.Fprintln(out, err)
		}
		return 1
	}
	return 0
}

// isAggregation reports whether args is exactly "--branch <tag>". Help flags,
// repeated flags and the --branch=<tag> spelling are all rejected.
func isAggregation(args []string) bool {
	return len(args) == 2 && args[0] == "--branch" && args[1] != ""
}

func isSubcommand(root *cobra.Command, args []string) bool {
	if len(args) == 0 {
		return false
	}
	for _, c := range root.Commands() {
		if c.Name() == args[0] {
			return true
		}
	}
	return false
}

func Execute() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout))
}
