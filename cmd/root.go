package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/relapse/internal/config"
	"github.com/fakeyudi/relapse/internal/logging"
)

// exitUsage is the exit status for invalid input and missing roots.
const exitUsage = 2

// ExitError carries a specific process exit status. An empty Msg prints nothing.
type ExitError struct {
	Code int
	Msg  string
}

func (e *ExitError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Msg
}

// app holds state shared by every subcommand of one invocation.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	logLevel string
}

func newRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "relapse",
		Short: "Work with file batches based on modification-time gaps",
		Long: "Group the files under a directory into batches separated by gaps in their\n" +
			"modification times, pick one batch, and print, archive, copy or hand it to\n" +
			"another tool. A bare batch argument is shorthand for 'relapse print <batch>'.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = a.logLevel
			}
			log, err := logging.New(cmd.ErrOrStderr(), level, !isTerminal(cmd.ErrOrStderr()))
			if err != nil {
				return invalid(err)
			}
			a.log = log.With().Str("command", cmd.Name()).Logger()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return &ExitError{Code: exitUsage}
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error or disabled")

	root.AddCommand(
		newPrintCmd(a),
		newZipCmd(a),
		newToolCmd(a),
		newCopyCmd(a),
		newTimelineCmd(a),
		newBrowseCmd(a),
	)
	return root
}

// Execute runs the command line and exits with its status.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes args and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(withDefaultCommand(root, args))
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return exitCode(root.Execute(), stderr)
}

// withDefaultCommand rewrites "relapse <batch> ..." to "relapse print <batch> ...".
func withDefaultCommand(root *cobra.Command, args []string) []string {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return args
	}
	known := map[string]bool{"help": true, "completion": true}
	for _, c := range root.Commands() {
		known[c.Name()] = true
		for _, alias := range c.Aliases {
			known[alias] = true
		}
	}
	if known[args[0]] {
		return args
	}
	return append([]string{"print"}, args...)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Msg != "" {
			fmt.Fprintln(stderr, exitErr.Msg)
		}
		return exitErr.Code
	}
	fmt.Fprintln(stderr, err)
	return exitUsage
}

// invalid marks err as a usage error.
func invalid(err error) error {
	return &ExitError{Code: exitUsage, Msg: err.Error()}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}
