package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fakeyudi/relapse/internal/batch"
	"github.com/fakeyudi/relapse/internal/selection"
)

// selectFlags are the batch-selection flags shared by most commands.
type selectFlags struct {
	index    int
	datetime string
	maxGap   float64
	root     string
	filter   string
}

func (f *selectFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.index, "index", 0, "explicit batch index (0=latest, 1=previous, ...)")
	fs.StringVar(&f.datetime, "datetime", "", "ISO 8601 datetime selecting the batch at or before that time")
	fs.Float64Var(&f.maxGap, "max-gap-seconds", batch.DefaultMaxGap.Seconds(), "maximum seconds between file mtimes to treat as the same batch")
	bindRootFlags(cmd, &f.root, &f.filter)
}

// bindRootFlags registers --root and --filter, which timeline shares
// without the batch flags.
func bindRootFlags(cmd *cobra.Command, root, filter *string) {
	cmd.Flags().StringVar(root, "root", "", "root directory to scan (default: current directory)")
	cmd.Flags().StringVar(filter, "filter", string(selection.CategoryAll), "filter selected files to docs or code: all, docs, code")
}

// changedFlags returns the names of flags set on the command line.
func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	return changed
}

// resolveRoot returns the --root value or the working directory.
func resolveRoot(root string) (string, error) {
	if root != "" {
		return root, nil
	}
	return os.Getwd()
}

// category picks the --filter value, falling back to configuration.
func (a *app) category(changed map[string]bool, flagValue string) (selection.Category, error) {
	value := a.cfg.Filter
	if changed["filter"] {
		value = flagValue
	}
	return selection.ParseCategory(value)
}

// request builds a pipeline request from the flags and an optional
// positional batch argument.
func (a *app) request(cmd *cobra.Command, f *selectFlags, positional string) (selection.Request, error) {
	changed := changedFlags(cmd)

	var index *int
	if changed["index"] {
		index = &f.index
	}
	var datetime *string
	if changed["datetime"] {
		datetime = &f.datetime
	}
	sel, err := batch.ParseSelector(positional, index, datetime, time.Local)
	if err != nil {
		return selection.Request{}, err
	}

	gap := a.cfg.Gap()
	if changed["max-gap-seconds"] {
		gap = f.maxGap
	}
	if err := batch.ValidGap(gap); err != nil {
		return selection.Request{}, err
	}
	cat, err := a.category(changed, f.filter)
	if err != nil {
		return selection.Request{}, err
	}
	root, err := resolveRoot(f.root)
	if err != nil {
		return selection.Request{}, fmt.Errorf("resolving root: %w", err)
	}

	return selection.Request{
		Root:           root,
		MaxGap:         batch.GapSeconds(gap),
		Selector:       sel,
		Category:       cat,
		IgnorePatterns: a.cfg.IgnorePatterns,
		Log:            &a.log,
	}, nil
}

// selectFiles runs the pipeline. A nil selection means there is nothing to do.
func (a *app) selectFiles(cmd *cobra.Command, f *selectFlags, positional string) (*selection.Selection, error) {
	req, err := a.request(cmd, f, positional)
	if err != nil {
		return nil, usageError(err)
	}
	sel, err := selection.Resolve(req)
	if err != nil {
		return nil, usageError(err)
	}
	if sel.Empty() {
		a.log.Debug().Msg("empty selection")
		return nil, nil
	}
	return sel, nil
}

// usageError maps the pipeline's user-facing failures to exit status 2.
func usageError(err error) error {
	var oor *batch.OutOfRangeError
	switch {
	case errors.Is(err, selection.ErrInvalidInput),
		errors.Is(err, selection.ErrRootNotFound),
		errors.As(err, &oor):
		return invalid(err)
	}
	return err
}
