package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/relapse/internal/batch"
	"github.com/fakeyudi/relapse/internal/render"
	"github.com/fakeyudi/relapse/internal/selection"
	"github.com/fakeyudi/relapse/internal/tui"
)

func newBrowseCmd(a *app) *cobra.Command {
	var (
		sf    selectFlags
		watch bool
		plain bool
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse batches interactively",
		Long: "List every batch with its time window and files. Pressing enter prints the\n" +
			"highlighted batch. With --plain, or when stdin is not a terminal, a table of\n" +
			"batches is printed instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(cmd, &sf, "")
			if err != nil {
				return usageError(err)
			}
			root, err := selection.ResolveRoot(req.Root)
			if err != nil {
				return usageError(err)
			}
			req.Root = root

			if plain || !isTerminal(cmd.InOrStdin()) {
				batches, err := selection.ResolveAll(req)
				if err != nil {
					return usageError(err)
				}
				if len(batches) == 0 {
					return nil
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), batchTable(batches, time.Now()))
				return err
			}

			var watcher *tui.Watcher
			if watch {
				if watcher, err = tui.NewWatcher(root); err != nil {
					return fmt.Errorf("watching %s: %w", root, err)
				}
				defer watcher.Close()
			}
			load := func() ([]selection.Selection, error) { return selection.ResolveAll(req) }
			final, err := tui.Run(tui.New(root, load, watcher))
			if err != nil {
				return err
			}

			sel, ok := final.Chosen()
			if !ok || sel.Empty() {
				return nil
			}
			f, err := render.ParseFormat(a.cfg.Format)
			if err != nil {
				return invalid(err)
			}
			r := render.PathRenderer{Format: f}
			out, err := r.Render(sel)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	fs := cmd.Flags()
	fs.Float64Var(&sf.maxGap, "max-gap-seconds", batch.DefaultMaxGap.Seconds(), "maximum seconds between file mtimes to treat as the same batch")
	bindRootFlags(cmd, &sf.root, &sf.filter)
	fs.BoolVar(&watch, "watch", false, "rescan when files under the root change")
	fs.BoolVar(&plain, "plain", false, "print a batch table instead of the interactive browser")
	return cmd
}

// batchTable renders one row per batch: index, time window and file count.
func batchTable(batches []selection.Selection, now time.Time) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("#", "WINDOW", "FILES")
	for i, b := range batches {
		t.Row(strconv.Itoa(i), render.Window(b.Batch.Min, b.Batch.Max, now), strconv.Itoa(len(b.Files)))
	}
	return t.String()
}
