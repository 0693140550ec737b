package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/relapse/internal/selection"
	"github.com/fakeyudi/relapse/internal/timeline"
)

func newTimelineCmd(a *app) *cobra.Command {
	var (
		root, filter        string
		bins, width, height int
		forceASCII          bool
	)
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Plot file modification times",
		Long: "Plot the modification times of every file under the root, scaled so the\n" +
			"oldest file is 0 and the newest is 1. Falls back to a one-line ASCII density\n" +
			"plot when stdout is not a terminal.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := changedFlags(cmd)
			if !changed["bins"] {
				bins = a.cfg.Bins
			}
			if !changed["width"] {
				width = a.cfg.Width
			}
			if !changed["height"] {
				height = a.cfg.Height
			}
			if bins <= 0 {
				return invalid(errors.New("Bins must be > 0."))
			}
			if width <= 0 || height <= 0 {
				return invalid(errors.New("Width and height must be > 0."))
			}
			cat, err := a.category(changed, filter)
			if err != nil {
				return invalid(err)
			}
			dir, err := resolveRoot(root)
			if err != nil {
				return err
			}

			records, err := selection.Records(dir, cat, a.cfg.IgnorePatterns, &a.log)
			if err != nil {
				return usageError(err)
			}
			if len(records) == 0 {
				return nil
			}
			times := make([]time.Time, len(records))
			for i, r := range records {
				times[i] = r.ModTime
			}
			data, err := timeline.NewData(times, bins, width, height)
			if err != nil {
				return invalid(err)
			}

			out, _ := cmd.OutOrStdout().(*os.File)
			renderer, reason := timeline.Choose(timeline.Probe(out), forceASCII)
			if reason != "" {
				a.log.Warn().Msg(reason)
			}
			a.log.Debug().Str("renderer", renderer.Name()).Int("files", len(times)).Msg("plotting timeline")
			return renderer.Render(cmd.OutOrStdout(), data)
		},
	}
	bindRootFlags(cmd, &root, &filter)
	cmd.Flags().IntVar(&bins, "bins", 60, "number of histogram bins")
	cmd.Flags().IntVar(&width, "width", 100, "plot width in columns")
	cmd.Flags().IntVar(&height, "height", 20, "plot height in rows")
	cmd.Flags().BoolVar(&forceASCII, "ascii", false, "always use the ASCII density plot")
	return cmd
}
