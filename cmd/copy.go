package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/relapse/internal/export"
)

func newCopyCmd(a *app) *cobra.Command {
	var sf selectFlags
	cmd := &cobra.Command{
		Use:   "copy [batch] <dest>",
		Short: "Copy a batch into another directory",
		Long: "Copy the files of the selected batch under dest, keeping their paths\n" +
			"relative to the root along with file modes and modification times.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			positional, dest := "", args[0]
			if len(args) == 2 {
				positional, dest = args[0], args[1]
			}
			dest, err := filepath.Abs(dest)
			if err != nil {
				return fmt.Errorf("resolving destination: %w", err)
			}

			sel, err := a.selectFiles(cmd, &sf, positional)
			if err != nil || sel == nil {
				return err
			}
			if err := export.CopyTree(dest, sel.Files); err != nil {
				return err
			}
			a.log.Info().Str("dest", dest).Int("files", len(sel.Files)).Msg("batch copied")
			return nil
		},
	}
	sf.bind(cmd)
	return cmd
}
