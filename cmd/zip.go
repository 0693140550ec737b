package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/relapse/internal/export"
)

func newZipCmd(a *app) *cobra.Command {
	var (
		sf     selectFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "zip [batch]",
		Short: "Archive a batch as a gzip-compressed tar",
		Long: "Write the files of the selected batch to a .tar.gz archive, stored under\n" +
			"their paths relative to the root. Use -o - to stream the archive to stdout.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				output = a.cfg.Output
			}
			sel, err := a.selectFiles(cmd, &sf, firstArg(args))
			if err != nil || sel == nil {
				return err
			}

			if output == export.StdoutName {
				return export.WriteArchive(cmd.OutOrStdout(), sel.Files)
			}
			if err := export.CreateArchive(output, sel.Files); err != nil {
				return err
			}
			a.log.Info().Str("output", output).Int("files", len(sel.Files)).Msg("archive written")
			return nil
		},
	}
	sf.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "batch.tar.gz", "archive path, or - for stdout")
	return cmd
}
