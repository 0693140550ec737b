package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/relapse/internal/render"
)

func newPrintCmd(a *app) *cobra.Command {
	var (
		sf     selectFlags
		format string
		pretty bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "print [batch]",
		Short: "Print the files in a batch",
		Long: "Print the files in the selected batch, one per line. The batch argument is\n" +
			"an index (0 is the latest) or an ISO 8601 datetime.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = a.cfg.Format
			}
			f, err := render.ParseFormat(format)
			if err != nil {
				return invalid(err)
			}

			sel, err := a.selectFiles(cmd, &sf, firstArg(args))
			if err != nil || sel == nil {
				return err
			}

			var r render.Renderer = &render.PathRenderer{Format: f, Pretty: pretty}
			if asJSON {
				r = &render.JSONRenderer{}
			}
			out, err := r.Render(sel)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	sf.bind(cmd)
	cmd.Flags().StringVar(&format, "format", string(render.FormatRelative), "path format: relative, absolute or name")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "print a header describing the batch time window")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the selection as JSON")
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
