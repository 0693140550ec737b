package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/relapse/internal/export"
)

func newToolCmd(a *app) *cobra.Command {
	var (
		sf   selectFlags
		tool string
	)
	cmd := &cobra.Command{
		Use:     "code2prompt [batch]",
		Aliases: []string{"ccc"},
		Short:   "Pass a batch to code2prompt",
		Long: "Run code2prompt (or the program named by --tool) with the absolute paths of\n" +
			"the selected batch. The program's exit status becomes relapse's.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("tool") {
				tool = a.cfg.Tool
			}
			sel, err := a.selectFiles(cmd, &sf, firstArg(args))
			if err != nil || sel == nil {
				return err
			}

			t := export.Tool{Name: tool}
			streams := export.Streams{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
			code, err := t.Run(cmd.Context(), streams, sel.Files)
			if err != nil {
				if errors.Is(err, export.ErrToolNotFound) {
					return invalid(err)
				}
				return err
			}
			if code != 0 {
				a.log.Debug().Str("tool", tool).Int("code", code).Msg("tool exited non-zero")
				return &ExitError{Code: code}
			}
			return nil
		},
	}
	sf.bind(cmd)
	cmd.Flags().StringVar(&tool, "tool", "code2prompt", "external program to run")
	return cmd
}
