package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randomizedcoder/go-game-launcher/internal/config"
)

func newPrintCmdCommand() *cobra.Command {
	cfg := config.DefaultConfig()
	var argv bool

	cmd := &cobra.Command{
		Use:   "print-cmd",
		Short: "Print the command line that launch would run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg); err != nil {
				return err
			}
			spec, err := cfg.LaunchSpec()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if argv {
				for _, a := range spec.Argv() {
					fmt.Fprintln(w, a)
				}
				return nil
			}
			fmt.Fprintf(w, "# Working directory: %s\n", spec.WorkDir)
			fmt.Fprintln(w, spec.CommandString())
			return nil
		},
	}
	config.BindFlags(cmd.Flags(), cfg)
	cmd.Flags().BoolVar(&argv, "argv", false, "Print one argument per line")
	return cmd
}
