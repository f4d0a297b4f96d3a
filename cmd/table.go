package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harry-hov/abi-aggregator/internal/artifact"
)

func CmdTable(a *app) *cobra.Command {
	var branch string
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the ABI group table as YAML",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.table()
			if err != nil {
				return err
			}
			if branch != "" {
				table = artifact.NewTable(table.ForBranch(branch)...)
			}
			return table.Encode(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&branch, "branch", "", "", "only print groups published for this branch")

	return cmd
}
