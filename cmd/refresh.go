package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kysymyssota/internal/content"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload bundled questions, keeping curated ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		loader := content.NewLoader(st.Questions(), logger(cmd))
		if err := loader.Refresh(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Question database refreshed.")
		return nil
	},
}
