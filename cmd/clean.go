package cmd

import (
	"fmt"

	"github.com/minepkg/mclaunch/internals/commands"
	"github.com/spf13/cobra"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:   "clean <version>",
		Short: "Removes extracted natives & partial downloads",
		Long:  "Removes the extracted natives of a version and leftover partial downloads. The next install extracts the natives again.",
		Args:  cobra.ExactArgs(1),
	}, &cleanRunner{})

	rootCmd.AddCommand(cmd.Command)
}

type cleanRunner struct{}

func (c *cleanRunner) RunE(cmd *cobra.Command, args []string) error {
	inst, err := instance()
	if err != nil {
		return err
	}
	if err := inst.Clean(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%sCleaned %s\n", commands.Emoji("🧹 "), args[0])
	return nil
}
