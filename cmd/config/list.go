package config

import (
	"fmt"

	"github.com/minepkg/mclaunch/internals/commands"
	cfg "github.com/minepkg/mclaunch/internals/config"
	"github.com/spf13/cobra"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:     "list",
		Short:   "Lists all config values",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
	}, &listRunner{})

	SubCmd.AddCommand(cmd.Command)
}

type listRunner struct{}

func (i *listRunner) RunE(cmd *cobra.Command, args []string) error {
	out, err := cfg.TOML(Viper)
	if err != nil {
		return err
	}
	if path, err := ConfigFile(); err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), commands.StyleSubtle.Render("# "+path))
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
