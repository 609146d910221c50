package config

import (
	"fmt"

	"github.com/minepkg/mclaunch/internals/commands"
	cfg "github.com/minepkg/mclaunch/internals/config"
	"github.com/spf13/cobra"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:       "get <key>",
		Short:     "Gets a global config value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: cfg.Keys(),
	}, &getRunner{})

	SubCmd.AddCommand(cmd.Command)
}

type getRunner struct{}

func (i *getRunner) RunE(cmd *cobra.Command, args []string) error {
	key, value, err := cfg.Get(Viper, args[0])
	if err != nil {
		return &commands.CliError{
			Text:        err.Error(),
			Code:        "unknown_config_key",
			Suggestions: []string{"Run \"mclaunch config list\" to see all keys"},
			Err:         err,
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", key, value)
	return nil
}
