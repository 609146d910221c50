package config

import (
	"errors"
	"fmt"

	"github.com/jwalton/gchalk"
	"github.com/minepkg/mclaunch/internals/commands"
	cfg "github.com/minepkg/mclaunch/internals/config"
	"github.com/spf13/cobra"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Sets a global config value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: cfg.Keys(),
	}, &setRunner{})

	SubCmd.AddCommand(cmd.Command)
}

type setRunner struct{}

func (i *setRunner) RunE(cmd *cobra.Command, args []string) error {
	path, err := ConfigFile()
	if err != nil {
		return err
	}

	previousValue, err := cfg.Set(Viper, path, args[0], args[1])
	if errors.Is(err, cfg.ErrUnknownKey) {
		return &commands.CliError{
			Text:        err.Error(),
			Code:        "unknown_config_key",
			Suggestions: []string{"Run \"mclaunch config list\" to see all keys"},
			Err:         err,
		}
	}
	if err != nil {
		return err
	}

	previousStringValue := fmt.Sprintf("%v", previousValue)
	if previousValue == nil || previousStringValue == "" {
		previousStringValue = "(unset)"
	}
	key, value, _ := cfg.Get(Viper, args[0])

	fmt.Fprintf(
		cmd.OutOrStdout(),
		"Changing config entry:\n  %s: %s → %v\n",
		key,
		gchalk.Strikethrough(previousStringValue),
		gchalk.Bold(fmt.Sprintf("%v", value)),
	)
	return nil
}
