package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Viper holds the loaded config. Set by the root command
	Viper *viper.Viper
	// ConfigFile returns the path of the config file. Set by the root command
	ConfigFile func() (string, error)
)

var SubCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global config options",
}
