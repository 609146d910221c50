package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jwalton/gchalk"
	"github.com/minepkg/mclaunch/cmd/config"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/commands"
	cfg "github.com/minepkg/mclaunch/internals/config"
	"github.com/spf13/cobra"
)

var (
	// Version is set by main
	Version = "dev"
	// Commit is set by main
	Commit = "none"
)

var (
	cfgFile       string
	disableColors bool
	v             = cfg.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mclaunch",
	Short: "Installs & prepares Minecraft versions",
	Long:  "Resolves, downloads & verifies everything a Minecraft version needs and prints the command to launch it",

	Example: `
  mclaunch versions --constraint ">=1.18"
  mclaunch install 1.20.1
  mclaunch launch latest --username Notch --format json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		level := log.InfoLevel
		if v.GetBool("verbose") {
			level = log.DebugLevel
		}
		logger := cmdlog.New(cmd.ErrOrStderr(), level)
		cmd.SetContext(cmdlog.WithLogger(cmd.Context(), logger))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	rootCmd.Version = fmt.Sprintf("%s (%s)", Version, Commit)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, commands.ErrorBox(err.Error(), ""))
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/mclaunch/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&disableColors, "no-color", "", false, "disable color output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().String("root", "", "directory versions, libraries & assets are installed to")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "never prompt")
	v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	v.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	v.BindPFlag("nonInteractive", rootCmd.PersistentFlags().Lookup("non-interactive"))

	config.Viper = v
	config.ConfigFile = configFile
	rootCmd.AddCommand(config.SubCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if disableColors || os.Getenv("NO_COLOR") != "" {
		gchalk.SetLevel(gchalk.LevelNone)
		commands.EmojiEnabled = false
	}

	path, err := configFile()
	if err != nil {
		return err
	}
	return cfg.Load(v, path)
}

func configFile() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return cfg.Path()
}
