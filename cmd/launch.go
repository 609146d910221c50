package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alessio/shellescape"
	"github.com/minepkg/mclaunch/internals/commands"
	"github.com/minepkg/mclaunch/internals/launcher"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	runner := &launchRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "launch <version>",
		Short: "Installs a version and prints the command to launch it",
		Long: `Installs the version (if required) and prints everything needed to start it.
Minecraft itself is not started: pipe the shell output to sh or use the json output in your own launcher.`,
		Aliases: []string{"run"},
		Args:    cobra.ExactArgs(1),
		Example: `
  mclaunch launch 1.20.1 --username Notch
  mclaunch launch latest --format shell | sh
  mclaunch launch 1.20.1 --feature is_quick_play_singleplayer=true --var quickPlayPath=/tmp/qp.json`,
	}, runner)

	runner.flags = launcher.CmdLaunchFlags(cmd.Command)
	cmd.Flags().StringVarP(&runner.format, "format", "f", "json", "output format: json, yaml or shell")
	cmd.Flags().StringVar(&runner.java, "java", "java", "java binary used in the shell output")
	cmd.Flags().StringVar(&runner.gameDir, "gameDir", "", "game directory for saves, options & logs (default <root>/instances/<version>)")

	rootCmd.AddCommand(cmd.Command)
}

type launchRunner struct {
	flags   *launcher.LaunchFlags
	format  string
	java    string
	gameDir string
}

func (l *launchRunner) RunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	switch l.format {
	case "json", "yaml", "shell":
	default:
		return &commands.CliError{
			Text:        fmt.Sprintf("unknown format %q", l.format),
			Suggestions: []string{"Use --format json, yaml or shell"},
		}
	}

	features, err := l.flags.LaunchFeatures()
	if err != nil {
		return err
	}
	platform := detectPlatform(ctx).WithFeatures(features)

	inst, err := instance()
	if err != nil {
		return err
	}
	installer := newInstaller(inst)
	installer.Platform = platform
	installation, err := installPlain(ctx, installer, args[0], cmd.ErrOrStderr(), isTerminal(os.Stderr))
	if err != nil {
		return err
	}

	gameDir := l.gameDir
	if gameDir == "" {
		gameDir = inst.GameDir(installation.ID)
	}
	if err := os.MkdirAll(gameDir, os.ModePerm); err != nil {
		return err
	}
	vars, err := l.flags.LaunchVars(gameDir, inst.AssetsDir(), inst.LibrariesDir(), v.GetString("launcherName"), Version)
	if err != nil {
		return err
	}

	builder := launcher.NewBuilder(platform, "")
	builder.ExtraJVMArgs = l.flags.JVMArgs()
	spec, err := builder.Build(installation.Manifest, installation.Installed(), installation.NativesDir, vars)
	if err != nil {
		return err
	}
	return writeSpec(cmd.OutOrStdout(), spec, l.format, l.java)
}

// writeSpec renders spec in the given format
func writeSpec(out io.Writer, spec *launcher.LaunchSpec, format string, java string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(spec); err != nil {
			return err
		}
		return enc.Close()
	case "shell":
		_, err := fmt.Fprintf(out, "cd %s && %s\n", shellescape.Quote(spec.WorkingDir), shellescape.QuoteCommand(spec.Command(java)))
		return err
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(spec)
	}
}
