package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/commands"
	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/instances"
	"github.com/minepkg/mclaunch/internals/launcher"
	"github.com/minepkg/mclaunch/internals/utils"
	"github.com/spf13/cobra"
)

func init() {
	runner := &installRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "install [version]",
		Short: "Downloads & verifies everything needed to launch a Minecraft version",
		Long: `Resolves the version, downloads the client jar, libraries & assets and extracts natives.
Files that are already present and verified are skipped.
Without a version an interactive picker is shown.`,
		Aliases: []string{"i"},
		Args:    cobra.MaximumNArgs(1),
		Example: `
  mclaunch install 1.20.1
  mclaunch install latest --server`,
	}, runner)

	cmd.Flags().BoolVar(&runner.server, "server", false, "also download the server jar")
	cmd.Flags().BoolVar(&runner.allowMissingAssets, "allow-missing-assets", false, "do not fail if some assets can not be downloaded")

	rootCmd.AddCommand(cmd.Command)
}

type installRunner struct {
	server             bool
	allowMissingAssets bool
}

func (i *installRunner) RunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	inst, err := instance()
	if err != nil {
		return err
	}

	id, err := pickVersion(ctx, inst, args)
	if err != nil {
		return err
	}

	installer := newInstaller(inst)
	installer.Planner.IncludeServer = i.server
	if i.allowMissingAssets {
		installer.AllowFailure = allowAssetFailures
	}

	var installation *instances.Installation
	if isTerminal(os.Stderr) {
		installation, err = installFancy(ctx, installer, id, cmd.ErrOrStderr())
	} else {
		installation, err = installPlain(ctx, installer, id, cmd.ErrOrStderr(), false)
	}
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), installation)
	return nil
}

// pickVersion returns the version argument or lets the user pick one
func pickVersion(ctx context.Context, inst *instances.Instance, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if !interactive() {
		return "", &commands.CliError{
			Text:        "no version given",
			Code:        "missing_version",
			Suggestions: []string{"Pass a version like \"mclaunch install 1.20.1\" or \"latest\""},
		}
	}
	manifest, err := newResolver(inst).VersionManifest(ctx)
	if err != nil {
		return "", err
	}
	return utils.SelectVersion(manifest.Versions)
}

func allowAssetFailures(err error) bool {
	var f *downloadmgr.Failure
	return errors.As(err, &f) && f.Task.Kind == downloadmgr.KindAsset
}

// installPlain runs the installer printing one line per state (or a spinner if spin is set)
func installPlain(ctx context.Context, installer *instances.Installer, id string, out io.Writer, spin bool) (*instances.Installation, error) {
	logger := cmdlog.FromContext(ctx)
	spinner := launcher.NewMaybeSpinner(spin, out)
	defer spinner.Stop()

	p := &installProgress{}
	installer.Sink = p.sink()
	installer.OnPlanned = p.planned
	installer.OnState = func(s instances.State, err error) {
		switch s {
		case instances.StateResolving:
			spinner.Start(fmt.Sprintf("Resolving %s", id))
		case instances.StateDownloading:
			spinner.Update(fmt.Sprintf("Downloading %d files (%s)", p.tasks.Load(), utils.HumanBytes(p.totalBytes.Load())))
		case instances.StateExtracting:
			spinner.Update("Extracting natives")
		case instances.StateFailed:
			logger.Debug("installation failed", "version", id, "err", err)
		}
	}
	return installer.Install(ctx, id)
}

func printSummary(out io.Writer, installation *instances.Installation) {
	downloads := installation.Downloads
	fmt.Fprintf(
		out,
		"%s Minecraft %s installed: %d files downloaded (%s), %d up to date\n",
		commands.Emoji("⛏  "),
		installation.ID,
		len(downloads.Succeeded),
		utils.HumanBytes(downloads.Bytes),
		len(downloads.Skipped),
	)
	if len(downloads.Failed) != 0 {
		fmt.Fprintf(out, "  %d files could not be downloaded\n", len(downloads.Failed))
	}
}
