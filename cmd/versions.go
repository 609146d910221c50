package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/minepkg/mclaunch/internals/commands"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"github.com/minepkg/mclaunch/internals/utils"
	"github.com/spf13/cobra"
)

func init() {
	runner := &versionsRunner{}
	cmd := commands.New(&cobra.Command{
		Use:     "versions",
		Short:   "Lists available Minecraft versions",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		Example: `
  mclaunch versions
  mclaunch versions --type snapshot --limit 5
  mclaunch versions --constraint "~1.19"`,
	}, runner)

	cmd.Flags().StringVarP(&runner.typ, "type", "t", minecraft.TypeRelease, "only list versions of this type (release, snapshot, old_beta, old_alpha or all)")
	cmd.Flags().StringVarP(&runner.constraint, "constraint", "c", "", "semver constraint the versions have to match (eg. \">=1.18\")")
	cmd.Flags().IntVarP(&runner.limit, "limit", "n", 0, "maximum number of versions to list")

	rootCmd.AddCommand(cmd.Command)
}

type versionsRunner struct {
	typ        string
	constraint string
	limit      int
}

var (
	styleVersionID   = lipgloss.NewStyle().Width(24)
	styleVersionTime = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).PaddingLeft(2)
)

func (r *versionsRunner) RunE(cmd *cobra.Command, args []string) error {
	inst, err := instance()
	if err != nil {
		return err
	}
	manifest, err := newResolver(inst).VersionManifest(cmd.Context())
	if err != nil {
		return err
	}

	versions, err := filterVersions(manifest.Versions, r.typ, r.constraint)
	if err != nil {
		return err
	}
	if r.limit > 0 && len(versions) > r.limit {
		versions = versions[:r.limit]
	}

	out := cmd.OutOrStdout()
	for _, entry := range versions {
		line := styleVersionID.Render(utils.PrettyVersion(entry))
		if released, err := time.Parse(time.RFC3339, entry.ReleaseTime); err == nil {
			line += styleVersionTime.Render(humanize.Time(released))
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

// filterVersions returns the versions of type typ ("all" matches every type) matching constraint.
// Ids that are not semver (eg. snapshots like "23w31a") never match a constraint.
func filterVersions(versions []minecraft.VersionEntry, typ string, constraint string) ([]minecraft.VersionEntry, error) {
	var c *semver.Constraints
	if constraint != "" {
		var err error
		if c, err = semver.NewConstraint(constraint); err != nil {
			return nil, &commands.CliError{
				Text: fmt.Sprintf("invalid version constraint %q", constraint),
				Help: "Use constraints like \">=1.18\" or \"~1.19\"",
				Err:  err,
			}
		}
	}

	filtered := make([]minecraft.VersionEntry, 0, len(versions))
	for _, entry := range versions {
		if typ != "all" && !strings.EqualFold(entry.Type, typ) {
			continue
		}
		if c != nil {
			version, err := semver.NewVersion(entry.ID)
			if err != nil || !c.Check(version) {
				continue
			}
		}
		filtered = append(filtered, entry)
	}
	return filtered, nil
}
