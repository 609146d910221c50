package launcher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	strcase "github.com/stoewer/go-strcase"
)

// LaunchFlags are cli flags used to fill the launch variables
type LaunchFlags struct {
	Username    string
	UUID        string
	AccessToken string
	UserType    string
	Demo        bool
	Width       int
	Height      int
	Ram         int
	Vars        []string
	Features    []string
}

// CmdLaunchFlags registers the launch flags on cmd
func CmdLaunchFlags(cmd *cobra.Command) *LaunchFlags {
	flags := LaunchFlags{}
	cmd.Flags().StringVarP(&flags.Username, "username", "u", "Player", "Player name")
	cmd.Flags().StringVar(&flags.UUID, "uuid", "00000000-0000-0000-0000-000000000000", "Player UUID")
	cmd.Flags().StringVar(&flags.AccessToken, "accessToken", "0", "Access token passed to the game")
	cmd.Flags().StringVar(&flags.UserType, "userType", "msa", "User type (msa, mojang or legacy)")
	cmd.Flags().BoolVar(&flags.Demo, "demo", false, "Start the game in demo mode")
	cmd.Flags().IntVar(&flags.Width, "width", 0, "Window width (requires --height)")
	cmd.Flags().IntVar(&flags.Height, "height", 0, "Window height (requires --width)")
	cmd.Flags().IntVar(&flags.Ram, "ram", 0, "Amount of RAM in MiB to use (defaults to a quarter of the system memory)")
	cmd.Flags().StringArrayVar(&flags.Vars, "var", nil, "Additional launch variable as key=value (can be repeated)")
	cmd.Flags().StringArrayVar(&flags.Features, "feature", nil, "Feature flag as name=true|false (can be repeated)")

	return &flags
}

// LaunchVars returns the ${variables} for the launch arguments
func (f *LaunchFlags) LaunchVars(gameDir string, assetsDir string, librariesDir string, launcherName string, launcherVersion string) (map[string]string, error) {
	vars := map[string]string{
		"auth_player_name":  f.Username,
		"auth_uuid":         f.UUID,
		"auth_access_token": f.AccessToken,
		"auth_session":      f.AccessToken,
		"auth_xuid":         "0",
		"clientid":          "0",
		"user_type":         f.UserType,
		"user_properties":   "{}",
		// minecraft game dir that contains saves, worlds & mods
		"game_directory": gameDir,
		// asset dir contains some shared minecraft resources like sounds & some textures
		"assets_root":       assetsDir,
		"game_assets":       assetsDir,
		"library_directory": librariesDir,
		"launcher_name":     launcherName,
		"launcher_version":  launcherVersion,
	}
	if f.Width != 0 && f.Height != 0 {
		vars["resolution_width"] = strconv.Itoa(f.Width)
		vars["resolution_height"] = strconv.Itoa(f.Height)
	}

	for _, kv := range f.Vars {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q: expected key=value", kv)
		}
		vars[key] = value
	}
	return vars, nil
}

// LaunchFeatures returns the feature flags used to evaluate argument rules.
// Names are normalized to snake case ("hasCustomResolution" → "has_custom_resolution").
func (f *LaunchFlags) LaunchFeatures() (map[string]bool, error) {
	features := map[string]bool{
		"is_demo_user":          f.Demo,
		"has_custom_resolution": f.Width != 0 && f.Height != 0,
	}
	for _, kv := range f.Features {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			value = "true"
		}
		enabled, err := strconv.ParseBool(value)
		if err != nil || name == "" {
			return nil, fmt.Errorf("invalid --feature %q: expected name=true|false", kv)
		}
		features[strcase.SnakeCase(name)] = enabled
	}
	return features, nil
}

// JVMArgs returns the memory arguments
func (f *LaunchFlags) JVMArgs() []string {
	if f.Ram != 0 {
		return []string{fmt.Sprintf("-Xms%dM", f.Ram), fmt.Sprintf("-Xmx%dM", f.Ram)}
	}
	return []string{fmt.Sprintf("-Xmx%dM", DefaultMaxMemoryMiB())}
}
