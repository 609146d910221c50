package launcher

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/minecraft"
)

var (
	// ErrMissingValue is wrapped by [MissingValueError]
	ErrMissingValue = errors.New("missing value for launch argument")
	// ErrMissingClient is returned if the installed tasks contain no client jar
	ErrMissingClient = errors.New("no client jar installed")
)

// MissingValueError is returned if an argument uses a ${variable} that is not set
type MissingValueError struct {
	Key string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("%s: ${%s}", ErrMissingValue, e.Key)
}

func (e *MissingValueError) Unwrap() error {
	return ErrMissingValue
}

// DefaultLegacyJVMArgs are used for manifests without jvm arguments (before 1.13)
var DefaultLegacyJVMArgs = []minecraft.Argument{
	minecraft.Literal("-Djava.library.path=${natives_directory}"),
	minecraft.Literal("-cp"),
	minecraft.Literal("${classpath}"),
}

var variableRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// LaunchSpec is everything required to start minecraft
type LaunchSpec struct {
	Classpath  []string `json:"classpath" yaml:"classpath"`
	MainClass  string   `json:"mainClass" yaml:"mainClass"`
	JVMArgs    []string `json:"jvmArgs" yaml:"jvmArgs"`
	GameArgs   []string `json:"gameArgs" yaml:"gameArgs"`
	NativesDir string   `json:"nativesDir" yaml:"nativesDir"`
	WorkingDir string   `json:"workingDir" yaml:"workingDir"`
}

// Command returns the full command line (java binary first)
func (s *LaunchSpec) Command(java string) []string {
	cmd := make([]string, 0, len(s.JVMArgs)+len(s.GameArgs)+2)
	cmd = append(cmd, java)
	cmd = append(cmd, s.JVMArgs...)
	cmd = append(cmd, s.MainClass)
	return append(cmd, s.GameArgs...)
}

// Builder builds launch specs. It does no io
type Builder struct {
	// Platform is used to evaluate argument rules (including features like "is_demo_user")
	Platform minecraft.Platform
	// Separator joins the classpath. Defaults to the os path list separator
	Separator string
	// LegacyJVMArgs are used if the manifest has no jvm arguments
	LegacyJVMArgs []minecraft.Argument
	// ExtraJVMArgs are prepended to the jvm arguments as-is (eg. "-Xmx2048M")
	ExtraJVMArgs []string
}

// NewBuilder returns a builder with [DefaultLegacyJVMArgs]
func NewBuilder(p minecraft.Platform, separator string) *Builder {
	return &Builder{
		Platform:      p,
		Separator:     separator,
		LegacyJVMArgs: DefaultLegacyJVMArgs,
	}
}

// Build returns the launch spec for man. installed are the downloaded tasks in plan order,
// vars are the values for the argument ${variables} (auth_player_name, game_directory …).
// Computed values (classpath, natives_directory, version_name …) take precedence over vars.
// A variable that is set nowhere fails the build.
func (b *Builder) Build(man *minecraft.LaunchManifest, installed []downloadmgr.Task, nativesDir string, vars map[string]string) (*LaunchSpec, error) {
	if man.MainClass == "" {
		return nil, &minecraft.ManifestParseError{ID: man.ID, Field: "mainClass", Err: minecraft.ErrMissingField}
	}

	classpath := make([]string, 0, len(installed))
	client := ""
	for _, task := range installed {
		switch task.Kind {
		case downloadmgr.KindLibrary:
			classpath = append(classpath, task.Target)
		case downloadmgr.KindClient:
			client = task.Target
		}
	}
	if client == "" {
		return nil, ErrMissingClient
	}
	// finally append the minecraft.jar
	classpath = append(classpath, client)

	separator := b.Separator
	if separator == "" {
		separator = string(os.PathListSeparator)
	}

	computed := map[string]string{
		"classpath":           strings.Join(classpath, separator),
		"classpath_separator": separator,
		"natives_directory":   nativesDir,
		"version_name":        man.ID,
		"version_type":        man.Type,
		"assets_index_name":   man.AssetIndexName(),
	}
	lookup := func(key string) (string, bool) {
		if v, ok := computed[key]; ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}

	workingDir, ok := vars["game_directory"]
	if !ok || workingDir == "" {
		return nil, &MissingValueError{Key: "game_directory"}
	}

	jvmTemplates := man.JVMArguments()
	if len(jvmTemplates) == 0 {
		jvmTemplates = b.LegacyJVMArgs
	}
	jvmArgs, err := b.resolve(jvmTemplates, lookup)
	if err != nil {
		return nil, err
	}
	gameArgs, err := b.resolve(man.GameArguments(), lookup)
	if err != nil {
		return nil, err
	}

	return &LaunchSpec{
		Classpath:  classpath,
		MainClass:  man.MainClass,
		JVMArgs:    append(append([]string{}, b.ExtraJVMArgs...), jvmArgs...),
		GameArgs:   gameArgs,
		NativesDir: nativesDir,
		WorkingDir: workingDir,
	}, nil
}

// resolve evaluates the rules of each argument and replaces all ${variables}
func (b *Builder) resolve(templates []minecraft.Argument, lookup func(string) (string, bool)) ([]string, error) {
	args := make([]string, 0, len(templates))
	for _, arg := range templates {
		if !minecraft.Evaluate(arg.Rules, b.Platform) {
			continue
		}
		for _, template := range arg.Values() {
			replaced, err := substitute(template, lookup)
			if err != nil {
				return nil, err
			}
			args = append(args, replaced)
		}
	}
	return args, nil
}

// substitute replaces all ${variables} in template. The first missing variable is returned as error
func substitute(template string, lookup func(string) (string, bool)) (string, error) {
	var missing string
	replaced := variableRegex.ReplaceAllStringFunc(template, func(match string) string {
		key := match[2 : len(match)-1]
		v, ok := lookup(key)
		if !ok && missing == "" {
			missing = key
		}
		return v
	})
	if missing != "" {
		return "", &MissingValueError{Key: missing}
	}
	return replaced, nil
}
