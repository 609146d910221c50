package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"github.com/minepkg/mclaunch/internals/resolver"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding config values (MCLAUNCH_ROOT …)
const EnvPrefix = "MCLAUNCH"

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
	KindDuration
)

// Kind is the type of a config value
type Kind int

// Entry is a known config key
type Entry struct {
	Kind    Kind
	Default interface{}
	Help    string
}

// Entries are all known config keys
var Entries = map[string]Entry{
	"root":           {KindString, "", "Directory versions, libraries & assets are installed to (default $HOME/.mclaunch)"},
	"concurrency":    {KindInt, downloadmgr.DefaultConcurrency, "Number of parallel downloads"},
	"retries":        {KindInt, downloadmgr.DefaultMaxAttempts - 1, "Retries for failed downloads"},
	"timeout":        {KindDuration, downloadmgr.DefaultTimeout, "Timeout of a single request (manifests & downloads)"},
	"manifestURL":    {KindString, resolver.DefaultManifestURL, "URL of the version manifest"},
	"resourcesURL":   {KindString, minecraft.DefaultResourcesURL, "Base URL asset objects are downloaded from"},
	"apiRateLimit":   {KindFloat, 0.0, "Maximum manifest requests per second (0 is unlimited)"},
	"nonInteractive": {KindBool, false, "Never prompt"},
	"verbose":        {KindBool, false, "Verbose logging"},
	"launcherName":   {KindString, "mclaunch", "Launcher name passed to the game"},
}

// ErrUnknownKey is returned for keys that are not in [Entries]
var ErrUnknownKey = errors.New("unknown config key")

// Keys returns all known keys sorted by name
func Keys() []string {
	keys := make([]string, 0, len(Entries))
	for k := range Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// lookup finds an entry ignoring the case of key (viper keys are case insensitive)
func lookup(key string) (string, Entry, bool) {
	for k, e := range Entries {
		if strings.EqualFold(k, key) {
			return k, e, true
		}
	}
	return "", Entry{}, false
}

// Path returns the config file path ($XDG_CONFIG_HOME/mclaunch/config.toml)
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "mclaunch", "config.toml"), nil
}

// New returns a viper instance with all defaults set that reads MCLAUNCH_ environment variables
func New() *viper.Viper {
	v := viper.New()
	for key, e := range Entries {
		v.SetDefault(key, e.Default)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path into v. A missing file is no error
func Load(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil
		}
		return errors.Wrapf(err, "reading config file %s", path)
	}
	return nil
}

// Parse converts value to the type of key
func Parse(key string, value string) (string, interface{}, error) {
	name, entry, ok := lookup(key)
	if !ok {
		return "", nil, errors.Wrapf(ErrUnknownKey, "%q", key)
	}

	var (
		parsed interface{}
		err    error
	)
	switch entry.Kind {
	case KindString:
		parsed = value
	case KindBool:
		parsed, err = parseBool(value)
	case KindInt:
		parsed, err = strconv.Atoi(value)
	case KindFloat:
		parsed, err = strconv.ParseFloat(value, 64)
	case KindDuration:
		parsed, err = time.ParseDuration(value)
	default:
		err = fmt.Errorf("uncovered config value type %d", entry.Kind)
	}
	if err != nil {
		return "", nil, errors.Wrapf(err, "invalid value for %s", name)
	}
	return name, parsed, nil
}

// Get returns the current value of key
func Get(v *viper.Viper, key string) (string, interface{}, error) {
	name, _, ok := lookup(key)
	if !ok {
		return "", nil, errors.Wrapf(ErrUnknownKey, "%q", key)
	}
	return name, v.Get(name), nil
}

// Set parses value, sets it on v and writes all explicitly set values to path.
// It returns the previous value
func Set(v *viper.Viper, path string, key string, value string) (interface{}, error) {
	name, parsed, err := Parse(key, value)
	if err != nil {
		return nil, err
	}

	// only persist what was in the file before plus the new value
	file := viper.New()
	if err := Load(file, path); err != nil {
		return nil, err
	}
	previous := v.Get(name)
	file.Set(name, persistable(parsed))
	v.Set(name, parsed)

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, err
	}
	if err := file.WriteConfigAs(path); err != nil {
		return nil, errors.Wrap(err, "writing config file")
	}
	return previous, nil
}

// persistable converts values toml can not encode
func persistable(v interface{}) interface{} {
	if d, ok := v.(time.Duration); ok {
		return d.String()
	}
	return v
}

// TOML renders all known keys with their current values
func TOML(v *viper.Viper) (string, error) {
	tree, err := toml.TreeFromMap(map[string]interface{}{})
	if err != nil {
		return "", err
	}
	for _, key := range Keys() {
		var value interface{}
		switch x := v.Get(key).(type) {
		case time.Duration:
			value = x.String()
		case int:
			value = int64(x)
		default:
			value = x
		}
		tree.SetWithComment(key, Entries[key].Help, false, value)
	}
	return tree.String(), nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q. Use \"true\" or \"false\"", s)
	}
}
