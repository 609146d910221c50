package instances

import (
	"os"
	"path/filepath"
)

// Instance describes the on-disk layout of a launcher installation
type Instance struct {
	// GlobalDir is the directory containing everything required to run minecraft.
	// this includes the libraries, assets & versions folder
	// it defaults to $HOME/.mclaunch
	GlobalDir string
}

// New returns an instance rooted at globalDir
func New(globalDir string) *Instance {
	return &Instance{GlobalDir: globalDir}
}

// DefaultGlobalDir returns $HOME/.mclaunch
func DefaultGlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mclaunch"), nil
}

// VersionsDir returns the path to the versions directory
func (i *Instance) VersionsDir() string {
	return filepath.Join(i.GlobalDir, "versions")
}

// AssetsDir returns the path to the assets directory
func (i *Instance) AssetsDir() string {
	return filepath.Join(i.GlobalDir, "assets")
}

// LibrariesDir returns the path to the libraries directory
func (i *Instance) LibrariesDir() string {
	return filepath.Join(i.GlobalDir, "libraries")
}

// VersionDir returns the directory of a single version
func (i *Instance) VersionDir(id string) string {
	return filepath.Join(i.VersionsDir(), id)
}

// NativesDir returns the directory the natives of version id are extracted to
func (i *Instance) NativesDir(id string) string {
	return filepath.Join(i.VersionDir(id), "natives")
}

// GameDir returns the default game directory (saves, options & logs) of version id
func (i *Instance) GameDir(id string) string {
	return filepath.Join(i.GlobalDir, "instances", id)
}
