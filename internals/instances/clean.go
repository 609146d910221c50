package instances

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/minepkg/mclaunch/internals/cmdlog"
)

// Clean removes the extracted natives of version id and leftover partial
// downloads below the instance. Downloaded & verified files are kept.
func (i *Instance) Clean(ctx context.Context, id string) error {
	logger := cmdlog.FromContext(ctx)

	nativesDir := i.NativesDir(id)
	logger.Debug("removing natives", "dir", nativesDir)
	if err := os.RemoveAll(nativesDir); err != nil {
		return err
	}

	for _, dir := range []string{i.LibrariesDir(), i.AssetsDir(), i.VersionsDir()} {
		err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
			// dir does not exist. this is fine it is "clean" then
			if os.IsNotExist(err) {
				return nil
			}
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".part") {
				return nil
			}
			logger.Debug("removing partial download", "path", p)
			return os.Remove(p)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
