package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/minecraft"
)

// ResolveAssetIndex returns the asset index of a resolved manifest.
// A local copy is used if its sha1 matches, otherwise the index is fetched and stored.
// Manifests without an asset index return nil.
func (r *Resolver) ResolveAssetIndex(ctx context.Context, man *minecraft.LaunchManifest) (*minecraft.AssetIndex, error) {
	ref := man.AssetIndex
	if ref == nil {
		return nil, nil
	}
	id := ref.ID
	if id == "" {
		id = man.AssetIndexName()
	}
	logger := cmdlog.FromContext(ctx)

	var localPath string
	if r.Layout != nil && validID(id) {
		localPath = filepath.Join(r.Layout.AssetsDir(), "indexes", id+".json")
		data, err := os.ReadFile(localPath)
		switch {
		case err == nil && checkSha1(data, ref.SHA1) == nil:
			index, err := minecraft.ParseAssetIndex(id, data)
			if err == nil {
				return index, nil
			}
			logger.Warn("ignoring invalid local asset index", "path", localPath, "err", err)
		case err == nil:
			logger.Debug("local asset index is outdated", "path", localPath)
		case !errors.Is(err, os.ErrNotExist):
			logger.Warn("could not read local asset index", "path", localPath, "err", err)
		}
	}

	logger.Debug("fetching asset index", "id", id, "url", ref.URL)
	data, err := r.get(ctx, ref.URL)
	if err != nil {
		return nil, &ManifestFetchError{ID: id, URL: ref.URL, Err: err}
	}
	if err := checkSha1(data, ref.SHA1); err != nil {
		return nil, &ManifestFetchError{ID: id, URL: ref.URL, Err: err}
	}
	index, err := minecraft.ParseAssetIndex(id, data)
	if err != nil {
		return nil, err
	}

	if localPath != "" {
		if err := writeFileAtomic(localPath, data); err != nil {
			logger.Warn("could not cache asset index", "path", localPath, "err", err)
		}
	}
	return index, nil
}
