package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/minecraft"
)

// DefaultManifestURL is the official version manifest
const DefaultManifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"

// DefaultCacheSize is the number of parsed manifests a resolver keeps in memory
const DefaultCacheSize = 64

// DefaultTimeout is the timeout of a single document request
const DefaultTimeout = 30 * time.Second

// Layout is the part of the installation layout the resolver persists documents to
type Layout interface {
	VersionsDir() string
	AssetsDir() string
}

// Resolver fetches version manifests and merges them with their parents.
// The in-memory cache belongs to the resolver, use a new resolver for a fresh view.
// A Resolver is safe for concurrent use.
type Resolver struct {
	// ManifestURL is the url of the version manifest
	ManifestURL string
	// Layout is used to cache documents on disk. Can be nil
	Layout Layout
	// Timeout is the timeout of a single request. 0 disables it
	Timeout time.Duration

	client *http.Client
	cache  *lru.Cache[string, *minecraft.LaunchManifest]

	indexMu sync.Mutex
	index   *minecraft.VersionManifest
}

// New returns a new resolver
func New(client *http.Client, layout Layout) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	// only fails for a negative size
	cache, _ := lru.New[string, *minecraft.LaunchManifest](DefaultCacheSize)
	return &Resolver{
		ManifestURL: DefaultManifestURL,
		Layout:      layout,
		Timeout:     DefaultTimeout,
		client:      client,
		cache:       cache,
	}
}

// VersionManifest returns the version manifest. It is fetched once per resolver
func (r *Resolver) VersionManifest(ctx context.Context) (*minecraft.VersionManifest, error) {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()

	if r.index != nil {
		return r.index, nil
	}

	cmdlog.FromContext(ctx).Debug("fetching version manifest", "url", r.ManifestURL)
	data, err := r.get(ctx, r.ManifestURL)
	if err != nil {
		return nil, &ManifestFetchError{ID: "version_manifest", URL: r.ManifestURL, Err: err}
	}
	index, err := minecraft.ParseVersionManifest(data)
	if err != nil {
		return nil, err
	}
	r.index = index
	return index, nil
}

// FetchManifestIndex returns all available versions (newest first)
func (r *Resolver) FetchManifestIndex(ctx context.Context) ([]minecraft.VersionEntry, error) {
	index, err := r.VersionManifest(ctx)
	if err != nil {
		return nil, err
	}
	return index.Versions, nil
}

// Resolve returns the fully merged manifest for the given version id.
// `latest` and `latest-snapshot` are resolved using the version manifest.
// The returned manifest is never shared, callers may keep it.
func (r *Resolver) Resolve(ctx context.Context, id string) (*minecraft.LaunchManifest, error) {
	logger := cmdlog.FromContext(ctx)

	if id == minecraft.AliasLatest || id == minecraft.AliasLatestSnapshot {
		index, err := r.VersionManifest(ctx)
		if err != nil {
			return nil, err
		}
		resolved := index.ResolveAlias(id)
		logger.Debug("resolved version alias", "alias", id, "version", resolved)
		id = resolved
	}

	// walk up the chain (child first)
	chain := make([]*minecraft.LaunchManifest, 0, 2)
	walked := make([]string, 0, 2)
	visited := make(map[string]bool)
	for current := id; current != ""; {
		walked = append(walked, current)
		if visited[current] {
			return nil, &ResolutionCycleError{Chain: walked}
		}
		visited[current] = true

		man, err := r.load(ctx, current)
		if err != nil {
			return nil, err
		}
		chain = append(chain, man)
		current = man.InheritsFrom
	}

	// merge down from the root ancestor
	merged := &minecraft.LaunchManifest{}
	for i := len(chain) - 1; i >= 0; i-- {
		merged = minecraft.MergeManifests(merged, chain[i])
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("resolved version", "version", id, "chain", walked, "libraries", len(merged.Libraries))
	return merged, nil
}

// load returns a single unmerged manifest from memory, disk or the remote api (in that order)
func (r *Resolver) load(ctx context.Context, id string) (*minecraft.LaunchManifest, error) {
	if man, ok := r.cache.Get(id); ok {
		return man, nil
	}

	if !validID(id) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, id)
	}

	logger := cmdlog.FromContext(ctx)
	localPath := r.descriptorPath(id)
	if localPath != "" {
		data, err := os.ReadFile(localPath)
		switch {
		case err == nil && r.outdated(id, data):
			logger.Debug("local manifest is outdated", "path", localPath)
		case err == nil:
			man, err := minecraft.ParseLaunchManifest(id, data)
			if err == nil {
				r.cache.Add(id, man)
				return man, nil
			}
			// a broken local copy is fetched again (if possible)
			logger.Warn("ignoring invalid local manifest", "path", localPath, "err", err)
		case !errors.Is(err, os.ErrNotExist):
			logger.Warn("could not read local manifest", "path", localPath, "err", err)
		}
	}

	index, err := r.VersionManifest(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := index.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, id)
	}

	logger.Debug("fetching version", "version", id, "url", entry.URL)
	data, err := r.get(ctx, entry.URL)
	if err != nil {
		return nil, &ManifestFetchError{ID: id, URL: entry.URL, Err: err}
	}
	if err := checkSha1(data, entry.SHA1); err != nil {
		return nil, &ManifestFetchError{ID: id, URL: entry.URL, Err: err}
	}
	man, err := minecraft.ParseLaunchManifest(id, data)
	if err != nil {
		return nil, err
	}

	if localPath != "" {
		if err := writeFileAtomic(localPath, data); err != nil {
			logger.Warn("could not cache manifest", "path", localPath, "err", err)
		}
	}
	r.cache.Add(id, man)
	return man, nil
}

// outdated reports whether data does not match the sha1 the version manifest lists for id.
// Local copies are only checked if the version manifest has already been fetched.
func (r *Resolver) outdated(id string, data []byte) bool {
	r.indexMu.Lock()
	index := r.index
	r.indexMu.Unlock()
	if index == nil {
		return false
	}
	entry, ok := index.Find(id)
	return ok && checkSha1(data, entry.SHA1) != nil
}

// validID rejects ids that can not be used as a directory name
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

func (r *Resolver) descriptorPath(id string) string {
	if r.Layout == nil {
		return ""
	}
	return filepath.Join(r.Layout.VersionsDir(), id, id+".json")
}
