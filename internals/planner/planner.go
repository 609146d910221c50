package planner

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Layout is the part of the installation layout tasks are planned into
type Layout interface {
	LibrariesDir() string
	AssetsDir() string
	VersionsDir() string
}

// ErrUnsafePath is returned for manifest paths that would end up outside of the layout
var ErrUnsafePath = errors.New("path escapes the installation directory")

// InvalidLibraryError is returned for libraries whose files can not be determined
type InvalidLibraryError struct {
	Library string
	Err     error
}

func (e *InvalidLibraryError) Error() string {
	return fmt.Sprintf("invalid library %q: %v", e.Library, e.Err)
}

func (e *InvalidLibraryError) Unwrap() error {
	return e.Err
}

// Planner turns a resolved manifest into download tasks. Planning does no io
type Planner struct {
	// ResourcesURL is the base url for asset objects
	ResourcesURL string
	// IncludeServer also plans the server jar (if the manifest has one)
	IncludeServer bool
}

// New returns a planner using the official resources url
func New() *Planner {
	return &Planner{ResourcesURL: minecraft.DefaultResourcesURL}
}

// Plan returns the ordered tasks required to run man on the platform p:
// libraries (artifact, then native) in manifest order, the client jar,
// the server jar (if included) and the asset objects sorted by their virtual path.
// Tasks with the same target are merged into one, keeping the position of the first.
// assets can be nil.
func (pl *Planner) Plan(man *minecraft.LaunchManifest, assets *minecraft.AssetIndex, p minecraft.Platform, layout Layout) ([]downloadmgr.Task, error) {
	plan := newPlan()

	for _, lib := range man.Libraries.Required(p) {
		artifact, ok, err := lib.BaseArtifact()
		if err != nil {
			return nil, &InvalidLibraryError{Library: lib.Name, Err: err}
		}
		if ok {
			target, err := safeJoin(layout.LibrariesDir(), artifact.Path)
			if err != nil {
				return nil, &InvalidLibraryError{Library: lib.Name, Err: err}
			}
			plan.add(downloadmgr.Task{
				URL:     artifact.URL,
				Target:  target,
				SHA1:    artifact.SHA1,
				Size:    artifact.Size,
				Kind:    downloadmgr.KindLibrary,
				Library: lib.Name,
			})
		}

		native, _, err := lib.NativeArtifact(p)
		if err != nil {
			return nil, &InvalidLibraryError{Library: lib.Name, Err: err}
		}
		if native != nil {
			target, err := safeJoin(layout.LibrariesDir(), native.Path)
			if err != nil {
				return nil, &InvalidLibraryError{Library: lib.Name, Err: err}
			}
			plan.add(downloadmgr.Task{
				URL:     native.URL,
				Target:  target,
				SHA1:    native.SHA1,
				Size:    native.Size,
				Kind:    downloadmgr.KindNative,
				Library: lib.Name,
				Exclude: lib.ExcludePatterns(),
			})
		}
	}

	jar := man.JarName()
	if !safeName(jar) {
		field := "jar"
		if man.Jar == "" {
			field = "id"
		}
		return nil, &minecraft.ManifestParseError{ID: man.ID, Field: field, Err: fmt.Errorf("%w: %s", ErrUnsafePath, jar)}
	}
	if client, ok := man.Download(minecraft.DownloadClient); ok {
		plan.add(pl.jarTask(client, layout, jar, jar+".jar", downloadmgr.KindClient))
	}
	if server, ok := man.Download(minecraft.DownloadServer); ok && pl.IncludeServer {
		plan.add(pl.jarTask(server, layout, jar, jar+"-server.jar", downloadmgr.KindServer))
	}

	if assets != nil {
		names := maps.Keys(assets.Objects)
		slices.Sort(names)
		for _, name := range names {
			obj := assets.Objects[name]
			if !minecraft.ValidHash(obj.Hash) {
				return nil, &minecraft.ManifestParseError{
					ID:    man.AssetIndexName(),
					Field: "objects." + name + ".hash",
					Err:   minecraft.ErrInvalidHash,
				}
			}
			plan.add(downloadmgr.Task{
				URL:    obj.DownloadURL(pl.ResourcesURL),
				Target: filepath.Join(layout.AssetsDir(), "objects", obj.Hash[:2], obj.Hash),
				SHA1:   obj.Hash,
				Size:   obj.Size,
				Kind:   downloadmgr.KindAsset,
			})
		}
	}

	return plan.tasks, nil
}

func (pl *Planner) jarTask(a minecraft.Artifact, layout Layout, version string, file string, kind downloadmgr.Kind) downloadmgr.Task {
	return downloadmgr.Task{
		URL:    a.URL,
		Target: filepath.Join(layout.VersionsDir(), version, file),
		SHA1:   a.SHA1,
		Size:   a.Size,
		Kind:   kind,
	}
}

// safeJoin joins the slash separated manifest path name to dir.
// Absolute paths and paths leaving dir are rejected.
func safeJoin(dir string, name string) (string, error) {
	if name == "" || path.IsAbs(name) || filepath.IsAbs(name) || strings.Contains(name, `\`) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return target, nil
}

// safeName reports whether name can be used as a single directory name
func safeName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// plan deduplicates tasks by their target
type plan struct {
	tasks    []downloadmgr.Task
	position map[string]int
}

func newPlan() *plan {
	return &plan{position: make(map[string]int)}
}

func (p *plan) add(t downloadmgr.Task) {
	if i, ok := p.position[t.Target]; ok {
		// same target means same content, the metadata of the last one wins
		p.tasks[i] = t
		return
	}
	p.position[t.Target] = len(p.tasks)
	p.tasks = append(p.tasks, t)
}
