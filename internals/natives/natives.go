package natives

import (
	"archive/zip"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dchest/uniuri"
	kzip "github.com/klauspost/compress/zip"
	"github.com/magiconair/properties"
	"github.com/mholt/archiver/v3"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// MarkerFile records which archives (and which versions of them) were extracted into a directory
const MarkerFile = ".natives.properties"

// DefaultConcurrency is the number of archives extracted in parallel
const DefaultConcurrency = 4

// ErrUnsafePath is returned for archive entries that would be written outside of the natives directory
var ErrUnsafePath = errors.New("archive entry escapes the target directory")

// Failure is a native archive that could not be extracted
type Failure struct {
	Library string
	Archive string
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("extracting natives of %s (%s) failed: %v", f.Library, f.Archive, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Report lists the libraries per outcome (in task order)
type Report struct {
	Extracted []string
	Skipped   []string
	Failed    []Failure
}

// OK returns true if nothing failed
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}

// Err joins all failures (nil if there are none)
func (r *Report) Err() error {
	errs := make([]error, 0, len(r.Failed))
	for i := range r.Failed {
		errs = append(errs, &r.Failed[i])
	}
	return errors.Join(errs...)
}

// Extractor unpacks native archives
type Extractor struct {
	Concurrency int
}

// New returns an extractor with the default concurrency
func New() *Extractor {
	return &Extractor{Concurrency: DefaultConcurrency}
}

type outcome int

const (
	outcomeExtracted outcome = iota
	outcomeSkipped
	outcomeFailed
)

type result struct {
	index   int
	library string
	outcome outcome
	failure *Failure
}

// Extract unpacks every native task into dir. Other task kinds are ignored.
// Archives that were already extracted with the same sha1 are skipped.
// A failing archive does not stop the others.
func (e *Extractor) Extract(ctx context.Context, tasks []downloadmgr.Task, dir string) *Report {
	logger := cmdlog.FromContext(ctx)
	report := &Report{}

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		for _, t := range tasks {
			if t.Kind == downloadmgr.KindNative {
				report.Failed = append(report.Failed, Failure{Library: t.Library, Archive: t.Target, Err: err})
			}
		}
		return report
	}

	markerPath := filepath.Join(dir, MarkerFile)
	marker, err := properties.LoadFile(markerPath, properties.UTF8)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("ignoring invalid natives marker", "path", markerPath, "err", err)
		}
		marker = properties.NewProperties()
	}

	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var mu sync.Mutex
	results := make([]result, 0, len(tasks))
	g := errgroup.Group{}
	g.SetLimit(concurrency)

	for i, task := range tasks {
		i, task := i, task // per-iteration copy for Go < 1.22 loop semantics
		if task.Kind != downloadmgr.KindNative {
			continue
		}
		g.Go(func() error {
			r := result{index: i, library: task.Library}
			sum, err := archiveSha1(task)
			if err == nil {
				mu.Lock()
				previous, ok := marker.Get(task.Library)
				mu.Unlock()
				if ok && previous == sum {
					r.outcome = outcomeSkipped
				} else if err = extractArchive(ctx, task.Target, dir, task.Exclude); err == nil {
					mu.Lock()
					marker.Set(task.Library, sum)
					mu.Unlock()
				}
			}
			if err != nil {
				mu.Lock()
				marker.Delete(task.Library)
				mu.Unlock()
				r.outcome = outcomeFailed
				r.failure = &Failure{Library: task.Library, Archive: task.Target, Err: err}
			}

			mu.Lock()
			results = append(results, r)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	if len(results) != 0 {
		if err := writeMarker(markerPath, marker); err != nil {
			logger.Warn("could not write natives marker", "path", markerPath, "err", err)
		}
	}

	// back to task order
	sortResults(results)
	for _, r := range results {
		switch r.outcome {
		case outcomeExtracted:
			report.Extracted = append(report.Extracted, r.library)
		case outcomeSkipped:
			report.Skipped = append(report.Skipped, r.library)
		case outcomeFailed:
			report.Failed = append(report.Failed, *r.failure)
		}
	}
	logger.Debug("natives extracted", "dir", dir, "extracted", len(report.Extracted), "skipped", len(report.Skipped), "failed", len(report.Failed))
	return report
}

func sortResults(results []result) {
	slices.SortFunc(results, func(a, b result) int { return a.index - b.index })
}

func archiveSha1(task downloadmgr.Task) (string, error) {
	if task.SHA1 != "" {
		if _, err := os.Stat(task.Target); err != nil {
			return "", err
		}
		return task.SHA1, nil
	}
	f, err := os.Open(task.Target)
	if err != nil {
		return "", err
	}
	defer f.Close()
	hasher := sha1.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// extractArchive writes all entries of the zip archive into dir
func extractArchive(ctx context.Context, archive string, dir string, exclude []string) error {
	z := archiver.NewZip()
	return z.Walk(archive, func(f archiver.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.IsDir() {
			return nil
		}
		name := entryName(f)
		if Excluded(name, exclude) {
			return nil
		}

		target, err := safeJoin(dir, name)
		if err != nil {
			return err
		}
		return writeEntry(target, f)
	})
}

// entryName returns the full path of an entry inside the archive
func entryName(f archiver.File) string {
	switch h := f.Header.(type) {
	case zip.FileHeader:
		return h.Name
	case kzip.FileHeader:
		return h.Name
	}
	return f.Name()
}

// Excluded reports whether the archive entry name matches one of the exclusion patterns.
// Patterns match as a path prefix ("META-INF/") or as a glob ("*.git").
func Excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if strings.HasPrefix(name, p) {
			return true
		}
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

func safeJoin(dir string, name string) (string, error) {
	if path.IsAbs(name) || strings.Contains(name, `\`) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func writeEntry(target string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		return err
	}
	tmp := target + "." + uniuri.New() + ".part"
	dest, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		os.Remove(tmp)
		return err
	}
	if err := dest.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func writeMarker(p string, marker *properties.Properties) error {
	tmp := p + "." + uniuri.New() + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := marker.Write(f, properties.UTF8); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}
