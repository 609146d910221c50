package minecraft

import (
	"fmt"
	"path"
	"strings"
)

// DefaultLibrariesURL is used for libraries that come without download information
const DefaultLibrariesURL = "https://libraries.minecraft.net/"

// Libraries as a collection of minecraft libs
type Libraries []Library

// Required returns only the libraries whose rules allow them on the given platform
func (l Libraries) Required(p Platform) Libraries {
	required := make(Libraries, 0, len(l))
	for _, lib := range l {
		if Evaluate(lib.Rules, p) {
			required = append(required, lib)
		}
	}
	return required
}

// Library is a minecraft library
type Library struct {
	// Name is the maven coordinate of this library (group:artifact:version[:classifier][@ext])
	Name      string           `json:"name"`
	Downloads LibraryDownloads `json:"downloads"`
	// URL is the base URL of a maven repository. It is used by libraries that do not
	// have `Downloads` set (fabric for example)
	URL string `json:"url,omitempty"`
	// Rules is a list of rules that determine whether this library should be included.
	// If no rules are specified, the library is included by default.
	Rules []Rule `json:"rules,omitempty"`
	// Natives is a map of OS names to native classifier names.
	// This field is no longer used after 1.19
	// Newer library versions extract the native library from a jar at runtime.
	Natives map[string]string `json:"natives,omitempty"`
	// Extract configures how the native archive is extracted
	Extract *ExtractRules `json:"extract,omitempty"`
}

// LibraryDownloads are the downloadable files of a library
type LibraryDownloads struct {
	Artifact *Artifact `json:"artifact,omitempty"`
	// Classifiers is a list of additional artifacts.
	// It is used to download native libraries.
	// The `Natives` field is used to determine which classifier to use.
	Classifiers map[string]Artifact `json:"classifiers,omitempty"`
}

// ExtractRules contains the exclusion patterns for native archives
type ExtractRules struct {
	Exclude []string `json:"exclude,omitempty"`
}

// ExcludePatterns returns the extraction exclusion patterns (may be nil)
func (l *Library) ExcludePatterns() []string {
	if l.Extract == nil {
		return nil
	}
	return l.Extract.Exclude
}

// BaseArtifact returns the main artifact of this library.
// Libraries that only ship natives (they only have classifiers) have no base artifact.
// Libraries without any download information get one derived from their maven coordinate.
func (l *Library) BaseArtifact() (*Artifact, bool, error) {
	if l.Downloads.Artifact != nil {
		a := *l.Downloads.Artifact
		if a.Path == "" {
			p, err := MavenPath(l.Name, "")
			if err != nil {
				return nil, false, err
			}
			a.Path = p
		}
		if a.URL == "" {
			a.URL = l.repository() + a.Path
		}
		return &a, true, nil
	}

	if len(l.Downloads.Classifiers) != 0 {
		return nil, false, nil
	}

	p, err := MavenPath(l.Name, "")
	if err != nil {
		return nil, false, err
	}
	return &Artifact{Path: p, URL: l.repository() + p}, true, nil
}

// NativeArtifact returns the native classifier artifact for the given platform (if any)
func (l *Library) NativeArtifact(p Platform) (*Artifact, string, error) {
	classifier, ok := l.nativeClassifier(p)
	if !ok {
		return nil, "", nil
	}

	if native, ok := l.Downloads.Classifiers[classifier]; ok {
		if native.Path == "" {
			mavenPath, err := MavenPath(l.Name, classifier)
			if err != nil {
				return nil, "", err
			}
			native.Path = mavenPath
		}
		if native.URL == "" {
			native.URL = l.repository() + native.Path
		}
		return &native, classifier, nil
	}

	// classifier is named in `natives` but has no download entry: derive it
	if l.Natives == nil {
		return nil, "", nil
	}
	mavenPath, err := MavenPath(l.Name, classifier)
	if err != nil {
		return nil, "", err
	}
	return &Artifact{Path: mavenPath, URL: l.repository() + mavenPath}, classifier, nil
}

func (l *Library) nativeClassifier(p Platform) (string, bool) {
	if l.Natives != nil {
		classifier, ok := l.Natives[p.OS]
		if !ok {
			return "", false
		}
		return strings.ReplaceAll(classifier, "${arch}", archBits(p.Arch)), true
	}

	candidates := []string{"natives-" + p.OS}
	if p.OS == "osx" {
		candidates = append(candidates, "natives-macos")
	}
	for _, c := range candidates {
		if _, ok := l.Downloads.Classifiers[c]; ok {
			return c, true
		}
	}
	return "", false
}

func (l *Library) repository() string {
	if l.URL == "" {
		return DefaultLibrariesURL
	}
	if !strings.HasSuffix(l.URL, "/") {
		return l.URL + "/"
	}
	return l.URL
}

func archBits(arch string) string {
	switch arch {
	case "x86", "arm32":
		return "32"
	default:
		return "64"
	}
}

// MavenPath returns the repository path of a maven coordinate like
// "org.ow2.asm:asm:9.3" or "org.lwjgl:lwjgl:3.3.1:natives-linux@jar".
// classifier overwrites the classifier in the coordinate if set.
func MavenPath(coordinate string, classifier string) (string, error) {
	ext := "jar"
	if at := strings.LastIndex(coordinate, "@"); at != -1 {
		ext = coordinate[at+1:]
		coordinate = coordinate[:at]
	}

	parts := strings.Split(coordinate, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return "", fmt.Errorf("invalid maven coordinate %q", coordinate)
	}
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("invalid maven coordinate %q", coordinate)
		}
	}

	group, name, version := parts[0], parts[1], parts[2]
	if classifier == "" && len(parts) == 4 {
		classifier = parts[3]
	}

	file := name + "-" + version
	if classifier != "" {
		file += "-" + classifier
	}
	file += "." + ext

	return path.Join(strings.ReplaceAll(group, ".", "/"), name, version, file), nil
}
