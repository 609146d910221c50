package minecraft

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// LaunchManifest is a version.json manifest that is used to launch minecraft instances.
// The same type is used for a single fetched document and for the merged result of an
// inheritance chain. Manifests are treated as immutable once they are parsed or merged.
type LaunchManifest struct {
	ID string `json:"id"`
	// InheritsFrom is the id of the parent version (if any)
	InheritsFrom string `json:"inheritsFrom,omitempty"`
	// Type is release, snapshot, old_beta …
	Type      string `json:"type,omitempty"`
	MainClass string `json:"mainClass,omitempty"`
	// MinecraftArguments are used before 1.13
	MinecraftArguments string `json:"minecraftArguments,omitempty"`
	// Arguments is the new (complicated) system
	Arguments *Arguments `json:"arguments,omitempty"`
	// Downloads contains at least "client", usually also "server" and the mappings
	Downloads   map[string]Artifact `json:"downloads,omitempty"`
	Libraries   Libraries           `json:"libraries,omitempty"`
	Jar         string              `json:"jar,omitempty"`
	Assets      string              `json:"assets,omitempty"`
	AssetIndex  *AssetIndexRef      `json:"assetIndex,omitempty"`
	JavaVersion *JavaVersion        `json:"javaVersion,omitempty"`
	ReleaseTime string              `json:"releaseTime,omitempty"`
}

// AssetIndexRef points to the asset index of a version
type AssetIndexRef struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1,omitempty"`
	Size      int64  `json:"size,omitempty"`
	TotalSize int64  `json:"totalSize,omitempty"`
	URL       string `json:"url"`
}

// JavaVersion is the java runtime a version wants
type JavaVersion struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}

// Download names
const (
	DownloadClient = "client"
	DownloadServer = "server"
)

// Download returns the named download entry
func (l *LaunchManifest) Download(name string) (Artifact, bool) {
	a, ok := l.Downloads[name]
	return a, ok && a.URL != ""
}

// JarName returns the name of the version the client jar belongs to
func (l *LaunchManifest) JarName() string {
	if l.Jar != "" {
		return l.Jar
	}
	return l.ID
}

// AssetIndexName returns the name of the asset index
func (l *LaunchManifest) AssetIndexName() string {
	if l.AssetIndex != nil && l.AssetIndex.ID != "" {
		return l.AssetIndex.ID
	}
	return l.Assets
}

// GameArguments returns the game argument templates.
// The structured `arguments` take precedence over the legacy `minecraftArguments`.
func (l *LaunchManifest) GameArguments() []Argument {
	if l.Arguments != nil {
		return l.Arguments.Game
	}
	return splitLegacyArguments(l.MinecraftArguments)
}

// JVMArguments returns the jvm argument templates. Legacy manifests have none.
func (l *LaunchManifest) JVMArguments() []Argument {
	if l.Arguments != nil {
		return l.Arguments.JVM
	}
	return nil
}

// MergeManifests returns a new manifest that is child layered on top of parent.
// Scalar fields of the child win if they are set, download entries are merged by name and
// libraries & arguments are concatenated (parent first). The legacy minecraftArguments
// string is a complete argument line, a child that sets it replaces the parent's.
// The result shares nothing with its inputs and neither input is modified.
func MergeManifests(parent *LaunchManifest, child *LaunchManifest) *LaunchManifest {
	parent = parent.Clone()
	child = child.Clone()
	merged := *child

	merged.Type = pick(child.Type, parent.Type)
	merged.MainClass = pick(child.MainClass, parent.MainClass)
	merged.MinecraftArguments = pick(child.MinecraftArguments, parent.MinecraftArguments)
	merged.Jar = pick(child.Jar, parent.Jar)
	merged.Assets = pick(child.Assets, parent.Assets)
	merged.ReleaseTime = pick(child.ReleaseTime, parent.ReleaseTime)

	if child.AssetIndex == nil {
		merged.AssetIndex = parent.AssetIndex
	}
	if child.JavaVersion == nil {
		merged.JavaVersion = parent.JavaVersion
	}

	merged.Downloads = make(map[string]Artifact, len(parent.Downloads)+len(child.Downloads))
	for name, a := range parent.Downloads {
		merged.Downloads[name] = a
	}
	for name, a := range child.Downloads {
		merged.Downloads[name] = a
	}

	merged.Libraries = make(Libraries, 0, len(parent.Libraries)+len(child.Libraries))
	merged.Libraries = append(merged.Libraries, parent.Libraries...)
	merged.Libraries = append(merged.Libraries, child.Libraries...)

	if parent.Arguments != nil || child.Arguments != nil {
		args := &Arguments{}
		for _, a := range []*Arguments{parent.Arguments, child.Arguments} {
			if a == nil {
				continue
			}
			args.Game = append(args.Game, a.Game...)
			args.JVM = append(args.JVM, a.JVM...)
		}
		merged.Arguments = args
	}

	return &merged
}

func pick(child string, parent string) string {
	if child != "" {
		return child
	}
	return parent
}

// ErrMissingField is wrapped by a [ManifestParseError] if a required field is not set
var ErrMissingField = errors.New("required field is missing")

// ManifestParseError is returned for manifests that are not valid json or miss required fields
type ManifestParseError struct {
	// ID of the version (or asset index) that failed to parse
	ID string
	// Field is the json path of the offending field (can be empty for syntax errors)
	Field string
	Err   error
}

func (e *ManifestParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid manifest %q: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("invalid manifest %q: field %s: %v", e.ID, e.Field, e.Err)
}

func (e *ManifestParseError) Unwrap() error {
	return e.Err
}

// ParseLaunchManifest parses a single (unmerged) version document.
// id is the version id that was requested and is used in errors. If the document declares
// another id, parsing fails.
func ParseLaunchManifest(id string, data []byte) (*LaunchManifest, error) {
	man := &LaunchManifest{}
	if err := decodeJSON(id, data, man); err != nil {
		return nil, err
	}

	if man.ID == "" {
		return nil, &ManifestParseError{ID: id, Field: "id", Err: ErrMissingField}
	}
	if id != "" && man.ID != id {
		return nil, &ManifestParseError{
			ID:    id,
			Field: "id",
			Err:   fmt.Errorf("document declares version %q", man.ID),
		}
	}

	for i, lib := range man.Libraries {
		if lib.Name == "" {
			return nil, &ManifestParseError{ID: id, Field: fmt.Sprintf("libraries[%d].name", i), Err: ErrMissingField}
		}
		if err := checkRules(lib.Rules); err != nil {
			return nil, &ManifestParseError{ID: id, Field: fmt.Sprintf("libraries[%d].rules", i), Err: err}
		}
	}
	if man.Arguments != nil {
		for name, args := range map[string][]Argument{"game": man.Arguments.Game, "jvm": man.Arguments.JVM} {
			for i, arg := range args {
				if err := checkRules(arg.Rules); err != nil {
					return nil, &ManifestParseError{ID: id, Field: fmt.Sprintf("arguments.%s[%d].rules", name, i), Err: err}
				}
			}
		}
	}

	return man, nil
}

// Validate checks that a (merged) manifest has everything required to be installed and launched
func (l *LaunchManifest) Validate() error {
	if l.MainClass == "" {
		return &ManifestParseError{ID: l.ID, Field: "mainClass", Err: ErrMissingField}
	}
	if _, ok := l.Download(DownloadClient); !ok {
		return &ManifestParseError{ID: l.ID, Field: "downloads.client.url", Err: ErrMissingField}
	}
	if l.AssetIndex != nil && l.AssetIndex.URL == "" {
		return &ManifestParseError{ID: l.ID, Field: "assetIndex.url", Err: ErrMissingField}
	}
	return nil
}

func checkRules(rules []Rule) error {
	for _, r := range rules {
		if r.Action != ActionAllow && r.Action != ActionDisallow {
			return fmt.Errorf("unknown rule action %q", r.Action)
		}
	}
	return nil
}

// decodeJSON decodes data into v and turns decoding errors into a ManifestParseError
func decodeJSON(id string, data []byte, v interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return &ManifestParseError{ID: id, Err: errors.New("empty document")}
	}
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ManifestParseError{
			ID:    id,
			Field: typeErr.Field,
			Err:   fmt.Errorf("expected %s but got %s", typeErr.Type, typeErr.Value),
		}
	}
	return &ManifestParseError{ID: id, Err: err}
}

// ParseAssetIndex parses an asset index document
func ParseAssetIndex(id string, data []byte) (*AssetIndex, error) {
	index := &AssetIndex{}
	if err := decodeJSON(id, data, index); err != nil {
		return nil, err
	}
	for name, obj := range index.Objects {
		switch {
		case obj.Hash == "":
			return nil, &ManifestParseError{ID: id, Field: "objects." + name + ".hash", Err: ErrMissingField}
		case !ValidHash(obj.Hash):
			return nil, &ManifestParseError{ID: id, Field: "objects." + name + ".hash", Err: ErrInvalidHash}
		}
	}
	return index, nil
}
