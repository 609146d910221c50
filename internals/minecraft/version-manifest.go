package minecraft

import (
	"bytes"
	"fmt"
)

var (
	// TypeSnapshot is a snapshot release
	TypeSnapshot = "snapshot"
	// TypeRelease is a full "normal" release
	TypeRelease = "release"
	// TypeOldBeta is a "old_beta" release
	TypeOldBeta = "old_beta"
	// TypeOldAlpha is a "old_alpha" release
	TypeOldAlpha = "old_alpha"
)

// Aliases that can be used instead of a version id
const (
	AliasLatest         = "latest"
	AliasLatestSnapshot = "latest-snapshot"
)

// VersionEntry is one released minecraft version in the version manifest
type VersionEntry struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	SHA1        string `json:"sha1,omitempty"`
	Time        string `json:"time,omitempty"`
	ReleaseTime string `json:"releaseTime,omitempty"`
}

// VersionManifest is the catalog of all available versions
type VersionManifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []VersionEntry `json:"versions"`
}

// ParseVersionManifest parses the version catalog. The official object form and a bare
// array of entries are both accepted.
func ParseVersionManifest(data []byte) (*VersionManifest, error) {
	trimmed := bytes.TrimSpace(data)
	manifest := &VersionManifest{}

	if len(trimmed) != 0 && trimmed[0] == '[' {
		if err := decodeJSON("version_manifest", trimmed, &manifest.Versions); err != nil {
			return nil, err
		}
	} else if err := decodeJSON("version_manifest", trimmed, manifest); err != nil {
		return nil, err
	}

	for i, v := range manifest.Versions {
		if v.ID == "" {
			return nil, &ManifestParseError{ID: "version_manifest", Field: fmt.Sprintf("versions[%d].id", i), Err: ErrMissingField}
		}
	}
	return manifest, nil
}

// Find returns the entry with the given id
func (m *VersionManifest) Find(id string) (*VersionEntry, bool) {
	for i := range m.Versions {
		if m.Versions[i].ID == id {
			return &m.Versions[i], true
		}
	}
	return nil, false
}

// ResolveAlias maps `latest` and `latest-snapshot` to a concrete version id.
// Other ids are returned as-is.
func (m *VersionManifest) ResolveAlias(id string) string {
	switch id {
	case AliasLatest:
		if m.Latest.Release != "" {
			return m.Latest.Release
		}
		return m.firstOfType(TypeRelease, id)
	case AliasLatestSnapshot:
		if m.Latest.Snapshot != "" {
			return m.Latest.Snapshot
		}
		return m.firstOfType(TypeSnapshot, id)
	}
	return id
}

// firstOfType returns the first entry of the given type. Catalogs list newest first.
func (m *VersionManifest) firstOfType(typ string, fallback string) string {
	for _, v := range m.Versions {
		if v.Type == typ {
			return v.ID
		}
	}
	return fallback
}
