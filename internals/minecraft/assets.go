package minecraft

import "errors"

// DefaultResourcesURL is where asset objects are downloaded from
const DefaultResourcesURL = "https://resources.download.minecraft.net/"

// AssetIndex is just a map containing AssetObjects
type AssetIndex struct {
	// Objects maps the virtual asset path to the content addressed object
	Objects map[string]AssetObject `json:"objects"`
	// Virtual and MapToResources are set by very old indexes (pre 1.7)
	Virtual        bool `json:"virtual,omitempty"`
	MapToResources bool `json:"map_to_resources,omitempty"`
}

// ErrInvalidHash is wrapped by a [ManifestParseError] for asset hashes that are not a sha1
var ErrInvalidHash = errors.New("not a sha1 hash")

// ValidHash reports whether h is a lower case hex encoded sha1
func ValidHash(h string) bool {
	if len(h) != 40 {
		return false
	}
	for _, c := range h {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// AssetObject is one minecraft asset
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// UnixPath returns the path including the folder
// example: fe/fe32f3b8…
func (a *AssetObject) UnixPath() string {
	return a.Hash[:2] + "/" + a.Hash
}

// DownloadURL returns the download url for this asset using the given base url
func (a *AssetObject) DownloadURL(base string) string {
	if base == "" {
		base = DefaultResourcesURL
	}
	if base[len(base)-1] != '/' {
		base += "/"
	}
	return base + a.UnixPath()
}
