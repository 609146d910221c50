package utils

import (
	"github.com/jwalton/gchalk"
	"github.com/minepkg/mclaunch/internals/minecraft"
)

// PrettyVersion returns a pretty colored version id for terminal printing.
// Snapshots are yellow, old alpha & beta versions gray
func PrettyVersion(entry minecraft.VersionEntry) string {
	id := entry.ID
	// we trim first to avoid broken colors
	if len(id) >= 22 {
		id = id[:18] + " …"
	}

	switch entry.Type {
	case minecraft.TypeSnapshot:
		return gchalk.Yellow(id)
	case minecraft.TypeOldAlpha, minecraft.TypeOldBeta:
		return gchalk.Gray(id)
	}
	return gchalk.Bold(id)
}
