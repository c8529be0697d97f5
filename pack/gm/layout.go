package gm

import (
	"fmt"
)

const (
	VersionLegacy  = "10.1"
	VersionCurrent = "20.1"
)

type UnsupportedFormatVersionError struct {
	Version string
}

func (e *UnsupportedFormatVersionError) Error() string {
	return fmt.Sprintf("unsupported .gm format version %q", e.Version)
}

// Layout describes the record shapes of one format version.
type Layout struct {
	Name      string
	Supported bool

	HeaderExtraInts     int
	MaterialExtraFloats int
	// MeshTriangleCountSum is set when every mesh object ends with a redundant triangle count.
	MeshTriangleCountSum bool
}

// LayoutFor rejects the legacy entry; its record shapes are listed for completeness.
var layouts = map[string]Layout{
	VersionLegacy: {
		Name:                 "legacy",
		MeshTriangleCountSum: true,
	},
	VersionCurrent: {
		Name:                "current",
		Supported:           true,
		HeaderExtraInts:     3,
		MaterialExtraFloats: 4,
	},
}

// LayoutFor picks the record shapes for a version tag.
// Both unknown and known but unsupported versions are rejected.
func LayoutFor(version string) (Layout, error) {
	l, ok := layouts[version]
	if !ok || !l.Supported {
		return l, &UnsupportedFormatVersionError{Version: version}
	}
	return l, nil
}

func (l Layout) materialSize() int {
	return 8 + l.MaterialExtraFloats*4 + 16 + TextureSlotCount*8
}

func (l Layout) meshObjectSize() int {
	size := 12 + 16 + 24 + MeshDataLength*4
	if l.MeshTriangleCountSum {
		size += 4
	}
	return size
}

const locatorSize = 12 + 64 + LocatorBoneCount*8
