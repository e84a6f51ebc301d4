// Package registry manages format-specific parsers for object and container formats.
package registry

import (
	"github.com/simonhull/unildd/internal/types"
)

// LeafParser is the interface flat-object parsers implement.
type LeafParser interface {
	// Parse extracts the metadata record for exactly one object.
	// Name and MemberPath are set by the caller; name is used for error
	// context only. On error the returned record holds whatever was
	// settled before the failure.
	Parse(data []byte, name string) (types.Object, error)
}

// ContainerParser is the interface fat and archive parsers implement.
type ContainerParser interface {
	// Members enumerates the container's entries in on-disk order.
	// A returned error means the member table itself is unusable.
	Members(data []byte, name string) ([]types.Member, error)

	// Stub returns the record reported for the container as a whole when
	// its member table cannot be enumerated.
	Stub() types.Object
}

// parsers maps formats to their leaf parsers.
var parsers = make(map[types.Format]LeafParser)

// containers maps formats to their container parsers.
var containers = make(map[types.Format]ContainerParser)

// Register registers a leaf parser for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, parser LeafParser) {
	parsers[format] = parser
}

// Get returns the leaf parser for a given format.
// Returns nil if no parser is registered for the format.
func Get(format types.Format) LeafParser {
	return parsers[format]
}

// RegisterContainer registers a container parser for a format.
// This is called by format packages during initialization (init functions).
func RegisterContainer(format types.Format, parser ContainerParser) {
	containers[format] = parser
}

// GetContainer returns the container parser for a given format.
// Returns nil if no parser is registered for the format.
func GetContainer(format types.Format) ContainerParser {
	return containers[format]
}
