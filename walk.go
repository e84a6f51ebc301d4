package unildd

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"

	"github.com/simonhull/unildd/internal/registry"
	"github.com/simonhull/unildd/internal/types"

	// Format packages register their parsers in init.
	_ "github.com/simonhull/unildd/internal/archive"
	_ "github.com/simonhull/unildd/internal/elf"
	_ "github.com/simonhull/unildd/internal/macho"
	_ "github.com/simonhull/unildd/internal/pe"
)

// walker flattens a buffer into one outcome per reachable leaf.
type walker struct {
	log      zerolog.Logger
	maxDepth int
	out      Collection
}

// walk classifies data and dispatches it. desc carries the fat descriptor
// that produced data, if any, so its CPU fields can fill gaps in the leaf.
func (w *walker) walk(name string, path []string, data []byte, depth int, desc *types.Member) {
	c := types.Classify(data)
	w.log.Debug().
		Str("name", name).
		Str("members", strings.Join(path, "->")).
		Str("kind", c.Kind.String()).
		Stringer("format", c.Format).
		Msg("identified object")

	if depth > w.maxDepth {
		w.fail(types.NewObject(name, path), fmt.Errorf("%s: %w (limit %d)", name, types.ErrDepthExceeded, w.maxDepth))
		return
	}

	switch {
	case c.Kind == types.KindFlat:
		w.leaf(name, path, data, c.Format, desc)
	case c.Kind.Container():
		w.container(name, path, data, c, depth)
	default:
		w.fail(types.NewObject(name, path), &types.UnknownMagicError{Path: name, Magic: c.Magic})
	}
}

func (w *walker) leaf(name string, path []string, data []byte, format types.Format, desc *types.Member) {
	parser := registry.Get(format)
	if parser == nil {
		w.fail(types.NewObject(name, path), &types.UnsupportedFormatError{Path: name, Format: format})
		return
	}

	obj, err := parse(parser, data, name)
	obj.Name = name
	obj.MemberPath = append([]string{}, path...)
	obj = obj.Normalize()
	if err != nil {
		w.fail(obj, err)
		return
	}

	if desc != nil {
		if obj.CPUType == "" {
			obj.CPUType = desc.CPUType
		}
		if obj.CPUSubtype == "" {
			obj.CPUSubtype = desc.CPUSubtype
		}
	}
	obj.Digest = digest(data)
	w.out = append(w.out, Outcome{Object: obj})
}

func (w *walker) container(name string, path []string, data []byte, c types.Classification, depth int) {
	cp := registry.GetContainer(c.Format)
	if cp == nil {
		w.fail(types.NewObject(name, path), &types.UnsupportedFormatError{Path: name, Format: c.Format})
		return
	}

	members, err := enumerate(cp, data, name)
	if err != nil {
		stub := cp.Stub()
		stub.Name = name
		stub.MemberPath = path
		w.fail(stub, err)
		return
	}

	childPath := append(append([]string{}, path...), name)
	for i := range members {
		m := &members[i]
		if m.Err != nil {
			w.fail(types.NewObject(m.Name, childPath), m.Err)
			continue
		}
		var childDesc *types.Member
		if c.Kind == types.KindFat {
			childDesc = m
		}
		w.walk(m.Name, childPath, m.Data, depth+1, childDesc)
	}
}

// fail records obj, reduced to its partial form, with err.
func (w *walker) fail(obj types.Object, err error) {
	pe := types.NewParsingError(err)
	w.log.Debug().
		Str("name", obj.Name).
		Int64("code", int64(pe.Code)).
		Err(err).
		Msg("parse failed")
	w.out = append(w.out, Outcome{Object: obj.Partial(), Err: pe})
}

// parse runs a leaf parser, converting a panic into an error.
func parse(p registry.LeafParser, data []byte, name string) (obj types.Object, err error) {
	defer func() {
		if r := recover(); r != nil {
			obj, err = types.Object{}, &types.PanicError{Path: name, Value: r}
		}
	}()
	return p.Parse(data, name)
}

// enumerate runs a container parser, converting a panic into an error.
func enumerate(p registry.ContainerParser, data []byte, name string) (ms []types.Member, err error) {
	defer func() {
		if r := recover(); r != nil {
			ms, err = nil, &types.PanicError{Path: name, Value: r}
		}
	}()
	return p.Members(data, name)
}

func digest(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}
