package boundary

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// Ptr is an address inside memory owned by an Allocator. Zero is NULL.
type Ptr uintptr

// Allocator provides the memory a Marshaller writes into.
//
// Implementations must be safe for concurrent use.
type Allocator interface {
	// Alloc returns a zeroed block of at least size bytes.
	Alloc(size int) (Ptr, error)
	// Bytes returns a writable view of size bytes starting at p. The
	// range must lie inside one live allocation.
	Bytes(p Ptr, size int) []byte
	// Free releases the block starting at p. Freeing NULL is a no-op.
	Free(p Ptr)
}

// ErrOutOfMemory is returned when an allocator cannot satisfy a request.
var ErrOutOfMemory = errors.New("boundary: out of memory")

const (
	arenaBase  = 0x10000
	arenaAlign = 16
)

// Arena is a Go-heap Allocator. Addresses are synthetic: they can be
// passed around and offset like C pointers but only Bytes can
// dereference them.
//
// The zero value is ready to use.
type Arena struct {
	mu     sync.Mutex
	next   Ptr
	bases  []Ptr // sorted, live allocations only
	blocks map[Ptr][]byte
}

// NewArena returns an empty Arena.
func NewArena() *Arena {
	return &Arena{}
}

// Alloc implements Allocator.
func (a *Arena) Alloc(size int) (Ptr, error) {
	if size < 0 {
		return 0, fmt.Errorf("%w: negative size %d", ErrOutOfMemory, size)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.blocks == nil {
		a.blocks = make(map[Ptr][]byte)
		a.next = arenaBase
	}

	p := a.next
	// Keep a gap after every block so an off-by-one lands in no block.
	a.next += Ptr(alignUp(size+1, arenaAlign))
	a.blocks[p] = make([]byte, max(size, 1))
	a.bases = append(a.bases, p)
	return p, nil
}

// Bytes implements Allocator. It panics if the range is not inside a live
// allocation.
func (a *Arena) Bytes(p Ptr, size int) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := sort.Search(len(a.bases), func(i int) bool { return a.bases[i] > p }) - 1
	if i < 0 {
		panic(fmt.Sprintf("boundary: address %#x is not allocated", uintptr(p)))
	}
	base := a.bases[i]
	block := a.blocks[base]
	off := int(p - base)
	if off+size > len(block) {
		panic(fmt.Sprintf("boundary: range %#x+%d is outside its allocation", uintptr(p), size))
	}
	return block[off : off+size]
}

// Free implements Allocator. It panics on an address that is not the
// start of a live allocation, which catches double frees in tests.
func (a *Arena) Free(p Ptr) {
	if p == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	i, found := slices.BinarySearch(a.bases, p)
	if !found {
		panic(fmt.Sprintf("boundary: free of unallocated address %#x", uintptr(p)))
	}
	a.bases = slices.Delete(a.bases, i, i+1)
	delete(a.blocks, p)
}

// Live reports the number of allocations not yet freed.
func (a *Arena) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.bases)
}

func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
