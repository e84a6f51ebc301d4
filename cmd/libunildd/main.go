// Command libunildd builds the C shared library declared in
// include/unildd.h:
//
//	go build -buildmode=c-shared -o libunildd.so ./cmd/libunildd
package main

/*
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>

typedef struct ULDDObjResultVec {
	uintptr_t capacity;
	uintptr_t length;
	void *vec;
} ULDDObjResultVec;
*/
import "C"

import (
	"unicode/utf8"
	"unsafe"

	"github.com/rs/zerolog"

	"github.com/simonhull/unildd"
	"github.com/simonhull/unildd/internal/boundary"
	"github.com/simonhull/unildd/internal/logging"
)

func main() {}

// cAllocator hands out memory from the C heap so callers can keep results
// past the Go runtime's view of them.
type cAllocator struct{}

func (cAllocator) Alloc(size int) (boundary.Ptr, error) {
	p := C.calloc(1, C.size_t(max(size, 1)))
	if p == nil {
		return 0, boundary.ErrOutOfMemory
	}
	return boundary.Ptr(uintptr(p)), nil
}

func (cAllocator) Bytes(p boundary.Ptr, size int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(p))), size)
}

func (cAllocator) Free(p boundary.Ptr) {
	C.free(unsafe.Pointer(uintptr(p)))
}

func logger(debug bool) zerolog.Logger {
	if !debug {
		return logging.Nop()
	}
	return logging.NewWithComponent(logging.DefaultConfig(), "libunildd")
}

// readObj reads data and marshals the result into C memory. A failed
// precondition yields the empty handle.
func readObj(name string, data []byte, debug bool) boundary.Handle {
	log := logger(debug)

	objs, err := unildd.Read(name, data, unildd.WithLogger(log))
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("read rejected")
		return boundary.Handle{}
	}

	h, err := boundary.NewMarshaller(cAllocator{}, log).Marshal(objs)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("marshal failed")
		return boundary.Handle{}
	}
	return h
}

func freeObj(h boundary.Handle, debug bool) boundary.Status {
	return boundary.NewMarshaller(cAllocator{}, logger(debug)).Release(&h)
}

//export read_obj
func read_obj(name *C.char, buf *C.uint8_t, length C.uintptr_t, debug C.bool) C.ULDDObjResultVec {
	if buf == nil && length != 0 {
		panic("read_obj: null buffer with non-zero length")
	}
	goName := ""
	if name != nil {
		goName = C.GoString(name)
	}
	if !utf8.ValidString(goName) {
		panic("read_obj: name is not valid UTF-8")
	}

	var data []byte
	if length != 0 {
		data = unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(length))
	}

	h := readObj(goName, data, bool(debug))
	return C.ULDDObjResultVec{
		capacity: C.uintptr_t(h.Capacity),
		length:   C.uintptr_t(h.Length),
		vec:      unsafe.Pointer(uintptr(h.Vec)),
	}
}

//export free_obj
func free_obj(res C.ULDDObjResultVec, debug C.bool) C.uint8_t {
	h := boundary.Handle{
		Capacity: uint64(res.capacity),
		Length:   uint64(res.length),
		Vec:      boundary.Ptr(uintptr(res.vec)),
	}
	return C.uint8_t(freeObj(h, bool(debug)))
}
