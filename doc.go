// Package unildd extracts linkage metadata from binary objects.
//
// Given a buffer, unildd works out what kind of object it holds and
// reports, for every executable object reachable inside it, the facts a
// dependency tool cares about: executable format, word size, target OS,
// file type, CPU, interpreter and imported libraries.
//
// # Quick Start
//
//	objs, err := unildd.ReadFile("/usr/bin/ls")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, o := range objs {
//		if !o.OK() {
//			log.Printf("%s: %v", o.Object.Name, o.Err)
//			continue
//		}
//		fmt.Println(o.Object.CPUType, o.Object.Libraries)
//	}
//
// # Supported Formats
//
//   - ELF: 32 and 64-bit, either byte order
//   - Mach-O: thin images and fat (universal) binaries, 32 and 64-bit
//   - PE: PE32 and PE32+ images
//   - COFF: plain object files
//   - ar: GNU and BSD static archives
//
// Thin archives, COFF import libraries, bigobj files and bare DOS
// executables are recognized and reported with CodeUnimplemented.
//
// # Containers
//
// Fat binaries and archives are walked recursively. Each nested object
// gets its own Outcome whose MemberPath lists the containers enclosing it,
// outermost first:
//
//	[]                      libfoo.a
//	["libfoo.a"]            a.o
//	["universal"]           1. universal
//
// # Error Handling
//
// Read fails only on bad input (ErrInvalidName, ErrEmptyBuffer). Parse
// failures never abort a read: each becomes an Outcome with Err set and a
// partial Object, so one corrupt archive member does not hide the rest.
// ParsingError.Code maps the failure to a stable integer (see CodeOf).
//
// # Concurrency
//
// Read is safe for concurrent use. ReadMany and ReadFiles fan out over a
// bounded worker pool sized by WithConcurrency.
package unildd
