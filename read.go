package unildd

import (
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// Read extracts metadata from every object reachable in data.
//
// name identifies the buffer (usually the file's base name) and becomes
// the Name of the top-level record; nested records carry it in their
// MemberPath.
//
// Read fails only when its preconditions do: an empty or non-UTF-8 name
// (ErrInvalidName) or an empty buffer (ErrEmptyBuffer). Every other
// problem is reported in the returned Collection as an Outcome with Err
// set, so a corrupt archive member never hides its siblings.
//
// Example:
//
//	data, _ := os.ReadFile("/usr/lib/libc.a")
//	objs, err := unildd.Read("libc.a", data)
//	if err != nil {
//		return err
//	}
//	for _, o := range objs {
//		fmt.Println(o.Object.MemberPath, o.Object.Name, o.Object.CPUType)
//	}
func Read(name string, data []byte, opts ...Option) (Collection, error) {
	if name == "" || !utf8.ValidString(name) {
		return nil, ErrInvalidName
	}
	if len(data) == 0 {
		return nil, ErrEmptyBuffer
	}

	o := applyOptions(opts)
	w := &walker{log: o.logger, maxDepth: o.maxDepth}
	w.walk(name, []string{}, data, 0, nil)

	succeeded, failed := w.out.Counts()
	o.logger.Debug().
		Str("name", name).
		Int("total", len(w.out)).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Msg("read complete")

	return w.out, nil
}

// Input is one named buffer for ReadMany.
type Input struct {
	Name string
	Data []byte
}

// ReadMany reads several buffers concurrently.
//
// Buffers are processed in parallel using up to runtime.NumCPU()
// goroutines (see WithConcurrency). Results are returned in input order.
// The first precondition failure or context cancellation aborts the
// batch and is returned.
func ReadMany(ctx context.Context, inputs []Input, opts ...Option) ([]Collection, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	o := applyOptions(opts)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	results := make([]Collection, len(inputs))
	for i, in := range inputs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			objs, err := Read(in.Name, in.Data, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", in.Name, err)
			}
			results[i] = objs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
