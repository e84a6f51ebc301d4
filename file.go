package unildd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// ReadFile reads the file at path and extracts its metadata with Read,
// naming the top-level record after the file's base name.
func ReadFile(path string, opts ...Option) (Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Read(filepath.Base(path), data, opts...)
}

// FileResult is the result of reading one path in ReadFiles.
type FileResult struct {
	Path       string
	Collection Collection
	// Err is set when the file could not be read or failed Read's
	// preconditions. Parse problems are in Collection instead.
	Err error
}

// ReadFiles reads several files concurrently.
//
// Unlike ReadMany, a file that cannot be read does not stop the batch: its
// error is recorded in the corresponding FileResult. The returned error is
// non-nil only if ctx is cancelled.
//
// Example:
//
//	results, err := unildd.ReadFiles(ctx, []string{"/bin/ls", "/usr/lib/libc.a"})
//	if err != nil {
//		return err
//	}
//	for _, r := range results {
//		if r.Err != nil {
//			log.Printf("%s: %v", r.Path, r.Err)
//			continue
//		}
//		fmt.Println(r.Path, len(r.Collection))
//	}
func ReadFiles(ctx context.Context, paths []string, opts ...Option) ([]FileResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	o := applyOptions(opts)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	results := make([]FileResult, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			objs, err := ReadFile(path, opts...)
			results[i] = FileResult{Path: path, Collection: objs, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
