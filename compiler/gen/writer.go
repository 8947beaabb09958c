package gen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Write stores the artifacts under dir, one goroutine per file. The
// destination must already exist and be a directory. Any failed or
// short write fails the whole batch.
func Write(ctx context.Context, dir string, files []File) error {
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		return NewTargetError(dir, "does not exist")
	case !info.IsDir():
		return NewTargetError(dir, "not a directory")
	}
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.GOMAXPROCS(0))
	for _, f := range files {
		grp.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return writeFile(dir, f)
		})
	}
	return grp.Wait()
}

func writeFile(dir string, f File) error {
	path := filepath.Join(dir, f.Name)
	if sub := filepath.Dir(path); sub != dir {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return NewWriteError(f.Name, err)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return NewWriteError(f.Name, err)
	}
	n, werr := out.Write(f.Content)
	if werr == nil && n != len(f.Content) {
		// Bytes written must equal content length. os.File
		// reports most short writes as errors already, this
		// covers the rest.
		werr = errShortWrite(n, len(f.Content))
	}
	if cerr := out.Close(); werr == nil && cerr != nil {
		werr = cerr
	}
	if werr != nil {
		return NewWriteError(f.Name, werr)
	}
	return nil
}

type shortWrite struct{ wrote, want int }

func errShortWrite(wrote, want int) error { return &shortWrite{wrote: wrote, want: want} }

func (e *shortWrite) Error() string {
	return fmt.Sprintf("short write: %d of %d bytes", e.wrote, e.want)
}
