package fskit

import (
	"context"
	gopath "path"

	"golang.org/x/sync/errgroup"
)

// copyConcurrency bounds parallel file transfers to avoid FD exhaustion or
// backend rate limits.
const copyConcurrency = 16

// CopyTree copies everything at or below root from src to dst, preserving the
// logical layout. Files are transferred in parallel; the first error cancels
// the remaining transfers.
//
// When src is a Local filesystem, file content is memory-mapped instead of
// buffered on the heap.
func CopyTree(ctx context.Context, dst, src FileSystem, root string) error {
	root = Normalize(root)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(copyConcurrency)

	if err := walkCopy(ctx, g, dst, src, root); err != nil {
		// Drain started transfers before reporting the walk failure.
		if werr := g.Wait(); werr != nil {
			return werr
		}
		return err
	}
	return g.Wait()
}

func walkCopy(ctx context.Context, g *errgroup.Group, dst, src FileSystem, dir string) error {
	names, err := src.List(ctx, dir)
	if err != nil {
		return err
	}

	for _, name := range names {
		child := gopath.Join(dir, name)

		fi, err := src.Stat(ctx, child)
		if err != nil {
			return err
		}
		if fi.IsDir {
			if err := walkCopy(ctx, g, dst, src, child); err != nil {
				return err
			}
			continue
		}

		g.Go(func() error {
			return copyFile(ctx, dst, src, child)
		})
	}
	return nil
}

func copyFile(ctx context.Context, dst, src FileSystem, name string) error {
	if local, ok := src.(*Local); ok {
		m, err := local.OpenMapped(name)
		if err == nil {
			defer m.Close()
			return dst.Write(ctx, name, m.Bytes())
		}
		// Fall back to a buffered read (e.g. mapping unsupported for the file).
	}

	data, err := src.Read(ctx, name)
	if err != nil {
		return err
	}
	return dst.Write(ctx, name, data)
}
