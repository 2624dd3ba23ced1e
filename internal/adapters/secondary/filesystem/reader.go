package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// ctxReader fails the next Read once ctx is done, so a slow or oversized
// file cannot hold up startup past the load deadline.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// openFile opens path as a regular file. A missing file, a directory or a
// file the process cannot open are all reported as notFound.
func openFile(path string, notFound error) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", notFound, path)
		}
		return nil, fmt.Errorf("%w: open %s: %v", notFound, path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat %s: %v", notFound, path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", notFound, path)
	}
	return f, nil
}

// isContextError reports whether err comes from a cancelled or expired load
// context rather than from the file itself.
func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// readAll reads path completely. maxBytes <= 0 disables the size limit.
// A larger file or a failed read is reported as corrupt.
func readAll(ctx context.Context, path string, maxBytes int64, notFound, corrupt error) ([]byte, error) {
	f, err := openFile(path, notFound)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = ctxReader{ctx: ctx, r: f}
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		if isContextError(err) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return nil, fmt.Errorf("%w: read %s: %v", corrupt, path, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", corrupt, path, maxBytes)
	}
	return data, nil
}
