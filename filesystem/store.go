// Package filesystem provides the os.Root backed content store for contentd.
// Every name is opened through the root, so symlinks and ".." components
// cannot reach outside the configured directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sagarc03/contentd"
)

// Store provides read-only file system operations beneath a root.
type Store struct {
	root *os.Root
}

// NewStore creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewStore(root *os.Root) *Store {
	return &Store{root: root}
}

// Stat classifies name as a file, a directory or missing. Anything that is
// neither a regular file nor a directory is reported as missing.
func (s *Store) Stat(ctx context.Context, name string) (contentd.Target, error) {
	if err := ctx.Err(); err != nil {
		return contentd.Target{}, err
	}

	info, err := s.root.Stat(name)
	if err != nil {
		return contentd.Target{Kind: contentd.KindMissing, Name: name}, classify("stat", name, err)
	}

	switch {
	case info.IsDir():
		return contentd.Target{Kind: contentd.KindDirectory, Name: name}, nil
	case info.Mode().IsRegular():
		return contentd.Target{Kind: contentd.KindFile, Name: name}, nil
	default:
		return contentd.Target{Kind: contentd.KindMissing, Name: name},
			fmt.Errorf("stat %s: not a regular file or directory: %w", name, contentd.ErrNotFound)
	}
}

// ReadText opens name, reads it to completion and validates it as UTF-8.
func (s *Store) ReadText(ctx context.Context, name string) (string, error) {
	b, err := s.ReadBytes(ctx, name)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(b) {
		return "", fmt.Errorf("decode %s: %w", name, contentd.ErrDecode)
	}

	return string(b), nil
}

// ReadBytes opens name and reads it to completion.
func (s *Store) ReadBytes(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(name)
	if err != nil {
		return nil, classify("open", name, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close file", "name", name, "err", closeErr)
		}
	}()

	b, err := io.ReadAll(&ctxReader{ctx: ctx, r: f})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", name, contentd.ErrRead, err)
	}

	return b, nil
}

// ReadDir concatenates the text of every regular file directly inside name.
// Symlinks are followed as long as they stay inside the root. Entries are
// visited in name order. A file that fails to open, read or decode is
// recorded in Aggregate.Skipped and left out of the text.
func (s *Store) ReadDir(ctx context.Context, name string) (contentd.Aggregate, error) {
	if err := ctx.Err(); err != nil {
		return contentd.Aggregate{}, err
	}

	entries, err := fs.ReadDir(s.root.FS(), filepath.ToSlash(name))
	if err != nil {
		return contentd.Aggregate{}, classify("read dir", name, err)
	}

	var agg contentd.Aggregate
	var sb strings.Builder

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return contentd.Aggregate{}, err
		}

		entryName := filepath.Join(name, entry.Name())

		regular, err := s.isRegular(entry, entryName)
		if err != nil {
			agg.Skipped = append(agg.Skipped, contentd.Skip{Name: entryName, Err: err})
			continue
		}
		if !regular {
			continue
		}

		text, err := s.ReadText(ctx, entryName)
		if err != nil {
			agg.Skipped = append(agg.Skipped, contentd.Skip{Name: entryName, Err: err})
			continue
		}

		sb.WriteString(text)
		sb.WriteByte('\n')
		agg.Files = append(agg.Files, entryName)
	}

	agg.Text = sb.String()
	return agg, nil
}

func (s *Store) isRegular(entry fs.DirEntry, name string) (bool, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular(), nil
	}

	info, err := s.root.Stat(name)
	if err != nil {
		return false, classify("stat", name, err)
	}
	return info.Mode().IsRegular(), nil
}

// classify wraps err with the contentd category it belongs to.
func classify(op, name string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %s: %w: %w", op, name, contentd.ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s %s: %w: %w", op, name, contentd.ErrPermission, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		// Root escapes, ENOTDIR and friends: unreachable from the client's view.
		return fmt.Errorf("%s %s: %w: %w", op, name, contentd.ErrNotFound, err)
	}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
