package archive

import (
	"context"
	"fmt"

	"github.com/newthinker/tradelab/internal/core"
)

// Storage is the cold storage that snapshot files are written to. Paths
// are slash-separated and relative to the backend's root.
type Storage interface {
	// Write stores data at the given path, replacing any existing object
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path; core.ErrNotFound if absent
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths under the prefix in lexical order
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given path
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

// Backend types
const (
	TypeNone    = "none"
	TypeLocalFS = "localfs"
	TypeS3      = "s3"
)

// Options selects an archive backend.
type Options struct {
	Type string
	Path string // LocalFS root
	S3   S3Config
}

// Open builds the configured backend. TypeNone, or an empty type, yields
// core.ErrArchiveDisabled.
func Open(opts Options) (Storage, error) {
	switch opts.Type {
	case "", TypeNone:
		return nil, core.ErrArchiveDisabled
	case TypeLocalFS:
		fs, err := NewLocalFS(opts.Path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case TypeS3:
		s, err := NewS3(opts.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown archive type %q", opts.Type))
	}
}
