package store

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Open builds the backend named kind. path is used by the file backend and
// dsn by postgres.
func Open(ctx context.Context, kind, path, dsn string) (*Store, error) {
	switch kind {
	case "", BackendFile:
		if path == "" {
			return nil, fmt.Errorf("file backend requires a path")
		}
		return New(NewFile(path)), nil
	case BackendMemory:
		return New(NewMemory(nil)), nil
	case BackendPostgres:
		p, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return New(p), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
}
