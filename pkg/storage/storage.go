// Package storage provides key/value persistence backends for stored settings.
package storage

import (
	"context"
	"maps"
)

// Adapter persists a flat key/value mapping. Implementations must be safe for
// concurrent use.
type Adapter interface {
	// GetAll returns a copy of every stored key.
	GetAll(ctx context.Context) (map[string]any, error)

	// Set merges items into the stored mapping.
	Set(ctx context.Context, items map[string]any) error
}

// Closer is implemented by adapters holding connections or file handles.
type Closer interface {
	Close() error
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	maps.Copy(out, in)
	return out
}
