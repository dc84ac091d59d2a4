// Package datasource defines how pipeline stages obtain readable inputs.
package datasource

import (
	"context"
	"io"
)

// Source opens a fresh reader over its data. Open may be called more than
// once; each call returns an independent reader positioned at the start.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
