package pipeline

import (
	"context"
	"io"
)

// SourceOpener opens the raw dataset behind a source URI.
// This interface enables mocking and testing without touching cloud storage.
type SourceOpener interface {
	// Open returns a reader over the dataset. The caller closes it.
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}
