package source

import (
	"context"
	"io"
	"os"
)

func openLocal(_ context.Context, loc Location) (io.ReadCloser, error) {
	return os.Open(loc.Path)
}
