package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hostbridge-dev/hostbridge-sdk/extension"
)

// DirLoader returns a BinaryLoader that reads "<identity>.wasm" from the
// given directory.
func DirLoader(dir string) BinaryLoader {
	return func(ctx context.Context, rec *extension.Record) ([]byte, error) {
		path := filepath.Join(dir, rec.Identity().String()+".wasm")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		return data, nil
	}
}
