package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hostbridge-dev/hostbridge-sdk/extension"
)

// DefaultManifestPattern matches one manifest per extension directory.
const DefaultManifestPattern = "*/extension.yaml"

// Scanner is a filesystem-backed Provider. It scans a root directory for
// extension manifests and, when a RemoteSource is configured, delegates
// the remote half to it.
type Scanner struct {
	root    string
	pattern string
	remote  RemoteSource
	logger  *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithManifestPattern sets the glob pattern (doublestar syntax) used to
// locate manifests under the root.
func WithManifestPattern(pattern string) ScannerOption {
	return func(s *Scanner) { s.pattern = pattern }
}

// WithRemoteSource sets the source for the remote environment. Without
// one the scanner reports "no remote".
func WithRemoteSource(rs RemoteSource) ScannerOption {
	return func(s *Scanner) { s.remote = rs }
}

// WithScannerLogger sets the logger.
func WithScannerLogger(l *slog.Logger) ScannerOption {
	return func(s *Scanner) { s.logger = l }
}

// NewScanner creates a scanner rooted at the given extensions directory.
func NewScanner(root string, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		root:    root,
		pattern: DefaultManifestPattern,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LocalExtensions scans the root directory and returns the local catalog.
// Manifests that fail to parse are skipped with a warning rather than
// failing the whole scan; duplicate identities are superseded by version.
func (s *Scanner) LocalExtensions(ctx context.Context) ([]*extension.Record, error) {
	fsys := os.DirFS(s.root)

	matches, err := doublestar.Glob(fsys, s.pattern)
	if err != nil {
		return nil, fmt.Errorf("scanning %q with pattern %q: %w", s.root, s.pattern, err)
	}

	var records []*extension.Record
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := fs.ReadFile(fsys, match)
		if err != nil {
			return nil, fmt.Errorf("reading manifest %q: %w", match, err)
		}

		manifest, err := ParseManifest(data)
		if err != nil {
			s.logger.Warn("skipping unreadable extension manifest",
				"path", match, "error", err)
			continue
		}

		rec, err := manifest.ToRecord(extension.OriginLocal)
		if err != nil {
			s.logger.Warn("skipping invalid extension manifest",
				"path", match, "error", err)
			continue
		}
		records = append(records, rec)
	}

	return Supersede(records), nil
}

// RemoteEnvironment delegates to the configured RemoteSource, or reports
// "no remote" when none is configured.
func (s *Scanner) RemoteEnvironment(ctx context.Context) (*RemoteEnvironment, error) {
	if s.remote == nil {
		return nil, nil
	}
	return s.remote.RemoteEnvironment(ctx)
}
