package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Fixed artifact names inside a build context.
const (
	ArtifactLogo        = "logo_principal.png"
	ArtifactInsurerLogo = "logo_assureur.png"
	ArtifactHTML        = "report.html"
)

// BuildContext is the scratch directory of one report build. Every
// temporary artifact is created through Path so that Cleanup can remove
// it.
type BuildContext struct {
	ID  string
	Dir string

	mu    sync.Mutex
	paths []string
}

// NewBuildContext creates a fresh scratch directory under root, or under
// the system temporary directory when root is empty.
func NewBuildContext(root string) (*BuildContext, error) {
	if root == "" {
		root = os.TempDir()
	}
	id := uuid.NewString()
	dir := filepath.Join(root, "santekit-"+id)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create scratch directory %s: %w", dir, err)
	}
	return &BuildContext{ID: id, Dir: dir}, nil
}

// Path registers the artifact name and returns its location.
func (bc *BuildContext) Path(name string) string {
	p := filepath.Join(bc.Dir, filepath.Base(name))
	bc.mu.Lock()
	defer bc.mu.Unlock()
	for _, known := range bc.paths {
		if known == p {
			return p
		}
	}
	bc.paths = append(bc.paths, p)
	return p
}

// Paths returns the registered artifact locations.
func (bc *BuildContext) Paths() []string {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return append([]string(nil), bc.paths...)
}

// Import copies src into the context under name.
func (bc *BuildContext) Import(name, src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("could not open %s: %w", src, err)
	}
	defer in.Close()

	dst := bc.Path(name)
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("could not create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("could not copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("could not write %s: %w", dst, err)
	}
	return dst, nil
}

// Cleanup removes every registered artifact, then the directory. Removal
// errors are ignored; a missing file is not a failure.
func (bc *BuildContext) Cleanup() {
	for _, p := range bc.Paths() {
		_ = os.Remove(p)
	}
	_ = os.RemoveAll(bc.Dir)
}
