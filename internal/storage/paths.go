// Package storage maps form artifact paths between the storage root and the
// filesystem, and removes or reads artifacts on a local disk.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for an artifact path that does not resolve to
// a location below the storage root.
var ErrOutsideRoot = errors.New("path escapes storage root")

const (
	formDefinitionExt = ".xml"
	mediaDirSuffix    = "-media"
	compiledCacheExt  = ".formdef"
	itemsetsFileName  = "itemsets.csv"
)

// Paths resolves storage-root relative paths. Relative paths always use
// forward slashes so rows are portable between devices.
type Paths struct {
	root     string
	formsDir string
	cacheDir string
}

func NewPaths(root, formsDir, cacheDir string) (*Paths, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root %q: %w", root, err)
	}
	return &Paths{root: abs, formsDir: formsDir, cacheDir: cacheDir}, nil
}

func (p *Paths) Root() string { return p.root }

// FormsDir is the relative directory holding form definitions.
func (p *Paths) FormsDir() string { return filepath.ToSlash(p.formsDir) }

// Relative strips the storage root from an absolute path under it. Paths
// outside the root, and paths already relative, come back unchanged.
func (p *Paths) Relative(path string) string {
	if path == "" || !filepath.IsAbs(path) {
		return path
	}
	clean := filepath.Clean(path)
	if clean == p.root {
		return ""
	}
	prefix := p.prefix()
	if !strings.HasPrefix(clean, prefix) {
		return path
	}
	return filepath.ToSlash(strings.TrimPrefix(clean, prefix))
}

// Absolute places a relative path under the storage root.
func (p *Paths) Absolute(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.root, filepath.FromSlash(rel))
}

// Contains reports whether a relative path resolves strictly below the
// storage root. The empty path means "no artifact" and is accepted.
func (p *Paths) Contains(rel string) bool {
	if rel == "" {
		return true
	}
	if filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return false
	}
	clean := filepath.Join(p.root, filepath.FromSlash(rel))
	return strings.HasPrefix(clean, p.prefix())
}

func (p *Paths) prefix() string {
	if strings.HasSuffix(p.root, string(filepath.Separator)) {
		return p.root
	}
	return p.root + string(filepath.Separator)
}

// resolve is Absolute restricted to paths below the root.
func (p *Paths) resolve(rel string) (string, error) {
	if !p.Contains(rel) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	return p.Absolute(rel), nil
}

// CachePath is the relative location of the compiled cache for a form
// definition with the given content hash.
func (p *Paths) CachePath(md5Hash string) string {
	return filepath.ToSlash(filepath.Join(p.cacheDir, md5Hash+compiledCacheExt))
}

// MediaPath derives a definition's media directory: the definition path
// without its extension, suffixed with -media.
func MediaPath(definitionPath string) string {
	ext := filepath.Ext(definitionPath)
	return strings.TrimSuffix(definitionPath, ext) + mediaDirSuffix
}

// DisplayName derives a fallback display name from a definition path.
func DisplayName(definitionPath string) string {
	base := filepath.Base(filepath.FromSlash(definitionPath))
	return strings.TrimSuffix(base, formDefinitionExt)
}

// ItemsetsPath is the itemsets.csv inside a media directory.
func ItemsetsPath(mediaPath string) string {
	if mediaPath == "" {
		return ""
	}
	return mediaPath + "/" + itemsetsFileName
}
