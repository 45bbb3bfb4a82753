package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// LocalArtifacts stores artifacts on the device filesystem below the
// storage root.
type LocalArtifacts struct {
	paths *Paths
}

func NewLocalArtifacts(paths *Paths) *LocalArtifacts {
	return &LocalArtifacts{paths: paths}
}

func (l *LocalArtifacts) Exists(_ context.Context, rel string) (bool, error) {
	if rel == "" {
		return false, nil
	}
	abs, err := l.paths.resolve(rel)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (l *LocalArtifacts) Open(_ context.Context, rel string) (io.ReadCloser, error) {
	abs, err := l.paths.resolve(rel)
	if err != nil {
		return nil, err
	}
	return os.Open(abs)
}

// Remove deletes a file or a whole directory tree below the root. Missing
// artifacts are not an error.
func (l *LocalArtifacts) Remove(_ context.Context, rel string) error {
	if rel == "" {
		return nil
	}
	abs, err := l.paths.resolve(rel)
	if err != nil {
		return fmt.Errorf("refusing to remove %q: %w", rel, err)
	}
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("remove %s: %w", rel, err)
	}
	return nil
}

// Opener reads artifacts by relative path.
type Opener interface {
	Open(ctx context.Context, rel string) (io.ReadCloser, error)
}

// ContentHash returns the hex md5 of an artifact's content.
func ContentHash(ctx context.Context, opener Opener, rel string) (string, error) {
	r, err := opener.Open(ctx, rel)
	if err != nil {
		return "", err
	}
	defer r.Close()

	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash %s: %w", rel, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
