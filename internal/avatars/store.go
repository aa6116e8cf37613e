// Package avatars stores uploaded avatar images on disk and returns
// public URLs for them. It stands in for the managed object-storage
// bucket of a hosted deployment.
package avatars

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// maxAvatarBytes caps avatar uploads at 5 MiB.
const maxAvatarBytes = 5 << 20

// Store writes avatar files under a directory served at urlPrefix.
type Store struct {
	dir       string
	urlPrefix string
}

// New creates a Store rooted at dir. urlPrefix is prepended to returned
// URLs (e.g. "https://api.example.com/avatars").
func New(dir, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create avatar directory: %w", err)
	}
	return &Store{dir: dir, urlPrefix: urlPrefix}, nil
}

// Dir returns the backing directory, for the static file route.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the image for the user and returns its public URL. The
// filename includes a fresh UUID so clients never see a stale cached
// image after re-upload.
func (s *Store) Save(userID string, ext string, r io.Reader) (string, error) {
	if ext == "" {
		ext = ".jpg"
	}
	name := fmt.Sprintf("%s-%s%s", userID, uuid.New().String(), ext)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create avatar file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, maxAvatarBytes)); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write avatar file: %w", err)
	}
	return s.urlPrefix + "/" + name, nil
}
