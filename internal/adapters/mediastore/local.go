package mediastore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"property_listing/internal/domain"
)

// MediaPath is the route prefix stored objects are served under.
const MediaPath = "/media/"

// Local keeps uploads on disk below dir and serves them at baseURL + /media/<key>.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("media dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media dir: %w", err)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	p, err := l.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	return publicURL(l.baseURL, key), nil
}

func (l *Local) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", domain.NotFoundf("media %s", key)
	}
	if err != nil {
		return nil, "", err
	}
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, "", err
	}
	return f, mt.String(), nil
}

func (l *Local) Delete(_ context.Context, url string) error {
	key, err := keyFromURL(l.baseURL, url)
	if err != nil {
		return err
	}
	p, err := l.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NotFoundf("image %s", url)
	}
	return err
}

// path resolves key inside dir, refusing anything that escapes it.
func (l *Local) path(key string) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.dir, filepath.FromSlash(clean)), nil
}

func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.TrimSpace(key))[1:]
	if k == "" || k != strings.TrimPrefix(strings.TrimSpace(key), "/") {
		return "", domain.Validationf("invalid media key %q", key)
	}
	return k, nil
}

func publicURL(baseURL, key string) string {
	return baseURL + MediaPath + key
}

// keyFromURL accepts a full public URL or a bare /media/ path.
func keyFromURL(baseURL, url string) (string, error) {
	url = strings.TrimSpace(url)
	switch {
	case baseURL != "" && strings.HasPrefix(url, baseURL+MediaPath):
		url = strings.TrimPrefix(url, baseURL+MediaPath)
	case strings.HasPrefix(url, MediaPath):
		url = strings.TrimPrefix(url, MediaPath)
	default:
		return "", domain.NotFoundf("image %s", url)
	}
	return cleanKey(url)
}
