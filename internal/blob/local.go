package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local: файлы в MEDIA_ROOT, ссылки вида <link><media_url><key>.
type Local struct {
	root    string
	baseURL string
}

func NewLocal(root, link, mediaURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media root: %w", err)
	}
	mediaURL = "/" + strings.Trim(mediaURL, "/") + "/"
	return &Local{root: root, baseURL: strings.TrimRight(link, "/") + mediaURL}, nil
}

func (l *Local) Root() string { return l.root }

func (l *Local) Put(ctx context.Context, dir string, f File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := objectKey(dir, f.Name)
	full := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	out, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, f.Reader); err != nil {
		_ = out.Close()
		_ = os.Remove(full)
		return "", err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return key, nil
}

// Delete не считает ошибкой отсутствие файла.
func (l *Local) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) URL(key string) (string, error) {
	if key == "" {
		return "", ErrNoFile
	}
	return l.baseURL + escapeKey(key), nil
}
