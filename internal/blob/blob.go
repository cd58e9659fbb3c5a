// Package blob хранит файлы книг и новостей и строит на них публичные ссылки.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoFile: у поля нет файла (пустой ключ).
var ErrNoFile = errors.New("blob: no file")

type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// URLResolver: всё, что нужно слою представления.
type URLResolver interface {
	URL(key string) (string, error)
}

type Store interface {
	URLResolver
	Put(ctx context.Context, dir string, f File) (key string, err error)
	Delete(ctx context.Context, key string) error
}

// Каталоги загрузок.
const (
	DirImages = "images"
	DirNews   = "news"
)

// BooksDir: books/<год>, как раскладывались PDF изначально.
func BooksDir(now time.Time) string { return fmt.Sprintf("books/%d", now.Year()) }

var unsafeName = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// escapeKey кодирует каждый сегмент ключа для URL; разделители "/" остаются.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// objectKey: dir/<8 hex>_<имя>. Префикс не даёт перезаписать чужой файл с тем же именем.
func objectKey(dir, name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	base = unsafeName.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "file"
	}
	if r := []rune(base); len(r) > 100 {
		ext := []rune(path.Ext(base))
		base = string(r[:100-len(ext)]) + string(ext)
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return path.Join(strings.Trim(dir, "/"), id+"_"+base)
}
