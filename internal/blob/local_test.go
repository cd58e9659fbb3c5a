package blob

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLocalPutURLDelete(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root, "http://lib.local/", "media")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	key, err := l.Put(context.Background(), BooksDir(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		File{Name: "../../Мой учебник.pdf", Reader: strings.NewReader("%PDF-1.4")})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(key, "books/2026/") || !strings.HasSuffix(key, "_Мой_учебник.pdf") {
		t.Fatalf("неожиданный ключ %q", key)
	}
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	if err != nil || string(data) != "%PDF-1.4" {
		t.Fatalf("файл не записан: %v %q", err, data)
	}

	u, err := l.URL(key)
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if strings.Contains(u, "Мой") {
		t.Fatalf("кириллица в ссылке должна быть закодирована: %q", u)
	}
	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("ссылка не разбирается: %v", err)
	}
	if parsed.Host != "lib.local" || parsed.Path != "/media/"+key {
		t.Fatalf("URL=%q, путь после декодирования %q", u, parsed.Path)
	}

	if err := l.Delete(context.Background(), key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := l.Delete(context.Background(), key); err != nil {
		t.Fatalf("повторный Delete не должен падать: %v", err)
	}
}

func TestLocalURLEmptyKey(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "http://x", "/media/")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.URL(""); !errors.Is(err, ErrNoFile) {
		t.Fatalf("ожидали ErrNoFile, получили %v", err)
	}
}

func TestEscapeKey(t *testing.T) {
	cases := []struct {
		name string
		key  string
		want string
	}{
		{"ascii", "books/2026/ab12cd34_go.pdf", "books/2026/ab12cd34_go.pdf"},
		{"cyrillic", "images/ab12cd34_Учебник.png", "images/ab12cd34_%D0%A3%D1%87%D0%B5%D0%B1%D0%BD%D0%B8%D0%BA.png"},
		{"reserved", "news/a b?c#d.png", "news/a%20b%3Fc%23d.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := escapeKey(tc.key); got != tc.want {
				t.Fatalf("escapeKey(%q)=%q, ожидали %q", tc.key, got, tc.want)
			}
		})
	}
}
