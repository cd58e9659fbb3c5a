package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Spok95/college-library/internal/apperr"
	"github.com/Spok95/college-library/internal/blob"
	"github.com/Spok95/college-library/internal/models"
	"github.com/Spok95/college-library/internal/testutil/memstore"
)

type fixture struct {
	svc   *Service
	store *memstore.Store
	root  string
	owner *models.Account
	other *models.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	root := t.TempDir()
	blobs, err := blob.NewLocal(root, "http://lib.local", "media")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	st := memstore.New()
	if err := st.CreateDirection(ctx, &models.Direction{Name: "Программирование"}); err != nil {
		t.Fatalf("CreateDirection: %v", err)
	}
	owner := &models.Account{Email: "owner@mail.ru", PhoneNumber: "1", FullName: "Преподаватель", Role: models.Teacher, IsActive: true}
	other := &models.Account{Email: "other@mail.ru", PhoneNumber: "2", FullName: "Другой", Role: models.Teacher, IsActive: true, IsStaff: true}
	for _, a := range []*models.Account{owner, other} {
		if err := st.CreateAccount(ctx, a); err != nil {
			t.Fatalf("CreateAccount: %v", err)
		}
	}
	return &fixture{svc: New(st, blobs, nil), store: st, root: root, owner: owner, other: other}
}

func mustSeedDocument(t *testing.T, f *fixture, title string) *models.DocumentDetail {
	t.Helper()
	d, err := f.svc.CreateDocument(context.Background(), CreateDocumentInput{
		Title: title, Author: "Кнут", Direction: "Программирование",
	}, f.owner)
	if err != nil {
		t.Fatalf("CreateDocument(%q): %v", title, err)
	}
	return d
}

func TestRandomDocuments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("empty_catalog", func(t *testing.T) {
		got, err := f.svc.RandomDocuments(ctx)
		if err != nil {
			t.Fatalf("RandomDocuments: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("ожидали пусто, получили %d", len(got))
		}
	})

	for _, title := range []string{"A", "B", "C"} {
		mustSeedDocument(t, f, title)
	}

	t.Run("smaller_than_limit", func(t *testing.T) {
		got, err := f.svc.RandomDocuments(ctx)
		if err != nil {
			t.Fatalf("RandomDocuments: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("ожидали 3 книги, получили %d", len(got))
		}
		seen := map[int64]bool{}
		for _, d := range got {
			if seen[d.Document.ID] {
				t.Fatalf("книга %d повторилась", d.Document.ID)
			}
			seen[d.Document.ID] = true
		}
	})

	for i := 0; i < 10; i++ {
		mustSeedDocument(t, f, "extra")
	}

	t.Run("capped_at_limit", func(t *testing.T) {
		got, err := f.svc.RandomDocuments(ctx)
		if err != nil {
			t.Fatalf("RandomDocuments: %v", err)
		}
		if len(got) != RandomLimit {
			t.Fatalf("ожидали %d книг, получили %d", RandomLimit, len(got))
		}
	})
}

func TestCreateDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("unknown_direction", func(t *testing.T) {
		_, err := f.svc.CreateDocument(ctx, CreateDocumentInput{
			Title: "Книга", Direction: "Нет такого",
			PDF: &blob.File{Name: "a.pdf", Reader: strings.NewReader("%PDF")},
		}, f.owner)
		if !apperr.Is(err, apperr.KindNotFound) {
			t.Fatalf("ожидали NotFound, получили %v", err)
		}
		entries, _ := os.ReadDir(f.root)
		if len(entries) != 0 {
			t.Fatal("файлы не должны сохраняться до проверок")
		}
	})

	t.Run("title_required", func(t *testing.T) {
		_, err := f.svc.CreateDocument(ctx, CreateDocumentInput{Title: "  ", Direction: "Программирование"}, f.owner)
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("ожидали ошибку валидации, получили %v", err)
		}
	})

	t.Run("genre_get_or_create", func(t *testing.T) {
		for _, title := range []string{"Первая", "Вторая"} {
			d, err := f.svc.CreateDocument(ctx, CreateDocumentInput{
				Title: title, Genre: "Учебник", Direction: "Программирование",
			}, f.owner)
			if err != nil {
				t.Fatalf("CreateDocument: %v", err)
			}
			if d.Genre == nil || d.Genre.Name != "Учебник" {
				t.Fatalf("жанр не привязан: %+v", d.Genre)
			}
		}
		genres, err := f.svc.ListGenres(ctx)
		if err != nil {
			t.Fatalf("ListGenres: %v", err)
		}
		if len(genres) != 1 {
			t.Fatalf("жанр должен создаться один раз, получили %d", len(genres))
		}
	})

	t.Run("empty_genre", func(t *testing.T) {
		d := mustSeedDocument(t, f, "Без жанра")
		if d.Genre != nil || d.Document.GenreID != nil {
			t.Fatal("пустой жанр должен оставаться незаданным")
		}
	})

	t.Run("files_stored", func(t *testing.T) {
		d, err := f.svc.CreateDocument(ctx, CreateDocumentInput{
			Title: "С файлами", Direction: "Программирование",
			PDF:   &blob.File{Name: "book.pdf", Reader: strings.NewReader("%PDF")},
			Image: &blob.File{Name: "cover.png", Reader: strings.NewReader("png")},
		}, f.owner)
		if err != nil {
			t.Fatalf("CreateDocument: %v", err)
		}
		if !strings.HasPrefix(d.Document.PDFKey, "books/") || !strings.HasPrefix(d.Document.ImageKey, blob.DirImages+"/") {
			t.Fatalf("неожиданные ключи: %q %q", d.Document.PDFKey, d.Document.ImageKey)
		}
		if d.Owner == nil || d.Owner.ID != f.owner.ID {
			t.Fatal("владелец должен быть создателем")
		}
	})
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d, err := f.svc.CreateDocument(ctx, CreateDocumentInput{
		Title: "Чужая", Direction: "Программирование",
		PDF: &blob.File{Name: "x.pdf", Reader: strings.NewReader("%PDF")},
	}, f.owner)
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	t.Run("staff_non_owner_forbidden", func(t *testing.T) {
		err := f.svc.DeleteDocument(ctx, d.Document.ID, f.other)
		if !apperr.Is(err, apperr.KindForbidden) {
			t.Fatalf("ожидали Forbidden, получили %v", err)
		}
		if _, err := f.svc.GetDocument(ctx, d.Document.ID); err != nil {
			t.Fatalf("книга должна остаться: %v", err)
		}
	})

	t.Run("owner_deletes", func(t *testing.T) {
		if err := f.svc.DeleteDocument(ctx, d.Document.ID, f.owner); err != nil {
			t.Fatalf("DeleteDocument: %v", err)
		}
		if _, err := os.Stat(filepath.Join(f.root, filepath.FromSlash(d.Document.PDFKey))); !os.IsNotExist(err) {
			t.Fatal("pdf должен быть удалён")
		}
	})

	t.Run("missing", func(t *testing.T) {
		err := f.svc.DeleteDocument(ctx, d.Document.ID, f.owner)
		if !apperr.Is(err, apperr.KindNotFound) {
			t.Fatalf("ожидали NotFound, получили %v", err)
		}
	})
}

func TestPurgeDuplicateTitles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, title := range []string{"A", "B", "C"} {
		mustSeedDocument(t, f, title)
	}

	got, err := f.svc.PurgeDuplicateTitles(ctx)
	if err != nil {
		t.Fatalf("PurgeDuplicateTitles: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ожидали 3 представления, получили %d", len(got))
	}
	if n := f.store.DocumentCount(); n != 0 {
		t.Fatalf("каталог должен опустеть, осталось %d", n)
	}
}

func TestListDocumentsSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mustSeedDocument(t, f, "Основы Go")
	mustSeedDocument(t, f, "Алгоритмы")

	got, err := f.svc.ListDocuments(ctx, "go")
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(got) != 1 || got[0].Document.Title != "Основы Go" {
		t.Fatalf("поиск вернул %+v", got)
	}
	all, err := f.svc.ListDocuments(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("ожидали весь каталог, получили %d (%v)", len(all), err)
	}
}

func TestDirections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	d, err := f.svc.CreateDirection(ctx, DirectionInput{Name: "Дизайн"})
	if err != nil {
		t.Fatalf("CreateDirection: %v", err)
	}
	if _, err := f.svc.CreateDirection(ctx, DirectionInput{Name: "Дизайн"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("дубль должен отклоняться, получили %v", err)
	}
	if _, err := f.svc.UpdateDirection(ctx, 9999, DirectionInput{Name: "X"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("ожидали NotFound, получили %v", err)
	}

	if _, err := f.svc.CreateDocument(ctx, CreateDocumentInput{Title: "Цвет", Direction: "Дизайн"}, f.owner); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	stats, err := f.svc.DirectionStats(ctx)
	if err != nil {
		t.Fatalf("DirectionStats: %v", err)
	}
	for _, s := range stats {
		if s.ID == d.ID && s.BooksCount != 1 {
			t.Fatalf("books_count=%d, ожидали 1", s.BooksCount)
		}
	}

	t.Run("delete_cascades_documents", func(t *testing.T) {
		if err := f.svc.DeleteDirection(ctx, d.ID); err != nil {
			t.Fatalf("DeleteDirection: %v", err)
		}
		if n := f.store.DocumentCount(); n != 0 {
			t.Fatalf("книги направления должны удалиться, осталось %d", n)
		}
		if _, err := f.svc.GetDirection(ctx, d.ID); !apperr.Is(err, apperr.KindNotFound) {
			t.Fatalf("ожидали NotFound, получили %v", err)
		}
	})
}

func TestNewsOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	n, err := f.svc.CreateNews(ctx, NewsInput{Title: "Открытие библиотеки"}, f.owner)
	if err != nil {
		t.Fatalf("CreateNews: %v", err)
	}
	if n.News.PublishedAt.IsZero() {
		t.Fatal("дата публикации должна проставиться")
	}

	if _, err := f.svc.UpdateNews(ctx, n.News.ID, NewsInput{Title: "Взлом"}, f.other); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("ожидали Forbidden, получили %v", err)
	}
	upd, err := f.svc.UpdateNews(ctx, n.News.ID, NewsInput{Title: "Новое название"}, f.owner)
	if err != nil {
		t.Fatalf("UpdateNews: %v", err)
	}
	if upd.News.Title != "Новое название" {
		t.Fatalf("title=%q", upd.News.Title)
	}
	if err := f.svc.DeleteNews(ctx, n.News.ID, f.other); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("ожидали Forbidden, получили %v", err)
	}
	if err := f.svc.DeleteNews(ctx, n.News.ID, f.owner); err != nil {
		t.Fatalf("DeleteNews: %v", err)
	}
	if _, err := f.svc.GetNews(ctx, n.News.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("ожидали NotFound, получили %v", err)
	}
}
