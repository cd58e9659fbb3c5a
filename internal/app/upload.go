package app

import (
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/college-library/internal/apperr"
	"github.com/Spok95/college-library/internal/blob"
)

// formFile: файл из multipart-формы или nil, если поля нет. Открытые файлы копятся в opened.
func formFile(c *fiber.Ctx, field string, opened *[]multipart.File) (*blob.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	*opened = append(*opened, f)
	return &blob.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Reader:      f,
	}, nil
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

func formInt(c *fiber.Ctx, field string) (*int, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.ValidationFields("Ошибка валидации", map[string]string{field: "int"})
	}
	return &n, nil
}

func formTime(c *fiber.Ctx, field string) (*time.Time, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperr.ValidationFields("Ошибка валидации", map[string]string{field: "datetime"})
	}
	return &t, nil
}
