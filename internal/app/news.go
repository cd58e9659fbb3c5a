package app

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/college-library/internal/catalog"
)

func (h *handlers) newsRoutes(r fiber.Router) {
	r.Get("/", h.listNews)
	r.Post("/", h.user(), h.createNews)
	r.Get("/:id<int>", h.getNews)
	r.Put("/:id<int>", h.user(), h.updateNews)
	r.Delete("/:id<int>", h.user(), h.deleteNews)
}

func (h *handlers) listNews(c *fiber.Ctx) error {
	items, err := h.Catalog.ListNews(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(h.Presenter.NewsList(items))
}

func (h *handlers) getNews(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	n, err := h.Catalog.GetNews(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(h.Presenter.News(*n))
}

// newsInput читает multipart-форму или JSON.
func newsInput(c *fiber.Ctx, opened *[]multipart.File) (catalog.NewsInput, error) {
	in := catalog.NewsInput{Title: c.FormValue("title"), Description: c.FormValue("description")}
	if _, err := c.MultipartForm(); err != nil {
		if err := c.BodyParser(&in); err != nil {
			return in, badBody(err)
		}
		return in, nil
	}
	var err error
	if in.PublishedAt, err = formTime(c, "news_date"); err != nil {
		return in, err
	}
	if in.Image, err = formFile(c, "image1", opened); err != nil {
		return in, err
	}
	return in, nil
}

func (h *handlers) createNews(c *fiber.Ctx) error {
	var opened []multipart.File
	defer func() { closeAll(opened) }()
	in, err := newsInput(c, &opened)
	if err != nil {
		return err
	}
	n, err := h.Catalog.CreateNews(c.UserContext(), in, currentAccount(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(h.Presenter.News(*n))
}

func (h *handlers) updateNews(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var opened []multipart.File
	defer func() { closeAll(opened) }()
	in, err := newsInput(c, &opened)
	if err != nil {
		return err
	}
	n, err := h.Catalog.UpdateNews(c.UserContext(), id, in, currentAccount(c))
	if err != nil {
		return err
	}
	return c.JSON(h.Presenter.News(*n))
}

func (h *handlers) deleteNews(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Catalog.DeleteNews(c.UserContext(), id, currentAccount(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
