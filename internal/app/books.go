package app

import (
	"context"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/college-library/internal/catalog"
	"github.com/Spok95/college-library/internal/engagement"
	"github.com/Spok95/college-library/internal/models"
)

func (h *handlers) bookRoutes(r fiber.Router) {
	r.Get("/", h.listBooks)
	r.Get("/random", h.randomBooks)
	r.Get("/genres", h.listGenres)
	r.Post("/create_book", h.user(), h.createBook)
	r.Get("/delete_cp", h.user(), requireStaff(), h.purgeBooks)
	r.Get("/:id<int>", h.getBook)
	r.Delete("/:id<int>/delete_book", h.user(), h.deleteBook)
	r.Get("/:id<int>/add_favorite", h.user(), h.toggleFavorite)
	r.Post("/:id<int>/add_favorite", h.user(), h.toggleFavorite)
	r.Post("/:id<int>/comment", h.user(), h.addComment)
	r.Get("/:id<int>/add_view", h.user(), h.recordView)
	r.Get("/:id<int>/add_down", h.user(), h.recordDownload)
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return 0, fiber.ErrNotFound
	}
	return int64(id), nil
}

func (h *handlers) listBooks(c *fiber.Ctx) error {
	docs, err := h.Catalog.ListDocuments(c.UserContext(), c.Query("search"))
	if err != nil {
		return err
	}
	out, err := h.Presenter.Documents(docs)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *handlers) randomBooks(c *fiber.Ctx) error {
	docs, err := h.Catalog.RandomDocuments(c.UserContext())
	if err != nil {
		return err
	}
	out, err := h.Presenter.Documents(docs)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *handlers) listGenres(c *fiber.Ctx) error {
	genres, err := h.Catalog.ListGenres(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(h.Presenter.Genres(genres))
}

func (h *handlers) getBook(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	d, err := h.Catalog.GetDocument(c.UserContext(), id)
	if err != nil {
		return err
	}
	out, err := h.Presenter.Document(*d)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *handlers) createBook(c *fiber.Ctx) error {
	in := catalog.CreateDocumentInput{
		Author:      c.FormValue("author"),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Genre:       c.FormValue("genre"),
		Direction:   c.FormValue("direction"),
	}
	var err error
	if in.Pages, err = formInt(c, "pages"); err != nil {
		return err
	}
	if in.Year, err = formInt(c, "year"); err != nil {
		return err
	}
	var opened []multipart.File
	defer func() { closeAll(opened) }()
	if in.PDF, err = formFile(c, "pdf", &opened); err != nil {
		return err
	}
	if in.Image, err = formFile(c, "image1", &opened); err != nil {
		return err
	}

	d, err := h.Catalog.CreateDocument(c.UserContext(), in, currentAccount(c))
	if err != nil {
		return err
	}
	out, err := h.Presenter.Document(*d)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *handlers) deleteBook(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Catalog.DeleteDocument(c.UserContext(), id, currentAccount(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) purgeBooks(c *fiber.Ctx) error {
	docs, err := h.Catalog.PurgeDuplicateTitles(c.UserContext())
	if err != nil {
		return err
	}
	out, err := h.Presenter.Documents(docs)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *handlers) toggleFavorite(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	out, err := h.Engagement.ToggleFavorite(c.UserContext(), currentAccount(c), id)
	if err != nil {
		return err
	}
	if out == engagement.Saved {
		return message(c, fiber.StatusCreated, engagement.MsgSaved)
	}
	return message(c, fiber.StatusOK, engagement.MsgRemoved)
}

func (h *handlers) addComment(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in struct {
		Text string `json:"text" form:"text"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(err)
	}
	if _, err := h.Engagement.AddComment(c.UserContext(), currentAccount(c), id, in.Text); err != nil {
		return err
	}
	return message(c, fiber.StatusCreated, engagement.MsgCommentAdded)
}

func (h *handlers) recordView(c *fiber.Ctx) error {
	return h.record(c, h.Engagement.RecordView)
}

func (h *handlers) recordDownload(c *fiber.Ctx) error {
	return h.record(c, h.Engagement.RecordDownload)
}

func (h *handlers) record(c *fiber.Ctx, fn func(ctx context.Context, a *models.Account, id int64) (engagement.Outcome, error)) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	out, err := fn(c.UserContext(), currentAccount(c), id)
	if err != nil {
		return err
	}
	if out == engagement.Created {
		return message(c, fiber.StatusCreated, engagement.MsgRecorded)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
