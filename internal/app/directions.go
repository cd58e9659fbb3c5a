package app

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/college-library/internal/catalog"
	"github.com/Spok95/college-library/internal/export"
)

func (h *handlers) directionRoutes(r fiber.Router) {
	r.Get("/", h.listDirections)
	r.Post("/", h.user(), requireStaff(), h.createDirection)
	r.Get("/:id<int>", h.getDirection)
	r.Put("/:id<int>", h.user(), requireStaff(), h.updateDirection)
	r.Delete("/:id<int>", h.user(), requireStaff(), h.deleteDirection)
}

func (h *handlers) statsRoutes(r fiber.Router) {
	r.Get("/", h.directionStats)
	r.Get("/export", h.user(), requireStaff(), h.exportStats)
}

func (h *handlers) listDirections(c *fiber.Ctx) error {
	dirs, err := h.Catalog.ListDirections(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(h.Presenter.Directions(dirs))
}

func (h *handlers) getDirection(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	d, err := h.Catalog.GetDirection(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(h.Presenter.Direction(*d))
}

func (h *handlers) createDirection(c *fiber.Ctx) error {
	var in catalog.DirectionInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(err)
	}
	d, err := h.Catalog.CreateDirection(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(h.Presenter.Direction(*d))
}

func (h *handlers) updateDirection(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in catalog.DirectionInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(err)
	}
	d, err := h.Catalog.UpdateDirection(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(h.Presenter.Direction(*d))
}

func (h *handlers) deleteDirection(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Catalog.DeleteDirection(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) directionStats(c *fiber.Ctx) error {
	stats, err := h.Catalog.DirectionStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(h.Presenter.DirectionStats(stats))
}

func (h *handlers) exportStats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	dirs, err := h.Catalog.DirectionStats(ctx)
	if err != nil {
		return err
	}
	accounts, err := h.Identity.ListAccountStats(ctx)
	if err != nil {
		return err
	}
	wb, err := export.StatsWorkbook(dirs, accounts)
	if err != nil {
		return err
	}
	defer func() { _ = wb.Close() }()

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Attachment(export.StatsFilename(time.Now()))
	return wb.Write(c.Response().BodyWriter())
}
