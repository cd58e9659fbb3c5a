package app

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/college-library/internal/identity"
	"github.com/Spok95/college-library/internal/models"
)

func (h *handlers) accountRoutes(r fiber.Router) {
	r.Post("/register", rateLimit(registerRule, h.Redis), h.register)
	r.Get("/activate/:code", h.activate)
	r.Post("/login", rateLimit(loginRule, h.Redis), h.login)
	r.Post("/refresh", h.refresh)
	r.Post("/forgot-password", rateLimit(forgotRule, h.Redis), h.forgotPassword)
	r.Post("/reset-password", h.resetPassword)
	r.Post("/change-password", h.user(), h.changePassword)

	r.Get("/groups", h.listGroups)
	r.Post("/groups", h.user(), requireStaff(), h.createGroup)

	r.Get("/", h.user(), h.listAccounts)
	r.Get("/me", h.user(), h.me)
	r.Get("/me/token", h.user(), h.sessionToken)
	r.Get("/:id<int>", h.user(), h.accountDetail)
	r.Post("/:id<int>/staff", h.user(), requireStaff(), h.setStaff)
}

func (h *handlers) register(c *fiber.Ctx) error {
	var in identity.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(err)
	}
	if _, err := h.Identity.Register(c.UserContext(), in); err != nil {
		return err
	}
	return message(c, fiber.StatusCreated, "Вы успешно зарегистрировались. Вам отправлено письмо с активацией")
}

func (h *handlers) activate(c *fiber.Ctx) error {
	if _, err := h.Identity.Activate(c.UserContext(), c.Params("code")); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Аккаунт успешно активирован")
}

func (h *handlers) login(c *fiber.Ctx) error {
	var in identity.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(err)
	}
	res, err := h.Identity.Authenticate(c.UserContext(), in)
	if err != nil {
		return err
	}
	payload, err := h.Presenter.Login(res.Account, res.Tokens)
	if err != nil {
		return err
	}
	return c.JSON(payload)
}

func (h *handlers) refresh(c *fiber.Ctx) error {
	var in struct {
		Refresh string `json:"refresh"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(err)
	}
	pair, err := h.Identity.Refresh(c.UserContext(), in.Refresh)
	if err != nil {
		return err
	}
	return c.JSON(pair)
}

func (h *handlers) forgotPassword(c *fiber.Ctx) error {
	var in struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(err)
	}
	if err := h.Identity.RequestPasswordReset(c.UserContext(), in.Email); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Вам отправлено письмо для восстановления пароля")
}

func (h *handlers) resetPassword(c *fiber.Ctx) error {
	var in identity.ResetInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(err)
	}
	if err := h.Identity.CompletePasswordReset(c.UserContext(), in); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Пароль успешно обновлён")
}

func (h *handlers) changePassword(c *fiber.Ctx) error {
	var in struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(err)
	}
	if err := h.Identity.ChangePassword(c.UserContext(), currentAccount(c).ID, in.Password); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Пароль успешно обновлён")
}

func (h *handlers) listGroups(c *fiber.Ctx) error {
	groups, err := h.Identity.ListGroups(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(h.Presenter.Groups(groups))
}

func (h *handlers) createGroup(c *fiber.Ctx) error {
	var in identity.GroupInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(err)
	}
	g, err := h.Identity.CreateGroup(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(h.Presenter.Groups([]models.Group{*g})[0])
}

func (h *handlers) listAccounts(c *fiber.Ctx) error {
	stats, err := h.Identity.ListAccountStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(h.Presenter.AccountStats(stats))
}

func (h *handlers) detail(c *fiber.Ctx, id int64) error {
	d, err := h.Identity.AccountDetail(c.UserContext(), id)
	if err != nil {
		return err
	}
	out, err := h.Presenter.AccountDetail(d)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *handlers) me(c *fiber.Ctx) error {
	return h.detail(c, currentAccount(c).ID)
}

func (h *handlers) accountDetail(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.ErrNotFound
	}
	return h.detail(c, int64(id))
}

func (h *handlers) sessionToken(c *fiber.Ctx) error {
	tok, err := h.Identity.SessionToken(currentAccount(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": tok})
}

func (h *handlers) setStaff(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.ErrNotFound
	}
	var in struct {
		IsStaff bool `json:"is_staff"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(err)
	}
	a, err := h.Identity.SetStaff(c.UserContext(), int64(id), in.IsStaff)
	if err != nil {
		return err
	}
	out, err := h.Presenter.SimpleAccount(a)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
