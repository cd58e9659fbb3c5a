package app

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Spok95/college-library/internal/apperr"
	"github.com/Spok95/college-library/internal/cache"
	"github.com/Spok95/college-library/internal/ctxutil"
	"github.com/Spok95/college-library/internal/identity"
	"github.com/Spok95/college-library/internal/models"
)

const (
	headerRequestID = "X-Request-ID"
	localAccount    = "account"
)

func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(headerRequestID, id)
		c.SetUserContext(ctxutil.WithRequestID(c.UserContext(), id))
		return c.Next()
	}
}

// tagRoute кладёт в контекст шаблон сработавшего маршрута (/api/v1/books/:id<int>).
// Ставится последним: после c.Next() c.Route() указывает на обработчик, а не на middleware.
func tagRoute() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		c.SetUserContext(ctxutil.WithOp(c.UserContext(), c.Method()+" "+c.Route().Path))
		return err
	}
}

type rateRule struct {
	name    string
	max     int
	window  time.Duration
	message string
}

var (
	globalRule   = rateRule{"global", 100, time.Minute, "Слишком много запросов. Попробуйте позже."}
	loginRule    = rateRule{"login", 5, time.Minute, "Слишком много попыток входа. Попробуйте через минуту."}
	registerRule = rateRule{"register", 3, 5 * time.Minute, "Слишком много регистраций. Подождите несколько минут."}
	forgotRule   = rateRule{"forgot", 2, 10 * time.Minute, "Слишком много запросов сброса пароля. Попробуйте через 10 минут."}
)

// rateLimit: лимит по IP. С Redis счётчики общие для всех экземпляров.
func rateLimit(rule rateRule, rdb *redis.Client) fiber.Handler {
	cfg := limiter.Config{
		Max:        rule.max,
		Expiration: rule.window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"code":    fiber.StatusTooManyRequests,
				"status":  "error",
				"message": rule.message,
			})
		},
	}
	if rdb != nil {
		cfg.Storage = cache.NewStorage(rdb, "limiter:"+rule.name+":")
	}
	return limiter.New(cfg)
}

// credentials разбирает Authorization: "Bearer <access>" или "Token <session>".
func credentials(c *fiber.Ctx) (scheme, token string) {
	fields := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(fields) != 2 {
		return "", ""
	}
	return strings.ToLower(fields[0]), fields[1]
}

// requireUser пускает только с действующим токеном активного аккаунта.
// Bearer: access из пары; Token: собственный токен аккаунта из /accounts/me/token/.
func requireUser(ids *identity.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			a   *models.Account
			err error
		)
		switch scheme, tok := credentials(c); scheme {
		case "bearer":
			a, err = ids.AccountFromAccess(c.UserContext(), tok)
		case "token":
			a, err = ids.AccountFromSession(c.UserContext(), tok)
		default:
			return apperr.Unauthenticated("Учетные данные не были предоставлены")
		}
		if err != nil {
			return err
		}
		c.Locals(localAccount, a)
		c.SetUserContext(ctxutil.WithAccountID(c.UserContext(), a.ID))
		return c.Next()
	}
}

// requireStaff ставится после requireUser.
func requireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		a := currentAccount(c)
		if a == nil {
			return apperr.Unauthenticated("Учетные данные не были предоставлены")
		}
		if !a.IsStaff {
			return apperr.Forbidden("Недостаточно прав")
		}
		return c.Next()
	}
}

func currentAccount(c *fiber.Ctx) *models.Account {
	a, _ := c.Locals(localAccount).(*models.Account)
	return a
}
