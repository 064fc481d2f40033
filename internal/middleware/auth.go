package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"todo-web/internal/models"
	"todo-web/internal/repository"
	"todo-web/internal/session"
	"todo-web/pkg/logger"
)

// AuthCookie is the name of the cookie carrying the session token.
const AuthCookie = "auth"

const localAccount = "account"

// RequireSession memvalidasi cookie auth dan memuat akun pemiliknya.
// Semua kegagalan diarahkan ke halaman login dengan 303.
func RequireSession(sessions *session.Manager, accounts repository.AccountRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := sessions.Validate(c.UserContext(), c.Cookies(AuthCookie))
		if err != nil {
			if c.Cookies(AuthCookie) != "" {
				logger.SecurityLogger.Warn("Rejected session", zap.String("ip", c.IP()), zap.Error(err))
			}
			return RedirectToLogin(c)
		}

		account, err := accounts.GetByEmail(c.UserContext(), claims.Email)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				logger.ErrorLogger.Error("Error loading session account", zap.Error(err))
			} else {
				logger.SecurityLogger.Warn("Session for unknown account", zap.String("email", claims.Email))
			}
			return RedirectToLogin(c)
		}

		c.Locals(localAccount, account)
		return c.Next()
	}
}

// RedirectToLogin sends the client to /auth. htmx requests also get
// HX-Redirect so the whole page navigates instead of swapping a fragment.
func RedirectToLogin(c *fiber.Ctx) error {
	if c.Get("HX-Request") == "true" {
		c.Set("HX-Redirect", "/auth")
	}
	return c.Redirect("/auth", fiber.StatusSeeOther)
}

// CurrentAccount returns the account loaded by RequireSession.
func CurrentAccount(c *fiber.Ctx) models.Account {
	account, _ := c.Locals(localAccount).(models.Account)
	return account
}

// SocketAccount returns the account on an upgraded WebSocket connection;
// fiber locals are copied onto the connection during the upgrade.
func SocketAccount(conn *websocket.Conn) models.Account {
	account, _ := conn.Locals(localAccount).(models.Account)
	return account
}
