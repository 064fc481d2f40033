package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-web/internal/middleware"
	"todo-web/internal/repository"
	"todo-web/pkg/crypto"
	"todo-web/pkg/logger"
)

const (
	msgBadRequest   = "Please fill in a valid email and password."
	msgInvalidLogin = "Invalid email or password."
	msgEmailTaken   = "An account with this email already exists."
	msgServerError  = "Something went wrong, please try again."
)

// verifyPassword is replaced in tests.
var verifyPassword = crypto.VerifyPassword

type loginForm struct {
	Email    string `form:"email" validate:"required,email,max=255"`
	Password string `form:"password" validate:"required,max=128"`
}

type registerForm struct {
	Name     string `form:"name" validate:"max=255"`
	Email    string `form:"email" validate:"required,email,max=255"`
	Password string `form:"password" validate:"required,max=128"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *Handler) AuthPage(c *fiber.Ctx) error {
	return h.renderAuth(c, fiber.StatusOK, "", "")
}

func (h *Handler) RegisterPage(c *fiber.Ctx) error {
	return h.renderRegister(c, fiber.StatusOK, registerForm{}, "")
}

// Login memeriksa email dan password, lalu memasang cookie auth.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginForm
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return h.renderAuth(c, fiber.StatusBadRequest, "", msgBadRequest)
	}
	req.Email = normalizeEmail(req.Email)
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during login", zap.Error(err))
		return h.renderAuth(c, fiber.StatusBadRequest, req.Email, msgBadRequest)
	}

	account, err := h.Accounts.GetByEmail(c.UserContext(), req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		// same argon2 cost as a known email so timing does not reveal accounts
		verifyPassword(req.Password, crypto.DummyHash())
		logger.SecurityLogger.Warn("Login for unknown email", zap.String("email", req.Email))
		return h.renderAuth(c, fiber.StatusUnauthorized, req.Email, msgInvalidLogin)
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching account", zap.Error(err))
		return h.renderAuth(c, fiber.StatusInternalServerError, req.Email, msgServerError)
	}

	switch verdict := verifyPassword(req.Password, account.Password); verdict {
	case crypto.Valid:
	case crypto.MalformedHash:
		logger.ErrorLogger.Error("Stored password hash is malformed", zap.Int("account_id", account.ID))
		return h.renderAuth(c, fiber.StatusUnauthorized, req.Email, msgInvalidLogin)
	default:
		logger.SecurityLogger.Warn("Invalid password", zap.Int("account_id", account.ID))
		return h.renderAuth(c, fiber.StatusUnauthorized, req.Email, msgInvalidLogin)
	}

	if crypto.NeedsRehash(account.Password) {
		if hash, err := crypto.HashPassword(req.Password); err == nil {
			if err := h.Accounts.UpdatePassword(c.UserContext(), account.ID, hash); err != nil {
				logger.ErrorLogger.Error("Error upgrading password hash", zap.Error(err))
			}
		}
	}

	logger.AuditLogger.Info("Login success", zap.Int("account_id", account.ID))
	return h.startSession(c, account.Email)
}

// Register membuat akun baru dengan password yang di-hash.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerForm
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return h.renderRegister(c, fiber.StatusBadRequest, req, msgBadRequest)
	}
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return h.renderRegister(c, fiber.StatusBadRequest, req, msgBadRequest)
	}
	if req.Name == "" {
		req.Name, _, _ = strings.Cut(req.Email, "@")
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return h.renderRegister(c, fiber.StatusInternalServerError, req, msgServerError)
	}

	account, err := h.Accounts.Create(c.UserContext(), req.Name, req.Email, hash)
	if errors.Is(err, repository.ErrEmailTaken) {
		logger.SecurityLogger.Warn("Duplicate email", zap.String("email", req.Email))
		return h.renderRegister(c, fiber.StatusConflict, req, msgEmailTaken)
	}
	if err != nil {
		logger.ErrorLogger.Error("Error creating account", zap.Error(err))
		return h.renderRegister(c, fiber.StatusInternalServerError, req, msgServerError)
	}

	logger.AuditLogger.Info("Account registered", zap.Int("account_id", account.ID))
	return h.startSession(c, account.Email)
}

// Logout mencabut token yang sedang dipakai dan menghapus cookie.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(middleware.AuthCookie); token != "" {
		if claims, err := h.Sessions.Validate(c.UserContext(), token); err == nil {
			if err := h.Sessions.Revoke(c.UserContext(), claims); err != nil {
				logger.ErrorLogger.Error("Error revoking session", zap.Error(err))
			}
			logger.AuditLogger.Info("Logout", zap.String("email", claims.Email))
		}
	}
	h.setAuthCookie(c, "", time.Unix(0, 0))
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) startSession(c *fiber.Ctx, email string) error {
	token, expires, err := h.Sessions.Issue(email)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Error generating session")
	}
	h.setAuthCookie(c, token, expires)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// setAuthCookie is used both to set and to clear the cookie so the
// attributes always match.
func (h *Handler) setAuthCookie(c *fiber.Ctx, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AuthCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *Handler) renderAuth(c *fiber.Ctx, status int, email, errMsg string) error {
	return c.Status(status).Render("auth", fiber.Map{
		"Title": "Log in",
		"Email": email,
		"Error": errMsg,
	}, "layouts/main")
}

func (h *Handler) renderRegister(c *fiber.Ctx, status int, form registerForm, errMsg string) error {
	return c.Status(status).Render("register", fiber.Map{
		"Title": "Register",
		"Name":  form.Name,
		"Email": form.Email,
		"Error": errMsg,
	}, "layouts/main")
}
