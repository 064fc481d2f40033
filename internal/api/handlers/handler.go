package handlers

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-web/internal/middleware"
	"todo-web/internal/models"
	"todo-web/internal/repository"
	"todo-web/internal/session"
	myws "todo-web/internal/websocket"
	"todo-web/pkg/logger"
)

// Handler holds everything the route handlers need. Nothing in it is
// mutated after construction.
type Handler struct {
	Accounts   repository.AccountRepo
	Tasks      repository.TaskRepo
	Checkboxes repository.CheckboxRepo
	Sessions   *session.Manager
	Validate   *validator.Validate

	// Hub receives change events; nil disables live updates.
	Hub *myws.Hub
	// Ping reports storage health for /healthz; nil means always healthy.
	Ping func(ctx context.Context) error

	CookieSecure bool
	UploadDir    string
}

// ownedTask memuat task dari parameter URL dan memastikan task itu milik
// akun yang sedang login: 404 jika tidak ada, 403 jika milik akun lain.
func (h *Handler) ownedTask(c *fiber.Ctx, param string) (models.Task, error) {
	taskID, err := c.ParamsInt(param)
	if err != nil || taskID <= 0 {
		return models.Task{}, fiber.NewError(fiber.StatusBadRequest, "Invalid task ID")
	}

	task, err := h.Tasks.GetByID(c.UserContext(), taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Task{}, fiber.NewError(fiber.StatusNotFound, "Task not found")
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching task", zap.Int("task_id", taskID), zap.Error(err))
		return models.Task{}, fiber.NewError(fiber.StatusInternalServerError, "Error fetching task")
	}

	account := middleware.CurrentAccount(c)
	if !task.OwnedBy(account.ID) {
		logger.SecurityLogger.Warn("Forbidden task access",
			zap.Int("account_id", account.ID), zap.Int("task_id", taskID), zap.String("method", c.Method()))
		return models.Task{}, fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}
	return task, nil
}

// notFoundOr maps repository.ErrNotFound to 404 and anything else to a
// logged 500.
func notFoundOr(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, what+" not found")
	}
	logger.ErrorLogger.Error("Error writing "+what, zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, "Error writing "+what)
}

// noContent sends an empty 200 body, which htmx swaps as a removal.
func noContent(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).SendString("")
}

// Health reports whether the database is reachable.
func (h *Handler) Health(c *fiber.Ctx) error {
	if h.Ping != nil {
		if err := h.Ping(c.UserContext()); err != nil {
			logger.ErrorLogger.Error("Health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
