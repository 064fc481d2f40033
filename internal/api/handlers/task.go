package handlers

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-web/internal/middleware"
	myws "todo-web/internal/websocket"
	"todo-web/pkg/logger"
)

type createTaskForm struct {
	TaskName string `form:"taskname" validate:"required,max=255"`
}

type updateTaskForm struct {
	Name        string `form:"name" validate:"required,max=255"`
	Description string `form:"description" validate:"max=10000"`
}

// Home menampilkan semua task milik akun yang login beserta checkbox-nya.
func (h *Handler) Home(c *fiber.Ctx) error {
	account := middleware.CurrentAccount(c)
	tasks, err := h.Tasks.ListByAccount(c.UserContext(), account.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Int("account_id", account.ID), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Error fetching tasks")
	}
	return c.Render("index", fiber.Map{
		"Title":   "Tasks",
		"Account": account,
		"Tasks":   tasks,
	}, "layouts/main")
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	account := middleware.CurrentAccount(c)

	var req createTaskForm
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Bad request")
	}
	req.TaskName = strings.TrimSpace(req.TaskName)
	if err := h.Validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Task name is required")
	}

	task, err := h.Tasks.Create(c.UserContext(), account.ID, req.TaskName)
	if err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Error creating task")
	}

	logger.AuditLogger.Info("Task created", zap.Int("task_id", task.ID), zap.Int("account_id", account.ID))
	h.Hub.Publish(account.ID, myws.Event{Type: myws.TaskCreated, TaskID: task.ID})
	return c.Status(fiber.StatusCreated).Render("partials/task", task)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	task, err := h.ownedTask(c, "id")
	if err != nil {
		return err
	}
	if err := h.Tasks.Delete(c.UserContext(), task.ID); err != nil {
		return notFoundOr(err, "task")
	}

	account := middleware.CurrentAccount(c)
	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", task.ID), zap.Int("account_id", account.ID))
	h.Hub.Publish(account.ID, myws.Event{Type: myws.TaskDeleted, TaskID: task.ID})
	return noContent(c)
}

func (h *Handler) EditTask(c *fiber.Ctx) error {
	task, err := h.ownedTask(c, "id")
	if err != nil {
		return err
	}
	return c.Render("partials/task_edit", task)
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	task, err := h.ownedTask(c, "id")
	if err != nil {
		return err
	}

	var req updateTaskForm
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Bad request")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if err := h.Validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Task name is required")
	}

	// deskripsi kosong disimpan sebagai NULL
	description := sql.NullString{String: req.Description, Valid: req.Description != ""}
	updated, err := h.Tasks.Update(c.UserContext(), task.ID, req.Name, description)
	if err != nil {
		return notFoundOr(err, "task")
	}

	account := middleware.CurrentAccount(c)
	logger.AuditLogger.Info("Task updated", zap.Int("task_id", task.ID), zap.Int("account_id", account.ID))
	h.Hub.Publish(account.ID, myws.Event{Type: myws.TaskUpdated, TaskID: task.ID})
	return c.Render("partials/task", updated)
}

func (h *Handler) ToggleTask(c *fiber.Ctx) error {
	task, err := h.ownedTask(c, "id")
	if err != nil {
		return err
	}
	updated, err := h.Tasks.ToggleCompleted(c.UserContext(), task.ID)
	if err != nil {
		return notFoundOr(err, "task")
	}

	account := middleware.CurrentAccount(c)
	h.Hub.Publish(account.ID, myws.Event{Type: myws.TaskUpdated, TaskID: task.ID})
	return c.Render("partials/task", updated)
}
