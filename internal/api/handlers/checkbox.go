package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-web/internal/middleware"
	"todo-web/internal/models"
	"todo-web/internal/repository"
	myws "todo-web/internal/websocket"
	"todo-web/pkg/logger"
)

type createCheckboxForm struct {
	Name string `form:"name" validate:"required,max=255"`
}

func (h *Handler) CreateCheckbox(c *fiber.Ctx) error {
	task, err := h.ownedTask(c, "id")
	if err != nil {
		return err
	}

	var req createCheckboxForm
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Bad request")
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := h.Validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Checkbox name is required")
	}

	cb, err := h.Checkboxes.Create(c.UserContext(), task.ID, req.Name)
	if err != nil {
		logger.ErrorLogger.Error("Error creating checkbox", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Error creating checkbox")
	}

	account := middleware.CurrentAccount(c)
	h.Hub.Publish(account.ID, myws.Event{Type: myws.CheckboxCreated, TaskID: task.ID, CheckboxID: cb.ID})
	return c.Status(fiber.StatusCreated).Render("partials/checkbox", cb)
}

// ToggleCheckbox membalik status completed. Dua kali toggle kembali ke
// nilai awal.
func (h *Handler) ToggleCheckbox(c *fiber.Ctx) error {
	task, cb, err := h.ownedCheckbox(c)
	if err != nil {
		return err
	}
	toggled, err := h.Checkboxes.Toggle(c.UserContext(), cb.ID)
	if err != nil {
		return notFoundOr(err, "checkbox")
	}

	account := middleware.CurrentAccount(c)
	h.Hub.Publish(account.ID, myws.Event{Type: myws.CheckboxToggled, TaskID: task.ID, CheckboxID: cb.ID})
	return c.Render("partials/checkbox", toggled)
}

func (h *Handler) DeleteCheckbox(c *fiber.Ctx) error {
	task, cb, err := h.ownedCheckbox(c)
	if err != nil {
		return err
	}
	if err := h.Checkboxes.Delete(c.UserContext(), cb.ID); err != nil {
		return notFoundOr(err, "checkbox")
	}

	account := middleware.CurrentAccount(c)
	h.Hub.Publish(account.ID, myws.Event{Type: myws.CheckboxDeleted, TaskID: task.ID, CheckboxID: cb.ID})
	return noContent(c)
}

// ownedCheckbox resolves /task/:task_id/checkbox/:checkbox_id. A checkbox
// that exists under a different task is reported as not found.
func (h *Handler) ownedCheckbox(c *fiber.Ctx) (models.Task, models.Checkbox, error) {
	task, err := h.ownedTask(c, "task_id")
	if err != nil {
		return models.Task{}, models.Checkbox{}, err
	}

	checkboxID, err := c.ParamsInt("checkbox_id")
	if err != nil || checkboxID <= 0 {
		return models.Task{}, models.Checkbox{}, fiber.NewError(fiber.StatusBadRequest, "Invalid checkbox ID")
	}
	cb, err := h.Checkboxes.GetByID(c.UserContext(), checkboxID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !cb.BelongsTo(task.ID)) {
		return models.Task{}, models.Checkbox{}, fiber.NewError(fiber.StatusNotFound, "Checkbox not found")
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching checkbox", zap.Int("checkbox_id", checkboxID), zap.Error(err))
		return models.Task{}, models.Checkbox{}, fiber.NewError(fiber.StatusInternalServerError, "Error fetching checkbox")
	}
	return task, cb, nil
}
