package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-web/internal/middleware"
	"todo-web/pkg/logger"
)

const maxAvatarSize = 5 << 20

var allowedAvatarExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// validateAvatar memastikan ukuran, ekstensi, dan content type file.
func validateAvatar(file *multipart.FileHeader) error {
	if file.Size > maxAvatarSize {
		return fiber.NewError(fiber.StatusBadRequest, "File size exceeds the limit of 5MB")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAvatarExts[ext] {
		return fiber.NewError(fiber.StatusBadRequest, "File type not allowed")
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return fiber.NewError(fiber.StatusBadRequest, "File must be an image")
	}
	return nil
}

// UploadAvatar menyimpan foto profil dan mengarahkan kembali ke /.
func (h *Handler) UploadAvatar(c *fiber.Ctx) error {
	account := middleware.CurrentAccount(c)

	file, err := c.FormFile("avatar")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No avatar uploaded")
	}
	if err := validateAvatar(file); err != nil {
		logger.AuditLogger.Warn("Rejected avatar upload", zap.Int("account_id", account.ID), zap.Error(err))
		return err
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		logger.ErrorLogger.Error("Error creating upload directory", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Error saving file")
	}

	// nama file unik per akun
	newFilename := fmt.Sprintf("%d-%d%s", account.ID, time.Now().UnixNano(), strings.ToLower(filepath.Ext(file.Filename)))
	if err := c.SaveFile(file, filepath.Join(h.UploadDir, newFilename)); err != nil {
		logger.ErrorLogger.Error("Error saving file", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Error saving file")
	}

	fileURL := path.Join("/uploads", newFilename)
	if err := h.Accounts.UpdateAvatar(c.UserContext(), account.ID, fileURL); err != nil {
		h.removeUpload(fileURL)
		return notFoundOr(err, "account")
	}
	if account.Avatar.Valid {
		h.removeUpload(account.Avatar.String)
	}

	logger.AuditLogger.Info("Avatar uploaded", zap.Int("account_id", account.ID), zap.String("filename", newFilename))
	return c.Redirect("/", fiber.StatusSeeOther)
}

// removeUpload deletes a file previously stored by UploadAvatar. URLs
// outside /uploads/ are ignored.
func (h *Handler) removeUpload(fileURL string) {
	if !strings.HasPrefix(fileURL, "/uploads/") {
		return
	}
	name := path.Base(fileURL)
	if err := os.Remove(filepath.Join(h.UploadDir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.ErrorLogger.Warn("Error removing upload", zap.String("filename", name), zap.Error(err))
	}
}
