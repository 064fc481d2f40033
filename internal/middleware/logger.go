package middleware

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"todo-web/pkg/logger"
)

// ErrorHandler mencatat setiap request dan mengubah panic menjadi 500.
func ErrorHandler() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorLogger.Error(fmt.Sprintf("Recovered from panic: %v", r),
					zap.String("method", c.Method()),
					zap.String("url", c.OriginalURL()),
					zap.String("stack", string(debug.Stack())))
				err = fiber.ErrInternalServerError
			}
			logger.RequestLogger.Info("Request handled",
				zap.String("method", c.Method()),
				zap.String("url", c.OriginalURL()),
				zap.Int("status", statusOf(c, err)),
				zap.Duration("latency", time.Since(start)),
			)
		}()
		return c.Next()
	}
}

// ErrorResponder is the fiber.Config ErrorHandler: fiber errors keep their
// status and message, anything else becomes a logged 500.
func ErrorResponder(c *fiber.Ctx, err error) error {
	code := statusOf(c, err)
	message := utils.StatusMessage(code)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		message = fe.Message
	} else {
		logger.ErrorLogger.Error("Unhandled error",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Error(err))
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(message)
}

func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
