package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"todo-web/internal/api/handlers"
	"todo-web/internal/middleware"
	"todo-web/internal/views"
)

// Options tune the app without touching handlers.
type Options struct {
	// AuthRateLimit caps POST /auth and POST /register per IP per minute;
	// 0 disables the limiter.
	AuthRateLimit int
}

// NewApp membangun aplikasi Fiber lengkap dengan view engine, middleware,
// dan semua route.
func NewApp(h *handlers.Handler, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        views.Engine(),
		ErrorHandler: middleware.ErrorResponder,
		BodyLimit:    6 << 20,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	app.Use(middleware.ErrorHandler())
	RegisterRoutes(app, h, opts)
	return app
}

func RegisterRoutes(app *fiber.App, h *handlers.Handler, opts Options) {
	app.Use("/static", filesystem.New(filesystem.Config{Root: views.Static()}))
	if h.UploadDir != "" {
		app.Static("/uploads", h.UploadDir)
	}
	app.Get("/healthz", h.Health)

	// Auth
	authLimit := passthrough
	if opts.AuthRateLimit > 0 {
		authLimit = limiter.New(limiter.Config{
			Max:        opts.AuthRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).SendString("Too many attempts, please wait a minute")
			},
		})
	}
	app.Get("/auth", h.AuthPage)
	app.Post("/auth", authLimit, h.Login)
	app.Get("/register", h.RegisterPage)
	app.Post("/register", authLimit, h.Register)
	app.Get("/logout", h.Logout)

	requireSession := middleware.RequireSession(h.Sessions, h.Accounts)

	app.Get("/", requireSession, h.Home)
	app.Post("/account/avatar", requireSession, h.UploadAvatar)

	// Task
	task := app.Group("/task", requireSession)
	task.Post("/", h.CreateTask)
	task.Get("/:id/edit", h.EditTask)
	task.Patch("/:id", h.UpdateTask)
	task.Patch("/:id/complete", h.ToggleTask)
	task.Delete("/:id", h.DeleteTask)

	// Checkbox
	task.Post("/:id/checkbox", h.CreateCheckbox)
	task.Patch("/:task_id/checkbox/:checkbox_id", h.ToggleCheckbox)
	task.Delete("/:task_id/checkbox/:checkbox_id", h.DeleteCheckbox)

	// Live updates
	app.Get("/ws", requireSession, h.SocketUpgrade, h.Socket())
}

func passthrough(c *fiber.Ctx) error {
	return c.Next()
}
