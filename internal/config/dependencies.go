package config

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"

	"todo-web/configs"
	"todo-web/internal/api/handlers"
	"todo-web/internal/repository"
	"todo-web/internal/session"
	myws "todo-web/internal/websocket"
	"todo-web/pkg/database"
)

// Dependencies dibuat sekali saat startup lalu diteruskan ke handler;
// tidak ada variabel global.
type Dependencies struct {
	DB          *sql.DB
	RedisClient *redis.Client
	Sessions    *session.Manager
	Hub         *myws.Hub
	Validate    *validator.Validate
}

func NewDependencies(ctx context.Context, cfg configs.Config) (*Dependencies, error) {
	keys, err := session.ParseKeys(cfg.SessionSecrets)
	if err != nil {
		return nil, fmt.Errorf("SESSION_SECRETS: %w", err)
	}

	db, err := database.ConnectDB(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	// Buat tabel jika belum ada
	if err := repository.CreateTableIfNotExists(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	rdb, err := database.ConnectRedis(ctx, cfg.RedisAddr(), cfg.RedisPassword)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessions, err := session.NewManager(keys, cfg.SessionTTL, session.NewRedisDenylist(rdb))
	if err != nil {
		rdb.Close()
		db.Close()
		return nil, err
	}

	return &Dependencies{
		DB:          db,
		RedisClient: rdb,
		Sessions:    sessions,
		Hub:         myws.NewHub(),
		Validate:    validator.New(),
	}, nil
}

// Handler wires the route handlers to these dependencies.
func (d *Dependencies) Handler(cfg configs.Config) *handlers.Handler {
	return &handlers.Handler{
		Accounts:     repository.NewPGAccountRepo(d.DB),
		Tasks:        repository.NewPGTaskRepo(d.DB),
		Checkboxes:   repository.NewPGCheckboxRepo(d.DB),
		Sessions:     d.Sessions,
		Validate:     d.Validate,
		Hub:          d.Hub,
		Ping:         d.DB.PingContext,
		CookieSecure: cfg.CookieSecure,
		UploadDir:    cfg.UploadDir,
	}
}

func (d *Dependencies) Close() {
	if d.RedisClient != nil {
		_ = d.RedisClient.Close()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
