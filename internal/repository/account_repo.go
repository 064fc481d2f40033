package repository

import (
	"context"
	"database/sql"
	"errors"

	"todo-web/internal/models"

	"github.com/lib/pq"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already registered")
)

type AccountRepo interface {
	Create(ctx context.Context, name, email, passwordHash string) (models.Account, error)
	GetByEmail(ctx context.Context, email string) (models.Account, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	UpdateAvatar(ctx context.Context, id int, avatar string) error
}

type PGAccountRepo struct {
	db *sql.DB
}

func NewPGAccountRepo(db *sql.DB) *PGAccountRepo {
	return &PGAccountRepo{db: db}
}

const accountColumns = `id, name, avatar, email, password, created_at`

func scanAccount(row interface{ Scan(...any) error }) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Name, &a.Avatar, &a.Email, &a.Password, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrNotFound
	}
	return a, err
}

func (r *PGAccountRepo) Create(ctx context.Context, name, email, passwordHash string) (models.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO accounts (name, email, password) VALUES ($1, $2, $3) RETURNING `+accountColumns,
		name, email, passwordHash)
	a, err := scanAccount(row)
	if isUniqueViolation(err) {
		return models.Account{}, ErrEmailTaken
	}
	return a, err
}

func (r *PGAccountRepo) GetByEmail(ctx context.Context, email string) (models.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

func (r *PGAccountRepo) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET password = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *PGAccountRepo) UpdateAvatar(ctx context.Context, id int, avatar string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET avatar = $1 WHERE id = $2`, avatar, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
