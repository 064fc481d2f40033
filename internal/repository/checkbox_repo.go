package repository

import (
	"context"
	"database/sql"
	"errors"

	"todo-web/internal/models"
)

type CheckboxRepo interface {
	Create(ctx context.Context, taskID int, name string) (models.Checkbox, error)
	GetByID(ctx context.Context, id int) (models.Checkbox, error)
	Toggle(ctx context.Context, id int) (models.Checkbox, error)
	Delete(ctx context.Context, id int) error
}

type PGCheckboxRepo struct {
	db *sql.DB
}

func NewPGCheckboxRepo(db *sql.DB) *PGCheckboxRepo {
	return &PGCheckboxRepo{db: db}
}

const checkboxColumns = `id, name, task_id, completed`

func scanCheckbox(row interface{ Scan(...any) error }) (models.Checkbox, error) {
	var cb models.Checkbox
	err := row.Scan(&cb.ID, &cb.Name, &cb.TaskID, &cb.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Checkbox{}, ErrNotFound
	}
	return cb, err
}

func (r *PGCheckboxRepo) Create(ctx context.Context, taskID int, name string) (models.Checkbox, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO checkboxes (name, task_id, completed) VALUES ($1, $2, FALSE) RETURNING `+checkboxColumns,
		name, taskID)
	return scanCheckbox(row)
}

func (r *PGCheckboxRepo) GetByID(ctx context.Context, id int) (models.Checkbox, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+checkboxColumns+` FROM checkboxes WHERE id = $1`, id)
	return scanCheckbox(row)
}

// Toggle flips completed in one UPDATE.
func (r *PGCheckboxRepo) Toggle(ctx context.Context, id int) (models.Checkbox, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE checkboxes SET completed = NOT completed WHERE id = $1 RETURNING `+checkboxColumns, id)
	return scanCheckbox(row)
}

func (r *PGCheckboxRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM checkboxes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
