package repository

import (
	"context"
	"database/sql"
	"errors"

	"todo-web/internal/models"

	"github.com/lib/pq"
)

type TaskRepo interface {
	Create(ctx context.Context, accountID int, name string) (models.Task, error)
	// GetByID returns the task with its checkboxes.
	GetByID(ctx context.Context, id int) (models.Task, error)
	// ListByAccount returns the account's tasks, oldest first, each with
	// its checkboxes.
	ListByAccount(ctx context.Context, accountID int) ([]models.Task, error)
	Update(ctx context.Context, id int, name string, description sql.NullString) (models.Task, error)
	ToggleCompleted(ctx context.Context, id int) (models.Task, error)
	Delete(ctx context.Context, id int) error
}

type PGTaskRepo struct {
	db *sql.DB
}

func NewPGTaskRepo(db *sql.DB) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

const taskColumns = `id, name, account_id, description, completed`

func scanTask(row interface{ Scan(...any) error }) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.Name, &t.AccountID, &t.Description, &t.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	return t, err
}

func (r *PGTaskRepo) Create(ctx context.Context, accountID int, name string) (models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (name, account_id, completed) VALUES ($1, $2, FALSE) RETURNING `+taskColumns,
		name, accountID)
	t, err := scanTask(row)
	if err != nil {
		return models.Task{}, err
	}
	t.Checkboxes = []models.Checkbox{}
	return t, nil
}

func (r *PGTaskRepo) GetByID(ctx context.Context, id int) (models.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		return models.Task{}, err
	}
	return r.withCheckboxes(ctx, t)
}

func (r *PGTaskRepo) ListByAccount(ctx context.Context, accountID int) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE account_id = $1 ORDER BY id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	ids := []int64{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		t.Checkboxes = []models.Checkbox{}
		tasks = append(tasks, t)
		ids = append(ids, int64(t.ID))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	// Ambil semua checkbox sekaligus, bukan satu query per task.
	boxes, err := r.checkboxesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	index := make(map[int]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}
	for _, cb := range boxes {
		if i, ok := index[int(cb.TaskID.Int64)]; ok {
			tasks[i].Checkboxes = append(tasks[i].Checkboxes, cb)
		}
	}
	return tasks, nil
}

func (r *PGTaskRepo) Update(ctx context.Context, id int, name string, description sql.NullString) (models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE tasks SET name = $1, description = $2 WHERE id = $3 RETURNING `+taskColumns,
		name, description, id)
	t, err := scanTask(row)
	if err != nil {
		return models.Task{}, err
	}
	return r.withCheckboxes(ctx, t)
}

func (r *PGTaskRepo) ToggleCompleted(ctx context.Context, id int) (models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE tasks SET completed = NOT completed WHERE id = $1 RETURNING `+taskColumns, id)
	t, err := scanTask(row)
	if err != nil {
		return models.Task{}, err
	}
	return r.withCheckboxes(ctx, t)
}

// Delete removes the task; its checkboxes go with it via ON DELETE CASCADE.
func (r *PGTaskRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *PGTaskRepo) withCheckboxes(ctx context.Context, t models.Task) (models.Task, error) {
	boxes, err := r.checkboxesFor(ctx, []int64{int64(t.ID)})
	if err != nil {
		return models.Task{}, err
	}
	t.Checkboxes = boxes
	return t, nil
}

func (r *PGTaskRepo) checkboxesFor(ctx context.Context, taskIDs []int64) ([]models.Checkbox, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+checkboxColumns+` FROM checkboxes WHERE task_id = ANY($1) ORDER BY id`,
		pq.Array(taskIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	boxes := []models.Checkbox{}
	for rows.Next() {
		cb, err := scanCheckbox(rows)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, cb)
	}
	return boxes, rows.Err()
}
