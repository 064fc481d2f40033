package models

import (
	"database/sql"
	"time"
)

type Account struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Avatar    sql.NullString `json:"avatar"`
	Email     string         `json:"email"`
	Password  string         `json:"-"`
	CreatedAt time.Time      `json:"created_at"`
}

type Task struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	AccountID   sql.NullInt64  `json:"account_id"`
	Description sql.NullString `json:"description"`
	Completed   bool           `json:"completed"`
	Checkboxes  []Checkbox     `json:"checkboxes"`
}

// OwnedBy reports whether the task belongs to the given account.
func (t Task) OwnedBy(accountID int) bool {
	return t.AccountID.Valid && int(t.AccountID.Int64) == accountID
}

type Checkbox struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	TaskID    sql.NullInt64 `json:"task_id"`
	Completed bool          `json:"completed"`
}

// BelongsTo reports whether the checkbox sits under the given task.
func (c Checkbox) BelongsTo(taskID int) bool {
	return c.TaskID.Valid && int(c.TaskID.Int64) == taskID
}
