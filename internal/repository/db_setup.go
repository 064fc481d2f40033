package repository

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    avatar VARCHAR(255),
    email VARCHAR(255) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    account_id INT REFERENCES accounts (id) ON DELETE CASCADE,
    description TEXT,
    completed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS checkboxes (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    task_id INT REFERENCES tasks (id) ON DELETE CASCADE,
    completed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS tasks_account_id_idx ON tasks (account_id);
CREATE INDEX IF NOT EXISTS checkboxes_task_id_idx ON checkboxes (task_id);
`

// CreateTableIfNotExists membuat tabel accounts, tasks, dan checkboxes.
func CreateTableIfNotExists(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// DeleteAllTable menghapus semua tabel. Dipakai oleh test.
func DeleteAllTable(ctx context.Context, db *sql.DB) error {
	query := `
    DROP TABLE IF EXISTS checkboxes;
    DROP TABLE IF EXISTS tasks;
    DROP TABLE IF EXISTS accounts;
    `
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}
