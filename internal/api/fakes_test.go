package api

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"todo-web/internal/models"
	"todo-web/internal/repository"
)

// store is an in-memory stand-in for the three Postgres repositories.
// Task deletes cascade to checkboxes like the real schema.
type store struct {
	mu         sync.Mutex
	nextID     int
	accounts   map[int]models.Account
	tasks      map[int]models.Task
	checkboxes map[int]models.Checkbox

	// avatarErr makes UpdateAvatar fail.
	avatarErr error
}

func newStore() *store {
	return &store{
		accounts:   map[int]models.Account{},
		tasks:      map[int]models.Task{},
		checkboxes: map[int]models.Checkbox{},
	}
}

func (s *store) id() int {
	s.nextID++
	return s.nextID
}

type fakeAccounts struct{ *store }

func (f fakeAccounts) Create(_ context.Context, name, email, passwordHash string) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			return models.Account{}, repository.ErrEmailTaken
		}
	}
	a := models.Account{ID: f.id(), Name: name, Email: email, Password: passwordHash, CreatedAt: time.Now()}
	f.accounts[a.ID] = a
	return a, nil
}

func (f fakeAccounts) GetByEmail(_ context.Context, email string) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return models.Account{}, repository.ErrNotFound
}

func (f fakeAccounts) UpdatePassword(_ context.Context, id int, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Password = passwordHash
	f.accounts[id] = a
	return nil
}

func (f fakeAccounts) UpdateAvatar(_ context.Context, id int, avatar string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.avatarErr != nil {
		return f.avatarErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Avatar = sql.NullString{String: avatar, Valid: true}
	f.accounts[id] = a
	return nil
}

type fakeTasks struct{ *store }

func (f fakeTasks) Create(_ context.Context, accountID int, name string) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := models.Task{ID: f.id(), Name: name, AccountID: sql.NullInt64{Int64: int64(accountID), Valid: true}}
	f.tasks[t.ID] = t
	return t, nil
}

func (f fakeTasks) GetByID(_ context.Context, id int) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return models.Task{}, repository.ErrNotFound
	}
	return f.withCheckboxes(t), nil
}

func (f fakeTasks) ListByAccount(_ context.Context, accountID int) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Task
	for _, t := range f.tasks {
		if t.OwnedBy(accountID) {
			out = append(out, f.withCheckboxes(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeTasks) Update(_ context.Context, id int, name string, description sql.NullString) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return models.Task{}, repository.ErrNotFound
	}
	t.Name, t.Description = name, description
	f.tasks[id] = t
	return f.withCheckboxes(t), nil
}

func (f fakeTasks) ToggleCompleted(_ context.Context, id int) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return models.Task{}, repository.ErrNotFound
	}
	t.Completed = !t.Completed
	f.tasks[id] = t
	return f.withCheckboxes(t), nil
}

func (f fakeTasks) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.tasks, id)
	for cbID, cb := range f.checkboxes {
		if cb.BelongsTo(id) {
			delete(f.checkboxes, cbID)
		}
	}
	return nil
}

// caller holds f.mu
func (f fakeTasks) withCheckboxes(t models.Task) models.Task {
	t.Checkboxes = nil
	for _, cb := range f.checkboxes {
		if cb.BelongsTo(t.ID) {
			t.Checkboxes = append(t.Checkboxes, cb)
		}
	}
	sort.Slice(t.Checkboxes, func(i, j int) bool { return t.Checkboxes[i].ID < t.Checkboxes[j].ID })
	return t
}

type fakeCheckboxes struct{ *store }

func (f fakeCheckboxes) Create(_ context.Context, taskID int, name string) (models.Checkbox, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cb := models.Checkbox{ID: f.id(), Name: name, TaskID: sql.NullInt64{Int64: int64(taskID), Valid: true}}
	f.checkboxes[cb.ID] = cb
	return cb, nil
}

func (f fakeCheckboxes) GetByID(_ context.Context, id int) (models.Checkbox, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cb, ok := f.checkboxes[id]
	if !ok {
		return models.Checkbox{}, repository.ErrNotFound
	}
	return cb, nil
}

func (f fakeCheckboxes) Toggle(_ context.Context, id int) (models.Checkbox, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cb, ok := f.checkboxes[id]
	if !ok {
		return models.Checkbox{}, repository.ErrNotFound
	}
	cb.Completed = !cb.Completed
	f.checkboxes[id] = cb
	return cb, nil
}

func (f fakeCheckboxes) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.checkboxes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.checkboxes, id)
	return nil
}

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (d *memDenylist) Revoke(_ context.Context, id string, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[id] = true
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revoked[id], nil
}
