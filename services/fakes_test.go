package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskboard-service/models"
)

// memTaskRepo is an in-memory TaskRepository for tests. Setting fail
// makes every call return that error, simulating a down database.
type memTaskRepo struct {
	mu     sync.Mutex
	tasks  map[int64]*models.Task
	nextID int64
	fail   error
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[int64]*models.Task)}
}

func (r *memTaskRepo) snapshot() map[int64]models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64]models.Task, len(r.tasks))
	for id, task := range r.tasks {
		out[id] = *task
	}
	return out
}

func (r *memTaskRepo) NextID(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return 0, r.fail
	}
	r.nextID++
	return r.nextID, nil
}

func (r *memTaskRepo) Insert(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id int64) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	clone := *task
	return &clone, nil
}

func (r *memTaskRepo) UpdateStatus(_ context.Context, id int64, status models.TaskStatus, completedAt *time.Time) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	task.Status = status
	task.CompletedAt = completedAt
	clone := *task
	return &clone, nil
}

func (r *memTaskRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) All(context.Context) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	out := []*models.Task{}
	for _, task := range r.tasks {
		clone := *task
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memTaskRepo) ByAssignee(_ context.Context, userID int64) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	out := []*models.Task{}
	for _, task := range r.tasks {
		if task.AssignedTo == userID {
			clone := *task
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memTaskRepo) AllSorted(ctx context.Context) ([]*models.Task, error) {
	tasks, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	// Mirror the storage-level report order: id ascending first so the
	// stable sort leaves id as the final tie-break.
	for i := 1; i < len(tasks); i++ {
		for j := i; j > 0 && tasks[j-1].ID > tasks[j].ID; j-- {
			tasks[j-1], tasks[j] = tasks[j], tasks[j-1]
		}
	}
	models.SortTasks(tasks)
	return tasks, nil
}

type memUserRepo struct {
	users map[int64]*models.User
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[int64]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	return user, nil
}

func (r *memUserRepo) Employees(context.Context) ([]*models.User, error) {
	out := []*models.User{}
	for _, user := range r.users {
		if user.Role == models.RoleEmployee {
			out = append(out, user)
		}
	}
	return out, nil
}

// capturePublisher records published events in order.
type capturePublisher struct {
	mu     sync.Mutex
	events []models.TaskEvent
}

func (p *capturePublisher) Publish(event models.TaskEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) all() []models.TaskEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.TaskEvent{}, p.events...)
}
