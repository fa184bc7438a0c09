package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"taskboard-service/eventbus"
	"taskboard-service/logging"
	"taskboard-service/models"

	"github.com/sony/gobreaker"
)

// TaskService is the authoritative task store. It validates input,
// enforces the access policy, serializes mutations and publishes one
// event per committed mutation. Failed operations leave the store
// untouched and publish nothing.
type TaskService struct {
	tasks     TaskRepository
	users     UserRepository
	policy    AccessPolicy
	publisher eventbus.Publisher
	breaker   *gobreaker.CircuitBreaker

	// mu serializes mutations so the post-image handed to the
	// broadcaster is always the latest committed state and events leave
	// in commit order. Same-id races resolve last-writer-wins; there is
	// no version token (see DESIGN.md).
	mu sync.Mutex

	now func() time.Time
}

func NewTaskService(tasks TaskRepository, users UserRepository, publisher eventbus.Publisher, breaker *gobreaker.CircuitBreaker) *TaskService {
	return &TaskService{
		tasks:     tasks,
		users:     users,
		publisher: publisher,
		breaker:   breaker,
		now:       time.Now,
	}
}

// CreateTaskInput carries the caller-supplied fields of a new task.
type CreateTaskInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Deadline    time.Time           `json:"deadline"`
	Priority    models.TaskPriority `json:"priority"`
	AssignedTo  int64               `json:"assignedTo"`
}

// CreateTask creates a task on behalf of actor and returns the full
// post-image, including the resolved assignee display name.
func (s *TaskService) CreateTask(ctx context.Context, actor models.Actor, in CreateTaskInput) (*models.Task, error) {
	if !s.policy.CanCreate(actor) {
		return nil, fmt.Errorf("only managers can create tasks: %w", models.ErrForbidden)
	}

	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("title must not be empty: %w", models.ErrValidation)
	}
	if in.Deadline.IsZero() {
		return nil, fmt.Errorf("deadline is required: %w", models.ErrValidation)
	}
	if !models.ValidPriority(in.Priority) {
		return nil, fmt.Errorf("priority must be high, medium or low: %w", models.ErrValidation)
	}

	assignee, err := execute(s.breaker, func() (*models.User, error) {
		return s.users.GetByID(ctx, in.AssignedTo)
	})
	if err != nil {
		if !isTransient(err) {
			return nil, fmt.Errorf("assignee %d does not exist: %w", in.AssignedTo, models.ErrValidation)
		}
		return nil, err
	}
	if assignee.Role != models.RoleEmployee {
		return nil, fmt.Errorf("assignee %d is not an employee: %w", in.AssignedTo, models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := execute(s.breaker, func() (int64, error) {
		return s.tasks.NextID(ctx)
	})
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:           id,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Deadline:     in.Deadline,
		Priority:     in.Priority,
		Status:       models.StatusPending,
		AssignedTo:   assignee.ID,
		AssigneeName: assignee.FullName(),
		CreatedBy:    actor.ID,
		CreatedAt:    s.now(),
	}

	if _, err := execute(s.breaker, func() (struct{}, error) {
		return struct{}{}, s.tasks.Insert(ctx, task)
	}); err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %d (%s) created by manager %d for employee %d", task.ID, task.Title, actor.ID, task.AssignedTo)
	s.publisher.Publish(models.NewTaskCreatedEvent(task))
	return task, nil
}

// SetTaskStatus transitions a task between pending and completed.
// Completing stamps completedAt; reverting clears it. Re-setting the
// current status is a no-op on the fields but still commits and still
// broadcasts.
func (s *TaskService) SetTaskStatus(ctx context.Context, actor models.Actor, id int64, status models.TaskStatus) (*models.Task, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("status must be pending or completed: %w", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := execute(s.breaker, func() (*models.Task, error) {
		return s.tasks.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	if !s.policy.CanSetStatus(actor, task) {
		return nil, fmt.Errorf("task %d is not assigned to user %d: %w", id, actor.ID, models.ErrForbidden)
	}

	var completedAt *time.Time
	if status == models.StatusCompleted {
		t := s.now()
		completedAt = &t
	}

	updated, err := execute(s.breaker, func() (*models.Task, error) {
		return s.tasks.UpdateStatus(ctx, id, status, completedAt)
	})
	if err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: TASK_STATUS_CHANGED, Description: Task %d set to %s by user %d", id, status, actor.ID)
	s.publisher.Publish(models.NewTaskUpdatedEvent(updated))
	return updated, nil
}

// DeleteTask permanently removes a task. No tombstone, no soft delete;
// the deletion is broadcast immediately.
func (s *TaskService) DeleteTask(ctx context.Context, actor models.Actor, id int64) error {
	if !s.policy.CanDelete(actor) {
		return fmt.Errorf("only managers can delete tasks: %w", models.ErrForbidden)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := execute(s.breaker, func() (struct{}, error) {
		return struct{}{}, s.tasks.Delete(ctx, id)
	}); err != nil {
		return err
	}

	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %d deleted by manager %d", id, actor.ID)
	s.publisher.Publish(models.NewTaskDeletedEvent(id))
	return nil
}

// ListTasks returns the tasks visible to actor, unordered; callers
// apply models.SortTasks for presentation.
func (s *TaskService) ListTasks(ctx context.Context, actor models.Actor) ([]*models.Task, error) {
	if s.policy.CanListAll(actor) {
		return execute(s.breaker, func() ([]*models.Task, error) {
			return s.tasks.All(ctx)
		})
	}
	return execute(s.breaker, func() ([]*models.Task, error) {
		return s.tasks.ByAssignee(ctx, actor.ID)
	})
}
