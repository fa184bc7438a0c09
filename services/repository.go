package services

import (
	"context"
	"time"

	"taskboard-service/models"
)

// TaskRepository is the persistence slice the task store needs:
// point lookups, equality-filtered scans and atomic single-record
// writes. repositories.TaskRepo is the MongoDB implementation.
type TaskRepository interface {
	NextID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	UpdateStatus(ctx context.Context, id int64, status models.TaskStatus, completedAt *time.Time) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
	All(ctx context.Context) ([]*models.Task, error)
	ByAssignee(ctx context.Context, userID int64) ([]*models.Task, error)
	AllSorted(ctx context.Context) ([]*models.Task, error)
}

// UserRepository resolves user accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Employees(ctx context.Context) ([]*models.User, error)
}
