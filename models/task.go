package models

import "time"

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

// ValidStatus reports whether s is one of the stored statuses. The
// derived states (overdue, due-soon) are never stored and never
// accepted as input.
func ValidStatus(s TaskStatus) bool {
	return s == StatusPending || s == StatusCompleted
}

type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// Weight is the numeric rank of a priority: High=3, Medium=2, Low=1.
func (p TaskPriority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

func ValidPriority(p TaskPriority) bool {
	return p.Weight() != 0
}

type Task struct {
	ID           int64        `bson:"_id" json:"id"`
	Title        string       `bson:"title" json:"title"`
	Description  string       `bson:"description" json:"description"`
	Deadline     time.Time    `bson:"deadline" json:"deadline"`
	Priority     TaskPriority `bson:"priority" json:"priority"`
	Status       TaskStatus   `bson:"status" json:"status"`
	AssignedTo   int64        `bson:"assignedTo" json:"assignedTo"`
	AssigneeName string       `bson:"assigneeName" json:"assigneeName"`
	CreatedBy    int64        `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time    `bson:"createdAt" json:"createdAt"`
	CompletedAt  *time.Time   `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}
