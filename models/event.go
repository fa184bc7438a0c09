package models

type EventKind string

const (
	EventTaskCreated EventKind = "created"
	EventTaskUpdated EventKind = "updated"
	EventTaskDeleted EventKind = "deleted"
)

// TaskEvent is the broadcast notification of a committed mutation.
// Created and updated events carry the full post-image; deleted events
// carry only the id.
type TaskEvent struct {
	Kind   EventKind `json:"kind"`
	Task   *Task     `json:"task,omitempty"`
	TaskID int64     `json:"id"`
}

func NewTaskCreatedEvent(task *Task) TaskEvent {
	return TaskEvent{Kind: EventTaskCreated, Task: task, TaskID: task.ID}
}

func NewTaskUpdatedEvent(task *Task) TaskEvent {
	return TaskEvent{Kind: EventTaskUpdated, Task: task, TaskID: task.ID}
}

func NewTaskDeletedEvent(id int64) TaskEvent {
	return TaskEvent{Kind: EventTaskDeleted, TaskID: id}
}
