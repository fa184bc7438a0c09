package models

import "time"

// DisplayStatus is a task's presentation state, derived from the stored
// status, the deadline and the current time. It is recomputed on every
// read and never persisted, so every surface (API, report, connected
// viewers) derives it through this one function and cannot drift.
type DisplayStatus string

const (
	DisplayPending   DisplayStatus = "pending"
	DisplayDueSoon   DisplayStatus = "due-soon"
	DisplayOverdue   DisplayStatus = "overdue"
	DisplayCompleted DisplayStatus = "completed"
)

// DueSoonWindow is how far ahead of the deadline a pending task starts
// showing as due-soon.
const DueSoonWindow = 24 * time.Hour

// Classify returns the display status of a task at the given instant.
func Classify(t *Task, now time.Time) DisplayStatus {
	if t.Status == StatusCompleted {
		return DisplayCompleted
	}
	if t.Deadline.Before(now) {
		return DisplayOverdue
	}
	if !t.Deadline.After(now.Add(DueSoonWindow)) {
		return DisplayDueSoon
	}
	return DisplayPending
}

// UrgencyScore ranks a task by how soon it needs attention: higher is
// more urgent. It combines the whole days left until the deadline
// (negative once overdue) with the priority weight. Undefined for
// completed tasks; callers are expected to skip them.
func UrgencyScore(t *Task, now time.Time) int {
	return -DaysLeft(t, now) + t.Priority.Weight()
}

// DaysLeft is the whole-day difference between the deadline and now,
// truncated toward zero.
func DaysLeft(t *Task, now time.Time) int {
	return int(t.Deadline.Sub(now).Hours() / 24)
}
