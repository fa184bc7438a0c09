package models

import "sort"

// SortTasks orders tasks for presentation: completed tasks after all
// others, then priority weight descending, then deadline ascending.
// The sort is stable so ties keep their input order. The report export
// reproduces the same order at the database query level.
func SortTasks(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		ac, bc := a.Status == StatusCompleted, b.Status == StatusCompleted
		if ac != bc {
			return !ac
		}
		if aw, bw := a.Priority.Weight(), b.Priority.Weight(); aw != bw {
			return aw > bw
		}
		return a.Deadline.Before(b.Deadline)
	})
}
