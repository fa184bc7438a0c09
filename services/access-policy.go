package services

import "taskboard-service/models"

// AccessPolicy is the role-scoped rule table. Every mutation entry
// point consults it before touching the store; whatever the UI hides
// client-side, these checks are the boundary that counts.
//
//	role      | list scope | create | setStatus          | delete
//	manager   | all        | yes    | any task           | yes
//	employee  | own tasks  | no     | own assigned tasks | no
type AccessPolicy struct{}

func (AccessPolicy) CanCreate(actor models.Actor) bool {
	return actor.Role == models.RoleManager
}

func (AccessPolicy) CanSetStatus(actor models.Actor, task *models.Task) bool {
	if actor.Role == models.RoleManager {
		return true
	}
	return actor.Role == models.RoleEmployee && task.AssignedTo == actor.ID
}

func (AccessPolicy) CanDelete(actor models.Actor) bool {
	return actor.Role == models.RoleManager
}

func (AccessPolicy) CanListAll(actor models.Actor) bool {
	return actor.Role == models.RoleManager
}

// CanExportReport gates the cross-team spreadsheet export.
func (AccessPolicy) CanExportReport(actor models.Actor) bool {
	return actor.Role == models.RoleManager
}
