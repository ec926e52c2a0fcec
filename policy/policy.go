// Package policy decides which actor may perform which action on which resource.
package policy

import (
	"hirehub/globals"
	"hirehub/models"
)

type Action string

const (
	CreateJob           Action = "create-job"
	UpdateJob           Action = "update-job"
	DeleteJob           Action = "delete-job"
	ListOwnJobs         Action = "list-own-jobs"
	Apply               Action = "apply"
	ListOwnApplications Action = "list-own-applications"
	ViewApplications    Action = "view-applications"
	UpdateApplication   Action = "update-application"
	UpdateProfile       Action = "update-profile"
)

type rule struct {
	role    string
	owner   bool
	message string
}

var rules = map[Action]rule{
	CreateJob:           {role: globals.RoleRecruiter, message: "Only recruiters can post jobs"},
	UpdateJob:           {owner: true, message: "You can only update your own job posts"},
	DeleteJob:           {owner: true, message: "You can only delete your own job posts"},
	ListOwnJobs:         {role: globals.RoleRecruiter, message: "Only recruiters can view their job posts"},
	Apply:               {role: globals.RoleEmployee, message: "Only employees can apply for jobs"},
	ListOwnApplications: {role: globals.RoleEmployee, message: "Only employees can view their applications"},
	ViewApplications:    {owner: true, message: "You can only view applications for your own job posts"},
	UpdateApplication:   {owner: true, message: "You can only update applications for your own job posts"},
	UpdateProfile:       {owner: true, message: "Unauthorized to update this profile"},
}

// Can returns nil when actor may perform action on resource. resource is a
// *models.Job or *models.User for ownership rules and ignored otherwise.
func Can(actor *models.User, action Action, resource any) error {
	if actor == nil {
		return models.NewUnauthorizedError("Not authorized, please log in")
	}
	r, ok := rules[action]
	if !ok {
		return models.NewForbiddenError("Action not permitted")
	}
	if r.role != "" && actor.Role != r.role {
		return models.NewForbiddenError(r.message)
	}
	if r.owner && !owns(actor, resource) {
		return models.NewForbiddenError(r.message)
	}
	return nil
}

func owns(actor *models.User, resource any) bool {
	switch res := resource.(type) {
	case *models.Job:
		return res != nil && res.IsOwnedBy(actor.ID)
	case *models.User:
		return res != nil && !actor.ID.IsZero() && res.ID == actor.ID
	default:
		return false
	}
}
