package security

import (
	"github.com/ayurwell/portal/internal/domain/user"
)

// Resources guarded by RBAC
const (
	ResourceProfile      = "profile"
	ResourcePatients     = "patients"
	ResourceDoctors      = "doctors"
	ResourceAppointments = "appointments"
	ResourceDailyLogs    = "daily_logs"
	ResourceDietPlans    = "diet_plans"
	ResourceAI           = "ai"
	ResourceFoods        = "foods"
	ResourceUsers        = "users"
	ResourceAudit        = "audit"
	ResourceMFA          = "mfa"
)

// Actions on a resource
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionManage = "manage"
)

// Permission represents a specific permission
type Permission struct {
	Resource string
	Actions  []string
}

// RBACService answers whether a role may perform an action on a resource
type RBACService struct {
	roles map[user.Role][]Permission
}

// NewRBACService creates the service with the portal's role matrix
func NewRBACService() *RBACService {
	return &RBACService{
		roles: map[user.Role][]Permission{
			user.RolePatient: {
				{Resource: ResourceProfile, Actions: []string{ActionRead, ActionWrite}},
				{Resource: ResourceDoctors, Actions: []string{ActionRead}},
				{Resource: ResourceAppointments, Actions: []string{ActionRead, ActionWrite}},
				{Resource: ResourceDailyLogs, Actions: []string{ActionRead, ActionWrite}},
				{Resource: ResourceDietPlans, Actions: []string{ActionRead}},
				{Resource: ResourceAI, Actions: []string{ActionWrite}},
				{Resource: ResourceFoods, Actions: []string{ActionRead}},
			},
			user.RolePractitioner: {
				{Resource: ResourceProfile, Actions: []string{ActionRead, ActionWrite}},
				{Resource: ResourcePatients, Actions: []string{ActionRead, ActionWrite}},
				{Resource: ResourceDoctors, Actions: []string{ActionRead, ActionWrite}},
				{Resource: ResourceAppointments, Actions: []string{ActionRead, ActionManage}},
				{Resource: ResourceDietPlans, Actions: []string{ActionRead, ActionWrite}},
				{Resource: ResourceAI, Actions: []string{ActionWrite}},
				{Resource: ResourceFoods, Actions: []string{ActionRead}},
				{Resource: ResourceMFA, Actions: []string{ActionWrite}},
			},
			user.RoleAdmin: {
				{Resource: "*", Actions: []string{"*"}},
			},
		},
	}
}

// HasPermission reports whether role may perform action on resource
func (r *RBACService) HasPermission(role user.Role, resource, action string) bool {
	for _, permission := range r.roles[role] {
		if permission.Resource != "*" && permission.Resource != resource {
			continue
		}
		for _, allowed := range permission.Actions {
			if allowed == "*" || allowed == action {
				return true
			}
		}
	}
	return false
}

// HasAnyRole reports whether role is one of allowed
func HasAnyRole(role user.Role, allowed ...user.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
