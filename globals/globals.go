package globals

// Context keys
type ContextKey string

const UserKey ContextKey = "user"

// Roles
const (
	RoleEmployee  = "employee"
	RoleRecruiter = "recruiter"
	RoleMentor    = "mentor"
)
