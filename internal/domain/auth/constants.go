package auth

const (
	RoleEmployee = "employee"
	RoleLeader   = "leader"
	RoleHR       = "hr"
)

const UserStatusActive = "active"
