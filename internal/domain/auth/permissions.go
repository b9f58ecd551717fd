package auth

const (
	PermEvaluationsRead     = "evaluations.read"
	PermEvaluationSelf      = "evaluations.self"
	PermEvaluationLead      = "evaluations.lead"
	PermEvaluationConsensus = "evaluations.consensus"
	PermCyclesRead          = "cycles.read"
	PermCyclesManage        = "cycles.manage"
	PermReportsRead         = "reports.read"
	PermAuditRead           = "audit.read"
)

var DefaultPermissions = []string{
	PermEvaluationsRead,
	PermEvaluationSelf,
	PermEvaluationLead,
	PermEvaluationConsensus,
	PermCyclesRead,
	PermCyclesManage,
	PermReportsRead,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEvaluationsRead,
		PermEvaluationSelf,
		PermCyclesRead,
	},
	RoleLeader: {
		PermEvaluationsRead,
		PermEvaluationSelf,
		PermEvaluationLead,
		PermCyclesRead,
		PermReportsRead,
	},
	RoleHR: {
		PermEvaluationsRead,
		PermEvaluationSelf,
		PermEvaluationLead,
		PermEvaluationConsensus,
		PermCyclesRead,
		PermCyclesManage,
		PermReportsRead,
		PermAuditRead,
	},
}

// RoleAllows checks the built-in role table without a database round trip.
func RoleAllows(roleName, permission string) bool {
	for _, p := range RolePermissions[roleName] {
		if p == permission {
			return true
		}
	}
	return false
}
