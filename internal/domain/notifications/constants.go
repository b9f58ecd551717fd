package notifications

const (
	TypeSelfEvaluationSubmitted   = "self_evaluation_submitted"
	TypeLeaderEvaluationSubmitted = "leader_evaluation_submitted"
	TypeConsensusCompleted        = "consensus_completed"
)
