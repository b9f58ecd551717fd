package evaluations

type Type string

const (
	TypeSelf      Type = "self"
	TypeLeader    Type = "leader"
	TypeConsensus Type = "consensus"
)

func (t Type) Valid() bool {
	switch t {
	case TypeSelf, TypeLeader, TypeConsensus:
		return true
	}
	return false
}

// RatesPotential reports whether evaluations of this type carry the
// potential criteria.
func (t Type) RatesPotential() bool {
	return t == TypeLeader || t == TypeConsensus
}

type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)
