package cycles

type Status string

const (
	StatusDraft  Status = "draft"
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusOpen, StatusClosed:
		return true
	}
	return false
}

const dateLayout = "2006-01-02"
