package cycles

import "time"

type Cycle struct {
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	StartDate  time.Time `json:"startDate" yaml:"startDate"`
	EndDate    time.Time `json:"endDate" yaml:"endDate"`
	Status     Status    `json:"status" yaml:"status"`
	IsEditable bool      `json:"isEditable" yaml:"isEditable"`
	CreatedAt  time.Time `json:"createdAt" yaml:"-"`
}

type Validation struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message,omitempty"`
}

type CreateInput struct {
	Title     string
	StartDate time.Time
	EndDate   time.Time
}
