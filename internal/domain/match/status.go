package match

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	StatusNew       Status = "NEW"
	StatusAIChecked Status = "AI_CHECKED"
	StatusPresented Status = "PRESENTED"
	StatusRejected  Status = "REJECTED"
	StatusPlaced    Status = "PLACED"
)

var ErrInvalidTransition = errors.New("invalid match status transition")

var transitions = map[Status][]Status{
	StatusNew:       {StatusAIChecked},
	StatusAIChecked: {StatusPresented, StatusRejected, StatusPlaced},
	StatusPresented: {StatusRejected, StatusPlaced},
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusNew, StatusAIChecked, StatusPresented, StatusRejected, StatusPlaced:
		return st, nil
	}
	return "", fmt.Errorf("unknown match status %q", s)
}

func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusPlaced
}

// CanTransition reports whether from -> to is allowed. Staying in the same
// status is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CheckTransition(from, to Status) error {
	if CanTransition(from, to) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
