package entity

import "fmt"

// Status 房间生命周期：created -> running -> ended。
type Status string

const (
	StatusCreated Status = "created"
	StatusRunning Status = "running"
	StatusEnded   Status = "ended"
)

// transitions 合法迁移表，不在表里的迁移一律拒绝。
var transitions = map[Status][]Status{
	StatusCreated: {StatusRunning},
	StatusRunning: {StatusEnded},
	StatusEnded:   nil,
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown room status %q", v)
	}
	return s, nil
}
