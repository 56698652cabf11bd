// Package status models the order lifecycle as an explicit state machine:
// an enumeration of statuses and a fixed adjacency map of legal transitions.
package status

import (
	"errors"
	"fmt"
)

// Status is an order lifecycle state.
type Status string

// Order statuses. Delivered and Cancelled are terminal.
const (
	Processing Status = "Processing"
	Shipped    Status = "Shipped"
	Soon       Status = "Soon"
	Delivered  Status = "Delivered"
	Cancelled  Status = "Cancelled"
)

// transitions is the fixed directed graph of legal status changes. The order
// of each slice matters: when a requested target is not directly reachable,
// PathTo steps through the FIRST listed option at every hop.
var transitions = map[Status][]Status{
	Processing: {Shipped, Cancelled},
	Shipped:    {Soon, Cancelled},
	Soon:       {Delivered, Cancelled},
	Delivered:  {},
	Cancelled:  {},
}

// ErrUnreachable is returned by PathTo when the walk reaches a terminal
// status without arriving at the target.
var ErrUnreachable = errors.New("invalid transition")

// Parse validates a client-submitted status string.
func Parse(s string) (Status, error) {
	switch Status(s) {
	case Processing, Shipped, Soon, Delivered, Cancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Terminal reports whether s has no outgoing transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Next returns the legal direct transitions out of s.
func (s Status) Next() []Status {
	return transitions[s]
}

// PathTo returns the sequence of statuses an order must pass through to
// move from current to target. When target equals current the path is
// empty. When target is a direct transition the path is a single step.
// Otherwise the walk is greedy: at every hop it takes the first listed
// transition, so requesting Delivered from Processing yields
// [Shipped, Soon, Delivered] within one call. A terminal dead end returns
// ErrUnreachable.
func PathTo(current, target Status) ([]Status, error) {
	var path []Status
	for current != target {
		next := transitions[current]
		if len(next) == 0 {
			return nil, ErrUnreachable
		}
		if contains(next, target) {
			current = target
		} else {
			current = next[0]
		}
		path = append(path, current)
	}
	return path, nil
}

func contains(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
