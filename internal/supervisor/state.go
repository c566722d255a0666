// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import "slices"

// State is the lifecycle state of one supervised run.
type State int

// States of a supervised run, in the order they are entered.
const (
	StateNotStarted State = iota
	StateLaunching
	StateRunning
	StateDraining
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateLaunching:
		return "Launching"
	case StateRunning:
		return "Running"
	case StateDraining:
		return "Draining"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// validTransitions lists the single permitted successor(s) of each state.
var validTransitions = map[State][]State{
	StateNotStarted: {StateLaunching},
	StateLaunching:  {StateRunning, StateFailed},
	StateRunning:    {StateDraining},
	StateDraining:   {StateCompleted},
}

func canTransition(from, to State) bool {
	return slices.Contains(validTransitions[from], to)
}
