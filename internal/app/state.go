// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

// State is the phase of the punch cycle.
type State int

const (
	StateIdle State = iota
	StateCountdown
	StateCapturing
	StateComputing
	StateShowingResult
	// StateHalted is terminal: nothing leaves it.
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCountdown:
		return "countdown"
	case StateCapturing:
		return "capturing"
	case StateComputing:
		return "computing"
	case StateShowingResult:
		return "showing-result"
	case StateHalted:
		return "halted"
	}
	return "unknown"
}
