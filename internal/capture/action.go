// Package capture implements the capture-the-code round engine: match
// sessions, round resolution, token assignment and the event log.
// It has zero external dependencies.
package capture

import (
	"fmt"
	"strings"
)

// Action is the closed set of intents a player can queue for a round.
type Action int

const (
	ActionUnknown Action = iota
	ActionPass
	ActionPush
	ActionGetReady
	ActionLook
	ActionObserve
	ActionCatch
	ActionGrab
)

var actionNames = map[Action]string{
	ActionUnknown:  "UNKNOWN",
	ActionPass:     "PASS",
	ActionPush:     "PUSH",
	ActionGetReady: "GETREADY",
	ActionLook:     "LOOK",
	ActionObserve:  "OBSERVE",
	ActionCatch:    "CATCH",
	ActionGrab:     "GRAB",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return actionNames[ActionUnknown]
}

// passive reports whether a queued action of this kind may still be
// replaced within the same round.
func (a Action) passive() bool {
	return a == ActionLook || a == ActionObserve
}

// fetches reports whether the action makes a player a candidate when the
// token is reassigned.
func (a Action) fetches() bool {
	return a == ActionGrab || a == ActionCatch
}

// ParseAction maps an action name to its Action. Matching is case
// insensitive and the legacy spelling GRAP is accepted for GRAB.
func ParseAction(s string) (Action, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "GRAP" {
		return ActionGrab, nil
	}
	for a, n := range actionNames {
		if a != ActionUnknown && n == name {
			return a, nil
		}
	}
	return ActionUnknown, fmt.Errorf("unknown action %q", s)
}

// PlayerState is a player's per-match condition.
type PlayerState int

const (
	StateUnknown PlayerState = iota
	StateReady
	StateOnGround
	StateBanned
)

func (s PlayerState) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateOnGround:
		return "ON_GROUND"
	case StateBanned:
		return "BANNED"
	default:
		return "UNKNOWN"
	}
}

// down reports whether the player must get ready before acting again.
func (s PlayerState) down() bool {
	return s == StateOnGround || s == StateBanned
}
