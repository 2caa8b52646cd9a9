// Package session implements the per-document interaction coordinator: the
// tap -> resolve -> lookup -> tooltip state machine.
package session

import (
	"github.com/hmercer/tapread/internal/lookup"
	"github.com/hmercer/tapread/internal/model"
)

// Phase is the coordinator's state-machine phase.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseResolving      Phase = "resolving"
	PhaseShowingTooltip Phase = "showing_tooltip"
	PhaseShowingDetail  Phase = "showing_detail"
	PhaseCancelled      Phase = "cancelled"
)

// State is one snapshot of the machine. It is replaced wholesale on every
// transition; no field is mutated across states.
type State struct {
	Phase   Phase          `json:"phase"`
	Word    string         `json:"word,omitempty"`
	Result  *lookup.Result `json:"result,omitempty"`
	Err     string         `json:"error,omitempty"`
	Tooltip model.Point    `json:"tooltip,omitempty"`
}

// Size is a width/height pair for viewport and tooltip dimensions.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
