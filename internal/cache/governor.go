package cache

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// PressureLevel is the severity of a memory-pressure notification.
type PressureLevel int

const (
	PressureNormal PressureLevel = iota
	PressureWarning
	PressureCritical
)

func (l PressureLevel) String() string {
	switch l {
	case PressureWarning:
		return "warning"
	case PressureCritical:
		return "critical"
	default:
		return "normal"
	}
}

// ParsePressureLevel maps a signal name to a level. Unknown names are
// treated as warnings: the governor prefers evicting too much over too
// little.
func ParsePressureLevel(s string) PressureLevel {
	switch s {
	case "normal":
		return PressureNormal
	case "critical":
		return PressureCritical
	default:
		return PressureWarning
	}
}

// Observer reacts to a memory-pressure notification by shedding transient
// state. Implementations must be idempotent.
type Observer interface {
	OnMemoryPressure(level PressureLevel)
}

// Governor fans memory-pressure signals out to registered observers and
// holds the process-wide low-memory toggle. It is constructed once and
// passed by reference to all consumers; there is no ambient global.
type Governor struct {
	mu        sync.Mutex
	names     []string
	observers []Observer

	lowMemory atomic.Bool
	log       *slog.Logger
}

func NewGovernor(log *slog.Logger) *Governor {
	return &Governor{log: log}
}

// Register adds a named observer. Observers are notified synchronously in
// registration order, which keeps eviction ordering deterministic.
func (g *Governor) Register(name string, o Observer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.names = append(g.names, name)
	g.observers = append(g.observers, o)
}

// OnMemoryPressure is the sole entry point for memory-pressure signals.
// Critical pressure also latches low-memory mode on, so downstream
// structuring degrades to the cheap path proactively.
func (g *Governor) OnMemoryPressure(level PressureLevel) {
	if level == PressureNormal {
		g.lowMemory.Store(false)
		return
	}
	if level == PressureCritical {
		g.lowMemory.Store(true)
	}

	g.mu.Lock()
	names := make([]string, len(g.names))
	copy(names, g.names)
	observers := make([]Observer, len(g.observers))
	copy(observers, g.observers)
	g.mu.Unlock()

	for i, o := range observers {
		g.log.Info("memory pressure", "level", level.String(), "observer", names[i])
		o.OnMemoryPressure(level)
	}
}

// LowMemory reports whether low-memory mode is active.
func (g *Governor) LowMemory() bool {
	return g.lowMemory.Load()
}

// SetLowMemory toggles low-memory mode directly.
func (g *Governor) SetLowMemory(on bool) {
	g.lowMemory.Store(on)
}
