package config

import (
	"fmt"
	"sync"
	"time"
)

// Settings is the runtime-tunable monitoring configuration. Each cycle
// works from an immutable snapshot, so evaluator logic stays a pure
// function of explicit inputs while the command listener mutates the
// live copy under lock.
type Settings struct {
	Interval             time.Duration // between monitor cycles
	RSIPeriod            int
	Overbought           float64 // RSI above fires rsi_overbought
	Oversold             float64 // RSI below fires rsi_oversold
	ChangeThresholdPct   float64 // |change%| above fires volatility_spike
	VolumeRatioThreshold float64 // ratio above fires volume_spike
	NotifyAlways         bool    // false = only notify when an alert fired
}

// Interval bounds accepted by the interval command.
const (
	MinInterval = 10 * time.Second
	MaxInterval = 600 * time.Second
)

// DefaultSettings returns the monitoring defaults.
func DefaultSettings() Settings {
	return Settings{
		Interval:             60 * time.Second,
		RSIPeriod:            6,
		Overbought:           80,
		Oversold:             20,
		ChangeThresholdPct:   5,
		VolumeRatioThreshold: 2,
		NotifyAlways:         true,
	}
}

// Runtime guards the live Settings shared between the monitor loop and
// the command listener.
type Runtime struct {
	mu sync.RWMutex
	s  Settings
}

// NewRuntime creates a Runtime seeded with the given settings.
func NewRuntime(s Settings) *Runtime {
	return &Runtime{s: s}
}

// Snapshot returns a copy of the current settings.
func (r *Runtime) Snapshot() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.s
}

// SetInterval updates the cycle interval; takes effect from the next tick.
func (r *Runtime) SetInterval(d time.Duration) error {
	if d < MinInterval || d > MaxInterval {
		return fmt.Errorf("config: interval must be between %v and %v", MinInterval, MaxInterval)
	}
	r.mu.Lock()
	r.s.Interval = d
	r.mu.Unlock()
	return nil
}

// SetOverbought updates the RSI overbought threshold.
func (r *Runtime) SetOverbought(v float64) error {
	if v < 70 || v > 90 {
		return fmt.Errorf("config: overbought threshold must be between 70 and 90")
	}
	r.mu.Lock()
	r.s.Overbought = v
	r.mu.Unlock()
	return nil
}

// SetOversold updates the RSI oversold threshold.
func (r *Runtime) SetOversold(v float64) error {
	if v < 10 || v > 30 {
		return fmt.Errorf("config: oversold threshold must be between 10 and 30")
	}
	r.mu.Lock()
	r.s.Oversold = v
	r.mu.Unlock()
	return nil
}

// SetChangeThreshold updates the volatility threshold in percent.
func (r *Runtime) SetChangeThreshold(v float64) error {
	if v <= 0 || v > 20 {
		return fmt.Errorf("config: change threshold must be between 0 and 20 percent")
	}
	r.mu.Lock()
	r.s.ChangeThresholdPct = v
	r.mu.Unlock()
	return nil
}

// SetNotifyAlways switches between always-notify and alerts-only policy.
func (r *Runtime) SetNotifyAlways(v bool) {
	r.mu.Lock()
	r.s.NotifyAlways = v
	r.mu.Unlock()
}
