// Package model defines the shared data types for the stock monitor:
// instruments, quotes, persisted price samples, positions, indicator
// bundles and alert signals.
package model

import "time"

// Instrument is a tracked security, uniquely keyed by its normalized
// exchange-prefixed code (e.g. "sh600519", "sz000001").
type Instrument struct {
	Code    string    `json:"code"`
	Name    string    `json:"name"`
	AddedAt time.Time `json:"added_at"`
}
