// Package dispatch implements the Alert Distributor: validates incoming
// alert messages, formats them per severity, and fans them out across
// pluggable channel adapters.
package dispatch

import "time"

// Alert is one serialized message handed to the distributor (§4.3).
type Alert struct {
	AlertID   string                 `json:"alert_id"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Severity  string                 `json:"severity"`
	Location  string                 `json:"location,omitempty"`
	Timestamp time.Time              `json:"timestamp,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}
