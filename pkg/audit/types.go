// Package audit implements the Scheduled Audit Agent: a cooperative
// tick-driven scheduler that evaluates a pluggable catalog of compliance
// checks, accumulates Findings with a remediation lifecycle, and emits an
// AuditReport per run.
package audit

import "time"

// Severity is a Finding's urgency tier.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
	SeverityInfo     Severity = "Info"
)

// Weight is the severity's contribution to the compliance score formula
// (§4.2).
func (s Severity) Weight() float64 {
	switch s {
	case SeverityCritical:
		return 10
	case SeverityHigh:
		return 5
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	case SeverityInfo:
		return 0.5
	default:
		return 0
	}
}

// DefaultDeadline returns detectedAt offset by the severity's default
// remediation window. Info findings have no deadline (the zero Time).
func (s Severity) DefaultDeadline(detectedAt time.Time) time.Time {
	switch s {
	case SeverityCritical:
		return detectedAt.Add(4 * time.Hour)
	case SeverityHigh:
		return detectedAt.Add(24 * time.Hour)
	case SeverityMedium:
		return detectedAt.Add(7 * 24 * time.Hour)
	case SeverityLow:
		return detectedAt.Add(30 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

// Status is a Finding's remediation lifecycle state.
type Status string

const (
	StatusNotStarted Status = "NotStarted"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusFailed     Status = "Failed"
	StatusDeferred   Status = "Deferred"
)

// Finding is a single audit non-conformity (§3).
type Finding struct {
	FindingID        string    `json:"finding_id"`
	Severity         Severity  `json:"severity"`
	Category         string    `json:"category"`
	Standard         string    `json:"standard"`
	EvidenceLocation string    `json:"evidence_location"`
	DetectedAt       time.Time `json:"detected_at"`
	Deadline         time.Time `json:"deadline"`
	Status           Status    `json:"status"`
	Actions          []string  `json:"actions"`
}

// ReportStatus is an AuditReport's overall run state.
type ReportStatus string

const (
	ReportPending    ReportStatus = "Pending"
	ReportInProgress ReportStatus = "InProgress"
	ReportCompleted  ReportStatus = "Completed"
	ReportFailed     ReportStatus = "Failed"
)

// AuditReport bundles the findings produced by one scheduler run (§3).
type AuditReport struct {
	AuditID         string       `json:"audit_id"`
	Scope           []string     `json:"scope"`
	StartedAt       time.Time    `json:"started_at"`
	EndedAt         time.Time    `json:"ended_at"`
	ComplianceScore float64      `json:"compliance_score"`
	Findings        []Finding    `json:"findings"`
	Status          ReportStatus `json:"status"`
}
