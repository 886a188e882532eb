// Package fusion implements the Fusion Engine: it merges CBS and EMR
// streams into a canonical FusedRecord timeline per subject, applying
// probabilistic entanglement when identifiers are absent, and enforces the
// hot/cold retention policy.
package fusion

import (
	"encoding/json"
	"time"
)

// EventType classifies the kind of clinical signal a FusedRecord
// represents.
type EventType string

const (
	EventSymptomReport  EventType = "symptom_report"
	EventDiagnosis      EventType = "diagnosis"
	EventLabResult      EventType = "lab_result"
	EventHospitalization EventType = "hospitalization"
	EventOutbreakAlert  EventType = "outbreak_alert"
	EventUnknown        EventType = "unknown"
)

// Verification is the cross-source confidence tier assigned at fusion time.
type Verification string

const (
	VerificationConfirmed  Verification = "Confirmed"
	VerificationEntangled  Verification = "Entangled"
	VerificationProbable   Verification = "Probable"
	VerificationPossible   Verification = "Possible"
	VerificationUnverified Verification = "Unverified"
	VerificationConflict   Verification = "Conflict"
)

// Score returns the canonical numeric weight for a Verification tier, used
// for tie-breaking and statistics aggregation (§4.1).
func (v Verification) Score() float64 {
	switch v {
	case VerificationConfirmed:
		return 1.0
	case VerificationEntangled:
		return 0.9
	case VerificationProbable:
		return 0.7
	case VerificationPossible:
		return 0.4
	case VerificationUnverified:
		return 0.3
	case VerificationConflict:
		return 0.0
	default:
		return 0.0
	}
}

// Retention is the hot/cold tier of a FusedRecord.
type Retention string

const (
	RetentionHot  Retention = "Hot"
	RetentionCold Retention = "Cold"
)

// CBSSignal is a community-reported health event (§3).
type CBSSignal struct {
	Timestamp time.Time              `json:"timestamp"`
	Location  string                 `json:"location"`
	Symptom   string                 `json:"symptom"`
	SubjectID string                 `json:"subject_id"`
	Raw       map[string]interface{} `json:"raw,omitempty"`
}

// UnmarshalJSON accepts timestamp as either an ISO-8601 string or a
// numeric epoch-seconds value (§6: "both accepted; ambiguity resolved by
// attempting ISO first"), via ParseTimestampValue. An unparseable
// timestamp is returned as an apperr.Validation error rather than a
// generic decode error, so callers see exit code 2, not 3.
func (c *CBSSignal) UnmarshalJSON(data []byte) error {
	var shadow struct {
		Timestamp interface{}            `json:"timestamp"`
		Location  string                 `json:"location"`
		Symptom   string                 `json:"symptom"`
		SubjectID string                 `json:"subject_id"`
		Raw       map[string]interface{} `json:"raw,omitempty"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	ts, err := ParseTimestampValue(shadow.Timestamp)
	if err != nil {
		return err
	}
	c.Timestamp = ts
	c.Location = shadow.Location
	c.Symptom = shadow.Symptom
	c.SubjectID = shadow.SubjectID
	c.Raw = shadow.Raw
	return nil
}

// EMREvent is a structured clinical record (§3).
type EMREvent struct {
	Timestamp  time.Time              `json:"timestamp"`
	Location   string                 `json:"location"`
	Diagnosis  string                 `json:"diagnosis"`
	SubjectID  string                 `json:"subject_id"`
	LabResults map[string]interface{} `json:"lab_results,omitempty"`
	Raw        map[string]interface{} `json:"raw,omitempty"`
}

// UnmarshalJSON mirrors CBSSignal.UnmarshalJSON's timestamp handling.
func (e *EMREvent) UnmarshalJSON(data []byte) error {
	var shadow struct {
		Timestamp  interface{}            `json:"timestamp"`
		Location   string                 `json:"location"`
		Diagnosis  string                 `json:"diagnosis"`
		SubjectID  string                 `json:"subject_id"`
		LabResults map[string]interface{} `json:"lab_results,omitempty"`
		Raw        map[string]interface{} `json:"raw,omitempty"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	ts, err := ParseTimestampValue(shadow.Timestamp)
	if err != nil {
		return err
	}
	e.Timestamp = ts
	e.Location = shadow.Location
	e.Diagnosis = shadow.Diagnosis
	e.SubjectID = shadow.SubjectID
	e.LabResults = shadow.LabResults
	e.Raw = shadow.Raw
	return nil
}

// ConfidenceStep is one entry in a FusedRecord's audit trail. Steps are
// appended in order; the chain is strictly monotonic in Index.
type ConfidenceStep struct {
	Index     int       `json:"index"`
	Label     string    `json:"label"`
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// IDSRReport is the regulatory-shaped derived view of a FusedRecord (§4.1).
type IDSRReport struct {
	DiseaseCode          string `json:"disease_code"`
	ClinicalSummary      string `json:"clinical_summary"`
	VerificationMetadata string `json:"verification_metadata"`
	SubmissionStatus     string `json:"submission_status"`
}

// FusedRecord is the canonical merged truth for one fusion event (§3). The
// json tags make a record byte-stable to archive: they are used by
// coldstore's S3/local archive backends and by the CLI's fuse output.
type FusedRecord struct {
	RecordID           string                 `json:"record_id"`
	SubjectID          string                 `json:"subject_id"`
	EventType          EventType              `json:"event_type"`
	Location           string                 `json:"location"`
	CanonicalTimestamp time.Time              `json:"canonical_timestamp"`
	Sources            map[string]interface{} `json:"sources"` // source name -> raw payload
	Verification       Verification           `json:"verification"`
	CanonicalPayload   map[string]interface{} `json:"canonical_payload"`
	ConfidenceChain    []ConfidenceStep       `json:"confidence_chain"`
	Retention          Retention              `json:"retention"`
	IDSRReportData     IDSRReport             `json:"idsr_report"`
}
