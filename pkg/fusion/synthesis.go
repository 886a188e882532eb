package fusion

import "strings"

// inferEventType implements the §4.1 priority order: diagnosis >
// lab_results > hospitalization > symptom > outbreak > unknown.
func inferEventType(emr *EMREvent, cbs *CBSSignal) EventType {
	if emr != nil {
		if emr.Diagnosis != "" {
			return EventDiagnosis
		}
		if len(emr.LabResults) > 0 {
			return EventLabResult
		}
		if hospitalization, ok := emr.Raw["hospitalization"]; ok && truthy(hospitalization) {
			return EventHospitalization
		}
	}
	if cbs != nil {
		if cbs.Symptom != "" && cbs.Symptom != "unknown" {
			return EventSymptomReport
		}
		if outbreak, ok := cbs.Raw["outbreak"]; ok && truthy(outbreak) {
			return EventOutbreakAlert
		}
	}
	return EventUnknown
}

func truthy(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != "" && val != "false"
	case nil:
		return false
	default:
		return true
	}
}

// canonicalLocation resolves the §3 location default: EMR overrides CBS,
// else UNKNOWN.
func canonicalLocation(cbs *CBSSignal, emr *EMREvent) string {
	if emr != nil && emr.Location != "" {
		return emr.Location
	}
	if cbs != nil && cbs.Location != "" {
		return cbs.Location
	}
	return "UNKNOWN"
}

// canonicalSubject resolves the subject id, preferring an explicit
// subject_id argument, then EMR, then CBS.
func canonicalSubject(subjectID string, cbs *CBSSignal, emr *EMREvent) string {
	if subjectID != "" {
		return subjectID
	}
	if emr != nil && emr.SubjectID != "" {
		return emr.SubjectID
	}
	if cbs != nil && cbs.SubjectID != "" {
		return cbs.SubjectID
	}
	return ""
}

// canonicalPayload merges overlapping fields with EMR overriding CBS, per
// §4.1's canonical synthesis rule.
func canonicalPayload(cbs *CBSSignal, emr *EMREvent) map[string]interface{} {
	payload := make(map[string]interface{})
	if cbs != nil {
		payload["symptom"] = orDefault(cbs.Symptom, "unknown")
		for k, v := range cbs.Raw {
			payload[k] = v
		}
	}
	if emr != nil {
		if emr.Diagnosis != "" {
			payload["diagnosis"] = emr.Diagnosis
		}
		if len(emr.LabResults) > 0 {
			labCopy := make(map[string]interface{}, len(emr.LabResults))
			for k, v := range emr.LabResults {
				labCopy[k] = v
			}
			payload["lab_results"] = labCopy
		}
		for k, v := range emr.Raw {
			payload[k] = v
		}
	}
	return payload
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// diseaseCodeFor matches a lowercased diagnosis against a fixed keyword
// dictionary (§4.1 IDSR report generation).
func diseaseCodeFor(diagnosis string) string {
	lower := strings.ToLower(diagnosis)
	switch {
	case strings.Contains(lower, "malaria"):
		return "MAL001"
	case strings.Contains(lower, "cholera"):
		return "CHOL001"
	case strings.Contains(lower, "measles"):
		return "MEA001"
	case strings.Contains(lower, "tuberculosis"):
		return "TB001"
	case strings.Contains(lower, "ebola"):
		return "EBO001"
	case strings.Contains(lower, "yellow fever"):
		return "YF001"
	case lower == "":
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// buildIDSRReport derives the regulatory-shaped view of a FusedRecord at
// fusion time (§4.1). Re-deriving from an unchanged FusedRecord yields
// byte-identical output because it is a pure function of the record's
// already-canonicalized fields.
func buildIDSRReport(eventType EventType, diagnosis string, verification Verification, location string) IDSRReport {
	return IDSRReport{
		DiseaseCode:          diseaseCodeFor(diagnosis),
		ClinicalSummary:      clinicalSummary(eventType, diagnosis, location),
		VerificationMetadata: string(verification),
		SubmissionStatus:     "PENDING_REVIEW",
	}
}

func clinicalSummary(eventType EventType, diagnosis, location string) string {
	if diagnosis == "" {
		return string(eventType) + " reported in " + location
	}
	return diagnosis + " reported in " + location
}
