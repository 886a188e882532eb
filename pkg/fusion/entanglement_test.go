package fusion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sentinel-surveillance/core/pkg/config"
)

func TestContentAlignment(t *testing.T) {
	m := config.DefaultSymptomDiagnosisMap()
	assert.Equal(t, 1.0, contentAlignment("fever", "Malaria", m))
	assert.Equal(t, 1.0, contentAlignment("FEVER", "malaria", m))
	assert.Equal(t, 0.1, contentAlignment("fever", "Cholera", m))
	assert.Equal(t, 0.1, contentAlignment("unlisted_symptom", "Malaria", m))
}

func TestVerificationTier_ConfirmedRequiresSubjectLocationAndWindow(t *testing.T) {
	cfg := config.Default().Entanglement
	now := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	cbs := CBSSignal{Location: "Nairobi", SubjectID: "P1", Timestamp: now}
	emr := EMREvent{Location: "Nairobi", SubjectID: "P1", Timestamp: now.Add(-15 * time.Minute)}

	tier := verificationTier(cbs, emr, 0.95, cfg, 0.25)
	assert.Equal(t, VerificationConfirmed, tier)
}

func TestVerificationTier_DifferentSubjectNeverConfirmed(t *testing.T) {
	cfg := config.Default().Entanglement
	now := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	cbs := CBSSignal{Location: "Nairobi", SubjectID: "P1", Timestamp: now}
	emr := EMREvent{Location: "Nairobi", SubjectID: "P2", Timestamp: now.Add(-15 * time.Minute)}

	tier := verificationTier(cbs, emr, 0.95, cfg, 0.25)
	assert.NotEqual(t, VerificationConfirmed, tier)
	assert.Equal(t, VerificationEntangled, tier)
}

func TestVerificationTier_ConflictOnDifferentLocationLowScore(t *testing.T) {
	cfg := config.Default().Entanglement
	cbs := CBSSignal{Location: "Nairobi"}
	emr := EMREvent{Location: "Mombasa"}

	tier := verificationTier(cbs, emr, 0.2, cfg, 72)
	assert.Equal(t, VerificationConflict, tier)
}

func TestVerificationTier_Thresholds(t *testing.T) {
	cfg := config.Default().Entanglement
	cbs := CBSSignal{Location: "Nairobi"}
	emr := EMREvent{Location: "Nairobi"}

	assert.Equal(t, VerificationEntangled, verificationTier(cbs, emr, 0.9, cfg, 48))
	assert.Equal(t, VerificationProbable, verificationTier(cbs, emr, 0.6, cfg, 48))
	assert.Equal(t, VerificationPossible, verificationTier(cbs, emr, 0.45, cfg, 48))
}

func TestEntangle_ScoreClampedToUnitInterval(t *testing.T) {
	cfg := config.Default().Entanglement
	cbs := CBSSignal{Symptom: "fever", Timestamp: time.Now()}
	emr := EMREvent{Diagnosis: "Malaria", Timestamp: time.Now()}

	result := Entangle(cbs, emr, cfg, config.DefaultSymptomDiagnosisMap())
	assert.GreaterOrEqual(t, result.Score, 0.0)
	assert.LessOrEqual(t, result.Score, 1.0)
}

func TestBestMatch_PrefersHigherVerificationTier(t *testing.T) {
	cfg := config.Default().Entanglement
	m := config.DefaultSymptomDiagnosisMap()
	now := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)

	cbs := CBSSignal{Location: "Nairobi", SubjectID: "P1", Symptom: "fever", Timestamp: now}
	candidates := []EMREvent{
		{Location: "Mombasa", Diagnosis: "Cholera", Timestamp: now.Add(-72 * time.Hour)},
		{Location: "Nairobi", SubjectID: "P1", Diagnosis: "Malaria", Timestamp: now.Add(-10 * time.Minute)},
	}

	winner, result, found := bestMatch(cbs, candidates, cfg, m)
	assert.True(t, found)
	assert.Equal(t, "Malaria", winner.Diagnosis)
	assert.Equal(t, VerificationConfirmed, result.Verification)
}

func TestBestMatch_TieBreaksOnSmallerDelta(t *testing.T) {
	cfg := config.Default().Entanglement
	m := config.DefaultSymptomDiagnosisMap()
	now := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)

	cbs := CBSSignal{Symptom: "cough", Timestamp: now}
	candidates := []EMREvent{
		{Diagnosis: "unknown_condition", Timestamp: now.Add(-10 * time.Hour)},
		{Diagnosis: "unknown_condition_2", Timestamp: now.Add(-1 * time.Hour)},
	}

	_, result, found := bestMatch(cbs, candidates, cfg, m)
	assert.True(t, found)
	assert.InDelta(t, 1.0, result.DeltaHours, 0.01)
}

func TestRiskTracker_RecordDecayGet(t *testing.T) {
	rt := NewRiskTracker(0.5, 0.1)
	rt.Record("Nairobi", "fever", 0.8)
	before := rt.Get("Nairobi", "fever")
	assert.Greater(t, before, 0.1)

	rt.Decay()
	after := rt.Get("Nairobi", "fever")
	assert.Less(t, after, before)
}

func TestRiskTracker_UnknownKeyReturnsBaseline(t *testing.T) {
	rt := NewRiskTracker(0.5, 0.2)
	assert.Equal(t, 0.2, rt.Get("Nowhere", "nothing"))
}
