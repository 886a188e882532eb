package fusion

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/sentinel-surveillance/core/pkg/config"
)

// EntanglementResult is the outcome of scoring one (CBS, EMR) candidate
// pair (§4.1).
type EntanglementResult struct {
	Score        float64
	Verification Verification
	DeltaHours   float64
}

// Entangle computes the entanglement score and verification tier for a
// CBS signal against a single candidate EMR event, using the configured
// decay rate, weights, and thresholds.
func Entangle(cbs CBSSignal, emr EMREvent, cfg config.EntanglementConfig, symptomMap map[string][]string) EntanglementResult {
	deltaHours := math.Abs(cbs.Timestamp.Sub(emr.Timestamp).Hours())

	c := contentAlignment(cbs.Symptom, emr.Diagnosis, symptomMap)
	score := cfg.WeightTemporal*math.Exp(cfg.TemporalDecay*deltaHours) + cfg.WeightContent*c
	score = clamp01(score)

	tier := verificationTier(cbs, emr, score, cfg, deltaHours)

	return EntanglementResult{Score: score, Verification: tier, DeltaHours: deltaHours}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// contentAlignment returns 1.0 if the CBS symptom maps to the EMR
// diagnosis in the configured table, else 0.1 (§4.1).
func contentAlignment(symptom, diagnosis string, symptomMap map[string][]string) float64 {
	candidates, ok := symptomMap[strings.ToLower(symptom)]
	if !ok {
		return 0.1
	}
	lowerDiagnosis := strings.ToLower(diagnosis)
	for _, d := range candidates {
		if strings.ToLower(d) == lowerDiagnosis {
			return 1.0
		}
	}
	return 0.1
}

func verificationTier(cbs CBSSignal, emr EMREvent, score float64, cfg config.EntanglementConfig, deltaHours float64) Verification {
	sameLocation := cbs.Location != "" && cbs.Location == emr.Location
	subjectsMatch := (cbs.SubjectID == emr.SubjectID) || (cbs.SubjectID == "" && emr.SubjectID == "")

	if sameLocation && deltaHours < 24 && subjectsMatch {
		return VerificationConfirmed
	}
	if score > cfg.ThresholdHigh {
		return VerificationEntangled
	}
	if score > cfg.ThresholdMedium {
		return VerificationProbable
	}
	if !sameLocation && score < cfg.ThresholdMedium {
		return VerificationConflict
	}
	return VerificationPossible
}

// RiskTracker maintains a decaying entanglement-history signal keyed by
// location+symptom. It does not influence Entangle's score (§4.1's formula
// is exact and self-contained). Engine.Fuse records into it on every
// two-source fusion, but nothing in the package reads it back: Statistics
// computes avg_verification from the stored records alone.
type RiskTracker struct {
	mu          sync.RWMutex
	history     map[string]float64
	decayFactor float64
	baseline    float64
}

func NewRiskTracker(decayFactor, baseline float64) *RiskTracker {
	return &RiskTracker{
		history:     make(map[string]float64),
		decayFactor: decayFactor,
		baseline:    baseline,
	}
}

func (t *RiskTracker) Record(location, symptom string, score float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := location + ":" + symptom
	t.history[key] = score
}

func (t *RiskTracker) Decay() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, v := range t.history {
		nv := v * t.decayFactor
		if nv < t.baseline {
			nv = t.baseline
		}
		t.history[k] = nv
	}
}

func (t *RiskTracker) Get(location, symptom string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	key := location + ":" + symptom
	if v, ok := t.history[key]; ok {
		return v
	}
	return t.baseline
}

// bestMatch selects the winning EMR candidate for a CBS signal among
// several: the higher verification tier wins; on tier ties the higher
// entanglement score wins; on exact score ties the pair with the smaller
// |Δt| wins.
func bestMatch(cbs CBSSignal, candidates []EMREvent, cfg config.EntanglementConfig, symptomMap map[string][]string) (EMREvent, EntanglementResult, bool) {
	var (
		winner    EMREvent
		winResult EntanglementResult
		found     bool
	)

	for _, emr := range candidates {
		result := Entangle(cbs, emr, cfg, symptomMap)
		if !found {
			winner, winResult, found = emr, result, true
			continue
		}
		if better(result, winResult, cbs, emr, winner) {
			winner, winResult = emr, result
		}
	}
	return winner, winResult, found
}

func better(candidate, current EntanglementResult, cbs CBSSignal, candidateEMR, currentEMR EMREvent) bool {
	if candidate.Verification.Score() != current.Verification.Score() {
		return candidate.Verification.Score() > current.Verification.Score()
	}
	if candidate.Score != current.Score {
		return candidate.Score > current.Score
	}
	return candidate.DeltaHours < current.DeltaHours
}

// timeDeltaHours is a small helper retained for readability at call sites.
func timeDeltaHours(a, b time.Time) float64 {
	return math.Abs(a.Sub(b).Hours())
}
