package fusion

// StreamMatch is one scored outcome from FuseStreams: a CBS signal paired
// with its best-matching EMR candidate (if any), the entanglement score,
// and the resulting verification status.
type StreamMatch struct {
	CBS               CBSSignal
	BestMatchEMR      *EMREvent
	Score             float64
	Status            Verification
	PredictedDiagnosis string
}

// FuseStreams scores every CBS signal in cbsBatch against the full
// emrBatch, selecting the single best match per §4.1's tie-break rule. It
// is pure with respect to the store (no side effects) and deterministic:
// given identical inputs and configuration it always produces identical
// output (§8).
//
// An empty emrBatch (no candidates at all) yields Unverified entries with
// PredictedDiagnosis = "Unknown" for every CBS signal; this is not an
// error (§4.1 Failure semantics).
func (e *Engine) FuseStreams(cbsBatch []CBSSignal, emrBatch []EMREvent) []StreamMatch {
	results := make([]StreamMatch, 0, len(cbsBatch))

	for _, cbs := range cbsBatch {
		if len(emrBatch) == 0 {
			results = append(results, StreamMatch{
				CBS:                cbs,
				Status:             VerificationUnverified,
				PredictedDiagnosis: "Unknown",
			})
			continue
		}

		winner, result, found := bestMatch(cbs, emrBatch, e.config.Entanglement, e.config.SymptomDiagnosisMap)
		if !found {
			results = append(results, StreamMatch{
				CBS:                cbs,
				Status:             VerificationUnverified,
				PredictedDiagnosis: "Unknown",
			})
			continue
		}

		emrCopy := winner
		predicted := winner.Diagnosis
		if predicted == "" {
			predicted = "Unknown"
		}

		results = append(results, StreamMatch{
			CBS:                cbs,
			BestMatchEMR:       &emrCopy,
			Score:              result.Score,
			Status:             result.Verification,
			PredictedDiagnosis: predicted,
		})
	}

	return results
}
