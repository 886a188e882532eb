package audit

// ComplianceScore implements §4.2's formula exactly:
//
//	score := max(0, 100 - (Σ weight(f.severity) / (10·|F|)) · 100)  if |F| > 0
//	score := 100                                                     if |F| = 0
func ComplianceScore(findings []Finding) float64 {
	if len(findings) == 0 {
		return 100
	}
	var total float64
	for _, f := range findings {
		total += f.Severity.Weight()
	}
	score := 100 - (total/(10*float64(len(findings))))*100
	if score < 0 {
		return 0
	}
	return score
}
