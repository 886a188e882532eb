package audit

import "context"

// AlertPublisher is the remediation-dispatch seam for Critical findings
// (§4.2's remediation-trigger table: Critical -> immediate, publish an
// alert). Defined here, not in the caller's package, so Agent never
// imports a concrete distributor — an adapter built by the caller
// satisfies this interface.
type AlertPublisher interface {
	Publish(ctx context.Context, f Finding) error
}

// RemediationQueue is the remediation-dispatch seam for High/Medium
// findings (§4.2: queued for remediation). Low/Info findings are logged
// only and never reach either seam.
type RemediationQueue interface {
	Queue(ctx context.Context, f Finding) error
}

// triggerRemediation realizes the severity -> remediation-trigger mapping
// for one finding. A nil seam makes the corresponding trigger a no-op; a
// seam error is logged, never returned, since a remediation-dispatch
// failure must not block the audit run or corrupt the persisted report.
func (a *Agent) triggerRemediation(ctx context.Context, f Finding) {
	switch f.Severity {
	case SeverityCritical:
		if a.publisher == nil {
			return
		}
		if err := a.publisher.Publish(ctx, f); err != nil {
			a.logger.Error("failed to publish alert for critical finding", "finding_id", f.FindingID, "error", err)
		}
	case SeverityHigh, SeverityMedium:
		if a.remediation == nil {
			return
		}
		if err := a.remediation.Queue(ctx, f); err != nil {
			a.logger.Error("failed to queue finding for remediation", "finding_id", f.FindingID, "error", err)
		}
	}
}
