package audit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sentinel-surveillance/core/pkg/apperr"
	"github.com/sentinel-surveillance/core/pkg/clock"
	"github.com/sentinel-surveillance/core/pkg/config"
)

// Agent runs the scheduled audit loop: a cooperative, single-threaded
// tick-driven dispatcher that buckets checks by frequency and runs each
// due bucket on every tick.
type Agent struct {
	catalog     *Catalog
	findings    *FindingStore
	reports     *ReportStore
	logger      *slog.Logger
	tracer      trace.Tracer
	clock       clock.Clock
	config      config.AuditConfig
	contextFunc func() CheckContext

	publisher   AlertPublisher
	remediation RemediationQueue

	mu       sync.Mutex
	lastRun  map[Frequency]time.Time
	quit     chan struct{}
	stopOnce sync.Once
}

// Option configures an Agent at construction time.
type Option func(*Agent)

func WithCatalog(c *Catalog) Option          { return func(a *Agent) { a.catalog = c } }
func WithFindingStore(s *FindingStore) Option { return func(a *Agent) { a.findings = s } }
func WithReportStore(s *ReportStore) Option  { return func(a *Agent) { a.reports = s } }
func WithAgentLogger(l *slog.Logger) Option  { return func(a *Agent) { a.logger = l } }
func WithAgentClock(c clock.Clock) Option    { return func(a *Agent) { a.clock = c } }
func WithAgentConfig(cfg config.AuditConfig) Option {
	return func(a *Agent) { a.config = cfg }
}

// WithContextFunc supplies the function the agent calls at the start of
// each run to build the CheckContext (evidence paths, IDSR artifacts,
// etc.) checks inspect.
func WithContextFunc(f func() CheckContext) Option {
	return func(a *Agent) { a.contextFunc = f }
}

// WithAlertPublisher wires the remediation-dispatch seam a Critical
// finding publishes through.
func WithAlertPublisher(p AlertPublisher) Option {
	return func(a *Agent) { a.publisher = p }
}

// WithRemediationQueue wires the remediation-dispatch seam a High/Medium
// finding is queued through.
func WithRemediationQueue(q RemediationQueue) Option {
	return func(a *Agent) { a.remediation = q }
}

// New constructs an Agent with safe defaults, mirroring the fusion
// package's functional-options Engine.New.
func New(opts ...Option) *Agent {
	a := &Agent{
		catalog:  NewCatalog(),
		findings: NewFindingStore(),
		logger:   slog.New(slog.NewTextHandler(os.Stdout, nil)),
		tracer:   otel.Tracer("surveillance/audit"),
		clock:    clock.Real{},
		config:   config.Default().Audit,
		lastRun:  make(map[Frequency]time.Time),
		quit:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.reports == nil {
		a.reports, _ = NewReportStore("")
	}
	if a.contextFunc == nil {
		a.contextFunc = func() CheckContext { return CheckContext{Clock: a.clock} }
	}
	return a
}

// dueChecks returns, in catalog order, the checks whose frequency bucket
// has not yet run for the current bucket window (§4.2 Scheduler).
func (a *Agent) dueChecks(now time.Time) []*Check {
	a.mu.Lock()
	defer a.mu.Unlock()

	var due []*Check
	for _, c := range a.catalog.All() {
		if c.Frequency == FrequencyContinuous {
			due = append(due, c)
			continue
		}
		last, ran := a.lastRun[c.Frequency]
		if !ran || !sameBucket(c.Frequency, last, now) {
			due = append(due, c)
		}
	}
	return due
}

func (a *Agent) markRun(frequencies map[Frequency]bool, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for f := range frequencies {
		if f == FrequencyContinuous {
			continue
		}
		a.lastRun[f] = now
	}
}

// sameBucket reports whether last and now fall in the same calendar
// bucket window for frequency (§4.2: daily = UTC calendar day, weekly =
// ISO week starting Monday, monthly = calendar month, quarterly =
// Jan/Apr/Jul/Oct-aligned quarter).
func sameBucket(freq Frequency, last, now time.Time) bool {
	last, now = last.UTC(), now.UTC()
	switch freq {
	case FrequencyDaily:
		ly, lm, ld := last.Date()
		ny, nm, nd := now.Date()
		return ly == ny && lm == nm && ld == nd
	case FrequencyWeekly:
		return weekStart(last).Equal(weekStart(now))
	case FrequencyMonthly:
		ly, lm, _ := last.Date()
		ny, nm, _ := now.Date()
		return ly == ny && lm == nm
	case FrequencyQuarterly:
		ly, lq := last.Year(), quarterOf(last)
		ny, nq := now.Year(), quarterOf(now)
		return ly == ny && lq == nq
	default:
		return false
	}
}

func weekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday -> last day of the ISO week, not the first.
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(weekday - 1))
}

func quarterOf(t time.Time) int {
	return (int(t.Month()) - 1) / 3
}

// RunOnce evaluates every currently due check in catalog order, recovers
// from a panicking check with a synthetic High finding (§4.2 Failure
// semantics), persists the resulting AuditReport atomically, and returns
// it.
func (a *Agent) RunOnce(ctx context.Context) (*AuditReport, error) {
	ctx, span := a.tracer.Start(ctx, "audit.RunOnce")
	defer span.End()

	now := a.clock.Now()
	due := a.dueChecks(now)
	cctx := a.contextFunc()
	if cctx.Clock == nil {
		cctx.Clock = a.clock
	}

	report := &AuditReport{
		AuditID:   uuid.NewString(),
		StartedAt: now,
		Status:    ReportInProgress,
	}

	ranFrequencies := make(map[Frequency]bool)
	for _, c := range due {
		report.Scope = append(report.Scope, c.ID)
		ranFrequencies[c.Frequency] = true

		if !c.Eligible(cctx.ConditionVars) {
			continue
		}

		findings, err := a.runOneCheck(ctx, c, cctx)
		if err != nil {
			span.RecordError(err)
			a.logger.Error("audit check failed", "check_id", c.ID, "error", err)
		}
		for _, f := range findings {
			a.triggerRemediation(ctx, f)
		}
		report.Findings = append(report.Findings, findings...)
	}

	a.findings.Append(report.Findings...)
	a.markRun(ranFrequencies, now)

	report.EndedAt = a.clock.Now()
	report.ComplianceScore = ComplianceScore(report.Findings)
	report.Status = ReportCompleted

	if err := a.reports.Save(report); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return report, apperr.Wrap(err, apperr.Integrity, "failed to persist audit report")
	}

	span.SetAttributes(
		attribute.String("audit_id", report.AuditID),
		attribute.Int("findings", len(report.Findings)),
		attribute.Float64("compliance_score", report.ComplianceScore),
	)
	return report, nil
}

// runOneCheck runs a single check under its soft deadline, converting a
// panic or deadline overrun into a synthetic High "System Error" finding
// naming the check, per §4.2.
func (a *Agent) runOneCheck(ctx context.Context, c *Check, cctx CheckContext) (findings []Finding, err error) {
	deadline := time.Duration(a.config.CheckDeadlineSeconds) * time.Second
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	type result struct {
		findings []Finding
		err      error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("check %s panicked: %v", c.ID, r)}
			}
		}()
		f, runErr := c.Run(checkCtx, cctx)
		done <- result{findings: f, err: runErr}
	}()

	select {
	case <-checkCtx.Done():
		return []Finding{a.systemErrorFinding(c.ID, a.clock.Now())}, checkCtx.Err()
	case res := <-done:
		if res.err != nil {
			return []Finding{a.systemErrorFinding(c.ID, a.clock.Now())}, res.err
		}
		return res.findings, nil
	}
}

func (a *Agent) systemErrorFinding(checkID string, now time.Time) Finding {
	return Finding{
		FindingID:        uuid.NewString(),
		Severity:         SeverityHigh,
		Category:         "System Error",
		Standard:         checkID,
		EvidenceLocation: "",
		DetectedAt:       now,
		Deadline:         SeverityHigh.DefaultDeadline(now),
		Status:           StatusNotStarted,
		Actions:          RecommendationsFor("System Error"),
	}
}

// Start begins the cooperative tick loop in a new goroutine, running due
// checks every tickInterval until ctx is cancelled or Stop is called.
func (a *Agent) Start(ctx context.Context) {
	go a.loop(ctx)
}

func (a *Agent) loop(ctx context.Context) {
	interval := time.Duration(a.config.TickSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.quit:
			return
		case <-ticker.C:
			if _, err := a.RunOnce(ctx); err != nil {
				a.logger.Error("audit run failed", "error", err)
			}
		}
	}
}

// Stop signals the loop to finish its current check and exit cleanly at
// the next tick boundary (§5 Cancellation and timeouts).
func (a *Agent) Stop() {
	a.stopOnce.Do(func() { close(a.quit) })
}

// Findings returns every finding accumulated across runs.
func (a *Agent) Findings() []Finding {
	return a.findings.All()
}
