package fusion

import (
	"context"
	"log/slog"
	"os"
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

// Engine is the runtime core of the Fusion Engine (§4.1). Construct one
// with New and functional Options; it owns no package-level state.
type Engine struct {
	store  *Store
	log    *FusionLog
	logger *slog.Logger
	tracer trace.Tracer
	clock  clock.Clock
	config config.Config
	risk   *RiskTracker
	archive Archive

	fusionEvents int64
}

// Option configures an Engine at construction time.
type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithConfig(cfg config.Config) Option {
	return func(e *Engine) { e.config = cfg }
}

func WithFusionLogPath(path string) Option {
	return func(e *Engine) {
		fl, err := NewFusionLog(path)
		if err == nil {
			e.log = fl
		}
	}
}

// WithArchive attaches a retention archive. SweepRetention calls it for
// every record it transitions to Cold; a nil archive (the default) makes
// the transition archive-free.
func WithArchive(a Archive) Option {
	return func(e *Engine) { e.archive = a }
}

// New constructs a Fusion Engine with safe defaults, applying opts in
// order.
func New(opts ...Option) *Engine {
	e := &Engine{
		store:  NewStore(),
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
		tracer: otel.Tracer("surveillance/fusion"),
		clock:  clock.Real{},
		config: config.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log, _ = NewFusionLog("")
	}
	e.risk = NewRiskTracker(0.9, 0.05)
	return e
}

// Fuse merges an optional CBS signal and EMR event for a subject into a
// new canonical FusedRecord (§4.1). At least one of {cbs, emr, idsr} must
// be non-nil; the IDSR hint only counts toward that rule, and its contents
// are not read. Timestamps arrive already parsed: CBSSignal and EMREvent
// reject an unparseable timestamp with an apperr.Validation error tagged
// InvalidTimestamp when they are decoded from JSON, and Fuse itself does
// no timestamp validation.
func (e *Engine) Fuse(ctx context.Context, cbs *CBSSignal, emr *EMREvent, idsrHint map[string]interface{}, subjectID string) (*FusedRecord, error) {
	_, span := e.tracer.Start(ctx, "fusion.Fuse")
	defer span.End()

	if cbs == nil && emr == nil && idsrHint == nil {
		err := apperr.NewValidation("fuse requires at least one of cbs, emr, idsr")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	record, err := e.synthesize(cbs, emr, subjectID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := e.store.Put(record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if cbs != nil && emr != nil {
		e.risk.Record(record.Location, cbs.Symptom, record.ConfidenceChain[len(record.ConfidenceChain)-1].Score)
	}

	e.fusionEvents++
	_ = e.log.Append(FusionLogEntry{
		Timestamp:    e.clock.Now().UTC(),
		RecordID:     record.RecordID,
		SubjectID:    record.SubjectID,
		Verification: record.Verification,
		Score:        record.ConfidenceChain[len(record.ConfidenceChain)-1].Score,
	})

	span.SetAttributes(
		attribute.String("record_id", record.RecordID),
		attribute.String("verification", string(record.Verification)),
	)
	return record, nil
}

func (e *Engine) synthesize(cbs *CBSSignal, emr *EMREvent, subjectID string) (*FusedRecord, error) {
	now := e.clock.Now()
	chain := []ConfidenceStep{{Index: 0, Label: "ingested", Score: 0, Timestamp: now}}

	var (
		verification Verification
		score        float64
		canonicalTS  time.Time
		haveTS       bool
	)

	switch {
	case cbs != nil && emr != nil:
		result := Entangle(*cbs, *emr, e.config.Entanglement, e.config.SymptomDiagnosisMap)
		verification = result.Verification
		score = result.Score
		canonicalTS = minTime(cbs.Timestamp, emr.Timestamp)
		haveTS = true
	case cbs != nil:
		verification = VerificationUnverified
		score = VerificationUnverified.Score()
		canonicalTS = cbs.Timestamp
		haveTS = true
	case emr != nil:
		verification = VerificationUnverified
		score = VerificationUnverified.Score()
		canonicalTS = emr.Timestamp
		haveTS = true
	default:
		verification = VerificationUnverified
		score = 0
		canonicalTS = now
		haveTS = false
	}
	_ = haveTS

	chain = append(chain, ConfidenceStep{Index: 1, Label: "scored", Score: score, Timestamp: now})
	chain = append(chain, ConfidenceStep{Index: 2, Label: "verified:" + string(verification), Score: verification.Score(), Timestamp: now})

	eventType := inferEventType(emr, cbs)
	location := canonicalLocation(cbs, emr)
	subject := canonicalSubject(subjectID, cbs, emr)

	sources := make(map[string]interface{})
	if cbs != nil {
		sources["cbs"] = cbs
	}
	if emr != nil {
		sources["emr"] = emr
	}

	diagnosis := ""
	if emr != nil {
		diagnosis = emr.Diagnosis
	}

	record := &FusedRecord{
		RecordID:           uuid.NewString(),
		SubjectID:          subject,
		EventType:          eventType,
		Location:           location,
		CanonicalTimestamp: canonicalTS,
		Sources:            sources,
		Verification:       verification,
		CanonicalPayload:   canonicalPayload(cbs, emr),
		ConfidenceChain:     chain,
		Retention:           e.retentionFor(canonicalTS),
	}
	record.IDSRReportData = buildIDSRReport(eventType, diagnosis, verification, location)
	return record, nil
}

func (e *Engine) retentionFor(canonicalTS time.Time) Retention {
	if e.clock.Now().Sub(canonicalTS) > e.config.RetentionThreshold() {
		return RetentionCold
	}
	return RetentionHot
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// GetTimeline returns the subject's FusedRecords ordered by
// canonical_timestamp ascending.
func (e *Engine) GetTimeline(subjectID string) []*FusedRecord {
	return e.store.Timeline(subjectID)
}

// Statistics summarizes the store's current state (§4.1).
type Statistics struct {
	Total           int
	Hot             int
	Cold            int
	AvgVerification float64
	FusionEvents    int64
}

// Statistics aggregates across all shards. Cold records are included in
// Total/Hot/Cold counts but excluded from "default aggregates" means
// AvgVerification is computed over Hot records only, per §4.1's retention
// semantics ("Cold records ... are not returned from default statistics
// aggregates").
func (e *Engine) Statistics() Statistics {
	records := e.store.AllRecords()
	stats := Statistics{FusionEvents: e.fusionEvents}

	var hotScoreSum float64
	for _, r := range records {
		stats.Total++
		if r.Retention == RetentionCold {
			stats.Cold++
			continue
		}
		stats.Hot++
		hotScoreSum += r.Verification.Score()
	}
	if stats.Hot > 0 {
		stats.AvgVerification = hotScoreSum / float64(stats.Hot)
	}
	return stats
}

// SweepRetention transitions every Hot record whose age exceeds the
// configured retention threshold to Cold, returning the transitioned
// record ids. It is idempotent within a clock tick: re-running it without
// advancing the clock transitions nothing further.
func (e *Engine) SweepRetention(ctx context.Context) []string {
	_, span := e.tracer.Start(ctx, "fusion.SweepRetention")
	defer span.End()

	var transitioned []string
	now := e.clock.Now()
	for _, r := range e.store.AllRecords() {
		if r.Retention == RetentionHot && now.Sub(r.CanonicalTimestamp) > e.config.RetentionThreshold() {
			if e.store.ReplaceRetention(r.SubjectID, r.RecordID, RetentionCold) {
				transitioned = append(transitioned, r.RecordID)
				e.archiveRecord(ctx, r)
			}
		}
	}
	span.SetAttributes(attribute.Int("transitioned", len(transitioned)))
	return transitioned
}

// archiveRecord best-effort archives a record that just transitioned to
// Cold. A failed archive write never fails the sweep: the record still
// becomes Cold in the store, and a later sweep does not retry it, so
// archive errors are logged loudly rather than silently dropped.
func (e *Engine) archiveRecord(ctx context.Context, r *FusedRecord) {
	if e.archive == nil {
		return
	}
	cold := *r
	cold.Retention = RetentionCold
	if err := e.archive.Store(ctx, &cold); err != nil {
		e.logger.Error("archive write failed", "record_id", r.RecordID, "error", err)
	}
}
