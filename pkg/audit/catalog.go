package audit

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"

	"github.com/sentinel-surveillance/core/pkg/clock"
)

// Frequency is a check's scheduled cadence (§4.2).
type Frequency string

const (
	FrequencyDaily      Frequency = "Daily"
	FrequencyWeekly     Frequency = "Weekly"
	FrequencyMonthly    Frequency = "Monthly"
	FrequencyQuarterly  Frequency = "Quarterly"
	FrequencyContinuous Frequency = "Continuous"
)

// CheckContext carries the artifact surface a Check.Run inspects: evidence
// files, policy documents, and FusedRecord-derived statistics. It is
// assembled fresh for each scheduler run.
type CheckContext struct {
	Clock                clock.Clock
	EvidenceDir          string
	EvidenceManifestPath string
	AccessControlDocPath string
	IDSRReports          []IDSRArtifact
	// ConditionVars exposes numeric/boolean signals a check's CEL
	// condition (if any) may reference, e.g. "evidence.missing_count".
	ConditionVars map[string]interface{}
}

// IDSRArtifact is the shape-checkable view of a generated regulatory
// report handed to the idsr-artifact-shape check.
type IDSRArtifact struct {
	DiseaseCode          string
	ClinicalSummary      string
	VerificationMetadata string
	SubmissionStatus     string
}

// CheckFunc performs one compliance evaluation and returns zero or more
// Findings. A nil slice with a nil error means the artifact surface is
// compliant.
type CheckFunc func(ctx context.Context, cctx CheckContext) ([]Finding, error)

// Check is one catalog entry: {id, description, function, frequency,
// default_severity} (§4.2), with an optional compiled CEL gating
// condition.
type Check struct {
	ID              string
	Description     string
	Frequency       Frequency
	DefaultSeverity Severity
	Run             CheckFunc

	// Condition, if set, must evaluate true (against ConditionVars) for
	// Run to fire on a given tick. A Check with no Condition always fires
	// on its scheduled tick — CEL gating is additive, not a replacement
	// for the frequency schedule.
	Condition string
	program   cel.Program
}

var conditionEnv *cel.Env

func init() {
	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar("evidence", decls.NewMapType(decls.String, decls.Dyn)),
			decls.NewVar("artifact", decls.NewMapType(decls.String, decls.Dyn)),
		),
	)
	if err != nil {
		panic(fmt.Sprintf("audit: failed to build CEL check-condition environment: %v", err))
	}
	conditionEnv = env
}

// Compile compiles the check's Condition expression, if set. Checks
// without a Condition are always eligible to fire.
func (c *Check) Compile() error {
	if c.Condition == "" {
		return nil
	}
	ast, issues := conditionEnv.Compile(c.Condition)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("check %s: condition compile error: %w", c.ID, issues.Err())
	}
	prg, err := conditionEnv.Program(ast)
	if err != nil {
		return fmt.Errorf("check %s: condition program error: %w", c.ID, err)
	}
	c.program = prg
	return nil
}

// Eligible reports whether the check's condition (if any) currently holds.
func (c *Check) Eligible(vars map[string]interface{}) bool {
	if c.program == nil {
		return true
	}
	out, _, err := c.program.Eval(vars)
	if err != nil {
		return true // A malformed input should not silently suppress a scheduled check.
	}
	match, ok := out.Value().(bool)
	return ok && match
}

// Catalog is an ordered set of checks. Order is preserved so a run's
// execution order (and therefore its finding order) is deterministic
// given the catalog (§5 Ordering).
type Catalog struct {
	checks []*Check
}

// NewCatalog builds an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Register appends a check, compiling its condition if present. Register
// panics on a malformed condition — catalog assembly happens at startup,
// before any tick has run, so failing fast is preferable to silently
// dropping a miswritten check.
func (c *Catalog) Register(chk Check) {
	if err := chk.Compile(); err != nil {
		panic(err)
	}
	registered := chk
	c.checks = append(c.checks, &registered)
}

// All returns the catalog's checks in registration order.
func (c *Catalog) All() []*Check {
	return c.checks
}
