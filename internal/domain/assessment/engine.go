package assessment

import (
	"sync"
	"time"
)

// Input is everything the engine needs for one assessment: the measured
// factors, the previously persisted record (nil on first assessment), and
// the bookkeeping identity fields.
type Input struct {
	ClientID   string
	Factors    RiskFactorSet
	Previous   *ClientRiskRecord
	AssessedBy string

	// Now stamps LastAssessedAt.  Passing the clock in keeps Assess a pure
	// function of its arguments.
	Now time.Time
}

// Result is the assembled outcome of one assessment: the record ready for
// upsert plus the data-quality warnings raised while clamping the inputs.
type Result struct {
	Record   *ClientRiskRecord
	Warnings []string
}

// Engine runs the full assessment pipeline: clamp factors → compute scores →
// detect recurrence → classify → apply trend.  It holds no per-client state;
// assessments for different clients may run fully in parallel.  The policy is
// the only mutable field and is guarded for hot reload via SetPolicy.
type Engine struct {
	mu     sync.RWMutex
	policy Policy
}

// NewEngine constructs an Engine with the given policy.  An invalid policy is
// rejected so a misconfigured deployment fails at startup, not per request.
func NewEngine(policy Policy) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Engine{policy: policy}, nil
}

// Policy returns the engine's current policy.
func (e *Engine) Policy() Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.policy
}

// SetPolicy atomically replaces the scoring policy, typically from a config
// hot reload.  Invalid policies are rejected and the current one kept.
func (e *Engine) SetPolicy(policy Policy) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.policy = policy
	e.mu.Unlock()
	return nil
}

// Assess runs one assessment.  It is deterministic: identical Input values
// always produce identical Results under the same policy.  The previous
// record is consulted only for the trend and recurrence fields, never for
// the score itself.
func (e *Engine) Assess(in Input) Result {
	policy := e.Policy()

	factors, warnings := in.Factors.Clamped()
	scores := ComputeScores(factors, policy)

	flags := DeriveFlags(factors)
	flags.HasRecurrentIssues = DetectRecurrence(flags, in.Previous)

	classification := Classify(scores.RiskScore, flags, factors.OverdueFilingsCount, policy)
	trend := ApplyTrend(scores.RiskScore, in.Previous)

	record := &ClientRiskRecord{
		ClientID:                in.ClientID,
		RiskScore:               scores.RiskScore,
		ComplianceStatus:        classification.ComplianceStatus,
		Flags:                   flags,
		FilingTrendScore:        scores.FilingTrendScore,
		DocumentComplianceScore: scores.DocumentComplianceScore,
		ITCComplianceScore:      scores.ITCComplianceScore,
		PreviousRiskScore:       trend.PreviousRiskScore,
		ScoreChangePercentage:   trend.ScoreChangePercentage,
		RecommendedActions:      classification.RecommendedActions,
		LastAssessedAt:          in.Now.UTC(),
		AssessedBy:              in.AssessedBy,
	}

	return Result{Record: record, Warnings: warnings}
}
