package phase

import (
	"context"
	"fmt"

	sv "github.com/sasrecords/validator"
	"github.com/sasrecords/validator/pipeline"
)

// PatternPhase checks string properties against their declared pattern
// constraints. Non-string values are skipped here; the structure phase
// already reports the type mismatch.
type PatternPhase struct{}

// NewPatternPhase creates a new pattern validation phase.
func NewPatternPhase() *PatternPhase {
	return &PatternPhase{}
}

// Name returns the phase name.
func (p *PatternPhase) Name() string {
	return string(pipeline.PhaseIDPattern)
}

// Validate checks pattern constraints.
func (p *PatternPhase) Validate(ctx context.Context, pctx *pipeline.Context) []sv.Issue {
	var issues []sv.Issue

	select {
	case <-ctx.Done():
		return issues
	default:
	}

	if pctx.Schema == nil || pctx.RecordMap == nil {
		return issues
	}

	for name, value := range pctx.RecordMap {
		prop, ok := pctx.Schema.Property(name)
		if !ok || !prop.HasPattern() {
			continue
		}
		s, ok := value.(string)
		if !ok {
			continue
		}
		if !prop.MatchPattern(s) {
			issues = append(issues, ErrorIssue(
				sv.IssueTypePattern,
				fmt.Sprintf("Field '%s' value %q does not match pattern %q", name, s, prop.Pattern),
				name,
				p.Name(),
			))
		}
	}

	return issues
}

// PatternPhaseConfig returns the default pipeline configuration for the
// pattern phase.
func PatternPhaseConfig() *pipeline.PhaseConfig {
	return &pipeline.PhaseConfig{
		Phase:    NewPatternPhase(),
		Priority: pipeline.PriorityNormal,
		Parallel: true,
		Required: false,
		Enabled:  true,
	}
}
