package phase

import (
	"context"
	"fmt"

	sv "github.com/sasrecords/validator"
	"github.com/sasrecords/validator/pipeline"
)

// UnknownFieldsPhase rejects properties the schema does not declare when
// the schema closes the document with additionalProperties false. Open
// schemas pass unchanged. This catches typos such as "contactInfo" for
// "contactInformation".
type UnknownFieldsPhase struct{}

// NewUnknownFieldsPhase creates a new unknown fields detection phase.
func NewUnknownFieldsPhase() *UnknownFieldsPhase {
	return &UnknownFieldsPhase{}
}

// Name returns the phase name.
func (p *UnknownFieldsPhase) Name() string {
	return string(pipeline.PhaseIDUnknown)
}

// Validate detects undeclared fields.
func (p *UnknownFieldsPhase) Validate(ctx context.Context, pctx *pipeline.Context) []sv.Issue {
	var issues []sv.Issue

	select {
	case <-ctx.Done():
		return issues
	default:
	}

	if pctx.Schema == nil || pctx.RecordMap == nil {
		return issues
	}
	if pctx.Schema.AdditionalProperties {
		return issues
	}

	for name := range pctx.RecordMap {
		if pctx.Schema.IsDeclared(name) {
			continue
		}
		issues = append(issues, ErrorIssue(
			sv.IssueTypeUnexpected,
			fmt.Sprintf("Unexpected field '%s'", name),
			name,
			p.Name(),
		))
	}

	return issues
}

// UnknownFieldsPhaseConfig returns the default pipeline configuration for
// the unknown fields phase.
func UnknownFieldsPhaseConfig() *pipeline.PhaseConfig {
	return &pipeline.PhaseConfig{
		Phase:    NewUnknownFieldsPhase(),
		Priority: pipeline.PriorityEarly,
		Parallel: true,
		Required: false,
		Enabled:  true,
	}
}
