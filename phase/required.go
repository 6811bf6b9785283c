package phase

import (
	"context"
	"fmt"

	sv "github.com/sasrecords/validator"
	"github.com/sasrecords/validator/pipeline"
)

// RequiredFieldsPhase reports every required property that is absent from
// the record. Presence is membership in the JSON object: an explicit null
// or an empty string still counts as present.
type RequiredFieldsPhase struct{}

// NewRequiredFieldsPhase creates a new required fields phase.
func NewRequiredFieldsPhase() *RequiredFieldsPhase {
	return &RequiredFieldsPhase{}
}

// Name returns the phase name.
func (p *RequiredFieldsPhase) Name() string {
	return string(pipeline.PhaseIDRequired)
}

// Validate reports missing required fields, one issue per field, in the
// schema's declaration order.
func (p *RequiredFieldsPhase) Validate(ctx context.Context, pctx *pipeline.Context) []sv.Issue {
	var issues []sv.Issue

	select {
	case <-ctx.Done():
		return issues
	default:
	}

	if pctx.Schema == nil || pctx.RecordMap == nil {
		return issues
	}

	for _, name := range pctx.Schema.Required {
		if _, ok := pctx.RecordMap[name]; ok {
			continue
		}
		issues = append(issues, ErrorIssue(
			sv.IssueTypeRequired,
			fmt.Sprintf("Missing required field '%s'", name),
			name,
			p.Name(),
		))
	}

	return issues
}

// RequiredFieldsPhaseConfig returns the default pipeline configuration for
// the required fields phase.
func RequiredFieldsPhaseConfig() *pipeline.PhaseConfig {
	return &pipeline.PhaseConfig{
		Phase:    NewRequiredFieldsPhase(),
		Priority: pipeline.PriorityEarly,
		Parallel: true,
		Required: false,
		Enabled:  true,
	}
}
