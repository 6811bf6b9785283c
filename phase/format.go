package phase

import (
	"context"
	"fmt"

	sv "github.com/sasrecords/validator"
	"github.com/sasrecords/validator/pipeline"
)

// FormatURI is the only format the SAS schema set declares.
const FormatURI = "uri"

// FormatPhase checks string properties against their declared format.
// Only "uri" is enforced; unrecognized formats are ignored, matching the
// draft-04 treatment of format as an open vocabulary.
type FormatPhase struct{}

// NewFormatPhase creates a new format validation phase.
func NewFormatPhase() *FormatPhase {
	return &FormatPhase{}
}

// Name returns the phase name.
func (p *FormatPhase) Name() string {
	return string(pipeline.PhaseIDFormat)
}

// Validate checks format constraints.
func (p *FormatPhase) Validate(ctx context.Context, pctx *pipeline.Context) []sv.Issue {
	var issues []sv.Issue

	select {
	case <-ctx.Done():
		return issues
	default:
	}

	if pctx.Schema == nil || pctx.RecordMap == nil {
		return issues
	}
	if pctx.Options != nil && !pctx.Options.ValidateFormats {
		return issues
	}

	for name, value := range pctx.RecordMap {
		prop, ok := pctx.Schema.Property(name)
		if !ok || prop.Format != FormatURI {
			continue
		}
		s, ok := value.(string)
		if !ok {
			continue
		}
		if !ValidateURI(s) {
			issues = append(issues, ErrorIssue(
				sv.IssueTypeFormat,
				fmt.Sprintf("Field '%s' value %q is not a valid URI", name, s),
				name,
				p.Name(),
			))
		}
	}

	return issues
}

// FormatPhaseConfig returns the default pipeline configuration for the
// format phase.
func FormatPhaseConfig() *pipeline.PhaseConfig {
	return &pipeline.PhaseConfig{
		Phase:    NewFormatPhase(),
		Priority: pipeline.PriorityNormal,
		Parallel: true,
		Required: false,
		Enabled:  true,
	}
}
