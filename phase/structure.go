// Package phase implements the individual validation phases that run in
// the pipeline: structure, required fields, unknown fields, patterns,
// formats, and nested schema validation.
package phase

import (
	"context"
	"fmt"

	sv "github.com/sasrecords/validator"
	"github.com/sasrecords/validator/pipeline"
	"github.com/sasrecords/validator/schema"
)

// StructurePhase verifies that the record is a JSON object and that every
// declared property holds a value of its declared type. Type checking of
// referenced schemas is left to the nested phase.
type StructurePhase struct{}

// NewStructurePhase creates a new structure validation phase.
func NewStructurePhase() *StructurePhase {
	return &StructurePhase{}
}

// Name returns the phase name.
func (p *StructurePhase) Name() string {
	return string(pipeline.PhaseIDStructure)
}

// Validate checks the structural shape of the record.
func (p *StructurePhase) Validate(ctx context.Context, pctx *pipeline.Context) []sv.Issue {
	var issues []sv.Issue

	select {
	case <-ctx.Done():
		return issues
	default:
	}

	if pctx.Schema == nil {
		return issues
	}

	if pctx.RecordMap == nil {
		issues = append(issues, ErrorIssue(
			sv.IssueTypeStructure,
			"Record must be a JSON object",
			"",
			p.Name(),
		))
		return issues
	}

	for name, value := range pctx.RecordMap {
		prop, ok := pctx.Schema.Property(name)
		if !ok {
			// Undeclared properties are the unknown phase's concern.
			continue
		}
		issues = append(issues, CheckDeclaredType(prop, value, name, p.Name())...)
	}

	return issues
}

// CheckDeclaredType verifies a value against a property's declared type,
// including the declared element type of typed arrays. Reference-typed
// properties and array elements are skipped; the nested phase covers them.
func CheckDeclaredType(prop *schema.Property, value any, path, phaseName string) []sv.Issue {
	var issues []sv.Issue

	if prop.Ref != "" {
		return issues
	}

	if !TypeMatches(prop.Type, value) {
		issues = append(issues, ErrorIssue(
			sv.IssueTypeType,
			fmt.Sprintf("Field '%s' must be of type %s, got %s", path, prop.Type, GoTypeOf(value)),
			path,
			phaseName,
		))
		return issues
	}

	if prop.Type == schema.TypeArray && prop.Items != nil && prop.Items.Ref == "" {
		elems, _ := value.([]any)
		for i, elem := range elems {
			if !TypeMatches(prop.Items.Type, elem) {
				issues = append(issues, ErrorIssue(
					sv.IssueTypeType,
					fmt.Sprintf("Element %s[%d] must be of type %s, got %s",
						path, i, prop.Items.Type, GoTypeOf(elem)),
					fmt.Sprintf("%s[%d]", path, i),
					phaseName,
				))
			}
		}
	}

	return issues
}

// StructurePhaseConfig returns the default pipeline configuration for the
// structure phase. It runs first and cannot be disabled.
func StructurePhaseConfig() *pipeline.PhaseConfig {
	return &pipeline.PhaseConfig{
		Phase:    NewStructurePhase(),
		Priority: pipeline.PriorityFirst,
		Parallel: false,
		Required: true,
		Enabled:  true,
	}
}
