package phase

import (
	"context"
	"fmt"

	sv "github.com/sasrecords/validator"
	"github.com/sasrecords/validator/pipeline"
	"github.com/sasrecords/validator/pool"
	"github.com/sasrecords/validator/schema"
)

// NestedPhase validates properties that reference external schema files,
// such as contactInformation entries and the fccInformation object. The
// referenced documents are resolved through the pipeline's schema resolver
// and each candidate value is validated against the resolved document.
//
// Every issue found inside a referenced document is reported with the
// nested code; the underlying rule and the referenced schema name are
// carried on the issue's Rule and Schema fields.
type NestedPhase struct{}

// NewNestedPhase creates a new nested schema validation phase.
func NewNestedPhase() *NestedPhase {
	return &NestedPhase{}
}

// Name returns the phase name.
func (p *NestedPhase) Name() string {
	return string(pipeline.PhaseIDNested)
}

// Validate resolves referenced schemas and validates nested values.
func (p *NestedPhase) Validate(ctx context.Context, pctx *pipeline.Context) []sv.Issue {
	var issues []sv.Issue

	select {
	case <-ctx.Done():
		return issues
	default:
	}

	if pctx.Schema == nil || pctx.RecordMap == nil || pctx.Resolver == nil {
		return issues
	}
	if pctx.Options != nil && !pctx.Options.ValidateNested {
		return issues
	}

	for name, value := range pctx.RecordMap {
		prop, ok := pctx.Schema.Property(name)
		if !ok {
			continue
		}

		switch {
		case prop.Ref != "":
			issues = append(issues, p.validateRef(ctx, pctx, prop.Ref, value, name)...)

		case prop.Type == schema.TypeArray && prop.Items != nil && prop.Items.Ref != "":
			elems, ok := value.([]any)
			if !ok {
				// Not an array at all; the structure phase owns that.
				continue
			}
			pb := pool.AcquirePathBuilder()
			for i, elem := range elems {
				pb.Reset()
				pb.WriteString(name)
				pb.AppendIndex(i)
				issues = append(issues, p.validateRef(ctx, pctx, prop.Items.Ref, elem, pb.String())...)
			}
			pb.Release()
		}
	}

	return issues
}

// validateRef resolves a schema reference and validates one value against it.
func (p *NestedPhase) validateRef(ctx context.Context, pctx *pipeline.Context, ref string, value any, path string) []sv.Issue {
	doc, err := pctx.Resolver.Resolve(ctx, ref)
	if err != nil {
		return []sv.Issue{ErrorIssue(
			sv.IssueTypeProcessing,
			fmt.Sprintf("Cannot resolve schema reference %q: %v", ref, err),
			path,
			p.Name(),
		)}
	}
	return p.validateAgainst(ctx, pctx, doc, value, path)
}

// validateAgainst validates a value against a resolved schema document,
// recursing through any references the document itself declares.
func (p *NestedPhase) validateAgainst(ctx context.Context, pctx *pipeline.Context, doc *schema.Document, value any, basePath string) []sv.Issue {
	var issues []sv.Issue

	select {
	case <-ctx.Done():
		return issues
	default:
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return []sv.Issue{p.nestedIssue(doc,
			string(sv.IssueTypeType),
			fmt.Sprintf("Field '%s' must be an object matching %s, got %s", basePath, doc.Name, GoTypeOf(value)),
			basePath,
		)}
	}

	for _, name := range doc.Required {
		if _, ok := obj[name]; !ok {
			issues = append(issues, p.nestedIssue(doc,
				string(sv.IssueTypeRequired),
				fmt.Sprintf("Missing required field '%s'", JoinPath(basePath, name)),
				JoinPath(basePath, name),
			))
		}
	}

	for name, v := range obj {
		path := JoinPath(basePath, name)

		prop, declared := doc.Property(name)
		if !declared {
			if !doc.AdditionalProperties {
				issues = append(issues, p.nestedIssue(doc,
					string(sv.IssueTypeUnexpected),
					fmt.Sprintf("Unexpected field '%s'", path),
					path,
				))
			}
			continue
		}

		if prop.Ref != "" {
			issues = append(issues, p.validateRef(ctx, pctx, prop.Ref, v, path)...)
			continue
		}

		if !TypeMatches(prop.Type, v) {
			issues = append(issues, p.nestedIssue(doc,
				string(sv.IssueTypeType),
				fmt.Sprintf("Field '%s' must be of type %s, got %s", path, prop.Type, GoTypeOf(v)),
				path,
			))
			continue
		}

		if prop.Type == schema.TypeArray && prop.Items != nil {
			elems, _ := v.([]any)
			for i, elem := range elems {
				elemPath := fmt.Sprintf("%s[%d]", path, i)
				if prop.Items.Ref != "" {
					issues = append(issues, p.validateRef(ctx, pctx, prop.Items.Ref, elem, elemPath)...)
					continue
				}
				if !TypeMatches(prop.Items.Type, elem) {
					issues = append(issues, p.nestedIssue(doc,
						string(sv.IssueTypeType),
						fmt.Sprintf("Element '%s' must be of type %s, got %s", elemPath, prop.Items.Type, GoTypeOf(elem)),
						elemPath,
					))
				}
			}
		}

		if s, ok := v.(string); ok {
			if prop.HasPattern() && !prop.MatchPattern(s) {
				issues = append(issues, p.nestedIssue(doc,
					string(sv.IssueTypePattern),
					fmt.Sprintf("Field '%s' value %q does not match pattern %q", path, s, prop.Pattern),
					path,
				))
			}
			if prop.Format == FormatURI && !ValidateURI(s) {
				issues = append(issues, p.nestedIssue(doc,
					string(sv.IssueTypeFormat),
					fmt.Sprintf("Field '%s' value %q is not a valid URI", path, s),
					path,
				))
			}
		}
	}

	return issues
}

// nestedIssue builds an error issue carrying the referenced schema name and
// the underlying rule.
func (p *NestedPhase) nestedIssue(doc *schema.Document, rule, diagnostics, path string) sv.Issue {
	return sv.Error(sv.IssueTypeNested).
		Diagnostics(diagnostics).
		At(path).
		Phase(p.Name()).
		Rule(rule).
		Schema(doc.Name).
		Build()
}

// NestedPhaseConfig returns the default pipeline configuration for the
// nested schema phase. It runs after the flat phases.
func NestedPhaseConfig() *pipeline.PhaseConfig {
	return &pipeline.PhaseConfig{
		Phase:    NewNestedPhase(),
		Priority: pipeline.PriorityLate,
		Parallel: false,
		Required: false,
		Enabled:  true,
	}
}
