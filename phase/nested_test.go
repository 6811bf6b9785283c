package phase

import (
	"context"
	"testing"

	sv "github.com/sasrecords/validator"
	"github.com/sasrecords/validator/pipeline"
	"github.com/sasrecords/validator/registry"
)

func nestedContext(t *testing.T, rec map[string]any) *pipeline.Context {
	t.Helper()
	return &pipeline.Context{
		Schema:    recordSchema(t),
		RecordMap: rec,
		Resolver:  registry.NewEmbedded(),
		Options:   &pipeline.ContextOptions{ValidateNested: true, ValidateFormats: true},
	}
}

func TestNestedPhase_Name(t *testing.T) {
	p := NewNestedPhase()
	if p.Name() != "nested" {
		t.Errorf("Name() = %q; want nested", p.Name())
	}
}

func TestNestedPhase_ValidRecord(t *testing.T) {
	pctx := nestedContext(t, validRecordMap())

	issues := NewNestedPhase().Validate(context.Background(), pctx)
	if len(issues) != 0 {
		t.Errorf("expected 0 issues, got %d: %v", len(issues), issues)
	}
}

func TestNestedPhase_ContactMissingName(t *testing.T) {
	rec := validRecordMap()
	rec["contactInformation"] = []any{
		map[string]any{"title": "Director"},
	}

	pctx := nestedContext(t, rec)
	issues := NewNestedPhase().Validate(context.Background(), pctx)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}

	issue := issues[0]
	if issue.Code != sv.IssueTypeNested {
		t.Errorf("Code = %q; want %q", issue.Code, sv.IssueTypeNested)
	}
	if issue.Rule != string(sv.IssueTypeRequired) {
		t.Errorf("Rule = %q; want %q", issue.Rule, sv.IssueTypeRequired)
	}
	if issue.Schema != "ContactInformation.schema.json" {
		t.Errorf("Schema = %q; want ContactInformation.schema.json", issue.Schema)
	}
	if issue.Field[0] != "contactInformation[0].name" {
		t.Errorf("Field = %v; want [contactInformation[0].name]", issue.Field)
	}
}

func TestNestedPhase_SecondContactBad(t *testing.T) {
	rec := validRecordMap()
	rec["contactInformation"] = []any{
		map[string]any{"name": "First"},
		map[string]any{"name": 42.0},
	}

	pctx := nestedContext(t, rec)
	issues := NewNestedPhase().Validate(context.Background(), pctx)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
	if issues[0].Field[0] != "contactInformation[1].name" {
		t.Errorf("Field = %v; want [contactInformation[1].name]", issues[0].Field)
	}
	if issues[0].Rule != string(sv.IssueTypeType) {
		t.Errorf("Rule = %q; want %q", issues[0].Rule, sv.IssueTypeType)
	}
}

func TestNestedPhase_ContactUnknownField(t *testing.T) {
	rec := validRecordMap()
	rec["contactInformation"] = []any{
		map[string]any{"name": "Desk", "fax": "+1-555-0100"},
	}

	pctx := nestedContext(t, rec)
	issues := NewNestedPhase().Validate(context.Background(), pctx)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
	if issues[0].Rule != string(sv.IssueTypeUnexpected) {
		t.Errorf("Rule = %q; want %q", issues[0].Rule, sv.IssueTypeUnexpected)
	}
}

func TestNestedPhase_ContactPhoneNumbersTyped(t *testing.T) {
	rec := validRecordMap()
	rec["contactInformation"] = []any{
		map[string]any{"name": "Desk", "phoneNumbers": []any{"+1-555-0100", 7.0}},
	}

	pctx := nestedContext(t, rec)
	issues := NewNestedPhase().Validate(context.Background(), pctx)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
	if issues[0].Field[0] != "contactInformation[0].phoneNumbers[1]" {
		t.Errorf("Field = %v; want [contactInformation[0].phoneNumbers[1]]", issues[0].Field)
	}
}

func TestNestedPhase_FccNotAnObject(t *testing.T) {
	rec := validRecordMap()
	rec["fccInformation"] = "FCC-CBRS-0001"

	pctx := nestedContext(t, rec)
	issues := NewNestedPhase().Validate(context.Background(), pctx)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
	if issues[0].Schema != "FccInformation.schema.json" {
		t.Errorf("Schema = %q; want FccInformation.schema.json", issues[0].Schema)
	}
	if issues[0].Rule != string(sv.IssueTypeType) {
		t.Errorf("Rule = %q; want %q", issues[0].Rule, sv.IssueTypeType)
	}
}

func TestNestedPhase_FccMissingCertificationID(t *testing.T) {
	rec := validRecordMap()
	rec["fccInformation"] = map[string]any{"frnId": "0012345678"}

	pctx := nestedContext(t, rec)
	issues := NewNestedPhase().Validate(context.Background(), pctx)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
	if issues[0].Field[0] != "fccInformation.certificationId" {
		t.Errorf("Field = %v; want [fccInformation.certificationId]", issues[0].Field)
	}
}

func TestNestedPhase_DisabledByOptions(t *testing.T) {
	rec := validRecordMap()
	rec["fccInformation"] = "wrong"

	pctx := nestedContext(t, rec)
	pctx.Options.ValidateNested = false

	issues := NewNestedPhase().Validate(context.Background(), pctx)
	if len(issues) != 0 {
		t.Errorf("nested validation disabled; got %d issues", len(issues))
	}
}

func TestNestedPhase_NilResolver(t *testing.T) {
	pctx := nestedContext(t, validRecordMap())
	pctx.Resolver = nil

	issues := NewNestedPhase().Validate(context.Background(), pctx)
	if len(issues) != 0 {
		t.Errorf("expected 0 issues without a resolver, got %d", len(issues))
	}
}

func TestNestedPhaseConfig(t *testing.T) {
	cfg := NestedPhaseConfig()
	if cfg.Priority != pipeline.PriorityLate {
		t.Errorf("Priority = %d; want PriorityLate", cfg.Priority)
	}
}
