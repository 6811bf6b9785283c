package engine

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	sv "github.com/sasrecords/validator"
)

func newValidator(t *testing.T, opts ...sv.Option) *Validator {
	t.Helper()
	v, err := New(context.Background(), opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return v
}

func validRecordJSON() []byte {
	return []byte(`{
		"id": "sas/operator/deployment-1",
		"name": "Example SAS Deployment",
		"administratorId": "operator",
		"contactInformation": [{"name": "Operations Desk"}],
		"publicKey": "MIIBIjANBgkq...",
		"fccInformation": {"certificationId": "FCC-CBRS-0001"},
		"url": "https://sas.example.com/api"
	}`)
}

func mutateRecord(t *testing.T, mutate func(map[string]any)) []byte {
	t.Helper()
	var rec map[string]any
	if err := json.Unmarshal(validRecordJSON(), &rec); err != nil {
		t.Fatal(err)
	}
	mutate(rec)
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestValidateValidRecord(t *testing.T) {
	v := newValidator(t)
	defer v.Close()

	result, err := v.Validate(context.Background(), validRecordJSON())
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	if !result.Valid {
		t.Errorf("valid record rejected: %v", result.Issues)
	}
	if result.RecordID != "sas/operator/deployment-1" {
		t.Errorf("RecordID = %q; want sas/operator/deployment-1", result.RecordID)
	}
}

func TestValidateInvalidJSON(t *testing.T) {
	v := newValidator(t)
	defer v.Close()

	result, err := v.Validate(context.Background(), []byte(`{broken`))
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	if result.Valid {
		t.Error("malformed JSON should be invalid")
	}
	if result.Issues[0].Code != sv.IssueTypeStructure {
		t.Errorf("Code = %q; want %q", result.Issues[0].Code, sv.IssueTypeStructure)
	}
}

func TestValidateNonObject(t *testing.T) {
	v := newValidator(t)
	defer v.Close()

	result, err := v.Validate(context.Background(), []byte(`[1, 2, 3]`))
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	if result.Valid {
		t.Error("a JSON array is not a record")
	}
}

func TestValidateMissingRequiredFields(t *testing.T) {
	v := newValidator(t)
	defer v.Close()

	result, err := v.Validate(context.Background(), []byte(`{"id": "a/b/c"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	if result.Valid {
		t.Error("record missing six required fields should be invalid")
	}
	if got := result.ErrorCount(); got != 6 {
		t.Errorf("ErrorCount() = %d; want 6 (one per missing field)", got)
	}

	fields := result.ViolatedFields()
	for _, want := range []string{"name", "administratorId", "contactInformation", "publicKey", "fccInformation", "url"} {
		found := false
		for _, f := range fields {
			if f == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing field %q not reported; got %v", want, fields)
		}
	}
}

func TestValidateUnknownField(t *testing.T) {
	v := newValidator(t)
	defer v.Close()

	data := mutateRecord(t, func(rec map[string]any) {
		rec["nickname"] = "prod"
	})

	result, err := v.Validate(context.Background(), data)
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	if result.Valid {
		t.Error("record with an undeclared field should be invalid")
	}
	if result.Issues[0].Code != sv.IssueTypeUnexpected {
		t.Errorf("Code = %q; want %q", result.Issues[0].Code, sv.IssueTypeUnexpected)
	}
}

func TestValidateIDVectors(t *testing.T) {
	v := newValidator(t)
	defer v.Close()

	tests := []struct {
		id    string
		valid bool
	}{
		{"a/b/c", true},
		{"a/b/c/d", true},
		{"ab", false},
		{"a//c", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			data := mutateRecord(t, func(rec map[string]any) {
				rec["id"] = tt.id
			})

			result, err := v.Validate(context.Background(), data)
			if err != nil {
				t.Fatal(err)
			}
			defer result.Release()

			if result.Valid != tt.valid {
				t.Errorf("id %q: Valid = %v; want %v (issues: %v)", tt.id, result.Valid, tt.valid, result.Issues)
			}
		})
	}
}

func TestValidateURLVectors(t *testing.T) {
	v := newValidator(t)
	defer v.Close()

	tests := []struct {
		url   string
		valid bool
	}{
		{"https://sas.example.com/api", true},
		{"example.org/sas", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			data := mutateRecord(t, func(rec map[string]any) {
				rec["url"] = tt.url
			})

			result, err := v.Validate(context.Background(), data)
			if err != nil {
				t.Fatal(err)
			}
			defer result.Release()

			if result.Valid != tt.valid {
				t.Errorf("url %q: Valid = %v; want %v (issues: %v)", tt.url, result.Valid, tt.valid, result.Issues)
			}
		})
	}
}

func TestValidatePublicKeyNotStructurallyChecked(t *testing.T) {
	// The schema declares publicKey as a plain string; no X.509 parsing.
	v := newValidator(t)
	defer v.Close()

	data := mutateRecord(t, func(rec map[string]any) {
		rec["publicKey"] = "definitely not a certificate"
	})

	result, err := v.Validate(context.Background(), data)
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	if !result.Valid {
		t.Errorf("publicKey content should not be checked: %v", result.Issues)
	}
}

func TestValidateNestedContactIssue(t *testing.T) {
	v := newValidator(t)
	defer v.Close()

	data := mutateRecord(t, func(rec map[string]any) {
		rec["contactInformation"] = []any{map[string]any{"title": "Director"}}
	})

	result, err := v.Validate(context.Background(), data)
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	if result.Valid {
		t.Fatal("contact without a name should fail")
	}

	issue := result.Errors()[0]
	if issue.Code != sv.IssueTypeNested {
		t.Errorf("Code = %q; want %q", issue.Code, sv.IssueTypeNested)
	}
	if !strings.HasPrefix(issue.Field[0], "contactInformation[0]") {
		t.Errorf("Field = %v; want a contactInformation[0] path", issue.Field)
	}
}

func TestValidateNestedDisabled(t *testing.T) {
	v := newValidator(t, sv.WithNested(false))
	defer v.Close()

	data := mutateRecord(t, func(rec map[string]any) {
		rec["contactInformation"] = []any{map[string]any{"title": "Director"}}
	})

	result, err := v.Validate(context.Background(), data)
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	if !result.Valid {
		t.Errorf("nested validation disabled; issues: %v", result.Issues)
	}
}

func TestValidateMap(t *testing.T) {
	v := newValidator(t)
	defer v.Close()

	var rec map[string]any
	if err := json.Unmarshal(validRecordJSON(), &rec); err != nil {
		t.Fatal(err)
	}

	result, err := v.ValidateMap(context.Background(), rec)
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	if !result.Valid {
		t.Errorf("valid record map rejected: %v", result.Issues)
	}
}

func TestValidateStrictMode(t *testing.T) {
	v := newValidator(t, sv.WithStrictMode(true))
	defer v.Close()

	result, err := v.Validate(context.Background(), validRecordJSON())
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	// No warnings on a clean record, so strict mode changes nothing here.
	if !result.Valid {
		t.Errorf("strict mode should not reject a clean record: %v", result.Issues)
	}
}

func TestValidateBatch(t *testing.T) {
	v := newValidator(t)
	defer v.Close()

	records := [][]byte{
		validRecordJSON(),
		[]byte(`{"id": "ab"}`),
		validRecordJSON(),
	}

	results := v.ValidateBatch(context.Background(), records)
	if len(results) != 3 {
		t.Fatalf("got %d results; want 3", len(results))
	}

	if !results[0].Valid || !results[2].Valid {
		t.Error("valid records rejected in batch")
	}
	if results[1].Valid {
		t.Error("invalid record accepted in batch")
	}

	for _, r := range results {
		r.Release()
	}
}

func TestQuickValidate(t *testing.T) {
	v := newValidator(t)
	defer v.Close()

	tests := []struct {
		name  string
		data  []byte
		valid bool
	}{
		{"valid", validRecordJSON(), true},
		{"bad id", []byte(`{"id": "ab"}`), false},
		{"not an object", []byte(`"just a string"`), false},
		{"no id", []byte(`{"name": "x"}`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.QuickValidate(context.Background(), tt.data)
			if err != nil {
				t.Fatal(err)
			}
			defer result.Release()

			if result.Valid != tt.valid {
				t.Errorf("Valid = %v; want %v (issues: %v)", result.Valid, tt.valid, result.Issues)
			}
		})
	}
}

func TestValidatorMetrics(t *testing.T) {
	v := newValidator(t)
	defer v.Close()

	for i := 0; i < 3; i++ {
		result, err := v.Validate(context.Background(), validRecordJSON())
		if err != nil {
			t.Fatal(err)
		}
		result.Release()
	}

	m := v.Metrics()
	if got := m.ValidationsTotal(); got != 3 {
		t.Errorf("ValidationsTotal() = %d; want 3", got)
	}
	if got := m.ValidationsValid(); got != 3 {
		t.Errorf("ValidationsValid() = %d; want 3", got)
	}
}

func TestNewForReleaseUnknown(t *testing.T) {
	_, err := NewForRelease(context.Background(), sv.SchemaRelease("v99"))
	if err == nil {
		t.Error("unknown release should fail")
	}
}

func TestValidatorAccessors(t *testing.T) {
	v := newValidator(t, sv.WithMaxErrors(5))
	defer v.Close()

	if v.Release() != sv.V1 {
		t.Errorf("Release() = %q; want v1", v.Release())
	}
	if v.Options().MaxErrors != 5 {
		t.Errorf("Options().MaxErrors = %d; want 5", v.Options().MaxErrors)
	}
	if v.Registry() == nil {
		t.Error("Registry() = nil")
	}
}
