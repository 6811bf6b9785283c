package stream

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	sv "github.com/sasrecords/validator"
)

// fakeValidate flags any record whose id field is "bad" and warns on "warn".
func fakeValidate(_ context.Context, record []byte) (*sv.Result, error) {
	var rec struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(record, &rec)

	result := sv.NewResult()
	result.RecordID = rec.ID
	switch rec.ID {
	case "bad":
		result.AddError(sv.IssueTypePattern, "bad record", "id")
	case "warn":
		result.AddWarning(sv.IssueTypeFormat, "questionable record", "url")
	}
	return result, nil
}

func dumpJSON(ids ...string) string {
	records := make([]string, len(ids))
	for i, id := range ids {
		records[i] = `{"id": "` + id + `"}`
	}
	return `{
		"generationDateTime": "2026-08-30T12:00:00Z",
		"description": "daily dump",
		"recordData": [` + strings.Join(records, ",") + `]
	}`
}

func collect(t *testing.T, results <-chan *RecordResult) []*RecordResult {
	t.Helper()
	var out []*RecordResult
	for r := range results {
		out = append(out, r)
	}
	return out
}

func TestValidateStream(t *testing.T) {
	dv := NewDumpValidator(fakeValidate)

	results := collect(t, dv.ValidateStream(context.Background(), strings.NewReader(dumpJSON("ok-1", "bad", "ok-2"))))
	if len(results) != 3 {
		t.Fatalf("got %d results; want 3", len(results))
	}

	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has Index %d", i, r.Index)
		}
		if r.Error != nil {
			t.Errorf("result %d: unexpected error %v", i, r.Error)
		}
	}

	if results[0].RecordID != "ok-1" || !results[0].Result.Valid {
		t.Errorf("record 0: %+v", results[0])
	}
	if results[1].Result.Valid {
		t.Error("record 1 should have failed")
	}
}

func TestValidateStreamSkipsOtherFields(t *testing.T) {
	// Fields before recordData, including nested objects, must be skipped.
	dump := `{
		"description": "dump",
		"metadata": {"source": "sas-a", "counts": [1, 2, 3]},
		"recordData": [{"id": "ok"}]
	}`

	dv := NewDumpValidator(fakeValidate)
	results := collect(t, dv.ValidateStream(context.Background(), strings.NewReader(dump)))
	if len(results) != 1 || results[0].RecordID != "ok" {
		t.Fatalf("results = %+v", results)
	}
}

func TestValidateStreamNoRecordData(t *testing.T) {
	dv := NewDumpValidator(fakeValidate)
	results := collect(t, dv.ValidateStream(context.Background(), strings.NewReader(`{"description": "empty"}`)))
	if len(results) != 0 {
		t.Errorf("got %d results; want 0", len(results))
	}
}

func TestValidateStreamMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not an object", `[1, 2]`},
		{"truncated", `{"recordData": [{"id":`},
		{"garbage", `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dv := NewDumpValidator(fakeValidate)
			results := collect(t, dv.ValidateStream(context.Background(), strings.NewReader(tt.data)))

			hasError := false
			for _, r := range results {
				if r.Error != nil {
					hasError = true
				}
			}
			if !hasError {
				t.Error("expected a processing error")
			}
		})
	}
}

func TestValidateStreamTruncatedStopsAfterError(t *testing.T) {
	// Decoder errors are sticky: after a truncated record the stream must
	// emit exactly one error result and close, not loop on the bad state.
	dump := `{"recordData": [{"id": "ok-1"}, {"id": "ok-2"}, {"id":`

	dv := NewDumpValidator(fakeValidate)
	results := collect(t, dv.ValidateStream(context.Background(), strings.NewReader(dump)))

	if len(results) != 3 {
		t.Fatalf("got %d results; want 2 records and 1 error", len(results))
	}
	if results[0].Error != nil || results[1].Error != nil {
		t.Errorf("complete records reported errors: %v, %v", results[0].Error, results[1].Error)
	}
	if results[2].Error == nil {
		t.Error("truncated record did not report an error")
	}
	if results[2].Index != 2 {
		t.Errorf("error result Index = %d; want 2", results[2].Index)
	}
}

func TestValidateStreamParallelPreservesOrder(t *testing.T) {
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = "rec-" + strings.Repeat("x", i%7)
	}

	dv := NewDumpValidator(fakeValidate).WithWorkerCount(8)
	results := collect(t, dv.ValidateStreamParallel(context.Background(), strings.NewReader(dumpJSON(ids...))))

	if len(results) != len(ids) {
		t.Fatalf("got %d results; want %d", len(results), len(ids))
	}
	for i, r := range results {
		if r.Index != i {
			t.Fatalf("result %d has Index %d; order not preserved", i, r.Index)
		}
		if r.RecordID != ids[i] {
			t.Errorf("result %d: RecordID = %q; want %q", i, r.RecordID, ids[i])
		}
	}
}

func TestValidateStreamParallelEmpty(t *testing.T) {
	dv := NewDumpValidator(fakeValidate)
	results := collect(t, dv.ValidateStreamParallel(context.Background(), strings.NewReader(`{"recordData": []}`)))
	if len(results) != 0 {
		t.Errorf("got %d results; want 0", len(results))
	}
}

func TestAggregate(t *testing.T) {
	dv := NewDumpValidator(fakeValidate)
	agg := Aggregate(dv.ValidateStream(context.Background(), strings.NewReader(dumpJSON("ok", "bad", "warn", "bad"))))

	if agg.TotalRecords != 4 {
		t.Errorf("TotalRecords = %d; want 4", agg.TotalRecords)
	}
	if agg.InvalidRecords != 2 {
		t.Errorf("InvalidRecords = %d; want 2", agg.InvalidRecords)
	}
	if agg.RecordsWithWarnings != 1 {
		t.Errorf("RecordsWithWarnings = %d; want 1", agg.RecordsWithWarnings)
	}
	if agg.TotalIssues != 3 {
		t.Errorf("TotalIssues = %d; want 3", agg.TotalIssues)
	}
	if len(agg.Issues[1]) != 1 || agg.Issues[1][0].Code != sv.IssueTypePattern {
		t.Errorf("Issues[1] = %v", agg.Issues[1])
	}
	if !agg.HasErrors() {
		t.Error("HasErrors() = false")
	}
	if !strings.Contains(agg.Summary(), "4 records") {
		t.Errorf("Summary() = %q", agg.Summary())
	}
}

func TestAggregateProcessingErrors(t *testing.T) {
	dv := NewDumpValidator(fakeValidate)
	agg := Aggregate(dv.ValidateStream(context.Background(), strings.NewReader(`not json`)))

	if len(agg.ProcessingErrors) != 1 {
		t.Fatalf("ProcessingErrors = %v", agg.ProcessingErrors)
	}
	if !agg.HasErrors() {
		t.Error("HasErrors() = false")
	}
}

func TestAggregateClean(t *testing.T) {
	dv := NewDumpValidator(fakeValidate)
	agg := Aggregate(dv.ValidateStream(context.Background(), strings.NewReader(dumpJSON("ok-1", "ok-2"))))

	if agg.HasErrors() {
		t.Error("HasErrors() = true on a clean dump")
	}
	if agg.TotalIssues != 0 {
		t.Errorf("TotalIssues = %d", agg.TotalIssues)
	}
}
