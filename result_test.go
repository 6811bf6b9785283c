package sasvalidator

import (
	"sync"
	"testing"
)

func TestResultAddIssue(t *testing.T) {
	r := NewResult()

	if !r.Valid {
		t.Error("new result should be valid")
	}

	r.AddWarning(IssueTypeFormat, "suspicious URL", "url")
	if !r.Valid {
		t.Error("warnings should not invalidate the result")
	}

	r.AddError(IssueTypeRequired, "missing publicKey", "publicKey")
	if r.Valid {
		t.Error("errors should invalidate the result")
	}

	if got := r.ErrorCount(); got != 1 {
		t.Errorf("ErrorCount() = %d; want 1", got)
	}
	if got := r.WarningCount(); got != 1 {
		t.Errorf("WarningCount() = %d; want 1", got)
	}
}

func TestResultPooling(t *testing.T) {
	r := AcquireResult()
	r.AddError(IssueTypeType, "wrong type", "name")
	r.RecordID = "a/b/c"
	r.Release()

	r2 := AcquireResult()
	defer r2.Release()

	if !r2.Valid {
		t.Error("pooled result was not reset: still invalid")
	}
	if len(r2.Issues) != 0 {
		t.Errorf("pooled result was not reset: %d issues", len(r2.Issues))
	}
	if r2.RecordID != "" {
		t.Errorf("pooled result was not reset: RecordID = %q", r2.RecordID)
	}
}

func TestResultConcurrentAddIssue(t *testing.T) {
	r := NewResult()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.AddError(IssueTypeUnexpected, "extra field", "extra")
		}()
	}
	wg.Wait()

	if got := r.ErrorCount(); got != 50 {
		t.Errorf("ErrorCount() = %d; want 50", got)
	}
}

func TestResultViolatedFields(t *testing.T) {
	r := NewResult()
	r.AddError(IssueTypeRequired, "missing", "publicKey")
	r.AddError(IssueTypePattern, "bad id", "id")
	r.AddError(IssueTypePattern, "still bad", "id")

	fields := r.ViolatedFields()
	if len(fields) != 2 {
		t.Fatalf("ViolatedFields() = %v; want 2 distinct fields", fields)
	}
}

func TestResultMerge(t *testing.T) {
	a := NewResult()
	a.AddWarning(IssueTypeFormat, "odd URL", "url")

	b := NewResult()
	b.AddError(IssueTypeRequired, "missing name", "name")

	a.Merge(b)

	if a.Valid {
		t.Error("merged result should carry the error")
	}
	if len(a.Issues) != 2 {
		t.Errorf("merged issue count = %d; want 2", len(a.Issues))
	}
}

func TestResultErrorsAndWarnings(t *testing.T) {
	r := NewResult()
	r.AddError(IssueTypeRequired, "missing id", "id")
	r.AddWarning(IssueTypeFormat, "odd URL", "url")

	if errs := r.Errors(); len(errs) != 1 || errs[0].Field[0] != "id" {
		t.Errorf("Errors() = %v; want single issue at id", errs)
	}
	if warns := r.Warnings(); len(warns) != 1 || warns[0].Field[0] != "url" {
		t.Errorf("Warnings() = %v; want single issue at url", warns)
	}
}
