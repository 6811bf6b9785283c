package pipeline

import (
	"sync"
	"testing"

	sv "github.com/sasrecords/validator"
)

func TestContextPooling(t *testing.T) {
	pctx := AcquireContext()
	pctx.RecordID = "a/b/c"
	pctx.RecordMap = map[string]any{"id": "a/b/c"}
	pctx.SetMetadata("key", "value")
	pctx.Release()

	pctx2 := AcquireContext()
	defer pctx2.Release()

	if pctx2.RecordID != "" {
		t.Errorf("pooled context not reset: RecordID = %q", pctx2.RecordID)
	}
	if pctx2.RecordMap != nil {
		t.Error("pooled context not reset: RecordMap != nil")
	}
	if _, ok := pctx2.GetMetadata("key"); ok {
		t.Error("pooled context not reset: metadata survived")
	}
}

func TestContextMetadataConcurrent(t *testing.T) {
	pctx := NewContext()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			pctx.SetMetadata("shared", n)
			pctx.GetMetadata("shared")
		}(i)
	}
	wg.Wait()

	if _, ok := pctx.GetMetadata("shared"); !ok {
		t.Error("metadata lost after concurrent writes")
	}
}

func TestContextShouldStop(t *testing.T) {
	pctx := NewContext()
	pctx.Result = sv.NewResult()
	pctx.Options = &ContextOptions{MaxErrors: 2}

	if pctx.ShouldStop() {
		t.Error("ShouldStop() = true with no errors")
	}

	pctx.AddError(sv.IssueTypeRequired, "missing id", "id")
	pctx.AddError(sv.IssueTypeRequired, "missing url", "url")

	if !pctx.ShouldStop() {
		t.Error("ShouldStop() = false at max errors")
	}
}

func TestContextGetField(t *testing.T) {
	pctx := NewContext()
	pctx.RecordMap = map[string]any{"name": "Example SAS"}

	if v, ok := pctx.GetField("name"); !ok || v != "Example SAS" {
		t.Errorf("GetField(name) = %v, %v; want Example SAS, true", v, ok)
	}
	if _, ok := pctx.GetField("missing"); ok {
		t.Error("GetField(missing) should return false")
	}
}
