package engine

import (
	"context"
	"testing"

	sv "github.com/sasrecords/validator"
	"github.com/sasrecords/validator/worker"
)

// Integration tests wiring the worker pool to a real validator.

func TestIntegration_WorkerPool(t *testing.T) {
	ctx := context.Background()

	v := newValidator(t)
	defer v.Close()

	t.Run("pool validates through the engine", func(t *testing.T) {
		pool := worker.NewPool(v.Validate, 4)

		records := [][]byte{
			validRecordJSON(),
			mutateRecord(t, func(rec map[string]any) { rec["id"] = "ab" }),
			mutateRecord(t, func(rec map[string]any) { delete(rec, "publicKey") }),
			validRecordJSON(),
		}
		for _, rec := range records {
			if !pool.Submit(worker.NewJob(rec)) {
				t.Fatal("Submit() = false")
			}
		}

		batch := pool.CloseAndWait()
		if batch.CompletedJobs != len(records) {
			t.Fatalf("CompletedJobs = %d; want %d", batch.CompletedJobs, len(records))
		}

		valid := 0
		for _, r := range batch.Results {
			if r.Error != nil {
				t.Errorf("job %s: unexpected error %v", r.ID, r.Error)
			}
			if r.Result.Valid {
				valid++
			}
			r.Result.Release()
		}
		if valid != 2 {
			t.Errorf("valid results = %d; want 2", valid)
		}
	})

	t.Run("batch validator reports issues in order", func(t *testing.T) {
		bv := worker.NewBatchValidator(func(ctx context.Context, record []byte) (*sv.Result, error) {
			return v.Validate(ctx, record)
		}, 4)

		records := [][]byte{
			validRecordJSON(),
			mutateRecord(t, func(rec map[string]any) { rec["url"] = "not a url" }),
			validRecordJSON(),
		}

		batch := bv.ValidateBatch(ctx, records)
		if batch.FailedJobs != 0 {
			t.Errorf("FailedJobs = %d; validation failures are not job failures", batch.FailedJobs)
		}
		if batch.Results[0].Result == nil || !batch.Results[0].Result.Valid {
			t.Error("record 0 should be valid")
		}
		if batch.Results[1].Result.Valid {
			t.Error("record 1 should fail the url format check")
		}
		if batch.Results[1].Result.Issues[0].Code != sv.IssueTypeFormat {
			t.Errorf("Code = %q; want %q", batch.Results[1].Result.Issues[0].Code, sv.IssueTypeFormat)
		}
		for _, r := range batch.Results {
			r.Result.Release()
		}
	})

	t.Run("concurrent submitters share one validator", func(t *testing.T) {
		// 8 jobs fit the pool's buffers, so submitters never block on an
		// undrained result channel.
		pool := worker.NewPool(v.Validate, 4)

		done := make(chan struct{})
		for g := 0; g < 4; g++ {
			go func() {
				defer func() { done <- struct{}{} }()
				for i := 0; i < 2; i++ {
					pool.Submit(worker.NewJob(validRecordJSON()))
				}
			}()
		}
		for g := 0; g < 4; g++ {
			<-done
		}

		batch := pool.CloseAndWait()
		if batch.CompletedJobs != 8 {
			t.Errorf("CompletedJobs = %d; want 8", batch.CompletedJobs)
		}
		for _, r := range batch.Results {
			if !r.Result.Valid {
				t.Errorf("job %s invalid: %v", r.ID, r.Result.Issues)
			}
			r.Result.Release()
		}
	})
}
