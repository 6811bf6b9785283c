package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"

	sv "github.com/sasrecords/validator"
)

// BatchValidator provides a simple interface for batch validation.
type BatchValidator struct {
	validate ValidateFunc
	workers  int
}

// NewBatchValidator creates a new batch validator.
func NewBatchValidator(validate ValidateFunc, workers int) *BatchValidator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchValidator{
		validate: validate,
		workers:  workers,
	}
}

// ValidateBatch validates multiple records in parallel.
func (bv *BatchValidator) ValidateBatch(ctx context.Context, records [][]byte) *BatchResult {
	if len(records) == 0 {
		return &BatchResult{
			Results:       make([]*JobResult, 0),
			TotalJobs:     0,
			CompletedJobs: 0,
		}
	}

	// For small batches, don't use parallelism
	if len(records) <= 2 {
		return bv.validateSequential(ctx, records)
	}

	return bv.validateParallel(ctx, records)
}

func (bv *BatchValidator) validateSequential(ctx context.Context, records [][]byte) *BatchResult {
	results := make([]*JobResult, 0, len(records))
	failed := 0

	for i, record := range records {
		select {
		case <-ctx.Done():
			return &BatchResult{
				Results:       results,
				TotalJobs:     len(records),
				CompletedJobs: len(results),
				FailedJobs:    failed,
			}
		default:
		}

		result, err := bv.validate(ctx, record)
		if err != nil {
			failed++
		}
		results = append(results, &JobResult{
			ID:     jobID(i),
			Result: result,
			Error:  err,
		})
	}

	return &BatchResult{
		Results:       results,
		TotalJobs:     len(records),
		CompletedJobs: len(results),
		FailedJobs:    failed,
	}
}

func (bv *BatchValidator) validateParallel(ctx context.Context, records [][]byte) *BatchResult {
	numWorkers := bv.workers
	if numWorkers > len(records) {
		numWorkers = len(records)
	}

	jobs := make(chan indexedRecord, len(records))
	resultsChan := make(chan *indexedResult, len(records))

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				result, err := bv.validate(ctx, job.record)
				resultsChan <- &indexedResult{
					index:  job.index,
					result: result,
					err:    err,
				}
			}
		}()
	}

	// Submit jobs
	go func() {
		for i, record := range records {
			select {
			case <-ctx.Done():
			case jobs <- indexedRecord{index: i, record: record}:
			}
		}
		close(jobs)
	}()

	// Wait for workers and close results channel
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Collect results in order
	results := make([]*JobResult, len(records))
	completed := 0
	failed := 0

	for ir := range resultsChan {
		results[ir.index] = &JobResult{
			ID:     jobID(ir.index),
			Result: ir.result,
			Error:  ir.err,
		}
		completed++
		if ir.err != nil {
			failed++
		}
	}

	return &BatchResult{
		Results:       results,
		TotalJobs:     len(records),
		CompletedJobs: completed,
		FailedJobs:    failed,
	}
}

// jobID names an index-derived job.
func jobID(i int) string {
	return "job-" + strconv.Itoa(i)
}

type indexedRecord struct {
	index  int
	record []byte
}

type indexedResult struct {
	index  int
	result *sv.Result
	err    error
}

// ValidateBatchSimple is a convenience function for batch validation.
func ValidateBatchSimple(ctx context.Context, validate ValidateFunc, records [][]byte) *BatchResult {
	bv := NewBatchValidator(validate, runtime.NumCPU())
	return bv.ValidateBatch(ctx, records)
}
