// Package stream provides streaming validation of activity dump files,
// which carry the implementation records exchanged between peers inside a
// recordData array.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	sv "github.com/sasrecords/validator"
)

// RecordResult represents the validation result for a single dump record.
type RecordResult struct {
	// Index is the position of the record in the recordData array
	Index int

	// RecordID is the id of the record (if present)
	RecordID string

	// Result contains the validation issues for this record
	Result *sv.Result

	// Error is set if there was an error processing the record
	Error error
}

// DumpValidator validates activity dump files in a streaming fashion.
type DumpValidator struct {
	// validateRecord is the function to validate individual records
	validateRecord func(ctx context.Context, record []byte) (*sv.Result, error)

	// bufferSize is the channel buffer size
	bufferSize int

	// workerCount is the number of parallel workers
	workerCount int
}

// NewDumpValidator creates a new streaming dump validator.
func NewDumpValidator(validateFunc func(ctx context.Context, record []byte) (*sv.Result, error)) *DumpValidator {
	return &DumpValidator{
		validateRecord: validateFunc,
		bufferSize:     100,
		workerCount:    4,
	}
}

// WithBufferSize sets the channel buffer size.
func (v *DumpValidator) WithBufferSize(size int) *DumpValidator {
	if size > 0 {
		v.bufferSize = size
	}
	return v
}

// WithWorkerCount sets the number of parallel workers.
func (v *DumpValidator) WithWorkerCount(count int) *DumpValidator {
	if count > 0 {
		v.workerCount = count
	}
	return v
}

// ValidateStream validates a dump file from an io.Reader, emitting results
// as records are processed, in the order they appear in recordData.
func (v *DumpValidator) ValidateStream(ctx context.Context, r io.Reader) <-chan *RecordResult {
	results := make(chan *RecordResult, v.bufferSize)

	go func() {
		defer close(results)

		decoder := json.NewDecoder(r)

		// Read opening brace
		token, err := decoder.Token()
		if err != nil {
			results <- &RecordResult{Index: -1, Error: fmt.Errorf("failed to read dump: %w", err)}
			return
		}
		if delim, ok := token.(json.Delim); !ok || delim != '{' {
			results <- &RecordResult{Index: -1, Error: fmt.Errorf("expected object start, got %v", token)}
			return
		}

		// Process dump fields until we find "recordData"
		for decoder.More() {
			select {
			case <-ctx.Done():
				results <- &RecordResult{Index: -1, Error: ctx.Err()}
				return
			default:
			}

			token, err := decoder.Token()
			if err != nil {
				results <- &RecordResult{Index: -1, Error: fmt.Errorf("failed to read field: %w", err)}
				return
			}

			fieldName, ok := token.(string)
			if !ok {
				continue
			}

			if fieldName == "recordData" {
				v.processRecords(ctx, decoder, results)
				return
			}

			// Skip other fields (generationDateTime, description, ...)
			var skip any
			if err := decoder.Decode(&skip); err != nil {
				results <- &RecordResult{Index: -1, Error: fmt.Errorf("failed to skip field %s: %w", fieldName, err)}
				return
			}
		}

		// No recordData field found - empty dump
	}()

	return results
}

// processRecords processes the recordData array from the dump.
func (v *DumpValidator) processRecords(ctx context.Context, decoder *json.Decoder, results chan<- *RecordResult) {
	// Read opening bracket of recordData array
	token, err := decoder.Token()
	if err != nil {
		results <- &RecordResult{Index: -1, Error: fmt.Errorf("failed to read recordData array: %w", err)}
		return
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		results <- &RecordResult{Index: -1, Error: fmt.Errorf("expected array start, got %v", token)}
		return
	}

	index := 0
	for decoder.More() {
		select {
		case <-ctx.Done():
			results <- &RecordResult{Index: index, Error: ctx.Err()}
			return
		default:
		}

		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			// Decoder errors are sticky; the rest of the stream is
			// unreadable, so report once and stop.
			results <- &RecordResult{
				Index: index,
				Error: fmt.Errorf("failed to decode record %d: %w", index, err),
			}
			return
		}

		results <- v.processRecord(ctx, raw, index)
		index++
	}
}

// processRecord validates a single dump record.
func (v *DumpValidator) processRecord(ctx context.Context, record []byte, index int) *RecordResult {
	result := &RecordResult{
		Index: index,
	}

	var idOnly struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(record, &idOnly); err == nil {
		result.RecordID = idOnly.ID
	}

	validationResult, err := v.validateRecord(ctx, record)
	if err != nil {
		result.Error = err
		return result
	}

	result.Result = validationResult
	return result
}

// ValidateStreamParallel validates records in parallel while preserving
// order in output.
func (v *DumpValidator) ValidateStreamParallel(ctx context.Context, r io.Reader) <-chan *RecordResult {
	results := make(chan *RecordResult, v.bufferSize)

	go func() {
		defer close(results)

		// First, decode the recordData array
		var dump struct {
			RecordData []json.RawMessage `json:"recordData"`
		}
		if err := json.NewDecoder(r).Decode(&dump); err != nil {
			results <- &RecordResult{Index: -1, Error: fmt.Errorf("failed to decode dump: %w", err)}
			return
		}

		if len(dump.RecordData) == 0 {
			return
		}

		type workItem struct {
			index  int
			record json.RawMessage
		}

		workChan := make(chan workItem, v.bufferSize)
		resultChan := make(chan *RecordResult, v.bufferSize)

		// Start workers
		var wg sync.WaitGroup
		for i := 0; i < v.workerCount; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for work := range workChan {
					select {
					case <-ctx.Done():
						return
					default:
					}
					resultChan <- v.processRecord(ctx, work.record, work.index)
				}
			}()
		}

		// Send work and close channels when done
		go func() {
			for i, rec := range dump.RecordData {
				select {
				case workChan <- workItem{index: i, record: rec}:
				case <-ctx.Done():
				}
			}
			close(workChan)
			wg.Wait()
			close(resultChan)
		}()

		// Collect results and reorder
		pending := make(map[int]*RecordResult)
		nextIndex := 0
		total := len(dump.RecordData)

		for result := range resultChan {
			pending[result.Index] = result

			for {
				if r, ok := pending[nextIndex]; ok {
					results <- r
					delete(pending, nextIndex)
					nextIndex++
				} else {
					break
				}
			}

			if nextIndex >= total {
				break
			}
		}

		for nextIndex < total {
			if r, ok := pending[nextIndex]; ok {
				results <- r
				delete(pending, nextIndex)
			}
			nextIndex++
		}
	}()

	return results
}

// DumpStreamResult aggregates results from streaming validation.
type DumpStreamResult struct {
	// TotalRecords is the number of records processed
	TotalRecords int

	// InvalidRecords is the count of records that had errors
	InvalidRecords int

	// RecordsWithWarnings is the count of records that had warnings (but no errors)
	RecordsWithWarnings int

	// TotalIssues is the total number of issues found
	TotalIssues int

	// ProcessingErrors are errors that occurred during processing (not validation errors)
	ProcessingErrors []error

	// Issues is a slice of all issues, indexed by record position
	Issues map[int][]sv.Issue
}

// Aggregate collects all results from a streaming validation.
func Aggregate(results <-chan *RecordResult) *DumpStreamResult {
	agg := &DumpStreamResult{
		Issues: make(map[int][]sv.Issue),
	}

	for result := range results {
		if result.Error != nil {
			agg.ProcessingErrors = append(agg.ProcessingErrors, result.Error)
			continue
		}

		if result.Index < 0 {
			continue // Dump-level error already captured
		}

		agg.TotalRecords++

		if result.Result == nil {
			continue
		}

		// Copy the issues: the result goes back to the pool below and its
		// slice will be reused.
		issues := append([]sv.Issue(nil), result.Result.Issues...)
		if len(issues) > 0 {
			agg.Issues[result.Index] = issues
			agg.TotalIssues += len(issues)

			hasError := false
			hasWarning := false
			for _, issue := range issues {
				if issue.Severity == sv.SeverityError || issue.Severity == sv.SeverityFatal {
					hasError = true
				} else if issue.Severity == sv.SeverityWarning {
					hasWarning = true
				}
			}

			if hasError {
				agg.InvalidRecords++
			} else if hasWarning {
				agg.RecordsWithWarnings++
			}
		}

		result.Result.Release()
	}

	return agg
}

// HasErrors returns true if any records failed validation.
func (r *DumpStreamResult) HasErrors() bool {
	return r.InvalidRecords > 0 || len(r.ProcessingErrors) > 0
}

// Summary returns a human-readable summary of the validation.
func (r *DumpStreamResult) Summary() string {
	return fmt.Sprintf(
		"Validated %d records: %d with errors, %d with warnings, %d total issues",
		r.TotalRecords,
		r.InvalidRecords,
		r.RecordsWithWarnings,
		r.TotalIssues,
	)
}
