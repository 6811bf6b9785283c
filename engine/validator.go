// Package engine provides the main SAS implementation record validator.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/buger/jsonparser"
	"github.com/rs/zerolog"

	sv "github.com/sasrecords/validator"
	"github.com/sasrecords/validator/phase"
	"github.com/sasrecords/validator/pipeline"
	"github.com/sasrecords/validator/registry"
	"github.com/sasrecords/validator/stream"
)

// Validator validates SAS implementation records against the embedded
// schema set. It coordinates the validation phases and resolves the
// schemas referenced by the record schema.
type Validator struct {
	release sv.SchemaRelease
	options *sv.Options

	registry *registry.Registry
	pipe     *pipeline.Pipeline

	metrics *sv.Metrics
	log     zerolog.Logger

	// Worker pool for batch validation
	workerPool     chan struct{}
	workerPoolOnce sync.Once
}

// New creates a Validator for the current schema release with the embedded
// schema files preloaded.
func New(ctx context.Context, opts ...sv.Option) (*Validator, error) {
	return NewForRelease(ctx, sv.V1, opts...)
}

// NewForRelease creates a Validator for a specific schema release.
func NewForRelease(ctx context.Context, release sv.SchemaRelease, opts ...sv.Option) (*Validator, error) {
	if !release.IsValid() {
		return nil, fmt.Errorf("unknown schema release %q", release)
	}

	options := sv.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	v := &Validator{
		release: release,
		options: options,
		metrics: sv.NewMetrics(),
		log:     zerolog.Nop(),
	}

	v.registry = registry.NewEmbedded(
		registry.WithCacheSize(options.SchemaCacheSize),
		registry.WithMetrics(v.metrics),
	)

	if err := v.registry.Preload(ctx, release.RecordSchemaFile()); err != nil {
		return nil, fmt.Errorf("preload schemas: %w", err)
	}

	v.buildPipeline()

	return v, nil
}

// SetLogger sets the logger used for per-validation debug logging.
func (v *Validator) SetLogger(log zerolog.Logger) {
	v.log = log
}

// buildPipeline constructs the validation pipeline based on options.
func (v *Validator) buildPipeline() {
	pipelineOpts := &pipeline.Options{
		ParallelExecution: v.options.ParallelPhases,
		MaxErrors:         v.options.MaxErrors,
		FailFast:          v.options.MaxErrors == 1,
		PhaseTimeout:      v.options.PhaseTimeout,
		CollectMetrics:    true,
	}

	v.pipe = pipeline.New(pipelineOpts)
	v.pipe.SetMetrics(v.metrics)

	v.addPhases()
}

// addPhases adds validation phases to the pipeline based on configuration.
func (v *Validator) addPhases() {
	// Structure validation (always enabled)
	v.pipe.RegisterConfig(pipeline.PhaseIDStructure, phase.StructurePhaseConfig())

	// Required fields (always enabled)
	v.pipe.RegisterConfig(pipeline.PhaseIDRequired, phase.RequiredFieldsPhaseConfig())

	// Unknown fields (always enabled; the record schema is closed)
	v.pipe.RegisterConfig(pipeline.PhaseIDUnknown, phase.UnknownFieldsPhaseConfig())

	// Pattern constraints
	v.pipe.RegisterConfig(pipeline.PhaseIDPattern, phase.PatternPhaseConfig())

	// Format constraints
	if v.options.ValidateFormats {
		v.pipe.RegisterConfig(pipeline.PhaseIDFormat, phase.FormatPhaseConfig())
	}

	// Referenced schema validation
	if v.options.ValidateNested {
		v.pipe.RegisterConfig(pipeline.PhaseIDNested, phase.NestedPhaseConfig())
	}
}

// Validate validates a raw JSON record.
func (v *Validator) Validate(ctx context.Context, record []byte) (*sv.Result, error) {
	start := time.Now()

	var recordMap map[string]any
	if err := json.Unmarshal(record, &recordMap); err != nil {
		result := v.acquireResult()
		result.AddError(sv.IssueTypeStructure, fmt.Sprintf("Invalid JSON: %v", err), "")
		v.metrics.RecordValidation(time.Since(start), false)
		return result, nil
	}

	return v.validateParsed(ctx, record, recordMap, start)
}

// ValidateMap validates a record that has already been parsed to a map.
func (v *Validator) ValidateMap(ctx context.Context, recordMap map[string]any) (*sv.Result, error) {
	return v.validateParsed(ctx, nil, recordMap, time.Now())
}

func (v *Validator) validateParsed(ctx context.Context, record []byte, recordMap map[string]any, start time.Time) (*sv.Result, error) {
	doc, err := v.registry.Load(ctx, v.release.RecordSchemaFile())
	if err != nil {
		result := v.acquireResult()
		result.AddError(sv.IssueTypeProcessing, fmt.Sprintf("Cannot load record schema: %v", err), "")
		v.metrics.RecordValidation(time.Since(start), false)
		return result, nil
	}

	pctx := pipeline.AcquireContext()
	pctx.Record = record
	pctx.RecordMap = recordMap
	pctx.RecordID = phase.GetRecordID(recordMap)
	pctx.Schema = doc
	pctx.Resolver = v.registry
	pctx.Result = v.acquireResult()
	pctx.Options = &pipeline.ContextOptions{
		ValidateNested:  v.options.ValidateNested,
		ValidateFormats: v.options.ValidateFormats,
		StrictMode:      v.options.StrictMode,
		MaxErrors:       v.options.MaxErrors,
	}
	pctx.Result.RecordID = pctx.RecordID
	pctx.Result.SchemaName = doc.Name

	v.pipe.Execute(ctx, pctx)

	result := pctx.Result
	pctx.Result = nil // Don't release the result with the context
	pipeline.ReleaseContext(pctx)

	if v.options.StrictMode && result.HasWarnings() {
		result.Valid = false
	}

	v.metrics.RecordValidation(time.Since(start), result.Valid)

	if v.log.GetLevel() <= zerolog.DebugLevel {
		v.log.Debug().
			Str("record_id", result.RecordID).
			Bool("valid", result.Valid).
			Int("errors", result.ErrorCount()).
			Int("warnings", result.WarningCount()).
			Dur("elapsed", time.Since(start)).
			Msg("record validated")
	}

	return result, nil
}

// ValidateBatch validates multiple records in parallel.
func (v *Validator) ValidateBatch(ctx context.Context, records [][]byte) []*sv.Result {
	results := make([]*sv.Result, len(records))

	v.workerPoolOnce.Do(func() {
		workers := v.options.WorkerCount
		if workers <= 0 {
			workers = 4
		}
		v.workerPool = make(chan struct{}, workers)
	})

	var wg sync.WaitGroup
	for i, record := range records {
		wg.Add(1)
		go func(idx int, rec []byte) {
			defer wg.Done()

			v.workerPool <- struct{}{}
			defer func() { <-v.workerPool }()

			result, err := v.Validate(ctx, rec)
			if err != nil {
				result = v.acquireResult()
				result.AddError(sv.IssueTypeProcessing, err.Error(), "")
			}
			results[idx] = result
		}(i, record)
	}

	wg.Wait()
	return results
}

// QuickValidate performs fast screening with minimal checks and no schema
// resolution: the record must be a JSON object and, when present, the id
// must hold at least three consecutive non-empty segments.
func (v *Validator) QuickValidate(ctx context.Context, record []byte) (*sv.Result, error) {
	result := v.acquireResult()

	if _, t, _, err := jsonparser.Get(record); err != nil || t != jsonparser.Object {
		result.AddError(sv.IssueTypeStructure, "Record must be a JSON object", "")
		return result, nil
	}

	if id, err := jsonparser.GetString(record, "id"); err == nil {
		result.RecordID = id
		if !phase.ValidateRecordID(id) {
			result.AddError(sv.IssueTypePattern,
				fmt.Sprintf("Field 'id' value %q does not contain three non-empty segments", id), "id")
		}
	}

	return result, nil
}

// ValidateDumpStream validates an activity-dump style file from an
// io.Reader without loading it into memory. Results are emitted as records
// are processed, in order.
func (v *Validator) ValidateDumpStream(ctx context.Context, r io.Reader) <-chan *stream.RecordResult {
	dv := stream.NewDumpValidator(v.Validate).
		WithWorkerCount(v.options.WorkerCount).
		WithBufferSize(100)

	return dv.ValidateStream(ctx, r)
}

// ValidateDumpStreamParallel validates dump records in parallel while
// preserving order.
func (v *Validator) ValidateDumpStreamParallel(ctx context.Context, r io.Reader) <-chan *stream.RecordResult {
	dv := stream.NewDumpValidator(v.Validate).
		WithWorkerCount(v.options.WorkerCount).
		WithBufferSize(100)

	return dv.ValidateStreamParallel(ctx, r)
}

// AggregateDumpResults collects all results from a streaming dump validation.
func AggregateDumpResults(results <-chan *stream.RecordResult) *stream.DumpStreamResult {
	return stream.Aggregate(results)
}

// acquireResult respects the pooling option.
func (v *Validator) acquireResult() *sv.Result {
	if v.options.EnablePooling {
		v.metrics.RecordPoolAcquire()
		return sv.AcquireResult()
	}
	return sv.NewResult()
}

// Metrics returns the validator's metrics.
func (v *Validator) Metrics() *sv.Metrics {
	return v.metrics
}

// Release returns the schema release this validator is configured for.
func (v *Validator) Release() sv.SchemaRelease {
	return v.release
}

// Options returns the validator's options.
func (v *Validator) Options() *sv.Options {
	return v.options
}

// Registry returns the schema registry.
func (v *Validator) Registry() *registry.Registry {
	return v.registry
}

// Close releases resources held by the validator.
func (v *Validator) Close() error {
	return nil
}
