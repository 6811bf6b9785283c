// Package sasvalidator provides validation of SAS Implementation Records
// exchanged between Spectrum Access Systems (SAS-to-SAS).
//
// A SAS Implementation Record describes one SAS deployment for peer-to-peer
// exchange: its identity, administrator, contacts, public key, FCC
// certification and endpoint URL. The record shape is declared by the
// draft-04 JSON Schema documents embedded in the specs package; this module
// is the engine that enforces those declarations.
//
// # Quick Start
//
//	import (
//	    sv "github.com/sasrecords/validator"
//	    "github.com/sasrecords/validator/engine"
//	)
//
//	validator, err := engine.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := validator.Validate(ctx, recordJSON)
//	if result.HasErrors() {
//	    for _, issue := range result.Errors() {
//	        fmt.Println(issue.Diagnostics)
//	    }
//	}
//	result.Release() // Return to pool for better performance
//
// # Validation Phases
//
// Validation is performed in phases, each handling one aspect of the schema:
//
//   - Structure: declared property types (string, array, object)
//   - Required: presence of all required fields
//   - Unknown: rejection of undeclared fields (additionalProperties=false)
//   - Pattern: the three-segment record id constraint
//   - Format: URI syntax of the url field
//   - Nested: contactInformation elements and fccInformation against their
//     referenced schemas
//
// Each validation call is an independent, side-effect-free computation; the
// only shared state is the immutable schema tree loaded at construction, so
// a single Validator is safe for concurrent use.
//
// # Performance Features
//
//   - Worker Pool: parallel batch validation using runtime.NumCPU() workers
//   - Parallel Phases: independent validation phases run concurrently
//   - sync.Pool: reduced GC pressure through Result and Context reuse
//   - Generic Cache: type-safe LRU cache for resolved schema documents
//   - Streaming: validate activity dump files without loading them into memory
//
// # Functional Options
//
//	validator, err := engine.New(ctx,
//	    sv.WithNested(true),
//	    sv.WithParallelPhases(true),
//	    sv.WithWorkerCount(runtime.NumCPU()),
//	    sv.WithMaxErrors(100),
//	)
package sasvalidator
