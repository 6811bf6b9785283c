package sasvalidator

import (
	"runtime"
	"time"
)

// Option configures the Validator.
type Option func(*Options)

// Options holds all configuration for the Validator.
type Options struct {
	// Validation flags
	ValidateNested  bool
	ValidateFormats bool
	StrictMode      bool

	// Performance
	MaxErrors      int
	ParallelPhases bool
	WorkerCount    int
	PhaseTimeout   time.Duration
	EnablePooling  bool

	// SchemaCacheSize bounds the resolved-schema LRU cache
	SchemaCacheSize int
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		// Validation enabled by default
		ValidateNested:  true,
		ValidateFormats: true,

		// Performance defaults
		MaxErrors:      0, // unlimited
		ParallelPhases: true,
		WorkerCount:    runtime.NumCPU(),
		PhaseTimeout:   0, // no timeout
		EnablePooling:  true,

		SchemaCacheSize: 64,
	}
}

// --- Validation Options ---

// WithNested enables validation of contactInformation elements and
// fccInformation against their referenced schemas.
func WithNested(enable bool) Option {
	return func(o *Options) {
		o.ValidateNested = enable
	}
}

// WithFormats enables format checks such as the uri format of the url field.
func WithFormats(enable bool) Option {
	return func(o *Options) {
		o.ValidateFormats = enable
	}
}

// WithStrictMode treats warnings as errors.
func WithStrictMode(enable bool) Option {
	return func(o *Options) {
		o.StrictMode = enable
	}
}

// --- Performance Options ---

// WithMaxErrors sets the maximum number of errors before stopping validation.
// Use 0 for unlimited.
func WithMaxErrors(max int) Option {
	return func(o *Options) {
		o.MaxErrors = max
	}
}

// WithParallelPhases enables parallel execution of independent validation phases.
func WithParallelPhases(enable bool) Option {
	return func(o *Options) {
		o.ParallelPhases = enable
	}
}

// WithWorkerCount sets the number of workers for batch validation.
// Defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithPhaseTimeout sets a timeout for each validation phase.
// Use 0 for no timeout.
func WithPhaseTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.PhaseTimeout = timeout
	}
}

// WithPooling enables or disables object pooling.
// Pooling reduces GC pressure but requires calling Release() on results.
func WithPooling(enable bool) Option {
	return func(o *Options) {
		o.EnablePooling = enable
	}
}

// WithSchemaCacheSize sets the resolved-schema cache size.
func WithSchemaCacheSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.SchemaCacheSize = size
		}
	}
}

// --- Presets ---

// FastOptions returns options optimized for speed.
// Skips nested and format validation.
func FastOptions() []Option {
	return []Option{
		WithNested(false),
		WithFormats(false),
		WithParallelPhases(true),
		WithPooling(true),
	}
}

// StrictOptions returns options for strict validation.
// Enables all validations and treats warnings as errors.
func StrictOptions() []Option {
	return []Option{
		WithNested(true),
		WithFormats(true),
		WithStrictMode(true),
	}
}

// DebugOptions returns options useful for debugging.
// Disables pooling for easier debugging and bounds the error count.
func DebugOptions() []Option {
	return []Option{
		WithPooling(false),
		WithMaxErrors(100),
	}
}
