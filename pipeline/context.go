// Package pipeline provides the validation pipeline infrastructure.
package pipeline

import (
	"context"
	"sync"

	sv "github.com/sasrecords/validator"
	"github.com/sasrecords/validator/schema"
)

// SchemaResolver resolves a schema reference to a parsed document.
// *registry.Registry satisfies this interface.
type SchemaResolver interface {
	Resolve(ctx context.Context, ref string) (*schema.Document, error)
}

// Context holds all state needed during validation of a single record.
// It is passed through all validation phases and provides shared access to
// the candidate data, the schema, and the accumulated result.
//
// Context instances are pooled for efficiency. Use AcquireContext() and
// Release() to manage them properly.
type Context struct {
	// Record is the raw JSON record being validated
	Record []byte

	// RecordMap is the parsed record as a map
	RecordMap map[string]any

	// RecordID is the record id if present
	RecordID string

	// Schema is the record schema being validated against
	Schema *schema.Document

	// Resolver resolves the schemas referenced by Schema
	Resolver SchemaResolver

	// Result accumulates validation issues
	Result *sv.Result

	// Options holds validation options
	Options *ContextOptions

	// mu protects metadata during parallel phase execution
	mu sync.RWMutex

	// metadata for phase-to-phase signalling
	metadata map[string]any
}

// ContextOptions holds validation options accessible during validation.
type ContextOptions struct {
	ValidateNested  bool
	ValidateFormats bool
	StrictMode      bool
	MaxErrors       int
}

// contextPool holds reusable Context instances.
var contextPool = sync.Pool{
	New: func() any {
		return &Context{
			metadata: make(map[string]any, 4),
		}
	},
}

// AcquireContext gets a Context from the pool.
// Call Release() when done to return it to the pool.
func AcquireContext() *Context {
	ctx := contextPool.Get().(*Context)
	ctx.Reset()
	return ctx
}

// Release returns the Context to the pool.
// After calling Release, the Context should not be used.
func (c *Context) Release() {
	if c == nil {
		return
	}
	contextPool.Put(c)
}

// Reset clears the context for reuse.
func (c *Context) Reset() {
	c.Record = nil
	c.RecordMap = nil
	c.RecordID = ""
	c.Schema = nil
	c.Resolver = nil
	c.Result = nil
	c.Options = nil

	for k := range c.metadata {
		delete(c.metadata, k)
	}
}

// SetMetadata stores a value in the context metadata.
// Thread-safe for use during parallel phase execution.
func (c *Context) SetMetadata(key string, value any) {
	c.mu.Lock()
	c.metadata[key] = value
	c.mu.Unlock()
}

// GetMetadata retrieves a value from the context metadata.
// Thread-safe for use during parallel phase execution.
func (c *Context) GetMetadata(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.metadata[key]
	c.mu.RUnlock()
	return v, ok
}

// AddIssue adds a validation issue to the result.
// Thread-safe for use during parallel phase execution.
func (c *Context) AddIssue(issue sv.Issue) {
	if c.Result != nil {
		c.Result.AddIssue(issue)
	}
}

// AddError is a convenience method to add an error issue.
func (c *Context) AddError(code sv.IssueType, diagnostics, path string) {
	if c.Result != nil {
		c.Result.AddError(code, diagnostics, path)
	}
}

// AddWarning is a convenience method to add a warning issue.
func (c *Context) AddWarning(code sv.IssueType, diagnostics, path string) {
	if c.Result != nil {
		c.Result.AddWarning(code, diagnostics, path)
	}
}

// ShouldStop returns true if validation should stop (max errors reached).
func (c *Context) ShouldStop() bool {
	if c.Options == nil || c.Options.MaxErrors <= 0 {
		return false
	}
	if c.Result == nil {
		return false
	}
	return c.Result.ErrorCount() >= c.Options.MaxErrors
}

// GetField returns a top-level field value from the record map.
func (c *Context) GetField(field string) (any, bool) {
	if c.RecordMap == nil {
		return nil, false
	}
	v, ok := c.RecordMap[field]
	return v, ok
}

// NewContext creates a new Context (non-pooled).
// Prefer AcquireContext() for better performance.
func NewContext() *Context {
	return &Context{
		metadata: make(map[string]any, 4),
	}
}

// ReleaseContext returns a Context to the pool.
// This is a convenience function equivalent to ctx.Release().
func ReleaseContext(ctx *Context) {
	if ctx != nil {
		ctx.Release()
	}
}
