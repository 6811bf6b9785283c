// Package registry resolves schema references to parsed schema documents.
//
// The SAS schema set composes documents through "file:" references to
// sibling schema files. The Resolver interface abstracts that resolution so
// the referenced schemas can be supplied independently: from the embedded
// set, from a directory on disk, or from anything implementing fs.FS.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	sv "github.com/sasrecords/validator"
	"github.com/sasrecords/validator/cache"
	"github.com/sasrecords/validator/schema"
	"github.com/sasrecords/validator/specs"
)

// Resolver resolves a schema reference (e.g. "file:FccInformation.schema.json")
// to a parsed, immutable schema document.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (*schema.Document, error)
}

// Resolution errors.
var (
	// ErrUnsupportedRef is returned for reference schemes other than "file:".
	ErrUnsupportedRef = errors.New("registry: unsupported schema reference")

	// ErrNotFound is returned when the referenced schema file does not exist.
	ErrNotFound = errors.New("registry: schema not found")
)

// Registry loads schema documents from an fs.FS source, caching parsed
// documents and deduplicating concurrent loads of the same file. Once
// loaded, documents are shared and never mutated.
type Registry struct {
	source  fs.FS
	cache   *cache.Cache[string, *schema.Document]
	group   singleflight.Group
	metrics *sv.Metrics
	log     zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithCacheSize sets the parsed-document cache capacity.
func WithCacheSize(size int) Option {
	return func(r *Registry) {
		r.cache = cache.New[string, *schema.Document](size)
	}
}

// WithMetrics wires the registry's cache hits and misses into a
// validator Metrics instance.
func WithMetrics(m *sv.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithLogger sets the registry logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// New creates a Registry over the given schema source.
func New(source fs.FS, opts ...Option) *Registry {
	r := &Registry{
		source: source,
		cache:  cache.New[string, *schema.Document](64),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewEmbedded creates a Registry over the embedded SAS schema set.
func NewEmbedded(opts ...Option) *Registry {
	return New(specs.FS(), opts...)
}

// Resolve resolves a schema reference to a parsed document.
// Only "file:" references and bare file names are supported.
func (r *Registry) Resolve(ctx context.Context, ref string) (*schema.Document, error) {
	name := ref
	if i := strings.Index(ref, ":"); i >= 0 {
		if !strings.HasPrefix(ref, schema.FileRefScheme) {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedRef, ref)
		}
		name = ref[len(schema.FileRefScheme):]
	}
	return r.Load(ctx, name)
}

// Load loads and parses a schema file by name. Concurrent loads of the same
// file are collapsed into a single read.
func (r *Registry) Load(ctx context.Context, name string) (*schema.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if doc, ok := r.cache.Get(name); ok {
		if r.metrics != nil {
			r.metrics.RecordCacheHit()
		}
		return doc, nil
	}
	if r.metrics != nil {
		r.metrics.RecordCacheMiss()
	}

	v, err, _ := r.group.Do(name, func() (any, error) {
		// A concurrent load may have populated the cache already.
		if doc, ok := r.cache.Get(name); ok {
			return doc, nil
		}

		data, err := fs.ReadFile(r.source, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}

		doc, err := schema.ParseNamed(name, data)
		if err != nil {
			return nil, err
		}

		r.cache.Set(name, doc)
		r.log.Debug().Str("schema", name).Msg("schema loaded")
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*schema.Document), nil
}

// Preload loads a set of schema files up front so later Resolve calls are
// pure cache reads. The engine uses it at construction to build the
// process-wide immutable schema tree once.
func (r *Registry) Preload(ctx context.Context, names ...string) error {
	for _, name := range names {
		if _, err := r.Load(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// CacheStats returns statistics for the parsed-document cache.
func (r *Registry) CacheStats() cache.Stats {
	return r.cache.Stats()
}
