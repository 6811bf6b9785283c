// Package schema models the draft-04 JSON Schema subset used by the
// SAS-SAS record exchange schema files.
//
// A parsed Document is immutable: it is built once by Parse and never
// written afterwards, so concurrent readers need no locking.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FileRefScheme is the reference scheme used by the SAS schema set to point
// at sibling schema files, e.g. "file:ContactInformation.schema.json".
const FileRefScheme = "file:"

// Type is a declared JSON type.
type Type string

// Declared types used by the SAS schema set.
const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Items describes the schema of array elements: either a reference to an
// external schema file or a plain declared type.
type Items struct {
	Ref  string
	Type Type
}

// RefName returns the referenced schema file name, without the scheme.
func (i *Items) RefName() string {
	return strings.TrimPrefix(i.Ref, FileRefScheme)
}

// Property is one declared property of a schema document.
type Property struct {
	Name        string
	Description string
	Type        Type
	Pattern     string
	Format      string
	Ref         string
	Items       *Items

	pattern *regexp.Regexp
}

// RefName returns the referenced schema file name, without the scheme.
func (p *Property) RefName() string {
	return strings.TrimPrefix(p.Ref, FileRefScheme)
}

// HasPattern returns true if the property declares a pattern constraint.
func (p *Property) HasPattern() bool {
	return p.pattern != nil
}

// MatchPattern reports whether s satisfies the property's pattern
// constraint. Draft-04 patterns are unanchored (contains semantics).
// Properties without a pattern match everything.
func (p *Property) MatchPattern(s string) bool {
	if p.pattern == nil {
		return true
	}
	return p.pattern.MatchString(s)
}

// Document is a parsed schema document.
type Document struct {
	// Name is the schema file name this document was loaded from,
	// e.g. "SasImplementationRecord.schema.json". Set by the loader.
	Name string

	// SchemaURI is the declared meta-schema ($schema).
	SchemaURI string

	// Description is the document description.
	Description string

	// Type is the declared root type.
	Type Type

	// Required lists the required property names, in declaration order.
	Required []string

	// AdditionalProperties is false when undeclared properties are rejected.
	AdditionalProperties bool

	// Properties maps property names to their declarations.
	Properties map[string]*Property

	requiredSet map[string]bool
}

// Property returns the declaration for a property name.
func (d *Document) Property(name string) (*Property, bool) {
	p, ok := d.Properties[name]
	return p, ok
}

// IsRequired returns true if the property name is required.
func (d *Document) IsRequired(name string) bool {
	return d.requiredSet[name]
}

// IsDeclared returns true if the property name is declared.
func (d *Document) IsDeclared(name string) bool {
	_, ok := d.Properties[name]
	return ok
}

// rawDocument mirrors the JSON shape of a draft-04 schema file.
type rawDocument struct {
	Schema               string                 `json:"$schema"`
	Description          string                 `json:"description"`
	Type                 string                 `json:"type"`
	Required             []string               `json:"required"`
	AdditionalProperties json.RawMessage        `json:"additionalProperties"`
	Properties           map[string]rawProperty `json:"properties"`
}

type rawProperty struct {
	Ref         string    `json:"$ref"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Pattern     string    `json:"pattern"`
	Format      string    `json:"format"`
	Items       *rawItems `json:"items"`
}

type rawItems struct {
	Ref  string `json:"$ref"`
	Type string `json:"type"`
}

// Parse parses a schema document.
func Parse(data []byte) (*Document, error) {
	return ParseNamed("", data)
}

// ParseNamed parses a schema document and records the file name it was
// loaded from.
func ParseNamed(name string, data []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("schema %s: invalid JSON: %w", name, err)
	}

	doc := &Document{
		Name:                 name,
		SchemaURI:            raw.Schema,
		Description:          raw.Description,
		Type:                 Type(raw.Type),
		Required:             raw.Required,
		AdditionalProperties: parseAdditionalProperties(raw.AdditionalProperties),
		Properties:           make(map[string]*Property, len(raw.Properties)),
		requiredSet:          make(map[string]bool, len(raw.Required)),
	}

	for _, r := range raw.Required {
		doc.requiredSet[r] = true
	}

	for propName, rp := range raw.Properties {
		prop := &Property{
			Name:        propName,
			Description: rp.Description,
			Type:        Type(rp.Type),
			Pattern:     rp.Pattern,
			Format:      rp.Format,
			Ref:         rp.Ref,
		}
		if rp.Items != nil {
			prop.Items = &Items{Ref: rp.Items.Ref, Type: Type(rp.Items.Type)}
		}
		if rp.Pattern != "" {
			re, err := compilePattern(rp.Pattern)
			if err != nil {
				return nil, fmt.Errorf("schema %s: property %s: bad pattern %q: %w",
					name, propName, rp.Pattern, err)
			}
			prop.pattern = re
		}
		doc.Properties[propName] = prop
	}

	return doc, nil
}

// parseAdditionalProperties handles the bool-or-schema form of draft-04
// additionalProperties. Absent and schema-valued both permit extra
// properties; only a literal false closes the document.
func parseAdditionalProperties(raw json.RawMessage) bool {
	return !bytes.Equal(bytes.TrimSpace(raw), []byte("false"))
}

// compilePattern compiles a draft-04 pattern into a Go regexp.
//
// Patterns written as a slash-separated list of non-greedy wildcard groups,
// e.g. ((.+?)/(.+?)/(.+?)+), declare "at least N non-empty segments".
// Compiled verbatim, a wildcard group could swallow a separator (the dot
// matches '/'), accepting values with empty segments such as "a//c". Such
// patterns are therefore compiled with slash-free segments. All other
// patterns compile verbatim. Matching stays unanchored either way.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if n := segmentCount(pattern); n > 1 {
		return regexp.Compile(`[^/]+(?:/[^/]+){` + strconv.Itoa(n-1) + `,}`)
	}
	return regexp.Compile(pattern)
}

// segmentCount returns the number of segments in a slash-separated
// wildcard-group pattern, or 0 when the pattern has another shape.
func segmentCount(pattern string) int {
	p := pattern
	if strings.HasPrefix(p, "(") && strings.HasSuffix(p, ")") {
		p = p[1 : len(p)-1]
	}
	parts := strings.Split(p, "/")
	if len(parts) < 2 {
		return 0
	}
	for _, part := range parts {
		if strings.TrimSuffix(part, "+") != "(.+?)" {
			return 0
		}
	}
	return len(parts)
}
