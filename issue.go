package sasvalidator

// IssueSeverity represents the severity of a validation issue.
type IssueSeverity string

const (
	// SeverityFatal indicates the issue is fatal and validation cannot continue.
	SeverityFatal IssueSeverity = "fatal"
	// SeverityError indicates a violation that makes the record invalid.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a potential problem that should be reviewed.
	SeverityWarning IssueSeverity = "warning"
	// SeverityInformation indicates informational feedback.
	SeverityInformation IssueSeverity = "information"
)

// IssueType identifies the schema rule a candidate record broke.
type IssueType string

const (
	// IssueTypeRequired indicates a required field is absent.
	IssueTypeRequired IssueType = "missing-required-field"
	// IssueTypeUnexpected indicates a field not declared by the schema is present.
	IssueTypeUnexpected IssueType = "unexpected-field"
	// IssueTypeType indicates a field value does not match its declared type.
	IssueTypeType IssueType = "type-mismatch"
	// IssueTypePattern indicates a string value does not match its declared pattern.
	IssueTypePattern IssueType = "pattern-violation"
	// IssueTypeFormat indicates a string value does not satisfy its declared format.
	IssueTypeFormat IssueType = "format-violation"
	// IssueTypeNested indicates a nested object failed its referenced schema.
	IssueTypeNested IssueType = "nested-schema-violation"
	// IssueTypeStructure indicates the candidate is not a well-formed record object.
	IssueTypeStructure IssueType = "structure"
	// IssueTypeProcessing indicates an engine fault rather than a schema violation.
	IssueTypeProcessing IssueType = "processing"
	// IssueTypeTimeout indicates validation was cancelled or timed out.
	IssueTypeTimeout IssueType = "timeout"
)

// Issue represents a single validation issue. Every violation names the
// offending field and the rule broken; issues are always surfaced to the
// caller, never dropped.
type Issue struct {
	// Severity of the issue (error, warning, information)
	Severity IssueSeverity `json:"severity"`

	// Code identifying the violated rule
	Code IssueType `json:"code"`

	// Diagnostics contains human-readable details about the issue
	Diagnostics string `json:"diagnostics,omitempty"`

	// Field contains the path(s) to the offending field(s),
	// e.g. "contactInformation[0].name"
	Field []string `json:"field,omitempty"`

	// Phase is the validation phase that generated this issue
	Phase string `json:"phase,omitempty"`

	// Rule carries the underlying rule for propagated nested violations,
	// e.g. "missing-required-field" inside a nested-schema-violation
	Rule string `json:"rule,omitempty"`

	// Schema names the schema document that declared the violated constraint
	Schema string `json:"schema,omitempty"`
}

// IsError returns true if this is an error or fatal issue.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError || i.Severity == SeverityFatal
}

// IsWarning returns true if this is a warning.
func (i Issue) IsWarning() bool {
	return i.Severity == SeverityWarning
}

// String returns a human-readable representation of the issue.
func (i Issue) String() string {
	path := ""
	if len(i.Field) > 0 {
		path = " at " + i.Field[0]
	}
	return string(i.Severity) + ": " + i.Diagnostics + path
}

// IssueBuilder provides a fluent API for building issues.
type IssueBuilder struct {
	issue Issue
}

// NewIssue creates a new IssueBuilder.
func NewIssue(severity IssueSeverity, code IssueType) *IssueBuilder {
	return &IssueBuilder{
		issue: Issue{
			Severity: severity,
			Code:     code,
		},
	}
}

// Error creates an error issue.
func Error(code IssueType) *IssueBuilder {
	return NewIssue(SeverityError, code)
}

// Warning creates a warning issue.
func Warning(code IssueType) *IssueBuilder {
	return NewIssue(SeverityWarning, code)
}

// Info creates an informational issue.
func Info(code IssueType) *IssueBuilder {
	return NewIssue(SeverityInformation, code)
}

// Diagnostics sets the diagnostic message.
func (b *IssueBuilder) Diagnostics(msg string) *IssueBuilder {
	b.issue.Diagnostics = msg
	return b
}

// At sets the field path.
func (b *IssueBuilder) At(path string) *IssueBuilder {
	b.issue.Field = []string{path}
	return b
}

// AtPaths sets multiple field paths.
func (b *IssueBuilder) AtPaths(paths ...string) *IssueBuilder {
	b.issue.Field = paths
	return b
}

// Phase sets the validation phase.
func (b *IssueBuilder) Phase(phase string) *IssueBuilder {
	b.issue.Phase = phase
	return b
}

// Rule sets the underlying rule name.
func (b *IssueBuilder) Rule(rule string) *IssueBuilder {
	b.issue.Rule = rule
	return b
}

// Schema sets the schema document name.
func (b *IssueBuilder) Schema(name string) *IssueBuilder {
	b.issue.Schema = name
	return b
}

// Build returns the constructed issue.
func (b *IssueBuilder) Build() Issue {
	return b.issue
}
