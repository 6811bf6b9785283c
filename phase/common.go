package phase

import (
	"net/url"
	"strings"

	sv "github.com/sasrecords/validator"
	"github.com/sasrecords/validator/schema"
)

// GoTypeOf returns the JSON type name of a decoded value.
func GoTypeOf(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return "unknown"
	}
}

// TypeMatches reports whether a decoded value satisfies a declared type.
// Properties that declare no type (pure $ref properties) match everything.
func TypeMatches(declared schema.Type, v any) bool {
	switch declared {
	case "":
		return true
	case schema.TypeObject:
		_, ok := v.(map[string]any)
		return ok
	case schema.TypeArray:
		_, ok := v.([]any)
		return ok
	case schema.TypeString:
		_, ok := v.(string)
		return ok
	case schema.TypeBoolean:
		_, ok := v.(bool)
		return ok
	case schema.TypeNumber:
		_, ok := v.(float64)
		return ok
	case schema.TypeInteger:
		f, ok := v.(float64)
		return ok && f == float64(int64(f))
	default:
		return false
	}
}

// ValidateRecordID reports whether a record id contains at least three
// consecutive non-empty slash-separated segments. The declared schema
// pattern is unanchored, so leading or trailing content around the three
// segments is accepted; an empty segment is not.
func ValidateRecordID(id string) bool {
	consecutive := 0
	for _, part := range strings.Split(id, "/") {
		if part == "" {
			consecutive = 0
			continue
		}
		consecutive++
		if consecutive >= 3 {
			return true
		}
	}
	return false
}

// ValidateURI reports whether s is a syntactically valid absolute URI.
// Values without a scheme, such as "example.org/sas", are rejected.
func ValidateURI(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && u.Scheme != ""
}

// GetRecordID extracts the id from a record map.
func GetRecordID(record map[string]any) string {
	if id, ok := record["id"].(string); ok {
		return id
	}
	return ""
}

// JoinPath joins a base path and a field name with a dot.
func JoinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

// BaseIssue creates a base issue with common fields set.
func BaseIssue(severity sv.IssueSeverity, code sv.IssueType, diagnostics, path, phase string) sv.Issue {
	return sv.Issue{
		Severity:    severity,
		Code:        code,
		Diagnostics: diagnostics,
		Field:       []string{path},
		Phase:       phase,
	}
}

// ErrorIssue creates an error issue.
func ErrorIssue(code sv.IssueType, diagnostics, path, phase string) sv.Issue {
	return BaseIssue(sv.SeverityError, code, diagnostics, path, phase)
}

// WarningIssue creates a warning issue.
func WarningIssue(code sv.IssueType, diagnostics, path, phase string) sv.Issue {
	return BaseIssue(sv.SeverityWarning, code, diagnostics, path, phase)
}

// InformationIssue creates an informational issue.
func InformationIssue(code sv.IssueType, diagnostics, path, phase string) sv.Issue {
	return BaseIssue(sv.SeverityInformation, code, diagnostics, path, phase)
}
