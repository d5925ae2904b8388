package codegen

import (
	"strings"
)

// Severity of a diagnostic
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Category classifies diagnostics for filtering
type Category string

const (
	CategoryDependencyCycle   Category = "dependency-cycle"
	CategoryDuplicateTypeName Category = "duplicate-type-name"
	CategoryMixedKind         Category = "mixed-kind"
	CategoryInvalidTypeName   Category = "invalid-type-name"
)

// Diagnostic is a non-fatal problem found while generating
type Diagnostic struct {
	Severity Severity
	Category Category
	// Subjects names the types or endpoints involved, sorted
	Subjects []string
	Message  string
	Hint     string
}

// String formats the diagnostic for display
func (d Diagnostic) String() string {
	var sb strings.Builder

	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")
	if d.Category != "" {
		sb.WriteString("[")
		sb.WriteString(string(d.Category))
		sb.WriteString("] ")
	}
	sb.WriteString(d.Message)
	if d.Hint != "" {
		sb.WriteString("\n  hint: ")
		sb.WriteString(d.Hint)
	}
	return sb.String()
}

// diagnostics collects diagnostics during one generation run
type diagnostics struct {
	items []Diagnostic
}

func (c *diagnostics) warn(category Category, subjects []string, message, hint string) {
	c.items = append(c.items, Diagnostic{
		Severity: SeverityWarning,
		Category: category,
		Subjects: subjects,
		Message:  message,
		Hint:     hint,
	})
}

func (c *diagnostics) list() []Diagnostic {
	return c.items
}
