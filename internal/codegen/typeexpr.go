package codegen

import (
	"strings"
)

// ArrayBase is the base name of a parsed `T[]` expression. Its single argument is the
// element type.
const ArrayBase = "[]"

// NullableBase is the base name a `T?` annotation is parsed to
const NullableBase = "System.Nullable"

// TypeExpression is the parsed form of a textual type signature
type TypeExpression struct {
	Base string
	Args []TypeExpression
}

// Children returns the generic arguments
func (e TypeExpression) Children() []TypeExpression {
	return e.Args
}

// IsArray reports whether the expression is a `T[]` array
func (e TypeExpression) IsArray() bool {
	return e.Base == ArrayBase && len(e.Args) == 1
}

// SimpleName returns the trailing type name of the base, dropping the namespace and any
// enclosing types ("A.B.Outer+Inner" → "Inner").
func (e TypeExpression) SimpleName() string {
	return simpleName(e.Base)
}

// String renders the expression back to signature form. ParseType(e.String()) yields e
// for every e returned by ParseType.
func (e TypeExpression) String() string {
	if e.IsArray() {
		return e.Args[0].String() + "[]"
	}
	if len(e.Args) == 0 {
		return e.Base
	}

	args := make([]string, len(e.Args))
	for i, arg := range e.Args {
		args[i] = arg.String()
	}
	return e.Base + "<" + strings.Join(args, ",") + ">"
}

// ParseType parses a type signature such as "System.Collections.Generic.List<App.Widget>"
// into a TypeExpression. It never fails: malformed input yields the trimmed input as the
// base name with no arguments.
func ParseType(sig string) TypeExpression {
	s := strings.TrimSpace(sig)
	if s == "" {
		return TypeExpression{}
	}

	// C# nullable annotation: "int?" is System.Nullable<int>
	if strings.HasSuffix(s, "?") {
		inner := ParseType(s[:len(s)-1])
		// The wrapped form must render back as a single generic argument
		if parts, ok := splitTopLevel(inner.String(), '<', '>'); inner.Base == "" || !ok || len(parts) != 1 {
			return TypeExpression{Base: s}
		}
		return TypeExpression{Base: NullableBase, Args: []TypeExpression{inner}}
	}

	if strings.HasSuffix(s, "[]") {
		inner := strings.TrimSpace(s[:len(s)-2])
		if inner == "" {
			return TypeExpression{Base: s}
		}
		return TypeExpression{Base: ArrayBase, Args: []TypeExpression{ParseType(inner)}}
	}

	open := strings.IndexByte(s, '<')
	if open < 0 {
		if tick := strings.IndexByte(s, '`'); tick > 0 {
			return parseReflectionName(s, tick)
		}
		return TypeExpression{Base: s}
	}
	if open == 0 || s[len(s)-1] != '>' {
		return TypeExpression{Base: s}
	}

	parts, ok := splitTopLevel(s[open+1:len(s)-1], '<', '>')
	if !ok {
		return TypeExpression{Base: s}
	}

	args := make([]TypeExpression, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return TypeExpression{Base: s}
		}
		args = append(args, ParseType(part))
	}

	return TypeExpression{Base: strings.TrimSpace(s[:open]), Args: args}
}

// parseReflectionName handles CLR reflection names of the form
// "Name`2[[Arg1, Assembly, Version=...],[Arg2, Assembly, ...]]".
func parseReflectionName(s string, tick int) TypeExpression {
	base := s[:tick]
	rest := s[tick+1:]

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return TypeExpression{Base: s}
	}
	rest = rest[digits:]
	if rest == "" {
		// Open generic definition such as "List`1"
		return TypeExpression{Base: base}
	}
	if rest[0] != '[' || rest[len(rest)-1] != ']' {
		return TypeExpression{Base: s}
	}

	parts, ok := splitTopLevel(rest[1:len(rest)-1], '[', ']')
	if !ok {
		return TypeExpression{Base: s}
	}

	args := make([]TypeExpression, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) < 2 || part[0] != '[' || part[len(part)-1] != ']' {
			return TypeExpression{Base: s}
		}
		// Drop the assembly qualifier: everything after the first top-level comma
		qualified, ok := splitTopLevel(part[1:len(part)-1], '[', ']')
		if !ok || strings.TrimSpace(qualified[0]) == "" {
			return TypeExpression{Base: s}
		}
		args = append(args, ParseType(qualified[0]))
	}

	return TypeExpression{Base: base, Args: args}
}

// splitTopLevel splits s on commas that are not nested inside open/close pairs. It fails
// when the brackets in s are unbalanced.
func splitTopLevel(s string, open, close byte) ([]string, bool) {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth < 0 {
				return nil, false
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, false
	}
	return append(parts, s[start:]), true
}

func simpleName(name string) string {
	if i := strings.LastIndexAny(name, ".+"); i >= 0 {
		return name[i+1:]
	}
	return name
}
