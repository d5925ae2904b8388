package typescript

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okra-platform/apigen/internal/codegen/writer"
)

// FileExtension is the file extension of generated modules
const FileExtension = ".ts"

// Declaration is a fully resolved type declaration. Exactly one of Properties and
// Members is used: a declaration with members is an enum.
type Declaration struct {
	Name string
	// TypeParams are the generic parameter names (T0, T1, ...)
	TypeParams []string
	// Extends is the rendered base type, empty when there is none
	Extends    string
	Imports    []string
	Doc        []string
	Properties []Property
	Members    []EnumMember
}

// Property is one member of an object declaration
type Property struct {
	Name     string
	Type     string
	Optional bool
	Doc      []string
}

// EnumMember is one value of an enum declaration
type EnumMember struct {
	Name  string
	Value string
	Doc   []string
}

// IsEnum reports whether the declaration is an enum
func (d Declaration) IsEnum() bool {
	return len(d.Members) > 0
}

// Generator renders TypeScript declaration modules
type Generator struct {
	structural bool // If true, generate type aliases and unions instead of interfaces and enums
}

// NewGenerator creates a new TypeScript declaration generator
func NewGenerator() *Generator {
	return &Generator{}
}

// WithStructural configures the generator to produce type aliases instead of interfaces
func (g *Generator) WithStructural(structural bool) *Generator {
	g.structural = structural
	return g
}


// Generate renders one declaration module: imports followed by the declaration
func (g *Generator) Generate(d Declaration) []byte {
	w := writer.NewWriter("  ") // TypeScript typically uses 2 spaces

	imports := make([]string, len(d.Imports))
	for i, name := range d.Imports {
		imports[i] = fmt.Sprintf("import { %s } from './%s';", name, name)
	}
	w.WriteLines(imports)
	if len(imports) > 0 {
		w.BlankLine()
	}

	w.WriteJSDoc(d.Doc)
	if d.IsEnum() {
		g.generateEnum(w, d)
	} else {
		g.generateType(w, d)
	}

	return w.Bytes()
}

// GenerateIndex renders the module re-exporting every declaration in names
func (g *Generator) GenerateIndex(names []string) []byte {
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("export * from './%s';", name)
	}
	w := writer.NewWriter("  ")
	w.WriteLines(lines)
	return w.Bytes()
}

// generateEnum generates a TypeScript enum, or a union of its values in structural mode
func (g *Generator) generateEnum(w *writer.Writer, d Declaration) {
	if g.structural {
		values := make([]string, len(d.Members))
		for i, member := range d.Members {
			values[i] = enumValue(member)
		}
		w.WriteLinef("export type %s = %s;", d.Name, strings.Join(values, " | "))
		return
	}

	w.WriteBlock("export enum "+d.Name+" {", "}", func() {
		for _, member := range d.Members {
			w.WriteJSDoc(member.Doc)
			w.WriteLinef("%s = %s,", PropertyKey(member.Name), enumValue(member))
		}
	})
}

// generateType generates a TypeScript interface, or a type alias in structural mode
func (g *Generator) generateType(w *writer.Writer, d Declaration) {
	name := d.Name
	if len(d.TypeParams) > 0 {
		name += "<" + strings.Join(d.TypeParams, ", ") + ">"
	}

	var opener string
	closer := "}"
	switch {
	case g.structural && d.Extends != "":
		opener = fmt.Sprintf("export type %s = %s & {", name, d.Extends)
		closer = "};"
	case g.structural:
		opener = fmt.Sprintf("export type %s = {", name)
		closer = "};"
	case d.Extends != "":
		opener = fmt.Sprintf("export interface %s extends %s {", name, d.Extends)
	default:
		opener = fmt.Sprintf("export interface %s {", name)
	}

	w.WriteBlock(opener, closer, func() {
		for _, prop := range d.Properties {
			w.WriteJSDoc(prop.Doc)
			optional := ""
			if prop.Optional {
				optional = "?"
			}
			w.WriteLinef("%s%s: %s;", PropertyKey(prop.Name), optional, prop.Type)
		}
	})
}

// enumValue renders a member value: numbers verbatim, anything else as a string literal
func enumValue(member EnumMember) string {
	if _, err := strconv.ParseFloat(member.Value, 64); err == nil {
		return member.Value
	}
	if member.Value == "" {
		return strconv.Quote(member.Name)
	}
	return strconv.Quote(member.Value)
}

// PropertyKey returns a properly quoted TypeScript property key.
// Valid identifiers are returned as-is, anything else is double-quoted.
func PropertyKey(name string) string {
	if IsIdentifier(name) {
		return name
	}
	return strconv.Quote(name)
}

// IsIdentifier reports whether name is a plain ASCII TypeScript identifier
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if !isIdentStart(r) && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
}
