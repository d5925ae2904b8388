package codegen

import (
	"strings"

	"github.com/okra-platform/apigen/internal/model"
)

var (
	sequenceTypes = typeFamily(
		"System.Array",
		"System.Collections.IEnumerable",
		"System.Collections.Generic.List",
		"System.Collections.Generic.IList",
		"System.Collections.Generic.ICollection",
		"System.Collections.Generic.IEnumerable",
		"System.Collections.Generic.IReadOnlyList",
		"System.Collections.Generic.IReadOnlyCollection",
		"System.Collections.Generic.IAsyncEnumerable",
		"System.Collections.Generic.HashSet",
		"System.Collections.Generic.ISet",
		"System.Collections.ObjectModel.Collection",
		"System.Collections.ObjectModel.ReadOnlyCollection",
	)
	dictionaryTypes = typeFamily(
		"System.Collections.Generic.Dictionary",
		"System.Collections.Generic.IDictionary",
		"System.Collections.Generic.IReadOnlyDictionary",
		"System.Collections.Concurrent.ConcurrentDictionary",
	)
	nullableTypes = typeFamily("System.Nullable")
	asyncTypes    = typeFamily(
		"System.Threading.Tasks.Task",
		"System.Threading.Tasks.ValueTask",
	)
	actionResultTypes = typeFamily(
		"Microsoft.AspNetCore.Mvc.ActionResult",
		"Microsoft.AspNetCore.Mvc.IActionResult",
	)
)

var scalarTypes = map[string]string{
	"System.String":         "string",
	"System.Char":           "string",
	"System.Uri":            "string",
	"System.Byte":           "number",
	"System.SByte":          "number",
	"System.Int16":          "number",
	"System.UInt16":         "number",
	"System.Int32":          "number",
	"System.UInt32":         "number",
	"System.Int64":          "number",
	"System.UInt64":         "number",
	"System.Single":         "number",
	"System.Double":         "number",
	"System.Decimal":        "number",
	"System.Boolean":        "boolean",
	"System.DateTime":       "string",
	"System.DateTimeOffset": "string",
	"System.DateOnly":       "string",
	"System.TimeOnly":       "string",
	"System.TimeSpan":       "string",
	"System.Guid":           "string",
	"System.Object":         "any",

	"string":  "string",
	"char":    "string",
	"byte":    "number",
	"sbyte":   "number",
	"short":   "number",
	"ushort":  "number",
	"int":     "number",
	"uint":    "number",
	"long":    "number",
	"ulong":   "number",
	"float":   "number",
	"double":  "number",
	"decimal": "number",
	"bool":    "boolean",
	"object":  "any",
}

// scalarPrefixes cover the families the exact table misses (Int128, DateTimeKind...)
var scalarPrefixes = []struct {
	prefix string
	ts     string
}{
	{"System.Int", "number"},
	{"System.UInt", "number"},
	{"System.DateTime", "string"},
}

var tsKeywords = map[string]bool{
	"any":       true,
	"unknown":   true,
	"never":     true,
	"void":      true,
	"null":      true,
	"undefined": true,
	"string":    true,
	"number":    true,
	"boolean":   true,
	"bigint":    true,
}

type family struct {
	full   map[string]bool
	simple map[string]bool
}

func typeFamily(names ...string) family {
	f := family{full: make(map[string]bool), simple: make(map[string]bool)}
	for _, name := range names {
		f.full[name] = true
		f.simple[simpleName(name)] = true
	}
	return f
}

// has matches a fully-qualified member or, for names written without a namespace, the
// member's simple name.
func (f family) has(base string) bool {
	if f.full[base] {
		return true
	}
	return !strings.Contains(base, ".") && f.simple[base]
}

// Mapper maps source type signatures to TypeScript types. A Mapper is immutable; the
// With* methods return modified copies.
type Mapper struct {
	namespacePrefix string
	qualifier       string
	types           map[string]model.TypeDescription
	placeholders    map[string]int
	omitted         map[string]bool
}

// NewMapper creates a mapper scoped to namespacePrefix. The qualifier is only used to
// recognise signatures that have already been rendered.
func NewMapper(namespacePrefix, qualifier string, types map[string]model.TypeDescription) *Mapper {
	return &Mapper{
		namespacePrefix: namespacePrefix,
		qualifier:       qualifier,
		types:           types,
	}
}

// WithPlaceholders binds the generic arguments of a declaring type, so that the i-th
// argument (or the literal `T{i}`) maps to placeholder T{i}.
func (m *Mapper) WithPlaceholders(genericArgs []string) *Mapper {
	bound := *m
	bound.placeholders = make(map[string]int, len(genericArgs)*2)
	for i, arg := range genericArgs {
		bound.placeholders[ParseType(arg).String()] = i
	}
	for i := range genericArgs {
		if _, taken := bound.placeholders[PlaceholderName(i)]; !taken {
			bound.placeholders[PlaceholderName(i)] = i
		}
	}
	return &bound
}

// WithOmitted marks in-scope display names that have no declaration module. References
// to them map to any.
func (m *Mapper) WithOmitted(names []string) *Mapper {
	bound := *m
	bound.omitted = make(map[string]bool, len(names))
	for _, name := range names {
		bound.omitted[name] = true
	}
	return &bound
}

// NamespacePrefix returns the domain namespace scope
func (m *Mapper) NamespacePrefix() string {
	return m.namespacePrefix
}

// InScope reports whether a described type belongs to the domain namespace
func (m *Mapper) InScope(desc model.TypeDescription) bool {
	return strings.HasPrefix(desc.Namespace, m.namespacePrefix)
}

// Declares reports whether a described type has a declaration module to reference
func (m *Mapper) Declares(desc model.TypeDescription) bool {
	return m.InScope(desc) && !m.omitted[desc.DisplayName()]
}

// MapString parses and maps a type signature
func (m *Mapper) MapString(sig string) TSType {
	s := strings.TrimSpace(sig)
	if s == "" {
		return Any()
	}
	if m.looksLikeTypeScript(s) {
		return Verbatim(s)
	}
	return m.Map(ParseType(s))
}

// Map maps a parsed expression. Rules apply in order; the first match wins.
func (m *Mapper) Map(e TypeExpression) TSType {
	if i, ok := m.placeholders[e.String()]; ok && e.Base != "" {
		return Placeholder(i)
	}

	base := e.Base
	switch {
	case base == "":
		return Any()
	case len(e.Args) == 0 && m.looksLikeTypeScript(base):
		return Verbatim(base)
	case nullableTypes.has(base) && len(e.Args) == 1:
		return Union(Scalar("null"), m.Map(e.Args[0]))
	case base == ArrayBase || sequenceTypes.has(base):
		if len(e.Args) == 1 {
			return ArrayOf(m.Map(e.Args[0]))
		}
		return ArrayOf(Any())
	case asyncTypes.has(base):
		if len(e.Args) == 0 {
			return Scalar("void")
		}
		return m.Map(e.Args[0])
	case actionResultTypes.has(base):
		if len(e.Args) == 1 {
			return m.Map(e.Args[0])
		}
		return Any()
	case dictionaryTypes.has(base) && len(e.Args) == 2:
		return Record(recordKey(m.Map(e.Args[0])), m.Map(e.Args[1]))
	}

	if len(e.Args) == 0 {
		if ts, ok := scalarFor(base); ok {
			if ts == "any" {
				return Any()
			}
			return Scalar(ts)
		}
	}

	if ref, ok := m.domainRef(e); ok {
		return ref
	}
	return Any()
}

func (m *Mapper) domainRef(e TypeExpression) (TSType, bool) {
	name := ""
	if desc, ok := m.lookup(e); ok {
		if !m.Declares(desc) {
			return TSType{}, false
		}
		name = desc.DisplayName()
	} else if m.namespacePrefix != "" && strings.HasPrefix(e.Base, m.namespacePrefix) {
		name = e.SimpleName()
	}
	if name == "" || m.omitted[name] {
		return TSType{}, false
	}

	args := make([]TSType, len(e.Args))
	for i, arg := range e.Args {
		args[i] = m.Map(arg)
	}
	return Ref(name, args...), true
}

// lookup finds the description of a closed generic by its full signature, then of the
// generic definition by its base name.
func (m *Mapper) lookup(e TypeExpression) (model.TypeDescription, bool) {
	if desc, ok := m.types[e.String()]; ok {
		return desc, true
	}
	if len(e.Args) > 0 {
		if desc, ok := m.types[e.Base]; ok {
			return desc, true
		}
	}
	return model.TypeDescription{}, false
}

func (m *Mapper) looksLikeTypeScript(s string) bool {
	if m.qualifier != "" && strings.HasPrefix(s, m.qualifier) {
		return true
	}
	if strings.Contains(s, "|") || strings.HasPrefix(s, "Record<") {
		return true
	}
	return tsKeywords[s]
}

func scalarFor(base string) (string, bool) {
	if ts, ok := scalarTypes[base]; ok {
		return ts, true
	}
	for _, p := range scalarPrefixes {
		if strings.HasPrefix(base, p.prefix) {
			return p.ts, true
		}
	}
	return "", false
}

// recordKey narrows a dictionary key to a valid Record key type
func recordKey(key TSType) TSType {
	if key.Kind == TSScalar && (key.Name == "string" || key.Name == "number") {
		return key
	}
	return Scalar("string")
}
