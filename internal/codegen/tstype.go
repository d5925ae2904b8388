package codegen

import (
	"strconv"
	"strings"
)

// TSKind classifies a node of the TypeScript type tree
type TSKind int

const (
	// TSAny is the untyped fallback
	TSAny TSKind = iota
	// TSScalar is a built-in type: string, number, boolean, void or null
	TSScalar
	// TSRef references a generated declaration and is qualified on render
	TSRef
	// TSArray is `T[]`; its single child is the element type
	TSArray
	// TSUnion is `A | B`
	TSUnion
	// TSRecord is `Record<K, V>`
	TSRecord
	// TSPlaceholder is a generic parameter `T{i}`
	TSPlaceholder
	// TSVerbatim is text that was already TypeScript and passes through untouched
	TSVerbatim
)

// TSType is a TypeScript type expression
type TSType struct {
	Kind TSKind
	Name string
	Args []TSType
}

// Any returns the untyped fallback
func Any() TSType { return TSType{Kind: TSAny} }

// Scalar returns a built-in TypeScript type
func Scalar(name string) TSType { return TSType{Kind: TSScalar, Name: name} }

// Ref returns a reference to a generated declaration
func Ref(name string, args ...TSType) TSType {
	return TSType{Kind: TSRef, Name: name, Args: args}
}

// ArrayOf returns `elem[]`
func ArrayOf(elem TSType) TSType {
	return TSType{Kind: TSArray, Args: []TSType{elem}}
}

// Union returns `a | b | ...`
func Union(members ...TSType) TSType {
	return TSType{Kind: TSUnion, Args: members}
}

// Record returns `Record<key, value>`
func Record(key, value TSType) TSType {
	return TSType{Kind: TSRecord, Args: []TSType{key, value}}
}

// Placeholder returns the generic parameter `T{index}`
func Placeholder(index int) TSType {
	return TSType{Kind: TSPlaceholder, Name: PlaceholderName(index)}
}

// Verbatim wraps text that is already a TypeScript type
func Verbatim(text string) TSType {
	return TSType{Kind: TSVerbatim, Name: text}
}

// PlaceholderName returns "T{index}"
func PlaceholderName(index int) string {
	return "T" + strconv.Itoa(index)
}

// Children returns the nested type nodes
func (t TSType) Children() []TSType {
	return t.Args
}

// String renders the type without a qualifier
func (t TSType) String() string {
	return t.Render("")
}

// Render renders the type, prefixing every domain reference with qualifier
func (t TSType) Render(qualifier string) string {
	switch t.Kind {
	case TSScalar, TSPlaceholder, TSVerbatim:
		return t.Name
	case TSRef:
		if len(t.Args) == 0 {
			return qualifier + t.Name
		}
		return qualifier + t.Name + "<" + renderList(t.Args, qualifier, ", ") + ">"
	case TSArray:
		if len(t.Args) != 1 {
			return "any[]"
		}
		elem := t.Args[0].Render(qualifier)
		if t.Args[0].Kind == TSUnion || (t.Args[0].Kind == TSVerbatim && strings.Contains(elem, "|")) {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case TSUnion:
		return renderList(t.Args, qualifier, " | ")
	case TSRecord:
		if len(t.Args) != 2 {
			return "Record<string, any>"
		}
		return "Record<" + renderList(t.Args, qualifier, ", ") + ">"
	default:
		return "any"
	}
}

// References returns the distinct domain reference names in t, in first-seen order
func (t TSType) References() []string {
	var names []string
	seen := make(map[string]bool)
	Walk(t, func(n TSType) bool {
		if n.Kind == TSRef && !seen[n.Name] {
			seen[n.Name] = true
			names = append(names, n.Name)
		}
		return true
	})
	return names
}

func renderList(types []TSType, qualifier, sep string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.Render(qualifier)
	}
	return strings.Join(parts, sep)
}
