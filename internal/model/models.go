// Package model holds the normalized API description consumed by the generator.
package model

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Model is the root of an API description document
type Model struct {
	APIs  []ApiDescription           `json:"apis"`
	Types map[string]TypeDescription `json:"types"`
}

// TypeDescription describes one reachable data type, keyed in Model.Types by its
// fully-qualified source name
type TypeDescription struct {
	Name             string                `json:"name"`
	Namespace        string                `json:"namespace"`
	BaseType         string                `json:"baseType,omitempty"`
	GenericArguments []string              `json:"genericArguments,omitempty"`
	Properties       []PropertyDescription `json:"properties,omitempty"`
	EnumValues       []EnumValue           `json:"enumValues,omitempty"`
	Summary          string                `json:"summary,omitempty"`
	Remarks          string                `json:"remarks,omitempty"`
}

// IsEnum reports whether the type is an enum rather than a record
func (t TypeDescription) IsEnum() bool {
	return len(t.EnumValues) > 0
}

// DisplayName returns Name without a CLR arity suffix ("ApiResult`1" → "ApiResult")
func (t TypeDescription) DisplayName() string {
	if tick := strings.IndexByte(t.Name, '`'); tick > 0 {
		return t.Name[:tick]
	}
	return t.Name
}

// IsGeneric reports whether the type carries generic arguments
func (t TypeDescription) IsGeneric() bool {
	return len(t.GenericArguments) > 0
}

// PropertyDescription describes a property of a record type
type PropertyDescription struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	IsNullable bool   `json:"isNullable"`
	IsRequired bool   `json:"isRequired"`
	Summary    string `json:"summary,omitempty"`
	Remarks    string `json:"remarks,omitempty"`
}

// EnumValue is a single enum member. Value keeps the producer's textual form to avoid
// numeric width differences.
type EnumValue struct {
	Name    string  `json:"name"`
	Value   Literal `json:"value"`
	Summary string  `json:"summary,omitempty"`
}

// ApiDescription describes one HTTP endpoint
type ApiDescription struct {
	Controller string                 `json:"controller"`
	Action     string                 `json:"action"`
	HTTPMethod string                 `json:"httpMethod"`
	Path       string                 `json:"path"`
	Parameters []ParameterDescription `json:"parameters"`
	ReturnType *ReturnType            `json:"returnType,omitempty"`
	Summary    string                 `json:"summary,omitempty"`
	Remarks    string                 `json:"remarks,omitempty"`
}

// ReturnType references the declared return type of an endpoint
type ReturnType struct {
	Type       string `json:"type"`
	TypeSimple string `json:"typeSimple,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

// ParameterDescription describes one endpoint parameter. Source is the binding source
// reported by the producer ("Query", "Body", "Path", ...), kept opaque.
type ParameterDescription struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Source       string `json:"source,omitempty"`
	IsOptional   bool   `json:"isOptional"`
	DefaultValue any    `json:"defaultValue,omitempty"`
	Summary      string `json:"summary,omitempty"`
}

// Parameter source identifiers as emitted by ASP.NET Core's BindingSource.Id
const (
	SourcePath   = "Path"
	SourceQuery  = "Query"
	SourceBody   = "Body"
	SourceForm   = "Form"
	SourceHeader = "Header"
)

// ErrMixedKind is reported by Validate when a type is both an enum and a record
var ErrMixedKind = errors.New("type declares both enum values and properties")

// Problem is a structural issue with one described type
type Problem struct {
	Key string
	Err error
}

// Validate checks structural invariants of the described types. Problems are returned
// in key order; none of them prevents generation.
func (m *Model) Validate() []Problem {
	var problems []Problem
	for _, key := range m.TypeKeys() {
		t := m.Types[key]
		if t.IsEnum() && len(t.Properties) > 0 {
			problems = append(problems, Problem{Key: key, Err: errors.Wrapf(ErrMixedKind, "type %q", key)})
		}
	}
	return problems
}

// TypeKeys returns the keys of the type map in sorted order
func (m *Model) TypeKeys() []string {
	return SortedKeys(m.Types)
}

// SortedKeys returns the keys of a type map in sorted order
func SortedKeys(types map[string]TypeDescription) []string {
	keys := make([]string, 0, len(types))
	for k := range types {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
