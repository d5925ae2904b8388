package codegen

import (
	"github.com/okra-platform/apigen/internal/codegen/comment"
)

// CycleBehavior selects what happens to types caught in an inheritance cycle
type CycleBehavior string

const (
	// CycleOmit leaves the types out and reports a diagnostic
	CycleOmit CycleBehavior = "omit"
	// CycleEmit emits the types anyway, in key order
	CycleEmit CycleBehavior = "emit"
	// CycleFail aborts generation
	CycleFail CycleBehavior = "fail"
)

// PropertyNaming selects how property names are written
type PropertyNaming string

const (
	PropertyNamingPreserve PropertyNaming = "preserve"
	PropertyNamingCamel    PropertyNaming = "camel"
)

// CommentOptions controls documentation output
type CommentOptions struct {
	Enabled bool
	comment.Config
}

// Options contains the options for code generation
type Options struct {
	// UseInterface selects interfaces and enums over type aliases and unions
	UseInterface bool

	// NamespacePrefix scopes generation to types whose namespace starts with it
	NamespacePrefix string

	// UnwrapGenericTypes lists wrapper types replaced by their single generic argument
	// in return types
	UnwrapGenericTypes []string

	// TypePrefix qualifies type references in service files (usually "types.")
	TypePrefix string

	// TypesImport is the module path services import the type index from
	TypesImport string

	// ImportLines are extra import statements written into every service
	ImportLines []string

	// APIPrefix is prepended to every endpoint path
	APIPrefix string

	PropertyNaming PropertyNaming
	OnCycle        CycleBehavior
	Comments       CommentOptions

	// Template names a registered service template. TemplateText, when set, is used
	// instead.
	Template     string
	TemplateText string
	// TemplatePartials are extra named templates the service template can invoke
	TemplatePartials map[string]string
}

// DefaultOptions returns the defaults for every option
func DefaultOptions() Options {
	return Options{
		UseInterface:   true,
		TypePrefix:     "types.",
		TypesImport:    "../types",
		PropertyNaming: PropertyNamingPreserve,
		OnCycle:        CycleOmit,
		Comments: CommentOptions{
			Enabled: true,
			Config:  comment.DefaultConfig(),
		},
		Template: DefaultTemplate,
	}
}

// docLines sanitizes a summary and optional remarks into JSDoc lines
func (o CommentOptions) docLines(summary, remarks string) []string {
	if !o.Enabled {
		return nil
	}

	lines := o.sanitize(summary)
	if rem := o.sanitize(remarks); len(rem) > 0 {
		rem[0] = "@remarks " + rem[0]
		lines = append(lines, rem...)
	}
	return lines
}

func (o CommentOptions) singleLine(text string) string {
	return comment.SanitizeSingleLine(text, o.Config)
}

func (o CommentOptions) sanitize(text string) []string {
	if o.PreserveLineBreaks {
		return comment.SanitizeMultiLine(text, o.Config)
	}
	if line := comment.SanitizeSingleLine(text, o.Config); line != "" {
		return []string{line}
	}
	return nil
}
