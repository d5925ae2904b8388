package codegen

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// ErrTemplateNotFound is returned when a service template cannot be resolved
var ErrTemplateNotFound = errors.New("template not found")

// TemplateRegistry manages the named service templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new, empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]string),
	}
}

// Register adds or replaces a named template
func (r *TemplateRegistry) Register(name, text string) {
	r.templates[name] = text
}

// Get returns the template text registered under name
func (r *TemplateRegistry) Get(name string) (string, error) {
	text, exists := r.templates[name]
	if !exists {
		return "", errors.WithHintf(
			errors.Wrapf(ErrTemplateNotFound, "template %q", name),
			"available templates: %v; or set templatePath to a template file", r.Names(),
		)
	}
	return text, nil
}

// Names returns the registered template names, sorted
func (r *TemplateRegistry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
