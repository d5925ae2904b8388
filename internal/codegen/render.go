package codegen

import (
	"bytes"
	"maps"
	"slices"
	"text/template"

	"github.com/cockroachdb/errors"
)

// ServiceModel is the render model of one service module
type ServiceModel struct {
	// Name is the module name, e.g. "WidgetService"
	Name        string
	Controller  string
	ImportLines []string
	Endpoints   []EndpointModel
}

// EndpointModel is the render model of one client function
type EndpointModel struct {
	Name string
	// Doc holds sanitized JSDoc lines, empty when there is no documentation
	Doc []string
	// Params are ordered required first
	Params     []ParamModel
	ParamList  string
	ReturnType string
	// Path is a template-literal body with route values interpolated, e.g. "/api/widgets/${id}"
	Path string
	// Verb is the lower-case HTTP method
	Verb string
	// DataLine is "params: { ... }" or "data: { ... }", empty when nothing is sent
	DataLine string
}

// ParamModel is one resolved endpoint parameter
type ParamModel struct {
	Name     string
	Type     string
	Optional bool
	// Route is set for parameters interpolated into the path
	Route bool
}

// Renderer renders service modules from a text/template
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses a service template. Partials are parsed into the same set so
// the template can invoke them by name with {{template "name" .}}.
func NewRenderer(name, text string, partials map[string]string) (*Renderer, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse template %q", name)
	}
	for _, partial := range slices.Sorted(maps.Keys(partials)) {
		if partial == name {
			continue
		}
		if _, err := tmpl.New(partial).Parse(partials[partial]); err != nil {
			return nil, errors.Wrapf(err, "failed to parse partial %q", partial)
		}
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render substitutes svc into the template
func (r *Renderer) Render(svc ServiceModel) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, svc); err != nil {
		return nil, errors.Wrapf(err, "failed to render service %s", svc.Name)
	}
	return buf.Bytes(), nil
}
