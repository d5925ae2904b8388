package codegen

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/okra-platform/apigen/internal/model"
)

// Generator turns a description model into TypeScript artifacts. It holds no per-run
// state and may be shared between goroutines.
type Generator struct {
	opts     Options
	registry *TemplateRegistry
	logger   zerolog.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithLogger sets the logger used for progress and diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithRegistry sets the registry service templates are looked up in
func WithRegistry(registry *TemplateRegistry) Option {
	return func(g *Generator) {
		g.registry = registry
	}
}

// New creates a generator
func New(opts Options, options ...Option) *Generator {
	g := &Generator{
		opts:     opts,
		registry: DefaultRegistry,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Result is the output of one generation run
type Result struct {
	// Artifacts holds the type modules, the type index and the service modules, in that
	// order
	Artifacts   []Artifact
	Diagnostics []Diagnostic
}

// Generate emits every in-scope type and one service per controller group. Problems in
// the type data yield diagnostics; only template and cycle (under CycleFail) problems
// are errors.
func (g *Generator) Generate(m *model.Model) (*Result, error) {
	if m == nil {
		return nil, errors.New("nil model")
	}

	renderer, err := g.renderer()
	if err != nil {
		return nil, err
	}

	emitted, err := NewTypeEmitter(g.opts, g.logger).Emit(m.Types)
	if err != nil {
		return nil, errors.Wrap(err, "failed to emit types")
	}

	var diags diagnostics
	for _, p := range m.Validate() {
		diags.warn(CategoryMixedKind, []string{p.Key},
			"type "+p.Key+" declares both enum values and properties; generated as an enum",
			"")
	}

	result := &Result{
		Artifacts:   emitted.Artifacts,
		Diagnostics: append(diags.list(), emitted.Diagnostics...),
	}

	builder := newServiceBuilder(g.opts, m.Types, emitted.Emitted, emitted.Omitted)
	for _, group := range groupByController(m.APIs) {
		svc := builder.build(group.controller, group.apis)
		content, err := renderer.Render(svc)
		if err != nil {
			return nil, err
		}
		result.Artifacts = append(result.Artifacts, Artifact{
			Kind:    KindService,
			Name:    svc.Name,
			Content: content,
		})
		g.logger.Debug().Str("service", svc.Name).Int("endpoints", len(svc.Endpoints)).Msg("rendered service")
	}

	for _, d := range result.Diagnostics {
		g.logger.Warn().Str("category", string(d.Category)).Strs("subjects", d.Subjects).Msg(d.Message)
	}
	return result, nil
}

func (g *Generator) renderer() (*Renderer, error) {
	if g.opts.TemplateText != "" {
		return NewRenderer("custom", g.opts.TemplateText, g.opts.TemplatePartials)
	}

	name := g.opts.Template
	if name == "" {
		name = DefaultTemplate
	}
	text, err := g.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return NewRenderer(name, text, g.opts.TemplatePartials)
}

type controllerGroup struct {
	controller string
	apis       []model.ApiDescription
}

// groupByController groups endpoints by controller in first-appearance order
func groupByController(apis []model.ApiDescription) []controllerGroup {
	index := make(map[string]int)
	var groups []controllerGroup
	for _, api := range apis {
		i, ok := index[api.Controller]
		if !ok {
			i = len(groups)
			index[api.Controller] = i
			groups = append(groups, controllerGroup{controller: api.Controller})
		}
		groups[i].apis = append(groups[i].apis, api)
	}
	return groups
}
