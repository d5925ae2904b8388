package codegen

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/okra-platform/apigen/internal/model"
)

// routeParam matches ASP.NET route placeholders: {id}, {id:int}, {id?}, {*path}
var routeParam = regexp.MustCompile(`\{\*{0,2}([A-Za-z_][A-Za-z0-9_]*)[^}]*\}`)

// reservedWords cannot name a function declaration
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true, "function": true,
	"if": true, "import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true, "with": true,
}

var readOnlyVerbs = map[string]bool{
	"get":     true,
	"head":    true,
	"options": true,
}

// serviceBuilder assembles render models. Type and name resolution happens here, so
// templates only substitute.
type serviceBuilder struct {
	opts     Options
	mapper   *Mapper
	resolver *ReturnTypeResolver
	emitted  map[string]bool
}

func newServiceBuilder(opts Options, types map[string]model.TypeDescription, emitted, omitted []string) *serviceBuilder {
	mapper := NewMapper(opts.NamespacePrefix, opts.TypePrefix, types).WithOmitted(omitted)
	set := make(map[string]bool, len(emitted))
	for _, name := range emitted {
		set[name] = true
	}
	return &serviceBuilder{
		opts:     opts,
		mapper:   mapper,
		resolver: NewReturnTypeResolver(mapper, types, opts.UnwrapGenericTypes),
		emitted:  set,
	}
}

func (b *serviceBuilder) build(controller string, apis []model.ApiDescription) ServiceModel {
	svc := ServiceModel{
		Name:       ServiceName(controller),
		Controller: controller,
	}

	names := make(nameSet)
	var referenced []TSType
	for _, api := range apis {
		ep, refs := b.endpoint(api)
		if reservedWords[ep.Name] {
			ep.Name = "_" + ep.Name
		}
		ep.Name = names.claim(ep.Name)
		svc.Endpoints = append(svc.Endpoints, ep)
		referenced = append(referenced, refs...)
	}

	svc.ImportLines = append(b.typesImport(referenced), b.opts.ImportLines...)
	return svc
}

// typesImport imports the type index as a namespace when references are qualified,
// otherwise by name
func (b *serviceBuilder) typesImport(referenced []TSType) []string {
	if alias := strings.TrimSuffix(b.opts.TypePrefix, "."); alias != "" {
		return []string{fmt.Sprintf("import * as %s from '%s';", alias, b.opts.TypesImport)}
	}

	names := imports(referenced, b.emitted, "")
	if len(names) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("import type { %s } from '%s';", strings.Join(names, ", "), b.opts.TypesImport)}
}

func (b *serviceBuilder) endpoint(api model.ApiDescription) (EndpointModel, []TSType) {
	verb := strings.ToLower(strings.TrimSpace(api.HTTPMethod))
	if verb == "" {
		verb = "get"
	}

	path, routeNames := b.path(api)
	ep := EndpointModel{
		Name: ActionName(api.Controller, api.Action, verb),
		Path: path,
		Verb: verb,
	}

	var referenced []TSType
	ordered := orderParameters(api.Parameters)
	list := make([]string, 0, len(ordered))
	var payload []string
	for _, p := range ordered {
		ts := b.mapper.MapString(p.Type)
		referenced = append(referenced, ts)

		pm := ParamModel{
			Name:     p.Name,
			Type:     ts.Render(b.opts.TypePrefix),
			Optional: p.IsOptional,
			Route:    p.Source == model.SourcePath || routeNames[strings.ToLower(p.Name)],
		}
		ep.Params = append(ep.Params, pm)

		optional := ""
		if pm.Optional {
			optional = "?"
		}
		list = append(list, pm.Name+optional+": "+pm.Type)
		if !pm.Route {
			payload = append(payload, pm.Name)
		}
	}
	ep.ParamList = strings.Join(list, ", ")

	if len(payload) > 0 {
		key := "data"
		if readOnlyVerbs[verb] {
			key = "params"
		}
		ep.DataLine = key + ": { " + strings.Join(payload, ", ") + " }"
	}

	ret := Any()
	if api.ReturnType != nil && strings.TrimSpace(api.ReturnType.Type) != "" {
		ret = b.resolver.Resolve(api.ReturnType.Type)
	}
	referenced = append(referenced, ret)
	ep.ReturnType = ret.Render(b.opts.TypePrefix)

	ep.Doc = b.doc(api, ordered)
	return ep, referenced
}

// path prefixes the endpoint path and turns route placeholders into template-literal
// interpolations of the matching parameter. Placeholders without a parameter are left as
// text. It returns the lower-cased names of the interpolated placeholders.
func (b *serviceBuilder) path(api model.ApiDescription) (string, map[string]bool) {
	path := api.Path
	if b.opts.APIPrefix != "" {
		path = strings.TrimSuffix(b.opts.APIPrefix, "/") + "/" + strings.TrimPrefix(path, "/")
	}

	byName := make(map[string]string, len(api.Parameters))
	for _, p := range api.Parameters {
		byName[strings.ToLower(p.Name)] = p.Name
	}

	names := make(map[string]bool)
	path = routeParam.ReplaceAllStringFunc(path, func(placeholder string) string {
		name := strings.ToLower(routeParam.FindStringSubmatch(placeholder)[1])
		actual, ok := byName[name]
		if !ok {
			return placeholder
		}
		names[name] = true
		return "${" + actual + "}"
	})
	return path, names
}

func (b *serviceBuilder) doc(api model.ApiDescription, params []model.ParameterDescription) []string {
	c := b.opts.Comments
	if !c.Enabled {
		return nil
	}

	lines := c.docLines(api.Summary, api.Remarks)
	for _, p := range params {
		if summary := c.singleLine(p.Summary); summary != "" {
			lines = append(lines, "@param "+p.Name+" "+summary)
		}
	}
	if api.ReturnType != nil {
		if summary := c.singleLine(api.ReturnType.Summary); summary != "" {
			lines = append(lines, "@returns "+summary)
		}
	}
	return lines
}

// orderParameters places required parameters before optional ones, keeping the
// relative order within each group
func orderParameters(params []model.ParameterDescription) []model.ParameterDescription {
	ordered := make([]model.ParameterDescription, len(params))
	copy(ordered, params)
	sort.SliceStable(ordered, func(i, j int) bool {
		return !ordered[i].IsOptional && ordered[j].IsOptional
	})
	return ordered
}
