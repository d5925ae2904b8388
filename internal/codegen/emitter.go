package codegen

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/okra-platform/apigen/internal/codegen/typescript"
	"github.com/okra-platform/apigen/internal/model"
)

// ErrDependencyCycle is returned by Emit under CycleFail
var ErrDependencyCycle = errors.New("type inheritance cycle")

// EmitResult is the outcome of one emission pass
type EmitResult struct {
	// Artifacts holds one KindType artifact per emitted type, in emission order, followed
	// by the KindTypeIndex artifact when anything was emitted
	Artifacts []Artifact
	// Emitted lists the emitted display names in emission order
	Emitted []string
	// Omitted lists the in-scope display names that got no module, sorted
	Omitted     []string
	Diagnostics []Diagnostic
}

// TypeEmitter emits one declaration module per in-scope type, bases before derived types
type TypeEmitter struct {
	opts   Options
	ts     *typescript.Generator
	logger zerolog.Logger
}

// NewTypeEmitter creates an emitter
func NewTypeEmitter(opts Options, logger zerolog.Logger) *TypeEmitter {
	return &TypeEmitter{
		opts:   opts,
		ts:     typescript.NewGenerator().WithStructural(!opts.UseInterface),
		logger: logger,
	}
}

// emission is the state of one Emit call
type emission struct {
	types    map[string]model.TypeDescription
	mapper   *Mapper
	invalid  map[string]bool   // keys whose display name cannot be declared
	declared map[string]bool   // display names that get a module
	owner    map[string]string // display name -> key it was emitted from
	result   EmitResult
	diags    diagnostics
}

// Emit emits every in-scope type of types. Keys are scanned in sorted order; a type is
// emitted once its in-scope base type has been emitted, and scanning repeats until
// nothing is pending or a scan makes no progress. The order is settled before anything
// is rendered, so references and imports only name types that get a module.
func (e *TypeEmitter) Emit(types map[string]model.TypeDescription) (EmitResult, error) {
	st := &emission{
		types:    types,
		mapper:   NewMapper(e.opts.NamespacePrefix, e.opts.TypePrefix, types),
		invalid:  make(map[string]bool),
		declared: make(map[string]bool),
		owner:    make(map[string]string),
	}

	var candidates []string
	for _, key := range model.SortedKeys(types) {
		desc := types[key]
		if !st.mapper.InScope(desc) || desc.Name == "" {
			continue
		}
		if name := desc.DisplayName(); !typescript.IsIdentifier(name) {
			st.invalid[key] = true
			st.diags.warn(CategoryInvalidTypeName, []string{key},
				"type "+key+" is named "+strconv.Quote(name)+", which is not a valid identifier; it was not generated",
				"")
			continue
		}
		candidates = append(candidates, key)
	}

	order, cyclic := st.order(candidates)
	if len(cyclic) > 0 {
		emitted, err := e.handleCycle(st, cyclic)
		if err != nil {
			return EmitResult{}, err
		}
		order = append(order, emitted...)
	}

	for _, key := range order {
		st.declared[types[key].DisplayName()] = true
	}
	st.result.Omitted = st.omitted()
	st.mapper = st.mapper.WithOmitted(st.result.Omitted)

	for _, key := range order {
		e.emitKey(st, key)
	}

	if len(st.result.Emitted) > 0 {
		st.result.Artifacts = append(st.result.Artifacts, Artifact{
			Kind:    KindTypeIndex,
			Name:    "index",
			Content: e.ts.GenerateIndex(st.result.Emitted),
		})
	}
	st.result.Diagnostics = st.diags.list()
	return st.result, nil
}

// order runs the pending scan over keys alone. It returns the keys in emission order and
// the keys left blocked by a cycle.
func (st *emission) order(pending []string) ([]string, []string) {
	done := make(map[string]bool)
	var order []string
	for len(pending) > 0 {
		var blocked []string
		for _, key := range pending {
			desc := st.types[key]
			if !st.baseReady(desc, done) {
				blocked = append(blocked, key)
				continue
			}
			done[desc.DisplayName()] = true
			order = append(order, key)
		}
		if len(blocked) == len(pending) {
			return order, blocked
		}
		pending = blocked
	}
	return order, nil
}

// omitted lists the in-scope display names that no emitted type declares
func (st *emission) omitted() []string {
	seen := make(map[string]bool)
	var names []string
	for _, desc := range st.types {
		if !st.mapper.InScope(desc) || desc.Name == "" {
			continue
		}
		name := desc.DisplayName()
		if !st.declared[name] && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// handleCycle applies the cycle policy and returns the blocked keys that are emitted anyway
func (e *TypeEmitter) handleCycle(st *emission, pending []string) ([]string, error) {
	names := make([]string, 0, len(pending))
	for _, key := range pending {
		names = append(names, st.types[key].DisplayName())
	}
	sort.Strings(names)

	var emitted []string
	switch e.opts.OnCycle {
	case CycleFail:
		return nil, errors.WithHint(
			errors.Wrapf(ErrDependencyCycle, "types %s", strings.Join(names, ", ")),
			"set onCycle to \"omit\" or \"emit\" to generate the remaining types",
		)
	case CycleEmit:
		emitted = pending
		st.diags.warn(CategoryDependencyCycle, names,
			"types "+strings.Join(names, ", ")+" are caught in an inheritance cycle and were emitted in key order",
			"")
	default:
		st.diags.warn(CategoryDependencyCycle, names,
			"types "+strings.Join(names, ", ")+" are caught in an inheritance cycle and were not generated",
			"break the cycle in the source model, or set onCycle to \"emit\"")
	}
	e.logger.Warn().Strs("types", names).Msg("dependency cycle")
	return emitted, nil
}

// baseReady reports whether desc's base type no longer blocks it. Bases outside the
// type map or the namespace scope, or with an undeclarable name, are never emitted and
// so never block.
func (st *emission) baseReady(desc model.TypeDescription, done map[string]bool) bool {
	if desc.BaseType == "" {
		return true
	}
	base, ok := st.types[desc.BaseType]
	if !ok || !st.mapper.InScope(base) || base.Name == "" || st.invalid[desc.BaseType] {
		return true
	}
	return done[base.DisplayName()]
}

func (e *TypeEmitter) emitKey(st *emission, key string) {
	desc := st.types[key]
	name := desc.DisplayName()

	if prev, dup := st.owner[name]; dup {
		if !sameDefinition(st.types[prev], desc) {
			st.diags.warn(CategoryDuplicateTypeName, []string{prev, key},
				"types "+prev+" and "+key+" share the name "+name+"; only "+prev+" was generated",
				"")
		}
		return
	}

	decl := e.declaration(st, desc)
	st.owner[name] = key
	st.result.Emitted = append(st.result.Emitted, name)
	st.result.Artifacts = append(st.result.Artifacts, Artifact{
		Kind:    KindType,
		Name:    name,
		Content: e.ts.Generate(decl),
	})
	e.logger.Debug().Str("type", name).Str("key", key).Msg("emitted type")
}

// sameDefinition reports whether two keys are instantiations of one generic type
func sameDefinition(a, b model.TypeDescription) bool {
	return a.Namespace == b.Namespace && a.IsGeneric() && b.IsGeneric() &&
		len(a.GenericArguments) == len(b.GenericArguments)
}

func (e *TypeEmitter) declaration(st *emission, desc model.TypeDescription) typescript.Declaration {
	decl := typescript.Declaration{
		Name: desc.DisplayName(),
		Doc:  e.opts.Comments.docLines(desc.Summary, desc.Remarks),
	}

	if desc.IsEnum() {
		for _, v := range desc.EnumValues {
			decl.Members = append(decl.Members, typescript.EnumMember{
				Name:  v.Name,
				Value: v.Value.String(),
				Doc:   e.opts.Comments.docLines(v.Summary, ""),
			})
		}
		return decl
	}

	mapper := st.mapper.WithPlaceholders(desc.GenericArguments)
	for i := range desc.GenericArguments {
		decl.TypeParams = append(decl.TypeParams, PlaceholderName(i))
	}

	var referenced []TSType
	if base, ok := st.types[desc.BaseType]; ok && mapper.Declares(base) && base.Name != "" && !st.invalid[desc.BaseType] {
		args := make([]TSType, len(base.GenericArguments))
		for i, arg := range base.GenericArguments {
			args[i] = mapper.MapString(arg)
		}
		extends := Ref(base.DisplayName(), args...)
		decl.Extends = extends.String()
		referenced = append(referenced, extends)
	}

	for _, prop := range desc.Properties {
		ts := mapper.MapString(prop.Type)
		referenced = append(referenced, ts)
		decl.Properties = append(decl.Properties, typescript.Property{
			Name:     e.propertyName(prop.Name),
			Type:     ts.String(),
			Optional: prop.IsNullable || !prop.IsRequired,
			Doc:      e.opts.Comments.docLines(prop.Summary, prop.Remarks),
		})
	}

	decl.Imports = imports(referenced, st.declared, desc.DisplayName())
	return decl
}

func (e *TypeEmitter) propertyName(name string) string {
	if e.opts.PropertyNaming == PropertyNamingCamel {
		return lowerFirst(name)
	}
	return name
}

// imports collects the declarable domain names referenced by types, excluding self
func imports(types []TSType, declared map[string]bool, self string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range types {
		for _, name := range t.References() {
			if name != self && declared[name] && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
