package codegen

import (
	"strings"

	"github.com/okra-platform/apigen/internal/model"
)

// ReturnTypeResolver computes the client-facing return type of an endpoint
type ReturnTypeResolver struct {
	mapper *Mapper
	types  map[string]model.TypeDescription
	unwrap map[string]bool
}

// NewReturnTypeResolver creates a resolver. unwrap holds wrapper type names, simple or
// fully-qualified, whose single generic argument replaces the wrapper.
func NewReturnTypeResolver(mapper *Mapper, types map[string]model.TypeDescription, unwrap []string) *ReturnTypeResolver {
	set := make(map[string]bool, len(unwrap))
	for _, name := range unwrap {
		if name = strings.TrimSpace(name); name != "" {
			set[name] = true
		}
	}
	return &ReturnTypeResolver{mapper: mapper, types: types, unwrap: set}
}

// Resolve maps a return type signature. Render the result with the service qualifier.
func (r *ReturnTypeResolver) Resolve(ret string) TSType {
	s := strings.TrimSpace(ret)
	if s == "" {
		return Any()
	}

	if desc, ok := r.types[s]; ok && r.mapper.Declares(desc) {
		name := desc.DisplayName()
		if len(desc.GenericArguments) == 1 && (r.unwrap[name] || r.unwrap[ParseType(s).Base]) {
			return r.mapper.MapString(desc.GenericArguments[0])
		}
		args := make([]TSType, len(desc.GenericArguments))
		for i, arg := range desc.GenericArguments {
			args[i] = r.mapper.MapString(arg)
		}
		return Ref(name, args...)
	}

	e := peelAsync(ParseType(s))
	if len(e.Args) == 1 && r.shouldUnwrap(e) {
		return r.mapper.Map(e.Args[0])
	}
	return r.mapper.Map(e)
}

func (r *ReturnTypeResolver) shouldUnwrap(e TypeExpression) bool {
	return r.unwrap[e.Base] || r.unwrap[e.SimpleName()]
}

// peelAsync strips Task<T>, ValueTask<T> and ActionResult<T> layers
func peelAsync(e TypeExpression) TypeExpression {
	for len(e.Args) == 1 && (asyncTypes.has(e.Base) || actionResultTypes.has(e.Base)) {
		e = e.Args[0]
	}
	return e
}
