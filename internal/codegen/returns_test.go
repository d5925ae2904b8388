package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/okra-platform/apigen/internal/model"
)

func TestReturnTypeResolver_Resolve(t *testing.T) {
	types := map[string]model.TypeDescription{
		"App.Widget": {Name: "Widget", Namespace: "App"},
		"App.Result<App.Widget>": {
			Name:             "Result",
			Namespace:        "App",
			GenericArguments: []string{"App.Widget"},
		},
		"App.Page<App.Widget>": {
			Name:             "Page",
			Namespace:        "App",
			GenericArguments: []string{"App.Widget"},
		},
		"App.Pair<System.String,App.Widget>": {
			Name:             "Pair",
			Namespace:        "App",
			GenericArguments: []string{"System.String", "App.Widget"},
		},
		"Vendor.Envelope<App.Widget>": {
			Name:             "Envelope",
			Namespace:        "Vendor",
			GenericArguments: []string{"App.Widget"},
		},
	}
	mapper := NewMapper("App", "types.", types)
	r := NewReturnTypeResolver(mapper, types, []string{"Result", " "})

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"unwrapped wrapper", "App.Result<App.Widget>", "types.Widget"},
		{"unwrapped inside task", "System.Threading.Tasks.Task<App.Result<App.Widget>>", "types.Widget"},
		{"described generic kept", "App.Page<App.Widget>", "types.Page<types.Widget>"},
		{"two arguments never unwrap", "App.Pair<System.String,App.Widget>", "types.Pair<string, types.Widget>"},
		{"out of scope type goes through the mapper", "Vendor.Envelope<App.Widget>", "any"},
		{"list", "System.Collections.Generic.List<App.Widget>", "types.Widget[]"},
		{"task", "System.Threading.Tasks.Task", "void"},
		{"scalar", "System.Int32", "number"},
		{"empty", "", "any"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.Resolve(tt.input).Render("types."))
		})
	}
}

func TestReturnTypeResolver_UnwrapUndescribed(t *testing.T) {
	// Test: Wrappers missing from the type map are unwrapped by name
	mapper := NewMapper("App", "types.", nil)
	r := NewReturnTypeResolver(mapper, nil, []string{"App.Result"})

	assert.Equal(t, "types.Widget", r.Resolve("App.Result<App.Widget>").Render("types."))
	assert.Equal(t, "types.Other<types.Widget>", r.Resolve("App.Other<App.Widget>").Render("types."))
}
