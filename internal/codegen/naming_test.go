package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionName(t *testing.T) {
	tests := []struct {
		name       string
		controller string
		action     string
		verb       string
		expected   string
	}{
		{"controller prefix stripped", "Widget", "WidgetGet", "GET", "get"},
		{"controller suffix and prefix", "WidgetController", "GetWidgets", "GET", "getWidgets"},
		{"async suffix", "Widget", "ListAsync", "GET", "list"},
		{"action suffix after async", "Widget", "DeleteActionAsync", "DELETE", "delete"},
		{"prefix stripped after suffixes", "Widget", "WidgetSearchAsync", "POST", "search"},
		{"empty after stripping", "Widget", "WidgetAsync", "POST", "create"},
		{"no action get", "Widget", "", "GET", "get"},
		{"no action post", "Widget", "", "post", "create"},
		{"no action put", "Widget", "", "PUT", "update"},
		{"no action delete", "Widget", "", "DELETE", "delete"},
		{"no action other", "Widget", "", "PATCH", "do"},
		{"no controller", "", "Ping", "GET", "ping"},
		{"already lower", "Widget", "count", "GET", "count"},
		{"non-ascii first rune", "Widget", "Ωmega", "GET", "ωmega"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ActionName(tt.controller, tt.action, tt.verb))
		})
	}
}

func TestServiceName(t *testing.T) {
	assert.Equal(t, "WidgetService", ServiceName("Widget"))
	assert.Equal(t, "WidgetService", ServiceName("WidgetController"))
	assert.Equal(t, "ControllerService", ServiceName("Controller"))
}

func TestNameSet_Claim(t *testing.T) {
	// Test: Colliding names get numeric suffixes in claim order
	n := make(nameSet)

	assert.Equal(t, "get", n.claim("get"))
	assert.Equal(t, "get2", n.claim("get"))
	assert.Equal(t, "list", n.claim("list"))
	assert.Equal(t, "get3", n.claim("get"))
}

func TestNameSet_ClaimAvoidsExistingSuffix(t *testing.T) {
	// Test: A generated suffix never collides with a real name
	n := make(nameSet)

	assert.Equal(t, "get2", n.claim("get2"))
	assert.Equal(t, "get", n.claim("get"))
	assert.Equal(t, "get3", n.claim("get"))
}
