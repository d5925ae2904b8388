package codegen

import (
	"embed"
)

//go:embed templates/*.tmpl
var builtinTemplates embed.FS

// DefaultTemplate is the service template used when none is configured
const DefaultTemplate = "axios"

func mustBuiltin(name string) string {
	data, err := builtinTemplates.ReadFile("templates/" + name + ".tmpl")
	if err != nil {
		panic(err)
	}
	return string(data)
}
