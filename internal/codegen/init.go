package codegen

// DefaultRegistry is the global registry instance with the built-in service templates
var DefaultRegistry = NewTemplateRegistry()

func init() {
	// axios-style request({ url, method, params | data })
	DefaultRegistry.Register("axios", mustBuiltin("axios"))

	// vben-admin style requestHttp.get<T>({ url, params })
	DefaultRegistry.Register("vben", mustBuiltin("vben"))
}
