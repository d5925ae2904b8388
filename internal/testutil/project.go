package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Project is a throwaway project directory for end-to-end tests
type Project struct {
	Dir string
}

// NewProject creates an empty project in a test temp directory
func NewProject(t *testing.T) *Project {
	t.Helper()
	return &Project{Dir: t.TempDir()}
}

// Path returns the absolute path of a project-relative file
func (p *Project) Path(rel string) string {
	return filepath.Join(p.Dir, filepath.FromSlash(rel))
}

// WriteFile writes a project-relative file, creating its directory
func (p *Project) WriteFile(t *testing.T, rel, content string) string {
	t.Helper()
	path := p.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
	return path
}

// ReadFile returns the content of a project-relative file
func (p *Project) ReadFile(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(p.Path(rel))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", rel, err)
	}
	return string(data)
}

// Exists reports whether a project-relative file exists
func (p *Project) Exists(rel string) bool {
	_, err := os.Stat(p.Path(rel))
	return err == nil
}

// ShopModel is a description model in the PascalCase form hand-written files use.
// It covers inheritance, generics, an enum, route parameters and a wrapped result.
const ShopModel = `{
  "Apis": [
    {
      "Controller": "OrderController",
      "Action": "GetOrdersAsync",
      "HttpMethod": "GET",
      "Path": "api/orders",
      "Summary": "Lists orders.",
      "Parameters": [
        {"Name": "status", "Type": "Shop.OrderStatus", "Source": "Query", "IsOptional": true},
        {"Name": "page", "Type": "System.Int32", "Source": "Query"}
      ],
      "ReturnType": {"Type": "System.Threading.Tasks.Task<Shop.ApiResult<System.Collections.Generic.List<Shop.Order>>>"}
    },
    {
      "Controller": "OrderController",
      "Action": "Delete",
      "HttpMethod": "DELETE",
      "Path": "api/orders/{id:int}",
      "Parameters": [
        {"Name": "id", "Type": "System.Int32", "Source": "Path"}
      ],
      "ReturnType": {"Type": "System.Threading.Tasks.Task"}
    }
  ],
  "Types": {
    "Shop.Entity": {
      "Name": "Entity",
      "Namespace": "Shop",
      "Properties": [
        {"Name": "id", "Type": "System.Int32", "IsRequired": true}
      ]
    },
    "Shop.Order": {
      "Name": "Order",
      "Namespace": "Shop",
      "BaseType": "Shop.Entity",
      "Summary": "A customer order.",
      "Properties": [
        {"Name": "status", "Type": "Shop.OrderStatus", "IsRequired": true},
        {"Name": "note", "Type": "System.String", "IsNullable": true}
      ]
    },
    "Shop.OrderStatus": {
      "Name": "OrderStatus",
      "Namespace": "Shop",
      "EnumValues": [
        {"Name": "Open", "Value": 0},
        {"Name": "Shipped", "Value": 1}
      ]
    },
    "Shop.ApiResult<T>": {
      "Name": "ApiResult",
      "Namespace": "Shop",
      "GenericArguments": ["T"],
      "Properties": [
        {"Name": "data", "Type": "T", "IsRequired": true}
      ]
    }
  }
}`
