//go:build integration

package generate_test

import (
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okra-platform/apigen/internal/testutil"
)

// Test plan for apigen generate integration:
// 1. Build apigen binary
// 2. Serve a description model over HTTP
// 3. Run apigen generate against a config pointing at it
// 4. Verify type, index and service files
// 5. Run again and verify nothing is rewritten
// 6. Verify --dry-run on a fresh project writes nothing

func buildBinary(t *testing.T) string {
	t.Helper()
	binary := filepath.Join(t.TempDir(), "apigen")
	buildCmd := exec.Command("go", "build", "-o", binary, "../../../main.go")
	buildOutput, err := buildCmd.CombinedOutput()
	require.NoError(t, err, "Failed to build apigen binary: %s", string(buildOutput))
	return binary
}

func run(t *testing.T, binary, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command(binary, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "apigen %s failed: %s", strings.Join(args, " "), string(output))
	return string(output)
}

func TestApigenGenerate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	binary := buildBinary(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testutil.ShopModel))
	}))
	defer server.Close()

	project := testutil.NewProject(t)
	project.WriteFile(t, "apigen.yaml", `
source: `+server.URL+`/api-description-model
output:
  dir: ./src/api
  typesDir: ./src/types
unwrapGenericTypes: [ApiResult]
`)

	output := run(t, binary, project.Dir, "generate")
	assert.Contains(t, output, "Generated 6 files (6 written, 0 unchanged)")

	order := project.ReadFile(t, "src/types/Order.ts")
	assert.Contains(t, order, "import { Entity } from './Entity';")
	assert.Contains(t, order, "import { OrderStatus } from './OrderStatus';")
	assert.Contains(t, order, "export interface Order extends Entity {")
	assert.Contains(t, order, "note?: string;")

	status := project.ReadFile(t, "src/types/OrderStatus.ts")
	assert.Contains(t, status, "export enum OrderStatus {")
	assert.Contains(t, status, "Shipped = 1,")

	index := project.ReadFile(t, "src/types/index.ts")
	for _, name := range []string{"ApiResult", "Entity", "Order", "OrderStatus"} {
		assert.Contains(t, index, "export * from './"+name+"';")
	}

	service := project.ReadFile(t, "src/api/OrderService.ts")
	assert.Contains(t, service, "import * as types from '../types';")
	assert.Contains(t, service, "export function getOrders(")
	assert.Contains(t, service, "Promise<types.Order[]>")
	assert.Contains(t, service, "url: `api/orders/${id}`")
	assert.Contains(t, service, "method: 'delete',")

	// A second run finds every file up to date
	output = run(t, binary, project.Dir, "generate")
	assert.Contains(t, output, "(0 written, 6 unchanged)")
}

func TestApigenGenerate_DryRun(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	binary := buildBinary(t)
	project := testutil.NewProject(t)
	project.WriteFile(t, "model.json", testutil.ShopModel)

	output := run(t, binary, project.Dir, "generate", "--source", "./model.json", "--dry-run")

	assert.Contains(t, output, filepath.Join(project.Dir, "api", "OrderService.ts"))
	assert.Contains(t, output, "dry run, nothing written")
	assert.False(t, project.Exists("api"))
	assert.False(t, project.Exists("types"))
}
