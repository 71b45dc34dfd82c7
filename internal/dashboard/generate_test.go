package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderMissingEnv(t *testing.T) {
	t.Setenv(DatasourceEnv, "")
	if _, err := Render(t.TempDir(), DefaultTables()); err == nil {
		t.Fatalf("expected error for missing env vars")
	}
}

func TestRenderSuccess(t *testing.T) {
	t.Setenv(DatasourceEnv, "uid1")

	dir := t.TempDir()
	written, err := Render(dir, DefaultTables())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("expected one dashboard, got %v", written)
	}

	b, err := os.ReadFile(filepath.Join(dir, "policy-diffusion.json"))
	if err != nil {
		t.Fatalf("read dashboard: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, `"uid": "uid1"`) {
		t.Fatalf("datasource uid not rendered")
	}
	if !strings.Contains(out, "FROM policy_adoption") || !strings.Contains(out, "FROM policy_events") {
		t.Fatalf("table names not rendered")
	}
}

func TestRenderCustomTables(t *testing.T) {
	t.Setenv(DatasourceEnv, "uid1")
	dir := t.TempDir()
	if _, err := Render(dir, Tables{Adoption: "adoption_v2", Events: "events_v2"}); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	b, _ := os.ReadFile(filepath.Join(dir, "policy-diffusion.json"))
	if !strings.Contains(string(b), "adoption_v2") {
		t.Fatalf("custom table not rendered")
	}
}
