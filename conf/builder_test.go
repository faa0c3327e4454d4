package conf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuilderLayerPrecedence(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`{"server": {"port": 1000, "host": "from-file"}}`)
	if err := os.WriteFile(filepath.Join(dir, "app.json"), content, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CFG_SERVER_PORT", "2000")

	c, err := NewBuilder().
		SetDir(dir).
		Set("server.port", 3000).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Programmatic beats environment beats file.
	if got, _ := Get[int](c, "server.port"); got != 3000 {
		t.Fatalf("port = %d, want programmatic value", got)
	}
	if got, _ := Get[string](c, "server.host"); got != "from-file" {
		t.Fatalf("host = %q, want file value", got)
	}
}

func TestBuilderEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.yaml"), []byte("server:\n  host: file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CFG_SERVER_HOST", "env")

	c, err := NewBuilder().SetDir(dir).Build()
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := Get[string](c, "server.host"); got != "env" {
		t.Fatalf("host = %q, want env value", got)
	}
}

func TestBuilderProfileFileWins(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.json"), []byte(`{"mode": "plain", "extra": "base"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app-dev.json"), []byte(`{"mode": "dev"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := NewBuilder().SetDir(dir).SetProfile("dev").Build()
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := Get[string](c, "mode"); got != "dev" {
		t.Fatalf("mode = %q, want profile value", got)
	}
	// Keys only in the plain file remain visible.
	if got, _ := Get[string](c, "extra"); got != "base" {
		t.Fatalf("extra = %q", got)
	}
}

func TestBuilderCustomName(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "svc.toml"), []byte("answer = 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := NewBuilder().SetDir(dir).SetName("svc").Build()
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := Get[int](c, "answer"); got != 42 {
		t.Fatalf("answer = %d", got)
	}
}

func TestBuilderRandomLayer(t *testing.T) {
	c, err := NewBuilder().SetEnvPrefix("").EnableRandom().Build()
	if err != nil {
		t.Fatal(err)
	}
	id, err := Get[string](c, "random.uuid")
	if err != nil {
		t.Fatal(err)
	}
	if len(id) != 36 {
		t.Fatalf("uuid = %q", id)
	}
	// Markers draw fresh on every lookup.
	id2, _ := Get[string](c, "random.uuid")
	if id == id2 {
		t.Fatalf("uuid did not redraw: %q", id)
	}
	n, err := Get[int](c, "random.u8")
	if err != nil || n < 0 || n > 255 {
		t.Fatalf("u8 = (%d, %v)", n, err)
	}
}
