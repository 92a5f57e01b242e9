package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{"lesson_id", "phone-basic", "auth_token", "abc", "dangling"})
	want := []interface{}{"lesson_id", "phone-basic", "auth_token", "[REDACTED]", "dangling"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kv[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cifra.log")
	l, err := New("prod", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("lesson started", "lesson_id", "shop-basic", "password", "hunter2")
	l.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	if !strings.Contains(out, "shop-basic") {
		t.Errorf("log missing field: %s", out)
	}
	if strings.Contains(out, "hunter2") {
		t.Errorf("password leaked into log: %s", out)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.With("k", "v").Warn("ignored")
}
