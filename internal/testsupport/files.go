package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// MinimalPPD is the smallest document the PPD reader accepts.
const MinimalPPD = "*PPD-Adobe: \"4.3\"\n*NickName: \"Test Printer\"\n"

// WritePPD writes a PPD under dir and returns its path. body is appended to
// the PPD-Adobe header unless it already starts with one.
func WritePPD(t testing.TB, dir, name, body string) string {
	t.Helper()

	if !strings.HasPrefix(body, "*PPD-Adobe") {
		body = "*PPD-Adobe: \"4.3\"\n" + body
	}
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// StubBinaries writes an executable script per name into dir and returns dir.
func StubBinaries(t testing.TB, dir, script string, names ...string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	for _, name := range names {
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	return dir
}
