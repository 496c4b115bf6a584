package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestRouterExtractsTextFiles(t *testing.T) {
	r := NewRouter()
	path := writeFile(t, "resume.txt", []byte("\uFEFFJane Doe\nGo developer"))

	text, err := r.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if text != "Jane Doe\nGo developer" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestRouterConvertsHTML(t *testing.T) {
	r := NewRouter()
	path := writeFile(t, "resume.html", []byte("<html><body><h1>Jane Doe</h1><p>Go developer</p></body></html>"))

	text, err := r.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !strings.Contains(text, "Jane Doe") || !strings.Contains(text, "Go developer") {
		t.Errorf("converted markdown is missing content: %q", text)
	}
}

func TestRouterSniffsUnknownExtensions(t *testing.T) {
	r := NewRouter()
	path := writeFile(t, "resume.dat", []byte("Plain text resume with an unknown extension."))

	text, err := r.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !strings.Contains(text, "unknown extension") {
		t.Errorf("unexpected text %q", text)
	}
}

func TestRouterRejectsBinaryContent(t *testing.T) {
	r := NewRouter()
	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 64)...)
	path := writeFile(t, "image.raw", png)

	_, err := r.Extract(context.Background(), path)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestRouterSupports(t *testing.T) {
	r := NewRouter()

	for _, ext := range []string{".pdf", ".docx", ".doc", ".html", ".htm", ".txt"} {
		if !r.Supports("resume" + ext) {
			t.Errorf("expected %s to be supported", ext)
		}
	}
	if r.Supports("resume.exe") {
		t.Error("expected .exe to be unsupported")
	}
}

func TestSupportedExtensions(t *testing.T) {
	r := NewRouter()

	got := strings.Join(r.SupportedExtensions(), ",")
	want := ".doc,.docx,.htm,.html,.pdf,.txt"
	if got != want {
		t.Errorf("SupportedExtensions() = %s, want %s", got, want)
	}
}
