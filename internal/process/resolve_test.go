package process

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

func TestResolveBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	dir := t.TempDir()

	exe := filepath.Join(dir, "helper")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\necho 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "not-executable")
	if err := os.WriteFile(plain, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("absolute_executable", func(t *testing.T) {
		got, err := ResolveBinary(exe)
		if err != nil {
			t.Fatalf("ResolveBinary: %v", err)
		}
		if got != exe {
			t.Errorf("got %q, want %q", got, exe)
		}
	})

	t.Run("relative_becomes_absolute", func(t *testing.T) {
		t.Chdir(dir)
		got, err := ResolveBinary("./helper")
		if err != nil {
			t.Fatalf("ResolveBinary: %v", err)
		}
		if !filepath.IsAbs(got) {
			t.Errorf("got %q, want absolute path", got)
		}
	})

	t.Run("bare_name_uses_path", func(t *testing.T) {
		want, err := exec.LookPath("sh")
		if err != nil {
			t.Skip("sh not in PATH")
		}
		got, err := ResolveBinary("sh")
		if err != nil {
			t.Fatalf("ResolveBinary: %v", err)
		}
		wantAbs, _ := filepath.Abs(want)
		if got != wantAbs {
			t.Errorf("got %q, want %q", got, wantAbs)
		}
	})

	failures := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"missing", filepath.Join(dir, "nope")},
		{"directory", dir},
		{"not_executable", plain},
		{"bare_name_missing", "definitely-not-a-real-helper-binary"},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ResolveBinary(tt.path); err == nil {
				t.Errorf("ResolveBinary(%q) should fail", tt.path)
			}
		})
	}
}
