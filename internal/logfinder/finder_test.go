package logfinder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// newInstance creates an instance directory with the given files relative to
// it and returns its resolved path.
func newInstance(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("test"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	return resolved
}

func TestFindLatestCrashReport(t *testing.T) {
	dir := newInstance(t)
	files := []string{
		"crash-2024-01-01_00.00.00-client.txt",
		"crash-2024-01-02_00.00.00-client.txt",
		"crash-2024-01-03_00.00.00-server.txt",
	}
	if err := os.MkdirAll(filepath.Join(dir, "crash-reports"), 0o755); err != nil {
		t.Fatal(err)
	}
	for i, name := range files {
		path := filepath.Join(dir, "crash-reports", name)
		if err := os.WriteFile(path, []byte("test"), 0o644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(path, modTime, modTime); err != nil {
			t.Fatal(err)
		}
	}

	got, err := FindLatestCrashReport(dir)
	if err != nil {
		t.Fatalf("FindLatestCrashReport() error = %v", err)
	}
	if want := files[len(files)-1]; filepath.Base(got) != want {
		t.Errorf("FindLatestCrashReport() = %v, want %v", filepath.Base(got), want)
	}
}

func TestFindLatestCrashReport_NoFiles(t *testing.T) {
	_, err := FindLatestCrashReport(newInstance(t, "crash-reports/notes.txt"))
	if !errors.Is(err, ErrNoLogFiles) {
		t.Errorf("FindLatestCrashReport() error = %v, want %v", err, ErrNoLogFiles)
	}
}

func TestFindLatestLog(t *testing.T) {
	dir := newInstance(t, "logs/latest.log", "logs/2024-01-01-1.log.gz")

	got, err := FindLatestLog(dir)
	if err != nil {
		t.Fatalf("FindLatestLog() error = %v", err)
	}
	if want := filepath.Join(dir, "logs", "latest.log"); got != want {
		t.Errorf("FindLatestLog() = %v, want %v", got, want)
	}

	if _, err := FindLatestLog(newInstance(t)); !errors.Is(err, ErrNoLogFiles) {
		t.Errorf("FindLatestLog() error = %v, want %v", err, ErrNoLogFiles)
	}
}

func TestFindLatest(t *testing.T) {
	dir := newInstance(t, "logs/latest.log", "crash-reports/crash-2024-01-01_00.00.00-client.txt")

	got, err := FindLatest(dir)
	if err != nil {
		t.Fatalf("FindLatest() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FindLatest() = %v, want 2 paths", got)
	}
	if filepath.Base(got[0]) != "latest.log" {
		t.Errorf("FindLatest()[0] = %v, want latest.log first", got[0])
	}
}

func TestFindInstanceDir_EnvVar(t *testing.T) {
	dir := newInstance(t, "logs/latest.log")
	t.Setenv(EnvInstanceDir, dir)

	got, err := FindInstanceDir("")
	if err != nil {
		t.Fatalf("FindInstanceDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("FindInstanceDir() = %v, want %v", got, dir)
	}
}

func TestFindInstanceDir_Explicit(t *testing.T) {
	dir := newInstance(t, "crash-reports/crash-2024-01-01_00.00.00-client.txt")

	// Explicit takes priority over env.
	t.Setenv(EnvInstanceDir, "/some/other/path")

	got, err := FindInstanceDir(dir)
	if err != nil {
		t.Fatalf("FindInstanceDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("FindInstanceDir() = %v, want %v", got, dir)
	}
}

func TestFindInstanceDir_ExplicitInvalid(t *testing.T) {
	_, err := FindInstanceDir("/nonexistent/path")
	if !errors.Is(err, ErrInstanceNotFound) {
		t.Errorf("FindInstanceDir() error = %v, want %v", err, ErrInstanceNotFound)
	}
}

func TestFindInstanceDir_EnvVarInvalid(t *testing.T) {
	t.Setenv(EnvInstanceDir, newInstance(t, "saves/world/level.dat"))

	_, err := FindInstanceDir("")
	if !errors.Is(err, ErrInstanceNotFound) {
		t.Errorf("FindInstanceDir() error = %v, want %v", err, ErrInstanceNotFound)
	}
}

func TestIsValidInstanceDir(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		want bool
	}{
		{"latest log", newInstance(t, "logs/latest.log"), true},
		{"crash report only", newInstance(t, "crash-reports/crash-x.txt"), true},
		{"empty", newInstance(t), false},
		{"missing", "/nonexistent/path", false},
	}
	for _, tt := range tests {
		if got := isValidInstanceDir(tt.dir); got != tt.want {
			t.Errorf("%s: isValidInstanceDir() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
