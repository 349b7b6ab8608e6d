// Package logfinder locates Minecraft instance directories, their latest log
// and their crash reports.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
)

// EnvInstanceDir is the environment variable name for specifying the
// instance directory.
const EnvInstanceDir = "LOGDOCTOR_INSTANCE_DIR"

// Sentinel errors.
var (
	ErrInstanceNotFound = errors.New("minecraft instance directory not found")
	ErrNoLogFiles       = errors.New("no log files found")
)

const (
	latestLogPath   = "logs/latest.log"
	crashReportGlob = "crash-reports/crash-*.txt"
)

// DefaultInstanceDirs returns candidate instance directories for the current
// OS in priority order: the vanilla launcher's game directory.
func DefaultInstanceDirs() []string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			if profile := os.Getenv("USERPROFILE"); profile != "" {
				appData = filepath.Join(profile, "AppData", "Roaming")
			}
		}
		if appData == "" {
			return nil
		}
		return []string{filepath.Join(appData, ".minecraft")}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		return []string{filepath.Join(home, "Library", "Application Support", "minecraft")}
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		return []string{filepath.Join(home, ".minecraft")}
	}
}

// FindInstanceDir returns the Minecraft instance directory.
//
// Priority:
//  1. explicit (if non-empty)
//  2. LOGDOCTOR_INSTANCE_DIR environment variable
//  3. Auto-detect from DefaultInstanceDirs()
//
// A directory is valid if it holds logs/latest.log or at least one crash
// report. The returned path has symlinks resolved.
func FindInstanceDir(explicit string) (string, error) {
	if explicit != "" {
		if resolved := resolveAndValidateInstanceDir(explicit); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: specified directory is invalid or contains no logs", ErrInstanceNotFound)
	}

	if envDir := os.Getenv(EnvInstanceDir); envDir != "" {
		if resolved := resolveAndValidateInstanceDir(envDir); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s environment variable points to invalid directory", ErrInstanceNotFound, EnvInstanceDir)
	}

	for _, dir := range DefaultInstanceDirs() {
		if resolved := resolveAndValidateInstanceDir(dir); resolved != "" {
			return resolved, nil
		}
	}

	return "", ErrInstanceNotFound
}

// FindLatestLog returns the path of logs/latest.log in dir.
func FindLatestLog(dir string) (string, error) {
	path := filepath.Join(dir, filepath.FromSlash(latestLogPath))
	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrNoLogFiles
	}
	return path, nil
}

// candidate holds a file path and its cached modification time so files
// deleted between stat and sort cannot break the ordering.
type candidate struct {
	path    string
	modTime int64
}

// FindLatestCrashReport returns the most recently modified crash report in
// dir's crash-reports directory.
func FindLatestCrashReport(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, filepath.FromSlash(crashReportGlob)))
	if err != nil {
		return "", fmt.Errorf("globbing crash reports: %w", err)
	}

	candidates := make([]candidate, 0, len(matches))
	for _, m := range matches {
		info, err := os.Lstat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, candidate{path: m, modTime: info.ModTime().UnixNano()})
	}
	if len(candidates) == 0 {
		return "", ErrNoLogFiles
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime > candidates[j].modTime
	})
	return candidates[0].path, nil
}

// FindLatest returns the latest log and, if any, the newest crash report of
// dir. At least one of them exists or ErrNoLogFiles is returned.
func FindLatest(dir string) ([]string, error) {
	var paths []string
	if p, err := FindLatestLog(dir); err == nil {
		paths = append(paths, p)
	}
	if p, err := FindLatestCrashReport(dir); err == nil {
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, ErrNoLogFiles
	}
	return paths, nil
}

func resolveAndValidateInstanceDir(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return ""
	}

	if !isValidInstanceDir(resolved) {
		return ""
	}
	return resolved
}

func isValidInstanceDir(dir string) bool {
	_, err := FindLatest(dir)
	return err == nil
}
