// Package environment derives the read-only Environment handed to every rule:
// the launcher that produced a log, the installed mods and the game/loader
// versions.
package environment

import (
	"strings"

	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
)

// Detect builds the Environment for log. It never fails; facts that cannot be
// found are left at their zero value.
func Detect(log string) *check.Environment {
	env := &check.Environment{
		Launcher:  DetectLauncher(log),
		KnownMods: ParseMods(log),
	}
	if m := loaderBannerPattern.FindStringSubmatch(log); m != nil {
		env.MinecraftVersion = m[1]
		env.Loader = m[2]
		env.LoaderVersion = m[3]
	}
	return env
}

// DetectLauncher returns the launcher whose marker appears in log, or
// LauncherUnknown.
func DetectLauncher(log string) check.Launcher {
	for _, lm := range launcherMarkers {
		if strings.Contains(log, lm.marker) {
			return lm.launcher
		}
	}
	return check.LauncherUnknown
}

// ParseMods collects installed mods from the loader's "Loading N mods:" listing
// and from the "Fabric Mods:" section of a crash report. The first entry seen
// for an id wins. The result is never nil.
func ParseMods(log string) map[check.ModID]check.ModMetadata {
	mods := make(map[check.ModID]check.ModMetadata)
	add := func(id, name, version string) {
		key := check.NewModID(id)
		if key == "" {
			return
		}
		if _, exists := mods[key]; exists {
			return
		}
		mods[key] = check.ModMetadata{ID: key, Name: name, Version: version}
	}

	const (
		outside = iota
		inModList
		inCrashMods
	)
	state := outside

	for _, line := range strings.Split(log, "\n") {
		// Trim trailing CR for Windows CRLF compatibility
		line = strings.TrimRight(line, "\r")

		switch state {
		case inModList:
			if m := modListEntryPattern.FindStringSubmatch(line); m != nil {
				add(m[1], "", m[2])
				continue
			}
			if m := modListChildPattern.FindStringSubmatch(line); m != nil {
				add(m[1], "", m[2])
				continue
			}
			state = outside
		case inCrashMods:
			if m := crashModsEntryPattern.FindStringSubmatch(line); m != nil {
				add(m[1], m[2], m[3])
				continue
			}
			state = outside
		}

		switch {
		case modListHeaderPattern.MatchString(line):
			state = inModList
		case crashModsHeaderPattern.MatchString(line):
			state = inCrashMods
		}
	}

	return mods
}
