package check

import (
	"strings"

	"github.com/blang/semver/v4"
)

// Launcher identifies the game launcher that produced a log.
type Launcher int

const (
	// LauncherUnknown means no launcher marker was found. Launcher-specific
	// rules must not fire for it.
	LauncherUnknown Launcher = iota
	LauncherPolyMC
	LauncherPrism
	LauncherMultiMC
	LauncherATLauncher
)

// String returns the human readable launcher name.
func (l Launcher) String() string {
	switch l {
	case LauncherPolyMC:
		return "PolyMC"
	case LauncherPrism:
		return "Prism Launcher"
	case LauncherMultiMC:
		return "MultiMC"
	case LauncherATLauncher:
		return "ATLauncher"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (l Launcher) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ModID is a lowercase mod identifier such as "fabric-api" or "bclib".
type ModID string

// NewModID normalizes id to the lowercase form used as a KnownMods key.
func NewModID(id string) ModID {
	return ModID(strings.ToLower(strings.TrimSpace(id)))
}

// ModMetadata describes an installed mod. Rules only look mods up by ID.
type ModMetadata struct {
	ID      ModID  `json:"id"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// SemVer parses Version leniently. ok is false when the version is not
// semver-like (e.g. "${version}" or a bare date).
func (m ModMetadata) SemVer() (v semver.Version, ok bool) {
	v, err := semver.ParseTolerant(m.Version)
	if err != nil {
		return semver.Version{}, false
	}
	return v, true
}

// Mod loaders named by the "Loading Minecraft X with <loader> Loader Y" banner.
const (
	LoaderFabric = "Fabric"
	LoaderQuilt  = "Quilt"
)

// Environment holds read-only facts about where a log came from. It is built
// once per evaluation, before any rule runs, and shared by every rule.
// Rules must not modify it.
type Environment struct {
	Launcher         Launcher              `json:"launcher"`
	KnownMods        map[ModID]ModMetadata `json:"known_mods,omitempty"`
	MinecraftVersion string                `json:"minecraft_version,omitempty"`
	Loader           string                `json:"loader,omitempty"`
	LoaderVersion    string                `json:"loader_version,omitempty"`
}

// HasMod reports whether id is a key of KnownMods. The lookup is exact and
// case-sensitive.
func (e *Environment) HasMod(id ModID) bool {
	if e == nil {
		return false
	}
	_, ok := e.KnownMods[id]
	return ok
}

// Mod returns the metadata recorded for id.
func (e *Environment) Mod(id ModID) (ModMetadata, bool) {
	if e == nil {
		return ModMetadata{}, false
	}
	m, ok := e.KnownMods[id]
	return m, ok
}
