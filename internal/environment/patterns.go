package environment

import (
	"regexp"

	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
)

// launcherMarkers are checked in order; the first marker found wins.
var launcherMarkers = []struct {
	marker   string
	launcher check.Launcher
}{
	{"PolyMC version:", check.LauncherPolyMC},
	{"Prism Launcher version:", check.LauncherPrism},
	{"MultiMC version:", check.LauncherMultiMC},
	{"ATLauncher Version:", check.LauncherATLauncher},
}

var (
	// Matches: "[main/INFO]: Loading Minecraft 1.20.1 with Fabric Loader 0.14.21"
	// Captures: (1) Minecraft version, (2) loader name, (3) loader version
	loaderBannerPattern = regexp.MustCompile(
		`Loading Minecraft (\S+) with (Fabric|Quilt) Loader (\S+)`,
	)

	// Matches: "[main/INFO]: Loading 75 mods:"
	modListHeaderPattern = regexp.MustCompile(
		`Loading \d+ mods:\s*$`,
	)

	// Matches: "\t- fabric-api 0.92.0+1.20.1"
	// Captures: (1) mod id, (2) version
	modListEntryPattern = regexp.MustCompile(
		`^\t- (\S+) (\S+)`,
	)

	// Matches: "\t   |-- fabric-api-base 0.4.31+1802ada577"
	//          "\t   \-- fabric-transitive-access-wideners-v1 4.3.1+1880499877"
	//          "\t   |   |-- mixinextras 0.2.0"
	// Captures: (1) mod id, (2) version
	modListChildPattern = regexp.MustCompile(
		`^\t\s*(?:\|   |    )*[|\\]-- (\S+) (\S+)`,
	)

	// Matches: "\tFabric Mods: " in a crash report system details section
	crashModsHeaderPattern = regexp.MustCompile(
		`^\t(?:Fabric|Quilt) Mods:\s*$`,
	)

	// Matches: "\t\tbclib: BCLib 3.0.13"
	//          "\t\t\tfabric-api-base: Fabric API Base 0.4.31+1802ada577"
	// Captures: (1) mod id, (2) display name, (3) version
	crashModsEntryPattern = regexp.MustCompile(
		`^\t\t+([A-Za-z0-9_.\-]+): (.+) (\S+)$`,
	)
)
