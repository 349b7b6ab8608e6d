package rules

import (
	"fmt"

	"github.com/logdoctor/logdoctor-go/internal/matcher"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
)

// classFileVersions maps a class file major version, as printed by the JVM,
// to the Java release that introduced it.
var classFileVersions = map[string]string{
	"49.0": "5",
	"50.0": "6",
	"51.0": "7",
	"52.0": "8",
	"53.0": "9",
	"54.0": "10",
	"55.0": "11",
	"56.0": "12",
	"57.0": "13",
	"58.0": "14",
	"59.0": "15",
	"60.0": "16",
	"61.0": "17",
	"62.0": "18",
	"63.0": "19",
	"64.0": "20",
	"65.0": "21",
}

// JavaRelease translates a class file version such as "61.0" to a Java
// release such as "17". ok is false for versions outside the table.
func JavaRelease(classFile string) (release string, ok bool) {
	release, ok = classFileVersions[classFile]
	return release, ok
}

var (
	// Fabric Loader's own Java check.
	// Matches: "- Replace 'Java' (java) 16 with version 17 or later."
	// Captures: (1) present release, (2) required release
	javaReplacePattern = matcher.MustCompile(
		`- Replace '.+' \(java\) ([0-9]+) with version ([0-9]+) or later\.`,
	)

	// Captures: (1) required class file version, (2) supported class file version
	unsupportedClassPattern = matcher.MustCompile(
		`UnsupportedClassVersionError: \S+ has been compiled by a more recent version of the Java Runtime \(class file version (\S+)\), this version of the Java Runtime only recognizes class file versions up to (\S+)`,
	)
)

const javaGenericDescription = "A mod or Minecraft itself requires a different version of Java from the one that is available. You may have to [download](https://adoptium.net/temurin/releases/) a newer Java version and/or select it in your launcher."

// JavaVersion reports a Java runtime older than the game or a mod requires.
var JavaVersion = define("java-version",
	"The Java runtime is older than Minecraft or a mod requires",
	javaVersion)

func javaVersion(log string, _ *check.Environment) (*check.Report, error) {
	if m := javaReplacePattern.Find(log); m != nil {
		g, err := m.Groups(1, 2)
		if err != nil {
			return nil, err
		}
		return javaReport(javaSpecificDescription(g[0], g[1])), nil
	}

	if m := unsupportedClassPattern.Find(log); m != nil {
		g, err := m.Groups(1, 2)
		if err != nil {
			return nil, err
		}
		need, needOK := JavaRelease(g[0])
		has, hasOK := JavaRelease(g[1])
		if !needOK || !hasOK {
			return javaReport(javaGenericDescription), nil
		}
		return javaReport(javaSpecificDescription(has, need)), nil
	}

	return nil, nil
}

func javaSpecificDescription(has, need string) string {
	return fmt.Sprintf("A mod or Minecraft itself requires Java %s to be used, but an older version, Java %s is being used instead. You may have to [download](https://adoptium.net/temurin/releases/?version=%s) a newer Java version and/or select it in your launcher.",
		need, has, need)
}

func javaReport(description string) *check.Report {
	return &check.Report{
		Title:       "Incorrect Java version",
		Description: description,
		Severity:    check.High,
	}
}
