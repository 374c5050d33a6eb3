package main

import (
	_ "embed"
	"runtime"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// Version returns the version string shown by "variation version".
//
// A binary built by go install reports its module version. Builds from a
// checkout report devel-<VERSION>, with the short VCS revision appended
// and a "-dirty" suffix when the tree had local changes.
func Version() string {
	v := buildVersion(strings.TrimSpace(embeddedVersion))
	return v + " (" + runtime.Version() + ")"
}

func buildVersion(base string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return base
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	v := "devel-" + base
	if rev := settings["vcs.revision"]; len(rev) >= 7 {
		v += "+" + rev[:7]
		if settings["vcs.modified"] == "true" {
			v += "-dirty"
		}
	}
	return v
}
