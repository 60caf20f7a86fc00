// Package version reports the gpr build version.
package version

import (
	"context"
	"runtime/debug"
	"strings"
)

const (
	developmentVersionConstant = "dev"
	develBuildVersionConstant  = "(devel)"
)

// Value is overridden at build time with -ldflags "-X github.com/temirov/gpr/internal/version.Value=v1.2.3".
var Value = ""

type buildInfoReader func() (*debug.BuildInfo, bool)

// Resolve returns the linked version, then the module version recorded in the build info, then "dev".
func Resolve(context.Context) string {
	return resolve(Value, debug.ReadBuildInfo)
}

func resolve(linkedVersion string, readBuildInfo buildInfoReader) string {
	trimmedVersion := strings.TrimSpace(linkedVersion)
	if len(trimmedVersion) > 0 {
		return trimmedVersion
	}

	buildInformation, available := readBuildInfo()
	if !available || buildInformation == nil {
		return developmentVersionConstant
	}

	moduleVersion := strings.TrimSpace(buildInformation.Main.Version)
	if len(moduleVersion) == 0 || moduleVersion == develBuildVersionConstant {
		return developmentVersionConstant
	}
	return moduleVersion
}
