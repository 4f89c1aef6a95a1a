package utils

import (
	"context"
	"os/exec"
	"runtime/debug"
	"strings"
	"time"
)

const (
	unknownVersion     = "unknown"
	develVersion       = "(devel)"
	gitDescribeTimeout = 2 * time.Second
)

// GetApplicationVersion reports the module version stamped by the Go toolchain,
// falling back to `git describe` for source checkouts.
func GetApplicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != develVersion {
		return buildInfo.Main.Version
	}
	describeContext, cancel := context.WithTimeout(context.Background(), gitDescribeTimeout)
	defer cancel()
	// #nosec G204
	describeOutput, describeError := exec.CommandContext(describeContext, "git", "describe", "--tags", "--always", "--dirty").Output()
	if describeError == nil {
		if described := strings.TrimSpace(string(describeOutput)); described != "" {
			return described
		}
	}
	return unknownVersion
}
