package go_bridgemanager

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var version string

func VersionNumberString() string {
	if len(version) > 0 {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return "dev"
}

func VersionString() string {
	return fmt.Sprintf("go-bridgemanager %s", VersionNumberString())
}

func UserAgent() string {
	return fmt.Sprintf("go-bridgemanager/%s Go/%s", VersionNumberString(), runtime.Version())
}
