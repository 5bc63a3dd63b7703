package version

import (
	"runtime/debug"
	"strings"
	"sync"
)

// ModulePath is the import path of this module.
const ModulePath = "github.com/kbukum/restclient"

// Version is set at build time with -ldflags. "dev" means unset.
var Version = "dev"

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
	IsDirty   bool   `json:"is_dirty"`
}

var (
	readOnce sync.Once
	buildInf *debug.BuildInfo
)

func buildInfo() *debug.BuildInfo {
	readOnce.Do(func() {
		if bi, ok := debug.ReadBuildInfo(); ok {
			buildInf = bi
		}
	})
	return buildInf
}

// Get returns the build information. An ldflags-stamped Version wins over
// the module version recorded by the go tool.
func Get() Info {
	return infoFrom(Version, buildInfo())
}

func infoFrom(stamped string, bi *debug.BuildInfo) Info {
	info := Info{Version: stamped}
	if bi == nil {
		return info
	}
	info.GoVersion = bi.GoVersion
	if info.Version == "dev" {
		for _, dep := range bi.Deps {
			if dep.Path == ModulePath && dep.Version != "" && dep.Version != "(devel)" {
				info.Version = dep.Version
			}
		}
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.GitCommit = s.Value
			if len(info.GitCommit) > 7 {
				info.GitCommit = info.GitCommit[:7]
			}
		case "vcs.modified":
			info.IsDirty = s.Value == "true"
		}
	}
	return info
}

// UserAgent returns the default User-Agent sent by the HTTP transport,
// e.g. "restclient/v1.2.0".
func UserAgent() string {
	return "restclient/" + strings.TrimSpace(Get().Version)
}
