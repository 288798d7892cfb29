package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Set with -ldflags -X.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit,omitempty"`
	BuildTime string    `json:"build_time,omitempty"`
	BuildDate time.Time `json:"-"`
	GoVersion string    `json:"go_version"`
	Module    string    `json:"module,omitempty"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
	// Deps maps module path to version for the libraries listed in
	// TrackedDeps that are linked into the binary.
	Deps map[string]string `json:"deps,omitempty"`
}

// TrackedDeps are the dependencies reported by the version command.
var TrackedDeps = []string{
	"github.com/aws/aws-sdk-go-v2/service/s3",
	"github.com/gin-gonic/gin",
	"github.com/redis/go-redis/v9",
	"github.com/rs/zerolog",
	"github.com/spf13/cobra",
	"go.opentelemetry.io/otel",
}

// GetVersionInfo merges ldflags values with the embedded build info. ldflags
// win when set.
func GetVersionInfo() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		applyBuildInfo(info, bi)
	}
	info.IsRelease = info.Version != "dev" && !info.IsDirty
	return info
}

func applyBuildInfo(info *Info, bi *debug.BuildInfo) {
	info.GoVersion = bi.GoVersion
	info.Module = bi.Main.Path
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value[:min(7, len(s.Value))]
			}
		case "vcs.modified":
			info.IsDirty = s.Value == "true"
		case "vcs.time":
			if info.BuildTime == "" {
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					info.BuildDate, info.BuildTime = t, s.Value
				}
			}
		}
	}
	for _, dep := range bi.Deps {
		for _, tracked := range TrackedDeps {
			if dep.Path != tracked {
				continue
			}
			if info.Deps == nil {
				info.Deps = make(map[string]string)
			}
			info.Deps[dep.Path] = dep.Version
		}
	}
}

// Short returns "1.2.0-abc1234", with "-dirty" for modified trees.
func (i *Info) Short() string {
	s := i.Version
	if i.GitCommit != "" {
		s += "-" + i.GitCommit
	}
	if i.IsDirty {
		s += "-dirty"
	}
	return s
}

// String returns Short plus the build date and Go version.
func (i *Info) String() string {
	s := i.Short()
	if !i.BuildDate.IsZero() {
		s += fmt.Sprintf(" (built %s)", i.BuildDate.UTC().Format(time.RFC3339))
	}
	if i.GoVersion != "" {
		s += " " + i.GoVersion
	}
	return s
}
