// Package version provides build information for gochip8
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"time"
)

var (
	// Set at build time via -ldflags "-X gochip8/internal/version.Version=..."
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo contains detailed build information
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	Modified  bool   `json:"modified"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns build information, filling unset fields from the
// VCS data the toolchain embeds
func GetBuildInfo() BuildInfo {
	buildInfo := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if GitCommit == "unknown" {
					buildInfo.GitCommit = setting.Value
				}
			case "vcs.time":
				if BuildTime == "unknown" {
					buildInfo.BuildTime = setting.Value
				}
			case "vcs.modified":
				buildInfo.Modified = setting.Value == "true"
			}
		}
	}

	return buildInfo
}

// GetVersion returns a simple version string
func GetVersion() string {
	return GetBuildInfo().short()
}

func (b BuildInfo) short() string {
	if b.Version == "dev" && b.GitCommit != "unknown" {
		return fmt.Sprintf("dev-%s", shortCommit(b.GitCommit))
	}
	return b.Version
}

// String returns a one-line description of the build
func (b BuildInfo) String() string {
	s := fmt.Sprintf("gochip8 %s", b.short())

	if b.BuildTime != "unknown" {
		if parsed, err := time.Parse(time.RFC3339, b.BuildTime); err == nil {
			s += fmt.Sprintf(" built %s", parsed.Format("2006-01-02 15:04"))
		} else {
			s += fmt.Sprintf(" built %s", b.BuildTime)
		}
	}
	if b.Modified {
		s += " (modified)"
	}

	return s + fmt.Sprintf(" %s %s/%s", b.GoVersion, b.Platform, b.Arch)
}

// WriteBuildInfo writes formatted build information to w
func WriteBuildInfo(w io.Writer) {
	b := GetBuildInfo()

	fmt.Fprintf(w, "gochip8 - Go CHIP-8 interpreter\n")
	fmt.Fprintf(w, "Version:     %s\n", b.Version)
	fmt.Fprintf(w, "Git Commit:  %s\n", b.GitCommit)
	fmt.Fprintf(w, "Build Time:  %s\n", b.BuildTime)
	fmt.Fprintf(w, "Go Version:  %s\n", b.GoVersion)
	fmt.Fprintf(w, "Platform:    %s/%s\n", b.Platform, b.Arch)
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
