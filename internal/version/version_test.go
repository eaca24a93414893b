package version

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestBuildInfo_Short(t *testing.T) {
	tests := []struct {
		info BuildInfo
		want string
	}{
		{BuildInfo{Version: "1.2.0", GitCommit: "abcdef0123"}, "1.2.0"},
		{BuildInfo{Version: "dev", GitCommit: "abcdef0123"}, "dev-abcdef0"},
		{BuildInfo{Version: "dev", GitCommit: "abc"}, "dev-abc"},
		{BuildInfo{Version: "dev", GitCommit: "unknown"}, "dev"},
	}
	for _, tt := range tests {
		if got := tt.info.short(); got != tt.want {
			t.Errorf("short() = %q, want %q", got, tt.want)
		}
	}
}

func TestBuildInfo_String(t *testing.T) {
	info := BuildInfo{
		Version:   "1.0.0",
		GitCommit: "unknown",
		BuildTime: "2026-01-02T03:04:05Z",
		Modified:  true,
		GoVersion: "go1.23.4",
		Platform:  "linux",
		Arch:      "amd64",
	}

	got := info.String()
	for _, part := range []string{"gochip8 1.0.0", "built 2026-01-02 03:04", "(modified)", "linux/amd64"} {
		if !strings.Contains(got, part) {
			t.Errorf("String() = %q, missing %q", got, part)
		}
	}
}

func TestWriteBuildInfo(t *testing.T) {
	var buf bytes.Buffer
	WriteBuildInfo(&buf)

	out := buf.String()
	if !strings.Contains(out, "Go Version:  "+runtime.Version()) {
		t.Errorf("build info missing Go version:\n%s", out)
	}
	if !strings.Contains(out, "Version:     "+Version) {
		t.Errorf("build info missing version:\n%s", out)
	}
}
