package common

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Set at build time with -ldflags "-X .../internal/common.Version=...".
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is the build information reported by the API and CLI.
type VersionInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// CurrentVersion returns the build information of the running binary.
func CurrentVersion() VersionInfo {
	return VersionInfo{Version: Version, Build: Build, Commit: GitCommit}
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", v.Version, v.Build, v.Commit)
}

// LoadVersionFile fills build fields still at their defaults from a
// ".version" file of "key: value" lines next to the binary. Release archives
// ship that file when the binary was built without ldflags.
func LoadVersionFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	loadVersionFrom(filepath.Join(filepath.Dir(exe), ".version"))
}

func loadVersionFrom(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	fields := map[string]*string{"version": &Version, "build": &Build, "commit": &GitCommit}
	defaults := map[string]string{"version": "dev", "build": "unknown", "commit": "unknown"}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, val, ok := strings.Cut(scanner.Text(), ":")
		key = strings.TrimSpace(key)
		if !ok || strings.HasPrefix(key, "#") {
			continue
		}
		if dst, known := fields[key]; known && *dst == defaults[key] {
			*dst = strings.TrimSpace(val)
		}
	}
}
