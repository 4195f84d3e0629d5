// Package version carries build metadata for the healthbadge binaries.
// Version, BuildDate and GitCommit are injected with -ldflags at build time.
package version

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// Version is the release tag or short commit of the build.
	// Set via: -ldflags "-X healthbadge/internal/version.Version=..."
	Version = "unknown"

	// BuildDate is the UTC build timestamp in RFC 3339 form.
	// Set via: -ldflags "-X healthbadge/internal/version.BuildDate=..."
	BuildDate = "unknown"

	// GitCommit is the full commit SHA the binary was built from.
	// Set via: -ldflags "-X healthbadge/internal/version.GitCommit=..."
	GitCommit = "unknown"
)

// Info is the build and process identity reported in logs, traces and the
// liveness endpoint.
type Info struct {
	Version    string    `json:"version"`
	GitCommit  string    `json:"git_commit"`
	BuildDate  string    `json:"build_date"`
	InstanceID string    `json:"instance_id"`
	Hostname   string    `json:"hostname"`
	StartedAt  time.Time `json:"started_at"`
}

var (
	once sync.Once
	info Info
)

// GetInfo returns the process build info. Instance ID, hostname and start
// time are resolved on the first call.
func GetInfo() Info {
	once.Do(func() {
		info = Info{
			Version:    Version,
			GitCommit:  GitCommit,
			BuildDate:  BuildDate,
			InstanceID: uuid.New().String(),
			Hostname:   hostname(),
			StartedAt:  time.Now().UTC(),
		}
	})
	return info
}

// Uptime reports how long the process has been running, truncated to seconds.
func (i Info) Uptime() time.Duration {
	if i.StartedAt.IsZero() {
		return 0
	}
	return time.Since(i.StartedAt).Truncate(time.Second)
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

// String formats version info for -version output.
func (i Info) String() string {
	return fmt.Sprintf("healthbadge %s (commit: %s, built: %s)", i.Version, i.GitCommit, i.BuildDate)
}
