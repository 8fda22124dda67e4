package version

import "fmt"

// Build metadata, stamped with -ldflags "-X spikeradar/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// UserAgent identifies this build to the backend.
func UserAgent() string {
	return "spikeradar/" + Version
}

// Info is the build metadata as reported by the health endpoint.
func Info() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"built":   BuildDate,
	}
}

// String renders the multi-line form printed by the version command.
func String() string {
	return fmt.Sprintf("spikeradar %s\ncommit: %s\nbuilt: %s\n", Version, Commit, BuildDate)
}
