package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildMetadata(t *testing.T) {
	prev := Version
	Version = "1.4.0"
	t.Cleanup(func() { Version = prev })

	require.Equal(t, "spikeradar/1.4.0", UserAgent())
	require.Equal(t, "1.4.0", Info()["version"])
	require.Contains(t, String(), "spikeradar 1.4.0\n")
}
