package hook

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), ConfigName))
	require.NoError(t, err)

	require.True(t, cfg.Enabled)
	require.Equal(t, int64(DefaultTimeoutMS), cfg.TimeoutMS)
	require.True(t, cfg.Blocking(EventPreAction))
	require.False(t, cfg.Blocking(EventPostRun))
	require.NotEmpty(t, cfg.WarningMarkers)
	require.NotEmpty(t, cfg.DangerousPatterns)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigName)
	content := `{
		"timeout_ms": 1000,
		"trend_window": 5,
		"warning_markers": ["WARN"],
		"events": {
			"post-run": {"blocking": true, "timeout_ms": 250}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.True(t, cfg.Enabled)
	require.Equal(t, 5, cfg.TrendWindow)
	require.Equal(t, []string{"WARN"}, cfg.WarningMarkers)
	require.Equal(t, time.Second, cfg.Timeout(EventSessionStart))
	require.Equal(t, 250*time.Millisecond, cfg.Timeout(EventPostRun))
	require.True(t, cfg.Blocking(EventPostRun))
}

func TestLoadConfig_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestConfig_TimeoutFallsBackToDefault(t *testing.T) {
	cfg := Config{}
	require.Equal(t, DefaultTimeoutMS*time.Millisecond, cfg.Timeout(EventPostRun))
}
