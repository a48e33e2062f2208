package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("AUTH_SECRET", "a-secret-of-sixteen-chars")

	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	req.NoError(err)
	req.Equal(3000, config.Port)
	req.Equal(BackendBadger, config.LogBackend)
	req.Equal(100*time.Millisecond, config.TickInterval)
	req.Equal(30*time.Second, config.PingInterval)
	req.Equal(24*time.Hour, config.AuthTokenDuration)
	req.Empty(config.OtelEndpoint)
}

func TestLoadConfig_From_Dotenv(t *testing.T) {
	req := require.New(t)
	file := filepath.Join(t.TempDir(), ".env")
	content := "AUTH_SECRET=another-secret-of-sixteen\nLOG_BACKEND=sqlite\nTICK_INTERVAL=250ms\n"
	req.NoError(os.WriteFile(file, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, key := range []string{"AUTH_SECRET", "LOG_BACKEND", "TICK_INTERVAL"} {
			_ = os.Unsetenv(key)
		}
	})

	config, err := LoadConfig(file)
	req.NoError(err)
	req.Equal(BackendSQLite, config.LogBackend)
	req.Equal(250*time.Millisecond, config.TickInterval)
}

func TestLoadConfig_Rejections(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"short secret", map[string]string{"AUTH_SECRET": "short"}},
		{"unknown backend", map[string]string{"AUTH_SECRET": "a-secret-of-sixteen-chars", "LOG_BACKEND": "postgres"}},
		{"zero tick", map[string]string{"AUTH_SECRET": "a-secret-of-sixteen-chars", "TICK_INTERVAL": "0s"}},
		{"bad level", map[string]string{"AUTH_SECRET": "a-secret-of-sixteen-chars", "LOG_LEVEL": "LOUD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AUTH_SECRET", "")
			_ = os.Unsetenv("AUTH_SECRET")
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
		})
	}
}
