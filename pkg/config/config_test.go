package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutPath(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.NoError(t, c.Validate())
	assert.Equal(t, game.DefaultSettings(), c.KitchenSettings())
}

func TestParse_DefaultYAMLMatchesDefault(t *testing.T) {
	c := &Config{}
	require.NoError(t, Parse([]byte(DefaultYAML()), c))
	want := Default()
	want.Server.OriginPatterns = []string{}
	assert.Equal(t, want, c)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dishes.yaml")
	configYAML := strings.TrimSpace(`
server:
  port: 9090
kitchen:
  wash_time: 2s
  rack_capacity: 4
sessions:
  idle_timeout: 10m
`)
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "info", c.Server.LogLevel)
	assert.Equal(t, 2*time.Second, c.Kitchen.WashTime.Std())
	assert.Equal(t, 5*time.Second, c.Kitchen.SpawnBaseDelay.Std())
	assert.Equal(t, 4, c.KitchenSettings().Rules.RackCapacity)
	assert.Equal(t, 10*time.Minute, c.Sessions.IdleTimeout.Std())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad duration", yaml: "kitchen:\n  wash_time: soon\n"},
		{name: "numeric duration", yaml: "kitchen:\n  wash_time: [1]\n"},
		{name: "zero rack", yaml: "kitchen:\n  rack_capacity: 0\n"},
		{name: "negative delay", yaml: "kitchen:\n  notice_delay: -1s\n"},
		{name: "port out of range", yaml: "server:\n  port: 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "-")+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/dishes.yaml")
	assert.Equal(t, "/etc/dishes.yaml", Path(""))
	assert.Equal(t, "local.yaml", Path("local.yaml"))
}
