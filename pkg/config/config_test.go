package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chazu/reboot/pkg/cuboid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, cuboid.InitializationRegion, c.Region())
	assert.Equal(t, 1, c.Workers)
	assert.False(t, c.Strict)
	assert.Equal(t, 5*time.Second, c.EvalTimeout)
	assert.Equal(t, KernelExact, c.MeshKernel)
	assert.Equal(t, 200, c.MeshCells)
	assert.Equal(t, "warning", c.LogLevel)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("REBOOT_REGION_MIN", "-10")
	t.Setenv("REBOOT_REGION_MAX", "10")
	t.Setenv("REBOOT_WORKERS", "4")
	t.Setenv("REBOOT_MESH_KERNEL", "SDFX")

	c, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, cuboid.Cube(-10, 10), c.Region())
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, KernelSdfx, c.MeshKernel)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reboot.yaml")
	data := []byte("region:\n  min: -20\n  max: 20\nstrict: true\neval:\n  timeout: 2s\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	c, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, cuboid.Cube(-20, 20), c.Region())
	assert.True(t, c.Strict)
	assert.Equal(t, 2*time.Second, c.EvalTimeout)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c, err := Load(New(), "")
		require.NoError(t, err)
		return c
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"inverted region", func(c *Config) { c.RegionMin, c.RegionMax = 5, -5 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"zero timeout", func(c *Config) { c.EvalTimeout = 0 }},
		{"unknown kernel", func(c *Config) { c.MeshKernel = "manifold" }},
		{"zero cells", func(c *Config) { c.MeshCells = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
