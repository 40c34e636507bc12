// Package config loads run settings from flags, REBOOT_* environment
// variables and an optional YAML file through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/chazu/reboot/pkg/cuboid"
	"github.com/spf13/viper"
)

const envPrefix = "REBOOT"

// Keys understood by Load.
const (
	KeyRegionMin   = "region.min"
	KeyRegionMax   = "region.max"
	KeyWorkers     = "workers"
	KeyStrict      = "strict"
	KeyEvalTimeout = "eval.timeout"
	KeyMeshKernel  = "mesh.kernel"
	KeyMeshCells   = "mesh.cells"
	KeyMeshClip    = "mesh.clip"
	KeyLogLevel    = "log.level"
)

// Kernel names accepted by mesh.kernel.
const (
	KernelExact = "exact"
	KernelSdfx  = "sdfx"
)

// Config is the resolved run configuration.
type Config struct {
	RegionMin   int
	RegionMax   int
	Workers     int
	Strict      bool
	EvalTimeout time.Duration
	MeshKernel  string
	MeshCells   int
	MeshClip    bool
	LogLevel    string
}

// Region returns the bounded-volume region as a cube.
func (c *Config) Region() cuboid.Cuboid {
	return cuboid.Cube(c.RegionMin, c.RegionMax)
}

// SetDefaults installs the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRegionMin, cuboid.InitializationRegion.XMin)
	v.SetDefault(KeyRegionMax, cuboid.InitializationRegion.XMax)
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyStrict, false)
	v.SetDefault(KeyEvalTimeout, 5*time.Second)
	v.SetDefault(KeyMeshKernel, KernelExact)
	v.SetDefault(KeyMeshCells, 200)
	v.SetDefault(KeyMeshClip, false)
	v.SetDefault(KeyLogLevel, "warning")
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file into v when file is non-empty, then resolves and checks
// every key.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", file, err)
		}
	}
	c := &Config{
		RegionMin:   v.GetInt(KeyRegionMin),
		RegionMax:   v.GetInt(KeyRegionMax),
		Workers:     v.GetInt(KeyWorkers),
		Strict:      v.GetBool(KeyStrict),
		EvalTimeout: v.GetDuration(KeyEvalTimeout),
		MeshKernel:  strings.ToLower(v.GetString(KeyMeshKernel)),
		MeshCells:   v.GetInt(KeyMeshCells),
		MeshClip:    v.GetBool(KeyMeshClip),
		LogLevel:    v.GetString(KeyLogLevel),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.RegionMin > c.RegionMax {
		return fmt.Errorf("config: %s (%d) > %s (%d)", KeyRegionMin, c.RegionMin, KeyRegionMax, c.RegionMax)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: %s must not be negative, got %d", KeyWorkers, c.Workers)
	}
	if c.EvalTimeout <= 0 {
		return fmt.Errorf("config: %s must be positive, got %s", KeyEvalTimeout, c.EvalTimeout)
	}
	switch c.MeshKernel {
	case KernelExact, KernelSdfx:
	default:
		return fmt.Errorf("config: unknown %s %q (want %s or %s)", KeyMeshKernel, c.MeshKernel, KernelExact, KernelSdfx)
	}
	if c.MeshCells <= 0 {
		return fmt.Errorf("config: %s must be positive, got %d", KeyMeshCells, c.MeshCells)
	}
	return nil
}
