package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/egandro/go-affinity/pkg/cpulist"
)

const (
	ConstantConfigFilename = "/etc/default/go-affinity"

	// Logging defaults
	DefaultLogLevel = "info"
	DefaultLogFile  = "" // stderr

	// Probe defaults
	// DefaultProbeRounds averages out scheduler noise without making a probe of every core slow.
	DefaultProbeRounds = 5
	// DefaultProbeIterations keeps one busy loop around a millisecond on current hardware,
	// well above timer resolution.
	DefaultProbeIterations = 1_000_000
	DefaultProbeParallel   = 1
	DefaultProbeTimeout    = 120 // in seconds
)

// AdaptiveProbeParameters scales the probe down on large machines, where every core is
// measured in turn. Returns (rounds, iterations).
func AdaptiveProbeParameters() (int, int) {
	cpuCount := runtime.NumCPU()

	limits := []struct {
		cores      int
		rounds     int
		iterations int
	}{
		{16, DefaultProbeRounds, DefaultProbeIterations},
		{64, 3, 500_000},
		{256, 2, 250_000},
	}
	for _, l := range limits {
		if cpuCount <= l.cores {
			return l.rounds, l.iterations
		}
	}
	return 1, 100_000
}

type Config struct {
	LogLevel        string
	LogFile         string
	ProbeRounds     int
	ProbeIterations int
	ProbeParallel   int
	ProbeTimeout    int // in seconds
	DefaultCores    string
}

// Validate checks the values the environment may have got wrong.
func (c *Config) Validate() error {
	if c.ProbeRounds <= 0 {
		return fmt.Errorf("AFFINITY_PROBE_ROUNDS must be positive, got %d", c.ProbeRounds)
	}
	if c.ProbeIterations <= 0 {
		return fmt.Errorf("AFFINITY_PROBE_ITERATIONS must be positive, got %d", c.ProbeIterations)
	}
	if c.ProbeParallel <= 0 {
		return fmt.Errorf("AFFINITY_PROBE_PARALLEL must be positive, got %d", c.ProbeParallel)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("AFFINITY_PROBE_TIMEOUT must be positive, got %d", c.ProbeTimeout)
	}
	if _, err := cpulist.Parse(c.DefaultCores); err != nil {
		return fmt.Errorf("AFFINITY_DEFAULT_CORES: %w", err)
	}
	return nil
}

// ProbeTimeoutDuration returns ProbeTimeout as a time.Duration.
func (c *Config) ProbeTimeoutDuration() time.Duration {
	return time.Duration(c.ProbeTimeout) * time.Second
}

// Load reads filename (dotenv format) into the environment and builds the config from
// AFFINITY_* variables. A missing file is not an error.
func Load(filename string) *Config {
	if filename == "" {
		filename = ConstantConfigFilename
	}
	_ = godotenv.Load(filename)

	defaultRounds, defaultIterations := AdaptiveProbeParameters()

	return &Config{
		LogLevel:        getEnv("AFFINITY_LOG_LEVEL", DefaultLogLevel),
		LogFile:         getEnv("AFFINITY_LOG_FILE", DefaultLogFile),
		ProbeRounds:     getEnvInt("AFFINITY_PROBE_ROUNDS", defaultRounds),
		ProbeIterations: getEnvInt("AFFINITY_PROBE_ITERATIONS", defaultIterations),
		ProbeParallel:   getEnvInt("AFFINITY_PROBE_PARALLEL", DefaultProbeParallel),
		ProbeTimeout:    getEnvInt("AFFINITY_PROBE_TIMEOUT", DefaultProbeTimeout),
		DefaultCores:    getEnv("AFFINITY_DEFAULT_CORES", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
