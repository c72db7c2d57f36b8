package config

import (
	"testing"
)

func FuzzGetEnvInt(f *testing.F) {
	f.Add("42")
	f.Add("-1")
	f.Add("0")
	f.Add("")
	f.Add("not-a-number")
	f.Add("9999999999999999999999")
	f.Add("  123  ")
	f.Add("1.5")

	f.Fuzz(func(t *testing.T, input string) {
		key := "FUZZ_TEST_INT"
		t.Setenv(key, input)

		// Should never panic, always return fallback or parsed value
		_ = getEnvInt(key, 42)
	})
}

func FuzzValidateDefaultCores(f *testing.F) {
	f.Add("0-3,8")
	f.Add("")
	f.Add("3-1")
	f.Add(",,")

	f.Fuzz(func(t *testing.T, cores string) {
		cfg := Config{ProbeRounds: 1, ProbeIterations: 1, ProbeParallel: 1, ProbeTimeout: 1, DefaultCores: cores}
		// Should never panic
		_ = cfg.Validate()
	})
}
