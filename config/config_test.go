package config

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-extract/features"
)

// clearEnv blanks every SONIDO_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvInput, EnvOutput, EnvMode, EnvConcurrency, EnvSequential,
		EnvExtensions, EnvLogLevel, EnvNoProgress, EnvNoColor,
		EnvMaxDuration, EnvResampleQuality,
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func silenceUsage(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := usageOutput
	usageOutput = &buf
	t.Cleanup(func() { usageOutput = prev })
	return &buf
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, features.ModeMelSpectrogram, cfg.Mode)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, []string{".wav"}, cfg.Extensions)
	assert.False(t, cfg.Sequential)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "medium", cfg.ResampleQuality)
}

func TestParseFlags_Positional(t *testing.T) {
	silenceUsage(t)
	cfg := DefaultConfig()
	require.NoError(t, ParseFlags(&cfg, []string{"-m", "mfcc", "-j", "3", "--ext", ".wav,.flac", "in/", "out//"}))

	assert.Equal(t, "in", cfg.InputDir)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, features.ModeMFCC, cfg.Mode)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, []string{".wav", ".flac"}, cfg.Extensions)
}

func TestParseFlags_ModeAlias(t *testing.T) {
	silenceUsage(t)
	cfg := DefaultConfig()
	require.NoError(t, ParseFlags(&cfg, []string{"--mode=scattering", "a", "b"}))
	assert.Equal(t, features.ModeWST, cfg.Mode)
}

func TestParseFlags_Errors(t *testing.T) {
	silenceUsage(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad mode", []string{"--mode", "chromagram", "a", "b"}},
		{"one positional", []string{"a"}},
		{"three positionals", []string{"a", "b", "c"}},
		{"no positionals", nil},
		{"unknown flag", []string{"--frobnicate", "a", "b"}},
		{"empty ext", []string{"--ext", ",", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			assert.Error(t, ParseFlags(&cfg, tt.args))
		})
	}
}

func TestParseFlags_BadModeWrapsSentinel(t *testing.T) {
	silenceUsage(t)
	cfg := DefaultConfig()
	err := ParseFlags(&cfg, []string{"--mode", "chromagram", "a", "b"})
	assert.ErrorIs(t, err, features.ErrUnsupportedMode)
}

func TestParseFlags_HelpAndVersion(t *testing.T) {
	buf := silenceUsage(t)

	cfg := DefaultConfig()
	assert.ErrorIs(t, ParseFlags(&cfg, []string{"--help"}), flag.ErrHelp)
	assert.Contains(t, buf.String(), "melspectrogram | gammatonegram")

	cfg = DefaultConfig()
	assert.ErrorIs(t, ParseFlags(&cfg, []string{"-V"}), ErrVersion)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvInput:           "/data/in/",
		EnvOutput:          "/data/out",
		EnvMode:            "cqt",
		EnvConcurrency:     " 4 ",
		EnvSequential:      "true",
		EnvExtensions:      ".wav, .aiff",
		EnvLogLevel:        "debug",
		EnvNoProgress:      "1",
		EnvMaxDuration:     "30s",
		EnvResampleQuality: "HIGH",
	}
	cfg := DefaultConfig()
	require.NoError(t, applyEnv(&cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))

	assert.Equal(t, "/data/in", cfg.InputDir)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, features.ModeCQT, cfg.Mode)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.True(t, cfg.Sequential)
	assert.Equal(t, []string{".wav", ".aiff"}, cfg.Extensions)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.NoProgress)
	assert.False(t, cfg.NoColor)
	assert.Equal(t, 30*time.Second, cfg.MaxDuration)
	assert.Equal(t, "high", cfg.ResampleQuality)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_Errors(t *testing.T) {
	for key, value := range map[string]string{
		EnvMode:        "chroma",
		EnvConcurrency: "many",
		EnvSequential:  "perhaps",
		EnvMaxDuration: "soon",
	} {
		t.Run(key, func(t *testing.T) {
			cfg := DefaultConfig()
			err := applyEnv(&cfg, func(k string) (string, bool) {
				if k == key {
					return value, true
				}
				return "", false
			})
			assert.Error(t, err)
		})
	}
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	silenceUsage(t)

	envFile := filepath.Join(t.TempDir(), "sonido.env")
	contents := "SONIDO_MODE=stft\nSONIDO_CONCURRENCY=2\nSONIDO_LOG_LEVEL=warn\n"
	require.NoError(t, os.WriteFile(envFile, []byte(contents), 0o644))

	// process env beats the file, flags beat both
	t.Setenv(EnvConcurrency, "5")

	cfg, err := Load([]string{"--env-file", envFile, "--log-level", "error", "in", "out"})
	require.NoError(t, err)

	assert.Equal(t, features.ModeSTFT, cfg.Mode)
	assert.Equal(t, 5, cfg.Concurrency)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, envFile, cfg.EnvFile)
}

func TestLoad_PathsFromEnv(t *testing.T) {
	clearEnv(t)
	silenceUsage(t)
	t.Chdir(t.TempDir())

	t.Setenv(EnvInput, "in")
	t.Setenv(EnvOutput, "out")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "in", cfg.InputDir)
	assert.Equal(t, "out", cfg.OutputDir)
}

func TestLoad_EnvFileMissing(t *testing.T) {
	clearEnv(t)
	silenceUsage(t)
	t.Chdir(t.TempDir())

	// missing default file is fine
	_, err := Load([]string{"in", "out"})
	require.NoError(t, err)

	// missing explicit file is not
	_, err = Load([]string{"--env-file=" + filepath.Join(t.TempDir(), "nope.env"), "in", "out"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.InputDir, cfg.OutputDir = "in", "out"
		return cfg
	}
	require.NoError(t, func() error { c := valid(); return c.Validate() }())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"mode", func(c *Config) { c.Mode = "chroma" }},
		{"input", func(c *Config) { c.InputDir = "" }},
		{"concurrency", func(c *Config) { c.Concurrency = -1 }},
		{"extensions", func(c *Config) { c.Extensions = nil }},
		{"max duration", func(c *Config) { c.MaxDuration = -time.Second }},
		{"quality", func(c *Config) { c.ResampleQuality = "ultra" }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNormalizeDirArg(t *testing.T) {
	assert.Equal(t, "/", NormalizeDirArg("/"))
	assert.Equal(t, "a/b", NormalizeDirArg("a/b///"))
	assert.Equal(t, "a", NormalizeDirArg("a"))
}

func TestEnvFileArg(t *testing.T) {
	path, ok := envFileArg([]string{"-j", "2", "--env-file", "x.env", "a", "b"})
	assert.True(t, ok)
	assert.Equal(t, "x.env", path)

	path, ok = envFileArg([]string{"-env-file=y.env"})
	assert.True(t, ok)
	assert.Equal(t, "y.env", path)

	_, ok = envFileArg([]string{"a", "b", "--", "--env-file", "z"})
	assert.False(t, ok)
}
