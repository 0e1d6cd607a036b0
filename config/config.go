// Package config assembles runtime settings for the extractor from
// defaults, an optional .env file, SONIDO_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/RyanBlaney/sonido-extract/features"
	"github.com/RyanBlaney/sonido-extract/logging"
	"github.com/RyanBlaney/sonido-extract/pipeline"
)

// DefaultEnvFile is read when present; a missing default file is not an
// error.
const DefaultEnvFile = ".env"

// Environment variable names.
const (
	EnvInput           = "SONIDO_INPUT"
	EnvOutput          = "SONIDO_OUTPUT"
	EnvMode            = "SONIDO_MODE"
	EnvConcurrency     = "SONIDO_CONCURRENCY"
	EnvSequential      = "SONIDO_SEQUENTIAL"
	EnvExtensions      = "SONIDO_EXTENSIONS"
	EnvLogLevel        = "SONIDO_LOG_LEVEL"
	EnvNoProgress      = "SONIDO_NO_PROGRESS"
	EnvNoColor         = "SONIDO_NO_COLOR"
	EnvMaxDuration     = "SONIDO_MAX_DURATION"
	EnvResampleQuality = "SONIDO_RESAMPLE_QUALITY"
)

// Config holds all runtime settings. It starts from DefaultConfig and is
// overlaid by LoadEnv and ParseFlags.
type Config struct {
	// Paths (positional args or SONIDO_INPUT / SONIDO_OUTPUT).
	InputDir  string
	OutputDir string

	// Extraction.
	Mode        features.Mode // Default: melspectrogram.
	Concurrency int           // Default: 8 workers.
	Sequential  bool          // Process files one at a time in discovery order.
	Extensions  []string      // Default: [".wav"].

	// Decoding.
	MaxDuration     time.Duration // Default: 0 (whole file).
	ResampleQuality string        // Default: "medium".

	// Display and logging.
	LogLevel   string // Default: "info".
	NoProgress bool
	NoColor    bool

	EnvFile string // Default: ".env".
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		Mode:            features.ModeMelSpectrogram,
		Concurrency:     pipeline.DefaultConcurrency,
		Extensions:      append([]string(nil), pipeline.DefaultExtensions...),
		ResampleQuality: "medium",
		LogLevel:        "info",
		EnvFile:         DefaultEnvFile,
	}
}

// Load builds a Config from defaults, the env file, the process
// environment and args (without the program name), then validates it.
// --help and --version surface as flag.ErrHelp and ErrVersion.
func Load(args []string) (*Config, error) {
	cfg := DefaultConfig()

	envFile, explicit := envFileArg(args)
	if envFile == "" {
		envFile = cfg.EnvFile
	}
	if err := LoadEnv(&cfg, envFile, explicit); err != nil {
		return nil, err
	}
	if err := ParseFlags(&cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnv overlays cfg with variables from envFile and the process
// environment; the process environment wins. A missing file is an error
// only when required is set.
func LoadEnv(cfg *Config, envFile string, required bool) error {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = vars
			cfg.EnvFile = envFile
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return fmt.Errorf("reading env file %s: %w", envFile, err)
		}
	}

	return applyEnv(cfg, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	})
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvInput); ok && v != "" {
		cfg.InputDir = NormalizeDirArg(v)
	}
	if v, ok := lookup(EnvOutput); ok && v != "" {
		cfg.OutputDir = NormalizeDirArg(v)
	}
	if v, ok := lookup(EnvMode); ok && v != "" {
		m, err := features.ParseMode(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMode, err)
		}
		cfg.Mode = m
	}
	if v, ok := lookup(EnvConcurrency); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be a whole number (got %q)", EnvConcurrency, v)
		}
		cfg.Concurrency = n
	}
	if v, ok := lookup(EnvExtensions); ok && v != "" {
		cfg.Extensions = splitList(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvMaxDuration); ok && v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxDuration, err)
		}
		cfg.MaxDuration = d
	}
	if v, ok := lookup(EnvResampleQuality); ok && v != "" {
		cfg.ResampleQuality = strings.ToLower(strings.TrimSpace(v))
	}

	for key, dst := range map[string]*bool{
		EnvSequential: &cfg.Sequential,
		EnvNoProgress: &cfg.NoProgress,
		EnvNoColor:    &cfg.NoColor,
	} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be a boolean (got %q)", key, v)
		}
		*dst = b
	}
	return nil
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: %q", features.ErrUnsupportedMode, string(c.Mode))
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("need exactly input_dir and output_dir")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative (got %d)", c.Concurrency)
	}
	if len(c.Extensions) == 0 {
		return errors.New("at least one audio extension is required")
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("max duration must not be negative (got %v)", c.MaxDuration)
	}
	switch c.ResampleQuality {
	case "fast", "medium", "high":
	default:
		return fmt.Errorf("invalid resample quality %q (use fast, medium or high)", c.ResampleQuality)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
