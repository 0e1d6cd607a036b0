package config

// CLI flag parsing and help text. Flags are applied on top of whatever the
// environment already set; positional INPUT OUTPUT args are required unless
// both paths came from the environment.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/RyanBlaney/sonido-extract/features"
)

// Version is shown by --version; override with -ldflags "-X ...config.Version=...".
var Version = "0.1.0-dev"

// ErrVersion is returned by ParseFlags when --version was given.
var ErrVersion = errors.New("version requested")

// Usage output goes here; tests may redirect it.
var usageOutput io.Writer = os.Stderr

// ParseFlags parses args (without the program name) into cfg. --help
// returns flag.ErrHelp after printing usage.
func ParseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("sonido-extract", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { printUsage(usageOutput) }

	var showVersion, showHelp bool
	var envFile string

	fs.Var(&modeValue{&cfg.Mode}, "mode", "Transform mode")
	fs.Var(&modeValue{&cfg.Mode}, "m", "Same as --mode")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Worker count")
	fs.IntVar(&cfg.Concurrency, "j", cfg.Concurrency, "Same as --concurrency")
	fs.BoolVar(&cfg.Sequential, "sequential", cfg.Sequential, "Process files one at a time")
	fs.Var(&listValue{&cfg.Extensions}, "ext", "Comma-separated audio extensions")
	fs.DurationVar(&cfg.MaxDuration, "max-duration", cfg.MaxDuration, "Truncate audio longer than this")
	fs.StringVar(&cfg.ResampleQuality, "resample-quality", cfg.ResampleQuality, "fast | medium | high")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug | info | warn | error")
	fs.BoolVar(&cfg.NoProgress, "no-progress", cfg.NoProgress, "Disable the progress bar")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored logs")
	fs.StringVar(&envFile, "env-file", "", "Read settings from this env file")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&showVersion, "V", false, "Same as --version")
	fs.BoolVar(&showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&showHelp, "h", false, "Same as --help")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(usageOutput)
		return flag.ErrHelp
	}
	if showVersion {
		return ErrVersion
	}

	return parsePositionalArgs(fs, cfg)
}

// parsePositionalArgs sets InputDir and OutputDir from the positional args.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	switch len(args) {
	case 0:
		if cfg.InputDir != "" && cfg.OutputDir != "" {
			return nil
		}
	case 2:
		cfg.InputDir = NormalizeDirArg(args[0])
		cfg.OutputDir = NormalizeDirArg(args[1])
		return nil
	}
	return fmt.Errorf("need exactly input_dir and output_dir (got %d args)", len(args))
}

// envFileArg finds --env-file before full parsing so the file can be loaded
// underneath the flags.
func envFileArg(args []string) (string, bool) {
	for i, a := range args {
		if a == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "env-file" {
			continue
		}
		if hasValue {
			return value, true
		}
		if i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func printUsage(w io.Writer) {
	const col1 = 30
	modes := make([]string, 0, 6)
	for _, m := range features.Modes() {
		modes = append(modes, string(m))
	}

	lines := []struct {
		flags string
		desc  string
	}{
		{"", "sonido-extract v" + Version + " - batch audio feature extraction"},
		{"", ""},
		{"  sonido-extract [OPTIONS] <input_dir> <output_dir>", ""},
		{"", ""},
		{"Extraction", ""},
		{"  -m, --mode <name>", strings.Join(modes, " | ") + " (default: melspectrogram)"},
		{"  -j, --concurrency <n>", "Worker count (default: 8)"},
		{"  --sequential", "Process files one at a time in discovery order"},
		{"  --ext <list>", "Audio extensions to include (default: .wav)"},
		{"  --max-duration <d>", "Truncate decoded audio, e.g. 30s (default: off)"},
		{"  --resample-quality <q>", "fast | medium | high (default: medium)"},
		{"", ""},
		{"Display", ""},
		{"  --log-level <level>", "debug | info | warn | error (default: info)"},
		{"  --no-progress", "Disable the progress bar"},
		{"  --no-color", "Disable colored logs"},
		{"", ""},
		{"Utility", ""},
		{"  --env-file <path>", "Env file with SONIDO_* settings (default: .env)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		switch {
		case l.flags == "" && l.desc == "":
			fmt.Fprintln(w)
		case l.desc == "":
			fmt.Fprintln(w, l.flags)
		case l.flags == "":
			fmt.Fprintln(w, l.desc)
		default:
			padding := max(col1-len(l.flags), 1)
			fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
		}
	}
}

// flag.Value adapters.

type modeValue struct{ p *features.Mode }

func (m *modeValue) String() string {
	if m.p == nil {
		return ""
	}
	return string(*m.p)
}

func (m *modeValue) Set(s string) error {
	mode, err := features.ParseMode(s)
	if err != nil {
		return err
	}
	*m.p = mode
	return nil
}

type listValue struct{ p *[]string }

func (l *listValue) String() string {
	if l.p == nil {
		return ""
	}
	return strings.Join(*l.p, ",")
}

func (l *listValue) Set(s string) error {
	items := splitList(s)
	if len(items) == 0 {
		return fmt.Errorf("empty extension list")
	}
	*l.p = items
	return nil
}
