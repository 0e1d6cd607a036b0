package features

import (
	"fmt"
	"strings"
)

// Mode selects one feature transform.
type Mode string

const (
	ModeMelSpectrogram Mode = "melspectrogram" // Log-power mel spectrogram.
	ModeGammatonegram  Mode = "gammatonegram"  // ERB-spaced gammatone energies.
	ModeMFCC           Mode = "mfcc"           // Flattened cepstral coefficients.
	ModeSTFT           Mode = "stft"           // Log-magnitude linear spectrogram.
	ModeCQT            Mode = "cqt"            // Log-magnitude constant-Q spectrogram.
	ModeWST            Mode = "wst"            // Second-order wavelet scattering.
)

var modes = []Mode{ModeMelSpectrogram, ModeGammatonegram, ModeMFCC, ModeSTFT, ModeCQT, ModeWST}

var modeAliases = map[string]Mode{
	"mel-spectrogram":    ModeMelSpectrogram,
	"mel":                ModeMelSpectrogram,
	"wavelet-scattering": ModeWST,
	"scattering":         ModeWST,
	"constant-q":         ModeCQT,
}

// Modes returns every supported mode in a fixed order.
func Modes() []Mode {
	out := make([]Mode, len(modes))
	copy(out, modes)
	return out
}

// ParseMode accepts a canonical mode name or one of its long aliases,
// case-insensitively. Anything else fails with ErrUnsupportedMode.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, m := range modes {
		if string(m) == name {
			return m, nil
		}
	}
	if m, ok := modeAliases[name]; ok {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
}

// Valid reports whether m is one of the six supported modes.
func (m Mode) Valid() bool {
	for _, known := range modes {
		if m == known {
			return true
		}
	}
	return false
}

func (m Mode) String() string { return string(m) }
