package features

import "github.com/RyanBlaney/sonido-extract/algorithms/spectral"

// BaseSampleRate is the reference loading rate; the mel and CQT modes load
// at 1.46x this rate.
const BaseSampleRate = 22050

// Params holds the fixed numeric parameters of one transform. A zero
// SampleRate means the file's native rate. These values must not be tuned;
// arrays produced by other implementations depend on them.
type Params struct {
	SampleRate    int              `json:"sample_rate"`
	FFTSize       int              `json:"fft_size,omitempty"`
	HopSize       int              `json:"hop_size,omitempty"`
	PadMode       spectral.PadMode `json:"pad_mode"`
	Bins          int              `json:"bins,omitempty"`
	Coefficients  int              `json:"coefficients,omitempty"`
	BinsPerOctave int              `json:"bins_per_octave,omitempty"`
	MinFreq       float64          `json:"min_freq,omitempty"`
	MaxFreq       float64          `json:"max_freq,omitempty"` // 0 means Nyquist
	ScatteringJ   int              `json:"scattering_j,omitempty"`
	ScatteringQ   int              `json:"scattering_q,omitempty"`
	Support       int              `json:"support,omitempty"`
}

var (
	MelSpectrogramParams = Params{
		SampleRate: 32193, // int(1.46 * 22050)
		FFTSize:    1024,
		HopSize:    256,
		PadMode:    spectral.PadConstant,
		Bins:       95,
		MinFreq:    18,
		MaxFreq:    4186,
	}

	GammatonegramParams = Params{
		SampleRate: 0,
		FFTSize:    1024,
		HopSize:    256,
		PadMode:    spectral.PadReflect,
		Bins:       95,
		MinFreq:    18,
	}

	MFCCParams = Params{
		SampleRate:   BaseSampleRate,
		FFTSize:      2048,
		HopSize:      512,
		PadMode:      spectral.PadConstant,
		Bins:         50,
		Coefficients: 45,
	}

	STFTParams = Params{
		SampleRate: BaseSampleRate,
		FFTSize:    2024,
		HopSize:    512,
		PadMode:    spectral.PadConstant,
	}

	CQTParams = Params{
		SampleRate:    32193,
		HopSize:       256,
		PadMode:       spectral.PadConstant,
		Bins:          95,
		BinsPerOctave: 12,
		MinFreq:       18,
	}

	WSTParams = Params{
		SampleRate:  BaseSampleRate,
		ScatteringJ: 4,
		ScatteringQ: 6,
		Support:     1 << 15,
	}
)

// ParamsFor returns the parameter set of a mode.
func ParamsFor(m Mode) (Params, bool) {
	switch m {
	case ModeMelSpectrogram:
		return MelSpectrogramParams, true
	case ModeGammatonegram:
		return GammatonegramParams, true
	case ModeMFCC:
		return MFCCParams, true
	case ModeSTFT:
		return STFTParams, true
	case ModeCQT:
		return CQTParams, true
	case ModeWST:
		return WSTParams, true
	default:
		return Params{}, false
	}
}
