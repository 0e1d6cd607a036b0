package features

import (
	"fmt"
	"sync"

	"github.com/RyanBlaney/sonido-extract/algorithms/spectral"
	"github.com/RyanBlaney/sonido-extract/logging"
)

// extractor implements the built-in transforms. Filter banks and kernels
// are built on first use and then only read.
type extractor struct {
	loader AudioLoader
	stftc  *spectral.STFT
	mel    *spectral.MelScale

	melOnce sync.Once
	melBank [][]float64

	mfccOnce sync.Once
	mfccBank [][]float64
	mfccDCT  *spectral.MFCC
	mfccErr  error

	cqtOnce sync.Once
	cqtc    *spectral.CQT
	cqtErr  error

	wstOnce sync.Once
	wstc    *spectral.Scattering1D
	wstErr  error

	// gammatone banks depend on the native rate of each file
	gammaMu    sync.Mutex
	gammaBanks map[int]*spectral.GammatoneFilterBank
}

func newExtractor(loader AudioLoader) *extractor {
	return &extractor{
		loader:     loader,
		stftc:      spectral.NewSTFT(),
		mel:        spectral.NewMelScale(),
		gammaBanks: make(map[int]*spectral.GammatoneFilterBank),
	}
}

func (x *extractor) load(path string, p Params) ([]float64, int, error) {
	audio, err := x.loader.DecodeFile(path, p.SampleRate)
	if err != nil {
		return nil, 0, fmt.Errorf("decode: %w", err)
	}
	return audio.PCM, audio.SampleRate, nil
}

func (x *extractor) spectrogram(pcm []float64, sampleRate int, p Params) (*spectral.STFTResult, error) {
	return x.stftc.Compute(pcm, sampleRate, spectral.STFTParams{
		WindowSize: p.FFTSize,
		HopSize:    p.HopSize,
		Center:     true,
		PadMode:    p.PadMode,
	})
}

func (x *extractor) melSpectrogram(path string) (*Array, error) {
	p := MelSpectrogramParams
	pcm, sr, err := x.load(path, p)
	if err != nil {
		return nil, err
	}

	spec, err := x.spectrogram(pcm, sr, p)
	if err != nil {
		return nil, err
	}

	x.melOnce.Do(func() {
		x.melBank = x.mel.CreateMelFilterBank(p.Bins, p.FFTSize, p.SampleRate, p.MinFreq, p.MaxFreq)
	})

	melPower := x.mel.ApplyFilterBankFrames(spec.Power(), x.melBank)
	db := spectral.PowerToDB(melPower, spectral.MaxValue(melPower), spectral.DefaultPowerAmin, spectral.DefaultTopDB)
	return FromRows(db)
}

func (x *extractor) gammatonegram(path string) (*Array, error) {
	p := GammatonegramParams
	pcm, sr, err := x.load(path, p)
	if err != nil {
		return nil, err
	}

	bank, err := x.gammatoneBank(sr, p)
	if err != nil {
		return nil, err
	}

	spec, err := x.spectrogram(pcm, sr, p)
	if err != nil {
		return nil, err
	}

	energies, err := bank.Apply(spec.Power())
	if err != nil {
		return nil, err
	}
	return FromRows(energies)
}

func (x *extractor) gammatoneBank(sampleRate int, p Params) (*spectral.GammatoneFilterBank, error) {
	x.gammaMu.Lock()
	defer x.gammaMu.Unlock()

	if bank, ok := x.gammaBanks[sampleRate]; ok {
		return bank, nil
	}
	bank, err := spectral.NewGammatoneFilterBank(sampleRate, p.FFTSize, p.Bins, p.MinFreq, p.MaxFreq)
	if err != nil {
		return nil, err
	}
	x.gammaBanks[sampleRate] = bank

	logging.Debug("Built gammatone filter bank", logging.Fields{
		"component":   "features",
		"sample_rate": sampleRate,
		"filters":     p.Bins,
	})
	return bank, nil
}

func (x *extractor) mfcc(path string) (*Array, error) {
	p := MFCCParams
	pcm, sr, err := x.load(path, p)
	if err != nil {
		return nil, err
	}

	x.mfccOnce.Do(func() {
		x.mfccBank = x.mel.CreateMelFilterBank(p.Bins, p.FFTSize, p.SampleRate, 0, float64(p.SampleRate)/2)
		x.mfccDCT, x.mfccErr = spectral.NewMFCC(p.Bins, p.Coefficients)
	})
	if x.mfccErr != nil {
		return nil, x.mfccErr
	}

	spec, err := x.spectrogram(pcm, sr, p)
	if err != nil {
		return nil, err
	}

	melPower := x.mel.ApplyFilterBankFrames(spec.Power(), x.mfccBank)
	logMel := spectral.PowerToDB(melPower, 1.0, spectral.DefaultPowerAmin, spectral.DefaultTopDB)

	coeffs, err := x.mfccDCT.ComputeFrames(logMel)
	if err != nil {
		return nil, err
	}

	arr, err := FromRows(coeffs)
	if err != nil {
		return nil, err
	}
	return arr.Flatten(), nil
}

func (x *extractor) stft(path string) (*Array, error) {
	p := STFTParams
	pcm, sr, err := x.load(path, p)
	if err != nil {
		return nil, err
	}

	spec, err := x.spectrogram(pcm, sr, p)
	if err != nil {
		return nil, err
	}

	magnitude := spectral.Transpose(spec.Magnitude)
	db := spectral.AmplitudeToDB(magnitude, spectral.MaxValue(magnitude), spectral.DefaultAmplitudeAmin, spectral.DefaultTopDB)
	return FromRows(db)
}

func (x *extractor) cqt(path string) (*Array, error) {
	p := CQTParams
	pcm, _, err := x.load(path, p)
	if err != nil {
		return nil, err
	}

	x.cqtOnce.Do(func() {
		x.cqtc, x.cqtErr = spectral.NewCQT(p.SampleRate, p.HopSize, p.MinFreq, p.Bins, p.BinsPerOctave)
	})
	if x.cqtErr != nil {
		return nil, x.cqtErr
	}

	magnitude, err := x.cqtc.Compute(pcm)
	if err != nil {
		return nil, err
	}

	db := spectral.AmplitudeToDB(magnitude, spectral.MaxValue(magnitude), spectral.DefaultAmplitudeAmin, spectral.DefaultTopDB)
	return FromRows(db)
}

func (x *extractor) wst(path string) (*Array, error) {
	p := WSTParams
	pcm, _, err := x.load(path, p)
	if err != nil {
		return nil, err
	}

	x.wstOnce.Do(func() {
		x.wstc, x.wstErr = spectral.NewScattering1D(p.ScatteringJ, p.ScatteringQ, p.Support)
	})
	if x.wstErr != nil {
		return nil, x.wstErr
	}

	coeffs, err := x.wstc.Compute(pcm)
	if err != nil {
		return nil, err
	}
	return FromRows(coeffs)
}
