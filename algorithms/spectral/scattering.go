package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrSignalTooLong is returned when a signal exceeds the scattering support.
var ErrSignalTooLong = errors.New("signal longer than scattering support")

// Scattering1D computes a second-order 1-D wavelet scattering transform with
// Gaussian filters defined in the Fourier domain.
//
// Output rows are ordered zeroth order, then first order by decreasing
// center frequency, then second order grouped by first-order parent. Every
// row is low-pass filtered and subsampled by 2^J.
type Scattering1D struct {
	j    int
	q    int
	size int

	phi  []float64
	psi1 []filter
	psi2 []filter

	// pairs[i] lists the second-order filters applied below psi1[i]
	pairs [][]int
}

type filter struct {
	xi      float64
	sigma   float64
	fourier []float64
}

// NewScattering1D builds the filter bank for invariance scale 2^J, Q
// first-order wavelets per octave and a support of size samples. size must
// be a power of two no smaller than 2^J.
func NewScattering1D(J, Q, size int) (*Scattering1D, error) {
	if J <= 0 || Q <= 0 {
		return nil, fmt.Errorf("invalid scattering scales: J=%d Q=%d", J, Q)
	}
	if size < 1<<J || size&(size-1) != 0 {
		return nil, fmt.Errorf("scattering support %d must be a power of two >= %d", size, 1<<J)
	}

	s := &Scattering1D{j: J, q: Q, size: size}
	s.phi = gaussian(size, 0, 0.1/float64(int(1)<<J), false)

	ratio := math.Pow(2, -1/float64(Q))
	sigmaFactor := (1 - ratio) / (1 + ratio)
	for lambda := range J * Q {
		xi := 0.35 * math.Pow(2, -float64(lambda)/float64(Q))
		sigma := 0.35 * sigmaFactor * math.Pow(2, -float64(lambda)/float64(Q))
		s.psi1 = append(s.psi1, filter{xi: xi, sigma: sigma, fourier: gaussian(size, xi, sigma, true)})
	}
	for j2 := range J {
		xi := 0.35 * math.Pow(2, -float64(j2))
		sigma := 0.35 / 3 * math.Pow(2, -float64(j2))
		s.psi2 = append(s.psi2, filter{xi: xi, sigma: sigma, fourier: gaussian(size, xi, sigma, true)})
	}

	s.pairs = make([][]int, len(s.psi1))
	for i, p1 := range s.psi1 {
		for k, p2 := range s.psi2 {
			if p2.xi < p1.xi {
				s.pairs[i] = append(s.pairs[i], k)
			}
		}
	}

	return s, nil
}

// gaussian samples exp(-(w-xi)^2 / 2sigma^2) on the normalised DFT grid.
// Analytic filters are zero at negative frequencies.
func gaussian(n int, xi, sigma float64, analytic bool) []float64 {
	g := make([]float64, n)
	for k := range g {
		w := float64(k) / float64(n)
		if k > n/2 {
			w -= 1
		}
		if analytic && w < 0 {
			continue
		}
		d := (w - xi) / sigma
		g[k] = math.Exp(-0.5 * d * d)
	}
	return g
}

// Shape returns the output dimensions (rows, columns).
func (s *Scattering1D) Shape() (int, int) {
	rows := 1 + len(s.psi1)
	for _, p := range s.pairs {
		rows += len(p)
	}
	return rows, s.size >> s.j
}

// Compute zero-pads signal to the support and returns the scattering
// coefficients. Signals longer than the support fail with ErrSignalTooLong.
func (s *Scattering1D) Compute(signal []float64) ([][]float64, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if len(signal) > s.size {
		return nil, fmt.Errorf("%w: %d > %d samples", ErrSignalTooLong, len(signal), s.size)
	}

	fft := fourier.NewCmplxFFT(s.size)
	buf := make([]complex128, s.size)
	for i, v := range signal {
		buf[i] = complex(v, 0)
	}
	xHat := fft.Coefficients(nil, buf)

	rows, _ := s.Shape()
	out := make([][]float64, 0, rows)
	out = append(out, s.lowpass(fft, xHat))

	first := make([][]complex128, len(s.psi1))
	for i, p1 := range s.psi1 {
		u1 := s.modulus(fft, xHat, p1.fourier)
		first[i] = fft.Coefficients(nil, u1)
		out = append(out, s.lowpass(fft, first[i]))
	}

	for i, children := range s.pairs {
		for _, k := range children {
			u2 := s.modulus(fft, first[i], s.psi2[k].fourier)
			out = append(out, s.lowpass(fft, fft.Coefficients(nil, u2)))
		}
	}

	return out, nil
}

// modulus returns |ifft(spec * h)| as a complex signal ready for the next
// forward transform.
func (s *Scattering1D) modulus(fft *fourier.CmplxFFT, spec []complex128, h []float64) []complex128 {
	prod := make([]complex128, s.size)
	for k := range prod {
		prod[k] = spec[k] * complex(h[k], 0)
	}
	seq := fft.Sequence(nil, prod)
	scale := 1 / float64(s.size)
	for i, v := range seq {
		seq[i] = complex(cmplx.Abs(v)*scale, 0)
	}
	return seq
}

// lowpass applies phi to a spectrum, returns to the time domain and keeps
// every 2^J-th sample.
func (s *Scattering1D) lowpass(fft *fourier.CmplxFFT, spec []complex128) []float64 {
	prod := make([]complex128, s.size)
	for k := range prod {
		prod[k] = spec[k] * complex(s.phi[k], 0)
	}
	seq := fft.Sequence(nil, prod)

	step := 1 << s.j
	scale := 1 / float64(s.size)
	row := make([]float64, s.size/step)
	for i := range row {
		row[i] = real(seq[i*step]) * scale
	}
	return row
}
