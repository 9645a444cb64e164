package audio

import (
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
	"github.com/cwbudde/algo-dsp/dsp/signal"
	"github.com/cwbudde/algo-dsp/dsp/window"
)

const (
	// dcBlockCutoffHz is the corner frequency of the DC-block high-pass filter.
	dcBlockCutoffHz = 20.0
	// dcBlockQ gives a Butterworth response.
	dcBlockQ = 0.7071067811865476
)

// PeakNormalize scales samples so the peak amplitude reaches 1.0.
// Silence is returned unchanged.
func PeakNormalize(samples []float32) []float32 {
	if len(samples) == 0 {
		return []float32{}
	}

	// Normalize only fails on empty input or a negative target.
	out, err := signal.Normalize(toFloat64(samples), 1.0)
	if err != nil {
		return clone(samples)
	}

	return toFloat32(out)
}

// DCBlock removes the mean of samples and then runs a 20 Hz high-pass biquad
// to suppress slow drift. Sample rates too low for the cutoff only get the
// mean removed.
func DCBlock(samples []float32, sampleRate int) []float32 {
	if len(samples) == 0 || sampleRate < 1 {
		return clone(samples)
	}

	x, err := signal.RemoveDC(toFloat64(samples))
	if err != nil {
		return clone(samples)
	}

	coeffs := design.Highpass(dcBlockCutoffHz, dcBlockQ, float64(sampleRate))
	if coeffs != (biquad.Coefficients{}) {
		biquad.NewSection(coeffs).ProcessBlock(x)
	}

	return toFloat32(x)
}

// FadeIn applies a linear fade-in ramp over the given duration in milliseconds.
func FadeIn(samples []float32, sampleRate int, ms float64) []float32 {
	out := clone(samples)

	ramp := linearRamp(min(fadeLength(sampleRate, ms), len(out)))
	for i, g := range ramp {
		out[i] *= float32(g)
	}

	return out
}

// FadeOut applies a linear fade-out ramp over the given duration in milliseconds.
// The last sample is always zero.
func FadeOut(samples []float32, sampleRate int, ms float64) []float32 {
	out := clone(samples)

	ramp := linearRamp(min(fadeLength(sampleRate, ms), len(out)))
	last := len(out) - 1
	for i, g := range ramp {
		out[last-i] *= float32(g)
	}

	return out
}

// linearRamp returns n gains rising from 0 towards 1 (i/n), taken from the
// rising half of a periodic triangle window of length 2n.
func linearRamp(n int) []float64 {
	if n < 1 {
		return nil
	}

	return window.Generate(window.TypeTriangle, 2*n, window.WithPeriodic())[:n]
}

func fadeLength(sampleRate int, ms float64) int {
	if sampleRate < 1 || ms <= 0 {
		return 0
	}

	return int(ms / 1000.0 * float64(sampleRate))
}

func toFloat64(samples []float32) []float64 {
	out := make([]float64, len(samples))
	for i, v := range samples {
		out[i] = float64(v)
	}

	return out
}

func toFloat32(samples []float64) []float32 {
	out := make([]float32, len(samples))
	for i, v := range samples {
		out[i] = float32(v)
	}

	return out
}

func clone(samples []float32) []float32 {
	out := make([]float32, len(samples))
	copy(out, samples)

	return out
}
