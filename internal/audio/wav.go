package audio

// Output WAV layout. The sample rate is whatever the engine reports.
const (
	Channels = 1
	BitDepth = 16
)

// Hook transforms a sample buffer. Hooks may return a new slice or modify
// the input in place.
type Hook func(samples []float32) []float32

func ApplyHooks(samples []float32, hooks ...Hook) []float32 {
	out := samples
	for _, hook := range hooks {
		out = hook(out)
	}

	return out
}

// PostProcess selects the optional DSP steps applied before writing.
type PostProcess struct {
	Normalize bool
	DCBlock   bool
	FadeInMS  float64
	FadeOutMS float64
}

// Enabled reports whether any step is selected.
func (p PostProcess) Enabled() bool {
	return p.Normalize || p.DCBlock || p.FadeInMS > 0 || p.FadeOutMS > 0
}

// Hooks returns the selected steps for audio at sampleRate, in the order
// DC block, normalize, fade in, fade out.
func (p PostProcess) Hooks(sampleRate int) []Hook {
	var hooks []Hook
	if p.DCBlock {
		hooks = append(hooks, func(s []float32) []float32 { return DCBlock(s, sampleRate) })
	}
	if p.Normalize {
		hooks = append(hooks, PeakNormalize)
	}
	if p.FadeInMS > 0 {
		hooks = append(hooks, func(s []float32) []float32 { return FadeIn(s, sampleRate, p.FadeInMS) })
	}
	if p.FadeOutMS > 0 {
		hooks = append(hooks, func(s []float32) []float32 { return FadeOut(s, sampleRate, p.FadeOutMS) })
	}

	return hooks
}
