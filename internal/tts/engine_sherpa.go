//go:build cgo

package tts

import (
	"context"
	"strings"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"
)

// Piper VITS inference defaults, matching sherpa-onnx's own.
const (
	vitsNoiseScale  = 0.667
	vitsNoiseScaleW = 0.8
	vitsLengthScale = 1.0
)

type sherpaEngine struct {
	tts *sherpa.OfflineTts
}

func newSherpaEngine(cfg EngineConfig) (Engine, error) {
	c := sherpa.OfflineTtsConfig{}
	c.Model.Vits.Model = cfg.Model
	c.Model.Vits.Tokens = cfg.Tokens
	c.Model.Vits.DataDir = cfg.DataDir
	c.Model.Vits.NoiseScale = vitsNoiseScale
	c.Model.Vits.NoiseScaleW = vitsNoiseScaleW
	c.Model.Vits.LengthScale = vitsLengthScale
	c.Model.NumThreads = max(cfg.Threads, 1)
	c.Model.Provider = strings.TrimSpace(cfg.Provider)
	if c.Model.Provider == "" {
		c.Model.Provider = "cpu"
	}
	c.MaxNumSentences = 1

	return &sherpaEngine{tts: sherpa.NewOfflineTts(&c)}, nil
}

func (e *sherpaEngine) Generate(ctx context.Context, text string, speakerID int, speed float64) (Result, error) {
	// The call into sherpa-onnx blocks and cannot be interrupted.
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	audio := e.tts.Generate(text, speakerID, float32(speed))

	return Result{Samples: audio.Samples, SampleRate: audio.SampleRate}, nil
}

func (e *sherpaEngine) Close() {
	if e.tts != nil {
		sherpa.DeleteOfflineTts(e.tts)
		e.tts = nil
	}
}
