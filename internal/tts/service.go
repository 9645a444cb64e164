package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidParams is returned for parameters the engine cannot honour.
var ErrInvalidParams = errors.New("invalid synthesis parameters")

// Request is a single synthesis call.
type Request struct {
	Text      string
	SpeakerID int
	// Speed multiplies the native speaking rate; 1.0 leaves it unchanged.
	Speed float64
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidParams)
	}
	if r.SpeakerID < 0 {
		return fmt.Errorf("%w: speaker id %d is negative", ErrInvalidParams, r.SpeakerID)
	}
	if r.Speed <= 0 || math.IsNaN(r.Speed) || math.IsInf(r.Speed, 0) {
		return fmt.Errorf("%w: speed %v must be a positive number", ErrInvalidParams, r.Speed)
	}
	return nil
}

var newEngine = NewEngine

// Synthesize loads the engine once and runs exactly one synthesis. There
// are no retries; engine errors come back wrapped in ErrEngine.
func Synthesize(ctx context.Context, backend string, cfg EngineConfig, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	slog.Info("loading model", "dir", filepath.Dir(cfg.Model), "backend", backend)
	start := time.Now()

	engine, err := newEngine(backend, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("%w: load model: %w", ErrEngine, err)
	}
	defer engine.Close()

	slog.Info("model loaded; synthesizing", "elapsed", time.Since(start).Round(time.Millisecond))
	start = time.Now()

	res, err := engine.Generate(ctx, req.Text, req.SpeakerID, req.Speed)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrEngine, err)
	}
	if res.SampleRate < 1 {
		return Result{}, fmt.Errorf("%w: engine reported sample rate %d", ErrEngine, res.SampleRate)
	}
	if len(res.Samples) == 0 {
		return Result{}, fmt.Errorf("%w: engine produced no samples", ErrEngine)
	}

	slog.Info("synthesis finished",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"samples", len(res.Samples),
		"sample_rate", res.SampleRate,
		"audio_seconds", float64(len(res.Samples))/float64(res.SampleRate),
	)

	return res, nil
}
