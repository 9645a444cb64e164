package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/vozia/internal/config"
)

// ErrEngine wraps every failure raised while loading the engine or
// synthesizing.
var ErrEngine = errors.New("synthesis engine failed")

// EngineConfig is the engine's view of the resolved assets. Paths are
// passed to the engine verbatim.
type EngineConfig struct {
	Model    string
	Tokens   string
	DataDir  string
	Threads  int
	Provider string
	// CLIPath is the sherpa-onnx-offline-tts executable used by the cli
	// backend. Empty means look it up on PATH.
	CLIPath string
}

// Result is one synthesized utterance.
type Result struct {
	Samples    []float32
	SampleRate int
}

// Engine abstracts a loaded sherpa-onnx VITS model so the in-process and
// subprocess backends share the same pipeline.
type Engine interface {
	Generate(ctx context.Context, text string, speakerID int, speed float64) (Result, error)
	Close()
}

// NewEngine loads the engine for backend. Loading reads the model weights
// and dominates the run time of a synthesis.
func NewEngine(backend string, cfg EngineConfig) (Engine, error) {
	switch backend {
	case config.BackendNative:
		if err := cfg.validateVITS(); err != nil {
			return nil, err
		}
		return newSherpaEngine(cfg)
	case config.BackendCLI:
		return newCLIEngine(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported backend %q", backend)
	}
}

// validateVITS checks the configuration sherpa-onnx needs to load a Piper
// voice. NewOfflineTts does not report a failed load, and Generate on such a
// handle crashes the process.
func (c EngineConfig) validateVITS() error {
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("vits model path is empty")
	}
	if strings.TrimSpace(c.Tokens) == "" {
		return errors.New("vits tokens path is empty")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("espeak-ng data dir is empty")
	}

	var missing []string
	for _, name := range config.EspeakDataFiles {
		fi, err := os.Stat(filepath.Join(c.DataDir, name))
		if err != nil || !fi.Mode().IsRegular() {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("espeak-ng data dir %s is missing %s", c.DataDir, strings.Join(missing, ", "))
	}

	return nil
}
