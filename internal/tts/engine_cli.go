package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/vozia/internal/audio"
)

// DefaultCLIExecutable is the sherpa-onnx command line synthesizer.
const DefaultCLIExecutable = "sherpa-onnx-offline-tts"

// cliEngine shells out to sherpa-onnx-offline-tts once per Generate call.
// The model is loaded by the subprocess, so construction is free.
type cliEngine struct {
	cfg EngineConfig
}

func newCLIEngine(cfg EngineConfig) *cliEngine {
	return &cliEngine{cfg: cfg}
}

var runOfflineTTS = execOfflineTTS

// execOfflineTTS runs exe and returns its captured stderr.
func execOfflineTTS(ctx context.Context, exe string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, exe, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()

	return stderr.Bytes(), err
}

func (e *cliEngine) Generate(ctx context.Context, text string, speakerID int, speed float64) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, errors.New("empty input text")
	}

	tmpDir, err := os.MkdirTemp("", "vozia-")
	if err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outPath := filepath.Join(tmpDir, "out.wav")
	exe := e.executable()

	stderr, err := runOfflineTTS(ctx, exe, buildCLIArgs(e.cfg, speakerID, speed, outPath, text))
	if err != nil {
		return Result{}, mapCLIError(exe, err, stderr)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return Result{}, fmt.Errorf("%s wrote no audio: %w", exe, err)
	}

	samples, rate, err := audio.DecodeWAV(data)
	if err != nil {
		return Result{}, fmt.Errorf("decode %s output: %w", exe, err)
	}

	return Result{Samples: samples, SampleRate: rate}, nil
}

func (e *cliEngine) Close() {}

func (e *cliEngine) executable() string {
	if e.cfg.CLIPath != "" {
		return e.cfg.CLIPath
	}
	return DefaultCLIExecutable
}

// buildCLIArgs maps the request onto sherpa-onnx-offline-tts flags. The
// CLI has no speed flag; VITS length scale is its reciprocal.
func buildCLIArgs(cfg EngineConfig, speakerID int, speed float64, outPath, text string) []string {
	args := []string{
		"--vits-model=" + cfg.Model,
		"--vits-tokens=" + cfg.Tokens,
		"--vits-data-dir=" + cfg.DataDir,
		"--vits-length-scale=" + strconv.FormatFloat(1/speed, 'g', -1, 64),
		"--sid=" + strconv.Itoa(speakerID),
		"--num-threads=" + strconv.Itoa(max(cfg.Threads, 1)),
		"--output-filename=" + outPath,
	}
	if p := strings.TrimSpace(cfg.Provider); p != "" {
		args = append(args, "--provider="+p)
	}

	return append(args, text)
}

func mapCLIError(exe string, err error, stderr []byte) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%s executable not found; set --tts-cli-path or VOZIA_TTS_CLI_PATH: %w", exe, err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if detail := lastLine(stderr); detail != "" {
			return fmt.Errorf("%s exited with code %d: %s", exe, exitErr.ExitCode(), detail)
		}
		return fmt.Errorf("%s exited with code %d: %w", exe, exitErr.ExitCode(), err)
	}

	return err
}

func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
