// Package testutil provides shared skip helpers and WAV assertions for
// tests that need a real voice model or external binaries.
//
// Each Require helper calls Skipf with a human-readable reason when the
// prerequisite is absent, so integration tests stay runnable in partial
// environments without failing noisily.
//
// Typical usage:
//
//	func TestNativeSynthesis(t *testing.T) {
//	    dir := testutil.RequireVoiceModel(t)
//	    ...
//	}
package testutil

import (
	"os"
	"os/exec"
	"testing"

	"github.com/example/vozia/internal/config"
	"github.com/example/vozia/internal/onnx"
	"github.com/example/vozia/internal/tts"
)

// ModelDirEnv names the environment variable pointing integration tests at
// an unpacked sherpa-onnx Piper voice directory.
const ModelDirEnv = "VOZIA_TEST_MODEL_DIR"

// RequireVoiceModel skips the test unless ModelDirEnv names a directory
// holding the conventional model, tokens and espeak-ng data. It returns the
// directory.
func RequireVoiceModel(tb testing.TB) string {
	tb.Helper()

	dir := os.Getenv(ModelDirEnv)
	if dir == "" {
		tb.Skipf("voice model not configured; set %s to an unpacked %s directory", ModelDirEnv, config.DefaultModelDirName)
		return ""
	}

	if _, err := config.ResolveAssets(config.PathsConfig{ModelDir: dir}); err != nil {
		tb.Skipf("voice model at %s=%q unusable: %v", ModelDirEnv, dir, err)
		return ""
	}

	return dir
}

// RequireOfflineTTS skips the test if the sherpa-onnx-offline-tts binary is
// not found in PATH or at VOZIA_TTS_CLI_PATH. It returns the executable.
func RequireOfflineTTS(tb testing.TB) string {
	tb.Helper()

	exe := os.Getenv("VOZIA_TTS_CLI_PATH")
	if exe == "" {
		exe = tts.DefaultCLIExecutable
	}

	path, err := exec.LookPath(exe)
	if err != nil {
		tb.Skipf("%s not available (%v); set VOZIA_TTS_CLI_PATH to override", exe, err)
		return ""
	}

	return path
}

// RequireONNXRuntime skips the test if no ONNX Runtime shared library can be
// located through ORT_LIBRARY_PATH, VOZIA_ORT_LIB or the well-known install
// paths. It returns the library path.
func RequireONNXRuntime(tb testing.TB) string {
	tb.Helper()

	path := os.Getenv("ORT_LIBRARY_PATH")
	if path == "" {
		path = os.Getenv("VOZIA_ORT_LIB")
	}

	info, err := onnx.DetectRuntime(config.RuntimeConfig{ORTLibraryPath: path})
	if err != nil {
		tb.Skipf("ONNX Runtime shared library not available: %v", err)
		return ""
	}

	return info.LibraryPath
}
