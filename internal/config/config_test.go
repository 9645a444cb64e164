package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all config flags registered at their defaults.
func newFlagBinder(defaults Config) *fakeBinder {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	return &fakeBinder{fs: fs}
}

// --- DefaultConfig ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/opt/vozia")

	wantDir := filepath.Join("/opt/vozia", "vits-piper-pt_BR-dii-high")
	if cfg.Paths.ModelDir != wantDir {
		t.Errorf("ModelDir = %q; want %q", cfg.Paths.ModelDir, wantDir)
	}

	if cfg.Paths.ModelFile != "" || cfg.Paths.TokensFile != "" || cfg.Paths.DataDir != "" {
		t.Errorf("asset overrides should default to empty, got %+v", cfg.Paths)
	}

	if cfg.TTS.SpeakerID != 0 {
		t.Errorf("TTS.SpeakerID = %d; want 0", cfg.TTS.SpeakerID)
	}

	if cfg.TTS.Speed != 1.0 {
		t.Errorf("TTS.Speed = %v; want 1.0", cfg.TTS.Speed)
	}

	if cfg.TTS.Backend != "native" {
		t.Errorf("TTS.Backend = %q; want %q", cfg.TTS.Backend, "native")
	}

	if cfg.Runtime.Threads != 1 {
		t.Errorf("Runtime.Threads = %d; want 1", cfg.Runtime.Threads)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "warn")
	}
}

// --- NormalizeBackend ---

func TestNormalizeBackend(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"native lowercase", "native", "native", false},
		{"cli lowercase", "cli", "cli", false},
		{"native uppercase", "NATIVE", "native", false},
		{"sherpa alias", "sherpa-onnx", "native", false},
		{"cli with spaces", "  cli  ", "cli", false},
		{"empty defaults to native", "", "native", false},
		{"whitespace defaults to native", "   ", "native", false},
		{"invalid value", "onnx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBackend(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NormalizeBackend(%q) = %q, nil; want error", tt.input, got)
				}

				return
			}

			if err != nil {
				t.Errorf("NormalizeBackend(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got != tt.want {
				t.Errorf("NormalizeBackend(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

// --- ParseLogLevel ---

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) err = %v; wantErr=%v", tt.in, err, tt.wantErr)
		}

		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

// --- RegisterFlags ---

func TestRegisterFlags(t *testing.T) {
	defaults := DefaultConfig("/opt/vozia")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	checks := []struct {
		flag string
		want string
	}{
		{"model-dir", filepath.Join("/opt/vozia", "vits-piper-pt_BR-dii-high")},
		{"model-file", ""},
		{"tokens-file", ""},
		{"data-dir", ""},
		{"speaker-id", "0"},
		{"speed", "1"},
		{"backend", "native"},
		{"log-level", "warn"},
	}

	for _, c := range checks {
		f := fs.Lookup(c.flag)
		if f == nil {
			t.Errorf("flag %q not registered", c.flag)
			continue
		}

		if f.DefValue != c.want {
			t.Errorf("flag %q default = %q; want %q", c.flag, f.DefValue, c.want)
		}
	}
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	defaults := DefaultConfig(t.TempDir())
	binder := newFlagBinder(defaults)

	cfg, err := Load(LoadOptions{
		Cmd:      binder,
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Paths.ModelDir != defaults.Paths.ModelDir {
		t.Errorf("ModelDir = %q; want %q", cfg.Paths.ModelDir, defaults.Paths.ModelDir)
	}

	if cfg.TTS.Speed != defaults.TTS.Speed {
		t.Errorf("TTS.Speed = %v; want %v", cfg.TTS.Speed, defaults.TTS.Speed)
	}

	if cfg.LogLevel != defaults.LogLevel {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, defaults.LogLevel)
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	defaults := DefaultConfig(t.TempDir())
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	err := fs.Parse([]string{
		"--model-dir=/voices/other",
		"--tokens-file=/voices/tokens.txt",
		"--speaker-id=3",
		"--speed=1.25",
		"--backend=cli",
		"--log-level=debug",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:      &fakeBinder{fs: fs},
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Paths.ModelDir != "/voices/other" {
		t.Errorf("ModelDir = %q; want %q", cfg.Paths.ModelDir, "/voices/other")
	}

	if cfg.Paths.TokensFile != "/voices/tokens.txt" {
		t.Errorf("TokensFile = %q; want %q", cfg.Paths.TokensFile, "/voices/tokens.txt")
	}

	if cfg.TTS.SpeakerID != 3 {
		t.Errorf("TTS.SpeakerID = %d; want 3", cfg.TTS.SpeakerID)
	}

	if cfg.TTS.Speed != 1.25 {
		t.Errorf("TTS.Speed = %v; want 1.25", cfg.TTS.Speed)
	}

	if cfg.TTS.Backend != "cli" {
		t.Errorf("TTS.Backend = %q; want %q", cfg.TTS.Backend, "cli")
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "debug")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VOZIA_LOG_LEVEL", "error")
	t.Setenv("VOZIA_PATHS_MODEL_DIR", "/env/voice")
	t.Setenv("VOZIA_ORT_LIB", "/env/libonnxruntime.so")

	cfg, err := Load(LoadOptions{
		Defaults: DefaultConfig(t.TempDir()),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "error")
	}

	if cfg.Paths.ModelDir != "/env/voice" {
		t.Errorf("ModelDir = %q; want %q", cfg.Paths.ModelDir, "/env/voice")
	}

	if cfg.Runtime.ORTLibraryPath != "/env/libonnxruntime.so" {
		t.Errorf("ORTLibraryPath = %q; want %q", cfg.Runtime.ORTLibraryPath, "/env/libonnxruntime.so")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "vozia.yaml")

	content := `
log_level: error
paths:
  model_dir: /from/file
tts:
  backend: cli
  speaker_id: 2
`

	err := os.WriteFile(cfgFile, []byte(content), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	defaults := DefaultConfig(dir)

	cfg, err := Load(LoadOptions{
		Cmd:        newFlagBinder(defaults),
		ConfigFile: cfgFile,
		Defaults:   defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "error")
	}

	if cfg.Paths.ModelDir != "/from/file" {
		t.Errorf("ModelDir = %q; want %q", cfg.Paths.ModelDir, "/from/file")
	}

	if cfg.TTS.Backend != "cli" {
		t.Errorf("TTS.Backend = %q; want %q", cfg.TTS.Backend, "cli")
	}

	if cfg.TTS.SpeakerID != 2 {
		t.Errorf("TTS.SpeakerID = %d; want 2", cfg.TTS.SpeakerID)
	}
}

func TestLoad_FlagBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "vozia.yaml")

	err := os.WriteFile(cfgFile, []byte("tts:\n  speed: 0.8\n"), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	defaults := DefaultConfig(dir)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	if err := fs.Parse([]string{"--speed=1.5"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:        &fakeBinder{fs: fs},
		ConfigFile: cfgFile,
		Defaults:   defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TTS.Speed != 1.5 {
		t.Errorf("TTS.Speed = %v; want 1.5", cfg.TTS.Speed)
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "bad.yaml")
	// Write invalid YAML
	err := os.WriteFile(cfgFile, []byte(":\t:bad yaml:::"), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = Load(LoadOptions{
		ConfigFile: cfgFile,
		Defaults:   DefaultConfig(dir),
	})
	if err == nil {
		t.Error("Load() = nil; want error for invalid config file")
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: "/nonexistent/path/vozia.yaml",
		Defaults:   DefaultConfig(t.TempDir()),
	})
	if err == nil {
		t.Error("Load() = nil; want error for missing explicit config file")
	}
}
