package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths    PathsConfig   `mapstructure:"paths"`
	Runtime  RuntimeConfig `mapstructure:"runtime"`
	TTS      TTSConfig     `mapstructure:"tts"`
	LogLevel string        `mapstructure:"log_level"`
}

// PathsConfig holds the model directory and the optional per-asset
// overrides. Empty overrides are filled in by ResolveAssets.
type PathsConfig struct {
	ModelDir   string `mapstructure:"model_dir"`
	ModelFile  string `mapstructure:"model_file"`
	TokensFile string `mapstructure:"tokens_file"`
	DataDir    string `mapstructure:"data_dir"`
}

type RuntimeConfig struct {
	Threads        int    `mapstructure:"threads"`
	Provider       string `mapstructure:"provider"`
	ORTLibraryPath string `mapstructure:"ort_library_path"`
}

type TTSConfig struct {
	Backend   string  `mapstructure:"backend"`
	SpeakerID int     `mapstructure:"speaker_id"`
	Speed     float64 `mapstructure:"speed"`
	CLIPath   string  `mapstructure:"cli_path"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	// EnvFile is a dotenv file exported before VOZIA_* variables are read.
	// A missing file is ignored unless EnvFileRequired is set.
	EnvFile         string
	EnvFileRequired bool
	Defaults        Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// flagKeys maps command line flag names to their viper keys.
var flagKeys = []struct {
	flag string
	key  string
}{
	{"model-dir", "paths.model_dir"},
	{"model-file", "paths.model_file"},
	{"tokens-file", "paths.tokens_file"},
	{"data-dir", "paths.data_dir"},
	{"threads", "runtime.threads"},
	{"provider", "runtime.provider"},
	{"ort-lib", "runtime.ort_library_path"},
	{"backend", "tts.backend"},
	{"speaker-id", "tts.speaker_id"},
	{"speed", "tts.speed"},
	{"tts-cli-path", "tts.cli_path"},
	{"log-level", "log_level"},
}

// DefaultConfig returns the built-in defaults. baseDir is the directory the
// bundled voice lives in, normally the directory of the executable.
func DefaultConfig(baseDir string) Config {
	return Config{
		Paths: PathsConfig{
			ModelDir: filepath.Join(baseDir, DefaultModelDirName),
		},
		Runtime: RuntimeConfig{
			Threads:  1,
			Provider: "cpu",
		},
		TTS: TTSConfig{
			Backend:   BackendNative,
			SpeakerID: 0,
			Speed:     1.0,
			CLIPath:   "",
		},
		LogLevel: "warn",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("model-dir", defaults.Paths.ModelDir, "Directory containing the Piper model and its auxiliary files")
	fs.String("model-file", defaults.Paths.ModelFile, "Model .onnx file (default: <model-dir>/"+DefaultModelFile+")")
	fs.String("tokens-file", defaults.Paths.TokensFile, "Token table (default: <model-dir>/"+DefaultTokensFile+")")
	fs.String("data-dir", defaults.Paths.DataDir, "espeak-ng data directory (default: <model-dir>/"+DefaultDataDir+")")
	fs.Int("threads", defaults.Runtime.Threads, "Engine inference thread count")
	fs.String("provider", defaults.Runtime.Provider, "Engine execution provider (cpu|cuda|coreml)")
	fs.String("ort-lib", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library (model verify)")
	fs.String("backend", defaults.TTS.Backend, "Synthesis backend (native|cli)")
	fs.Int("speaker-id", defaults.TTS.SpeakerID, "Speaker ID; see the model documentation")
	fs.Float64("speed", defaults.TTS.Speed, "Speed factor (1.0 = normal)")
	fs.String("tts-cli-path", defaults.TTS.CLIPath, "Path to sherpa-onnx-offline-tts executable (cli backend)")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	if err := LoadEnvFile(opts.EnvFile, opts.EnvFileRequired); err != nil {
		return Config{}, err
	}

	v.SetEnvPrefix("VOZIA")
	replacer := strings.NewReplacer("-", "_", ".", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("runtime.ort_library_path", "VOZIA_ORT_LIB", "ORT_LIBRARY_PATH"); err != nil {
		return Config{}, fmt.Errorf("bind ort env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("vozia")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		f := fs.Lookup(fk.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(fk.key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", fk.flag, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.model_dir", c.Paths.ModelDir)
	v.SetDefault("paths.model_file", c.Paths.ModelFile)
	v.SetDefault("paths.tokens_file", c.Paths.TokensFile)
	v.SetDefault("paths.data_dir", c.Paths.DataDir)
	v.SetDefault("runtime.threads", c.Runtime.Threads)
	v.SetDefault("runtime.provider", c.Runtime.Provider)
	v.SetDefault("runtime.ort_library_path", c.Runtime.ORTLibraryPath)
	v.SetDefault("tts.backend", c.TTS.Backend)
	v.SetDefault("tts.speaker_id", c.TTS.SpeakerID)
	v.SetDefault("tts.speed", c.TTS.Speed)
	v.SetDefault("tts.cli_path", c.TTS.CLIPath)
	v.SetDefault("log_level", c.LogLevel)
}
