package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/example/vozia/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	envFile   string
	activeCfg config.Config
	// configLoaded is set once PersistentPreRunE has loaded activeCfg.
	configLoaded bool
)

func NewRootCmd(baseDir string) *cobra.Command {
	defaults := config.DefaultConfig(baseDir)
	activeCfg, configLoaded = config.Config{}, false

	var flags synthFlags

	cmd := &cobra.Command{
		Use:   "vozia",
		Short: "Convert text to speech and save it as a WAV file",
		Long: "vozia synthesizes Brazilian Portuguese speech with a sherpa-onnx Piper voice\n" +
			"and writes the result as a 16-bit mono WAV file.",
		Example: `  vozia --text "Olá mundo" --output ola.wav
  vozia --text-file discurso.txt --speed 0.9 --output saida/discurso.wav --overwrite`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// cobra checks flag groups only after the pre-run hooks; usage
			// errors must surface before any config or asset is read.
			if err := cmd.ValidateFlagGroups(); err != nil {
				return err
			}

			loaded, err := config.Load(config.LoadOptions{
				Cmd:             cmd,
				ConfigFile:      cfgFile,
				EnvFile:         envFile,
				EnvFileRequired: cmd.Flags().Changed("env-file"),
				Defaults:        defaults,
			})
			if err != nil {
				return err
			}
			activeCfg, configLoaded = loaded, true
			setupLogger(loaded.LogLevel, cmd.ErrOrStderr())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			return runSynth(cmd, cfg, flags)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file with VOZIA_* variables (ignored when the default is absent)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)
	registerSynthFlags(cmd, &flags)

	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newModelCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string, w io.Writer) {
	lvl, err := config.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if !configLoaded {
		return config.Config{}, errors.New("configuration not loaded")
	}
	return activeCfg, nil
}
