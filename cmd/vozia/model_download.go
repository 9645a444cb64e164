package main

import (
	"fmt"
	"path/filepath"

	"github.com/example/vozia/internal/config"
	"github.com/example/vozia/internal/model"
	"github.com/spf13/cobra"
)

var downloadModel = model.Download

func newModelDownloadCmd() *cobra.Command {
	var voice string
	var outDir string
	var baseURL string
	var force bool

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a sherpa-onnx Piper voice release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			// Default next to the configured model dir so the synth
			// command finds the voice without extra flags.
			if outDir == "" {
				outDir = filepath.Dir(cfg.Paths.ModelDir)
			}

			dir, err := downloadModel(model.DownloadOptions{
				Voice:   voice,
				BaseURL: baseURL,
				OutDir:  outDir,
				Force:   force,
				Stdout:  cmd.OutOrStdout(),
			})
			if err != nil {
				return fmt.Errorf("model download failed: %w", err)
			}

			if dir != cfg.Paths.ModelDir {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "use it with --model-dir %s\n", dir)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&voice, "voice", config.DefaultModelDirName, "Voice archive name in the sherpa-onnx tts-models release")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory to extract into (default: parent of --model-dir)")
	cmd.Flags().StringVar(&baseURL, "base-url", model.DefaultReleaseURL, "Release URL hosting <voice>.tar.bz2")
	cmd.Flags().BoolVar(&force, "force", false, "Download again even if the voice directory exists")

	return cmd
}
