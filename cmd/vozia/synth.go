package main

import (
	"fmt"

	"github.com/example/vozia/internal/audio"
	"github.com/example/vozia/internal/config"
	"github.com/example/vozia/internal/text"
	"github.com/example/vozia/internal/tts"
	"github.com/spf13/cobra"
)

// DefaultOutput is written when --output is not given.
const DefaultOutput = "saida.wav"

// synthesize is swapped out in tests to avoid loading a real voice model.
var synthesize = tts.Synthesize

type synthFlags struct {
	text      string
	textFile  string
	output    string
	overwrite bool
	post      audio.PostProcess
}

func registerSynthFlags(cmd *cobra.Command, f *synthFlags) {
	cmd.Flags().StringVar(&f.text, "text", "", "Text to synthesize")
	cmd.Flags().StringVar(&f.textFile, "text-file", "", "UTF-8 text file to synthesize")
	cmd.Flags().StringVarP(&f.output, "output", "o", DefaultOutput, "Output WAV path (extension is forced to .wav)")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Replace the output file if it already exists")
	cmd.Flags().BoolVar(&f.post.Normalize, "normalize", false, "Peak-normalize output audio")
	cmd.Flags().BoolVar(&f.post.DCBlock, "dc-block", false, "Apply DC-block high-pass filter")
	cmd.Flags().Float64Var(&f.post.FadeInMS, "fade-in-ms", 0, "Apply linear fade-in duration in milliseconds")
	cmd.Flags().Float64Var(&f.post.FadeOutMS, "fade-out-ms", 0, "Apply linear fade-out duration in milliseconds")

	cmd.MarkFlagsMutuallyExclusive("text", "text-file")
	cmd.MarkFlagsOneRequired("text", "text-file")
}

func runSynth(cmd *cobra.Command, cfg config.Config, f synthFlags) error {
	src, err := text.SourceFromFlags(
		f.text, cmd.Flags().Changed("text"),
		f.textFile, cmd.Flags().Changed("text-file"),
	)
	if err != nil {
		return err
	}

	assets, err := config.ResolveAssets(cfg.Paths)
	if err != nil {
		return err
	}

	input, err := text.Load(src)
	if err != nil {
		return err
	}

	// Fail before the model is loaded; Save repeats the check.
	if _, err := audio.CheckTarget(f.output, f.overwrite); err != nil {
		return err
	}

	backend, err := config.NormalizeBackend(cfg.TTS.Backend)
	if err != nil {
		return err
	}

	res, err := synthesize(cmd.Context(), backend, engineConfig(cfg, assets), tts.Request{
		Text:      input,
		SpeakerID: cfg.TTS.SpeakerID,
		Speed:     cfg.TTS.Speed,
	})
	if err != nil {
		return err
	}

	samples := res.Samples
	if f.post.Enabled() {
		samples = audio.ApplyHooks(samples, f.post.Hooks(res.SampleRate)...)
	}

	path, err := audio.Save(f.output, samples, res.SampleRate, f.overwrite)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)

	return nil
}

func engineConfig(cfg config.Config, assets config.Assets) tts.EngineConfig {
	return tts.EngineConfig{
		Model:    assets.ModelFile,
		Tokens:   assets.TokensFile,
		DataDir:  assets.DataDir,
		Threads:  cfg.Runtime.Threads,
		Provider: cfg.Runtime.Provider,
		CLIPath:  cfg.TTS.CLIPath,
	}
}
