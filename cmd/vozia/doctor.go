package main

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/example/vozia/internal/config"
	"github.com/example/vozia/internal/doctor"
	"github.com/example/vozia/internal/model"
	"github.com/example/vozia/internal/tts"
	"github.com/spf13/cobra"
)

// lookPath is replaced in tests so the check does not depend on $PATH.
var lookPath = exec.LookPath

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the voice model and synthesis backend are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			backend, err := config.NormalizeBackend(cfg.TTS.Backend)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "backend: %s\n", backend)

			assets := cfg.Paths.Defaulted()
			exe := cfg.TTS.CLIPath
			if exe == "" {
				exe = tts.DefaultCLIExecutable
			}

			result := doctor.Run(doctor.Config{
				Assets: []doctor.Asset{
					{Name: "model file", Path: assets.ModelFile},
					{Name: "tokens file", Path: assets.TokensFile, Tokens: true},
					{Name: "data dir", Path: assets.DataDir, Dir: true, Contains: config.EspeakDataFiles},
				},
				OfflineTTS:     func() (string, error) { return lookPath(exe) },
				SkipOfflineTTS: backend != config.BackendCLI,
			}, out)

			// The ONNX smoke load is optional: the native backend links its
			// own runtime, so a missing shared library is not a failure.
			rt, rtErr := detectRuntime(cfg.Runtime)
			switch {
			case rtErr != nil:
				_, _ = fmt.Fprintf(out, "%s model verify: skipped (%v)\n", doctor.PassMark, rtErr)
			case result.Failed():
				_, _ = fmt.Fprintf(out, "%s model verify: skipped (assets missing)\n", doctor.PassMark)
			default:
				_, _ = fmt.Fprintf(out, "%s onnx runtime: %s (%s)\n", doctor.PassMark, rt.LibraryPath, rt.Version)

				verifyErr := verifyModel(model.VerifyOptions{
					ModelPath:  assets.ModelFile,
					ORTLibrary: rt.LibraryPath,
					Stdout:     out,
					Stderr:     cmd.ErrOrStderr(),
				})
				if verifyErr != nil {
					result.AddFailure(fmt.Sprintf("model verify: %v", verifyErr))
					_, _ = fmt.Fprintf(out, "%s model verify: %v\n", doctor.FailMark, verifyErr)
				} else {
					_, _ = fmt.Fprintf(out, "%s model verify: ok\n", doctor.PassMark)
				}
			}

			if result.Failed() {
				for _, f := range result.Failures() {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(out, "doctor checks passed")

			return nil
		},
	}

	return cmd
}
