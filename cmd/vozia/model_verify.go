package main

import (
	"fmt"
	"log/slog"

	"github.com/example/vozia/internal/config"
	"github.com/example/vozia/internal/model"
	"github.com/example/vozia/internal/onnx"
	"github.com/spf13/cobra"
)

var (
	verifyModel   = model.VerifyONNX
	detectRuntime = onnx.DetectRuntime
)

func newModelVerifyCmd() *cobra.Command {
	var ortAPIVersion uint32

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Load the voice model in ONNX Runtime to check that the graph is valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			assets, err := config.ResolveAssets(cfg.Paths)
			if err != nil {
				return err
			}

			rt, err := detectRuntime(cfg.Runtime)
			if err != nil {
				return err
			}

			slog.Debug("using ONNX Runtime", "path", rt.LibraryPath, "version", rt.Version)

			err = verifyModel(model.VerifyOptions{
				ModelPath:     assets.ModelFile,
				ORTLibrary:    rt.LibraryPath,
				ORTAPIVersion: ortAPIVersion,
				Stdout:        cmd.OutOrStdout(),
				Stderr:        cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("model verify failed: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().Uint32Var(&ortAPIVersion, "ort-api-version", model.DefaultORTAPIVersion, "ONNX Runtime C API version expected by the purego binding")

	return cmd
}
