//go:build !windows

package model

import (
	"errors"
	"fmt"
	"io"
	"os"

	ort "github.com/shota3506/onnxruntime-purego/onnxruntime"
)

// DefaultORTAPIVersion is the ONNX Runtime C API version requested when
// VerifyOptions leaves it unset.
const DefaultORTAPIVersion uint32 = 23

type VerifyOptions struct {
	ModelPath     string
	ORTLibrary    string
	ORTAPIVersion uint32
	Stdout        io.Writer
	Stderr        io.Writer
}

// openSession loads path into a fresh ONNX Runtime session and releases it.
var openSession = openSessionImpl

// VerifyONNX checks that the voice model graph loads in ONNX Runtime.
func VerifyONNX(opts VerifyOptions) error {
	if opts.ModelPath == "" {
		return errors.New("model path is required")
	}

	if opts.ORTAPIVersion == 0 {
		opts.ORTAPIVersion = DefaultORTAPIVersion
	}

	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}

	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}

	fi, err := os.Stat(opts.ModelPath)
	if err != nil {
		return fmt.Errorf("stat model: %w", err)
	}

	if fi.IsDir() {
		return fmt.Errorf("model path %s is a directory", opts.ModelPath)
	}

	if err := openSession(opts); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "FAIL %s: %v\n", opts.ModelPath, err)
		return fmt.Errorf("verify %s: %w", opts.ModelPath, err)
	}

	_, _ = fmt.Fprintf(opts.Stdout, "PASS %s\n", opts.ModelPath)

	return nil
}

func openSessionImpl(opts VerifyOptions) error {
	runtime, err := ort.NewRuntime(opts.ORTLibrary, opts.ORTAPIVersion)
	if err != nil {
		return fmt.Errorf("initialize ONNX Runtime (lib=%q api=%d): %w", opts.ORTLibrary, opts.ORTAPIVersion, err)
	}

	defer func() { _ = runtime.Close() }()

	env, err := runtime.NewEnv("vozia-model-verify", ort.LoggingLevelWarning)
	if err != nil {
		return fmt.Errorf("create ONNX Runtime env: %w", err)
	}
	defer env.Close()

	s, err := runtime.NewSession(env, opts.ModelPath, nil)
	if err != nil {
		return fmt.Errorf("load session model: %w", err)
	}
	s.Close()

	return nil
}
