//go:build !windows

package model

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFakeModel(t *testing.T) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "pt_BR-dii-high.onnx")
	if err := os.WriteFile(p, []byte("fake-onnx"), 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}

	return p
}

func stubOpenSession(t *testing.T, fn func(VerifyOptions) error) {
	t.Helper()

	orig := openSession

	t.Cleanup(func() { openSession = orig })

	openSession = fn
}

func TestVerifyONNXLoadsSession(t *testing.T) {
	modelPath := writeFakeModel(t)

	var got VerifyOptions

	stubOpenSession(t, func(opts VerifyOptions) error {
		got = opts
		return nil
	})

	var out bytes.Buffer

	err := VerifyONNX(VerifyOptions{
		ModelPath:  modelPath,
		ORTLibrary: "/tmp/libonnxruntime.so",
		Stdout:     &out,
	})
	if err != nil {
		t.Fatalf("VerifyONNX failed: %v", err)
	}

	if got.ModelPath != modelPath || got.ORTLibrary != "/tmp/libonnxruntime.so" {
		t.Fatalf("unexpected options passed to session loader: %+v", got)
	}

	if got.ORTAPIVersion != DefaultORTAPIVersion {
		t.Fatalf("ORTAPIVersion = %d; want default %d", got.ORTAPIVersion, DefaultORTAPIVersion)
	}

	if !strings.Contains(out.String(), "PASS "+modelPath) {
		t.Fatalf("expected PASS line, got %q", out.String())
	}
}

func TestVerifyONNXReportsLoadFailure(t *testing.T) {
	modelPath := writeFakeModel(t)
	loadErr := errors.New("invalid protobuf")

	stubOpenSession(t, func(VerifyOptions) error { return loadErr })

	var stderr bytes.Buffer

	err := VerifyONNX(VerifyOptions{ModelPath: modelPath, Stderr: &stderr})
	if !errors.Is(err, loadErr) {
		t.Fatalf("VerifyONNX error = %v; want wrapped load error", err)
	}

	if !strings.Contains(stderr.String(), "FAIL") {
		t.Fatalf("expected FAIL line, got %q", stderr.String())
	}
}

func TestVerifyONNXRequiresModelPath(t *testing.T) {
	stubOpenSession(t, func(VerifyOptions) error {
		t.Fatal("session loader should not run without a model path")
		return nil
	})

	if err := VerifyONNX(VerifyOptions{}); err == nil {
		t.Fatal("expected error for empty model path")
	}
}

func TestVerifyONNXMissingModel(t *testing.T) {
	stubOpenSession(t, func(VerifyOptions) error {
		t.Fatal("session loader should not run for a missing file")
		return nil
	})

	err := VerifyONNX(VerifyOptions{ModelPath: filepath.Join(t.TempDir(), "missing.onnx")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("VerifyONNX error = %v; want os.ErrNotExist", err)
	}
}

func TestVerifyONNXRejectsDirectory(t *testing.T) {
	stubOpenSession(t, func(VerifyOptions) error { return nil })

	if err := VerifyONNX(VerifyOptions{ModelPath: t.TempDir()}); err == nil {
		t.Fatal("expected error when model path is a directory")
	}
}
