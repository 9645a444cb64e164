package config

import (
	"fmt"
	"strings"
)

const (
	BackendNative = "native"
	BackendCLI    = "cli"
)

func NormalizeBackend(raw string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(raw))
	if backend == "" {
		backend = BackendNative
	}
	switch backend {
	case BackendNative, BackendCLI:
		return backend, nil
	case "sherpa", "sherpa-onnx":
		return BackendNative, nil
	default:
		return "", fmt.Errorf(
			"invalid backend %q (expected %s|%s)",
			raw,
			BackendNative,
			BackendCLI,
		)
	}
}
