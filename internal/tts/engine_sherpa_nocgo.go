//go:build !cgo

package tts

import "errors"

func newSherpaEngine(_ EngineConfig) (Engine, error) {
	return nil, errors.New("native backend needs a cgo build (CGO_ENABLED=1); use --backend cli instead")
}
