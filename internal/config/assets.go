package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Conventional names inside a sherpa-onnx Piper voice directory.
const (
	DefaultModelDirName = "vits-piper-pt_BR-dii-high"
	DefaultModelFile    = "pt_BR-dii-high.onnx"
	DefaultTokensFile   = "tokens.txt"
	DefaultDataDir      = "espeak-ng-data"
)

// EspeakDataFiles are the espeak-ng tables sherpa-onnx loads from the data
// directory of a Piper voice.
var EspeakDataFiles = []string{"phontab", "phonindex", "phondata", "intonations"}

// ErrMissingAssets matches any *MissingAssetsError.
var ErrMissingAssets = errors.New("missing model assets")

// Assets is the resolved triple handed to the synthesis engine.
type Assets struct {
	ModelFile  string
	TokensFile string
	DataDir    string
}

// MissingAssetsError lists every asset path that was not found, in
// absolute form.
type MissingAssetsError struct {
	Paths []string
}

func (e *MissingAssetsError) Error() string {
	return "could not locate required model assets: " + strings.Join(e.Paths, ", ")
}

func (e *MissingAssetsError) Is(target error) bool {
	return target == ErrMissingAssets
}

var statPath = os.Stat

// isMissing reports whether a stat error means the path is absent. ENOTDIR
// covers a path whose parent (for example --model-dir) is a regular file.
func isMissing(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// Defaulted fills every empty override with its conventional name inside
// ModelDir. It does not touch the filesystem.
func (p PathsConfig) Defaulted() Assets {
	a := Assets{
		ModelFile:  p.ModelFile,
		TokensFile: p.TokensFile,
		DataDir:    p.DataDir,
	}
	if a.ModelFile == "" {
		a.ModelFile = filepath.Join(p.ModelDir, DefaultModelFile)
	}
	if a.TokensFile == "" {
		a.TokensFile = filepath.Join(p.ModelDir, DefaultTokensFile)
	}
	if a.DataDir == "" {
		a.DataDir = filepath.Join(p.ModelDir, DefaultDataDir)
	}
	return a
}

// ResolveAssets defaults the asset paths and checks that all of them exist.
// When any are absent the returned error names all of them at once.
func ResolveAssets(p PathsConfig) (Assets, error) {
	a := p.Defaulted()

	var missing []string
	for _, path := range []string{a.ModelFile, a.TokensFile, a.DataDir} {
		_, err := statPath(path)
		if err == nil {
			continue
		}
		if !isMissing(err) {
			// *fs.PathError already names the path.
			return Assets{}, err
		}
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			abs = path
		}
		missing = append(missing, abs)
	}
	if len(missing) > 0 {
		return Assets{}, &MissingAssetsError{Paths: missing}
	}

	return a, nil
}
