package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Extension is the suffix every output file carries.
const Extension = ".wav"

// ErrOutputExists is returned by Save when the target exists and overwrite
// was not requested. The existing file is not modified.
var ErrOutputExists = errors.New("output file already exists")

// OutputPath forces a .wav suffix onto p. An existing .wav suffix is kept
// in whatever case it was written; any other suffix is replaced.
func OutputPath(p string) string {
	ext := filepath.Ext(p)
	if strings.EqualFold(ext, Extension) {
		return p
	}
	if ext == filepath.Base(p) {
		// Dotfile such as ".take1": no suffix to replace.
		return p + Extension
	}

	return strings.TrimSuffix(p, ext) + Extension
}

// CheckTarget normalizes path and reports ErrOutputExists when the result
// already exists and overwrite is off. Nothing is written.
func CheckTarget(path string, overwrite bool) (string, error) {
	target := OutputPath(path)
	if overwrite {
		return target, nil
	}

	_, err := os.Stat(target)
	if err == nil {
		return "", fmt.Errorf("%w: %s (use --overwrite to replace it)", ErrOutputExists, target)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat output: %w", err)
	}

	return target, nil
}

// Save writes samples as a WAV file at OutputPath(path) and returns the
// path written. Missing parent directories are created. The file is first
// written next to the target and then renamed into place.
func Save(path string, samples []float32, sampleRate int, overwrite bool) (string, error) {
	target, err := CheckTarget(path, overwrite)
	if err != nil {
		return "", err
	}

	data, err := EncodeWAV(samples, sampleRate)
	if err != nil {
		return "", fmt.Errorf("encode WAV: %w", err)
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	if err := writeFileAtomic(target, data); err != nil {
		return "", err
	}

	return target, nil
}

// writeFileAtomic writes data next to target and renames it into place. A
// new file gets 0666 minus the umask, like os.WriteFile; an overwritten file
// keeps its permissions.
func writeFileAtomic(target string, data []byte) error {
	tmp, err := createTemp(filepath.Dir(target), "."+filepath.Base(target)+".")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if fi, err := os.Stat(target); err == nil {
		if err := os.Chmod(tmpName, fi.Mode().Perm()); err != nil {
			_ = os.Remove(tmpName)
			return fmt.Errorf("chmod temp file: %w", err)
		}
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("move output into place: %w", err)
	}

	return nil
}

// createTemp is os.CreateTemp with mode 0666 instead of 0600, so the kernel
// applies the process umask.
func createTemp(dir, prefix string) (*os.File, error) {
	for range 100 {
		name := filepath.Join(dir, prefix+strconv.FormatUint(uint64(rand.Uint32()), 10)+".tmp")

		f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
		if errors.Is(err, fs.ErrExist) {
			continue
		}

		return f, err
	}

	return nil, &fs.PathError{Op: "createtemp", Path: filepath.Join(dir, prefix+"*.tmp"), Err: fs.ErrExist}
}
