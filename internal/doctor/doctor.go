// Package doctor provides environment preflight checks for vozia.
package doctor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// LocateFunc returns where a component was found or an error if it is unavailable.
type LocateFunc func() (string, error)

// Asset is a path that must exist before synthesis can run.
type Asset struct {
	Name string
	Path string
	// Dir requires the path to be a directory rather than a regular file.
	Dir bool
	// Tokens additionally parses the file as a sherpa-onnx token table.
	Tokens bool
	// Contains lists regular files that must exist inside a Dir asset.
	Contains []string
}

// Config holds injectable dependencies for each doctor check.
type Config struct {
	Assets []Asset
	// OfflineTTS locates the sherpa-onnx-offline-tts executable.
	OfflineTTS LocateFunc
	// SkipOfflineTTS skips the executable check (native backend).
	SkipOfflineTTS bool
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	for _, a := range cfg.Assets {
		detail, err := checkAsset(a)
		if err != nil {
			res.fail(fmt.Sprintf("%s %s: %v", a.Name, a.Path, err))
			fmt.Fprintf(w, "%s %s %s: %v\n", FailMark, a.Name, a.Path, err)
			continue
		}
		fmt.Fprintf(w, "%s %s: %s%s\n", PassMark, a.Name, a.Path, detail)
	}

	if cfg.SkipOfflineTTS {
		fmt.Fprintf(w, "%s sherpa-onnx-offline-tts: skipped\n", PassMark)
	} else if cfg.OfflineTTS != nil {
		path, err := cfg.OfflineTTS()
		if err != nil {
			res.fail(fmt.Sprintf("sherpa-onnx-offline-tts: %v", err))
			fmt.Fprintf(w, "%s sherpa-onnx-offline-tts: not found (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s sherpa-onnx-offline-tts: %s\n", PassMark, path)
		}
	}

	return res
}

func checkAsset(a Asset) (string, error) {
	fi, err := os.Stat(a.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return "", errors.New("not found")
		}
		return "", err
	}

	if a.Dir && !fi.IsDir() {
		return "", errors.New("not a directory")
	}
	if !a.Dir && fi.IsDir() {
		return "", errors.New("is a directory")
	}

	var missing []string
	for _, name := range a.Contains {
		entry, err := os.Stat(filepath.Join(a.Path, name))
		if err != nil || !entry.Mode().IsRegular() {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}

	if a.Tokens {
		n, err := countTokens(a.Path)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(" (%d tokens)", n), nil
	}

	return "", nil
}

// countTokens parses a token table of "<symbol> <id>" lines. The symbol may
// itself be whitespace, so only the trailing id is required.
func countTokens(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	lineNo := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if _, err := strconv.Atoi(fields[len(fields)-1]); err != nil {
			return 0, fmt.Errorf("line %d: missing token id", lineNo)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errors.New("token table is empty")
	}

	return n, nil
}
