package model

import (
	"archive/tar"
	"compress/bzip2"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/vozia/internal/config"
)

// DefaultReleaseURL is the sherpa-onnx release that hosts prebuilt TTS voices.
const DefaultReleaseURL = "https://github.com/k2-fsa/sherpa-onnx/releases/download/tts-models"

// ErrVoiceNotFound is returned when the release has no archive for a voice.
var ErrVoiceNotFound = errors.New("voice archive not found")

type DownloadOptions struct {
	Voice   string
	BaseURL string
	OutDir  string
	// Force re-downloads even when the voice directory already exists.
	Force  bool
	Client *http.Client
	Stdout io.Writer
}

// Download fetches <BaseURL>/<Voice>.tar.bz2 and extracts it into OutDir.
// It returns the directory the voice was extracted to.
func Download(opts DownloadOptions) (string, error) {
	if opts.Voice == "" {
		opts.Voice = config.DefaultModelDirName
	}

	if strings.ContainsAny(opts.Voice, `/\`) || opts.Voice == "." || opts.Voice == ".." {
		return "", fmt.Errorf("invalid voice name %q", opts.Voice)
	}

	if opts.OutDir == "" {
		return "", errors.New("out dir is required")
	}

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultReleaseURL
	}

	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 0}
	}

	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}

	voiceDir := filepath.Join(opts.OutDir, opts.Voice)
	if !opts.Force {
		if fi, err := os.Stat(voiceDir); err == nil && fi.IsDir() {
			fmt.Fprintf(opts.Stdout, "skip %s (already present, use --force to re-download)\n", voiceDir)
			return voiceDir, nil
		}
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create out dir: %w", err)
	}

	url := strings.TrimRight(opts.BaseURL, "/") + "/" + opts.Voice + ".tar.bz2"
	fmt.Fprintf(opts.Stdout, "download %s -> %s\n", url, opts.OutDir)

	archive, sum, err := downloadWithProgress(opts.Client, url, opts.OutDir, opts.Stdout)
	if err != nil {
		return "", err
	}
	defer os.Remove(archive)

	fmt.Fprintf(opts.Stdout, "downloaded %s (sha256=%s)\n", filepath.Base(url), sum)

	n, err := extractTarBz2(archive, opts.OutDir)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(opts.Stdout, "extracted %d files into %s\n", n, opts.OutDir)

	return voiceDir, nil
}

func downloadWithProgress(client *http.Client, url, dir string, stdout io.Writer) (string, string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", "", fmt.Errorf("%w: %s", ErrVoiceNotFound, url)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("download failed for %s: %s", url, resp.Status)
	}

	fh, err := os.CreateTemp(dir, ".vozia-download-*.tar.bz2")
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}

	tmp := fh.Name()
	fail := func(err error) (string, string, error) {
		_ = fh.Close()
		_ = os.Remove(tmp)

		return "", "", err
	}

	h := sha256.New()
	mw := io.MultiWriter(fh, h)

	var written int64

	buf := make([]byte, 64*1024)
	total := resp.ContentLength
	lastPrint := time.Now()

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			wn, writeErr := mw.Write(buf[:n])
			if writeErr != nil {
				return fail(fmt.Errorf("write temp file: %w", writeErr))
			}

			written += int64(wn)
			if time.Since(lastPrint) > 700*time.Millisecond {
				if total > 0 {
					pct := float64(written) * 100 / float64(total)
					fmt.Fprintf(stdout, "  progress: %.1f%% (%d/%d bytes)\n", pct, written, total)
				} else {
					fmt.Fprintf(stdout, "  progress: %d bytes\n", written)
				}

				lastPrint = time.Now()
			}
		}

		if readErr == io.EOF {
			break
		}

		if readErr != nil {
			return fail(fmt.Errorf("download read failed: %w", readErr))
		}
	}

	if err := fh.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", "", fmt.Errorf("close temp file: %w", err)
	}

	return tmp, hex.EncodeToString(h.Sum(nil)), nil
}

// extractTarBz2 unpacks regular files and directories from archive into dir.
// Entries that would land outside dir are rejected.
func extractTarBz2(archive, dir string) (int, error) {
	f, err := os.Open(archive)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	root, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("resolve out dir: %w", err)
	}

	tr := tar.NewReader(bzip2.NewReader(f))
	files := 0

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return files, fmt.Errorf("read archive: %w", err)
		}

		target, err := safeJoin(root, hdr.Name)
		if err != nil {
			return files, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return files, fmt.Errorf("create %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return files, err
			}

			files++
		default:
			// Links and devices are not needed by any voice archive.
			continue
		}
	}

	return files, nil
}

func safeJoin(root, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("archive entry %q has an absolute path", name)
	}

	target := filepath.Join(root, filepath.FromSlash(name))

	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes the output directory", name)
	}

	return target, nil
}

func writeEntry(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}

	if perm == 0 {
		perm = 0o644
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}

	return out.Close()
}
