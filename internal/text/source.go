package text

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"
)

var (
	// ErrUsage is returned when neither or both text sources are given.
	ErrUsage = errors.New("provide exactly one of --text or --text-file")

	ErrTextFileNotFound = errors.New("text file not found")
	ErrInvalidUTF8      = errors.New("text file is not valid UTF-8")
)

// Source is where the text to synthesize comes from. It is implemented
// only by Inline and File.
type Source interface {
	isSource()
}

// Inline is text given directly on the command line.
type Inline string

// File is the path of a UTF-8 text file.
type File string

func (Inline) isSource() {}
func (File) isSource()   {}

// SourceFromFlags builds a Source from the two mutually exclusive flags.
// The set arguments report whether each flag was given at all, so an
// explicitly empty --text still counts as supplied.
func SourceFromFlags(inline string, inlineSet bool, path string, pathSet bool) (Source, error) {
	switch {
	case inlineSet && pathSet, !inlineSet && !pathSet:
		return nil, ErrUsage
	case inlineSet:
		return Inline(inline), nil
	default:
		return File(path), nil
	}
}

// Load returns the normalized text for src.
func Load(src Source) (string, error) {
	switch s := src.(type) {
	case Inline:
		return Normalize(string(s))
	case File:
		data, err := os.ReadFile(string(s))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", ErrTextFileNotFound, string(s))
			}
			return "", fmt.Errorf("read text file: %w", err)
		}
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s", ErrInvalidUTF8, string(s))
		}
		return Normalize(string(data))
	default:
		return "", fmt.Errorf("unsupported text source %T", src)
	}
}
