package text

import (
	"errors"
	"strings"
)

// ErrEmptyText is returned when the text to synthesize is empty after trimming.
var ErrEmptyText = errors.New("text to synthesize is empty")

// Normalize converts CRLF and bare CR line endings to LF, strips a leading
// byte order mark and trims surrounding whitespace. Empty results are
// rejected with ErrEmptyText.
func Normalize(s string) (string, error) {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyText
	}

	return s, nil
}
