// Package clipboard defines the clipboard used to export visible cards.
package clipboard

import (
	"fmt"
	"io"
	"strings"
)

// Clipboard is a readable and writable text clipboard
type Clipboard interface {
	Read() (io.ReadCloser, error)
	Write(r io.Reader) error
	IsSupported() bool
}

// WriteText writes text to cb, failing early when cb is unavailable
func WriteText(cb Clipboard, text string) error {
	if cb == nil || !cb.IsSupported() {
		return fmt.Errorf("clipboard is not available on this system")
	}
	if err := cb.Write(strings.NewReader(text)); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// ReadText returns the clipboard contents as a string
func ReadText(cb Clipboard) (string, error) {
	if cb == nil || !cb.IsSupported() {
		return "", fmt.Errorf("clipboard is not available on this system")
	}
	rc, err := cb.Read()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return string(data), nil
}
