// Package sysboard implements the system clipboard on golang.design/x/clipboard.
// When that library cannot initialize (no display, or a build without cgo),
// writes fall back to pbcopy on macOS and xclip or xsel on Linux.
package sysboard

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

func native() error {
	initOnce.Do(func() {
		initErr = clipboard.Init()
	})
	return initErr
}

// SystemClipboard implements clipboard.Clipboard for the host system
type SystemClipboard struct{}

// New creates a new SystemClipboard instance
func New() *SystemClipboard {
	return &SystemClipboard{}
}

// IsSupported reports whether either the native clipboard or a fallback
// command is usable
func (s *SystemClipboard) IsSupported() bool {
	if native() == nil {
		return true
	}
	_, ok := fallbackWriter()
	return ok
}

// Read returns the text currently on the clipboard
func (s *SystemClipboard) Read() (io.ReadCloser, error) {
	if err := native(); err != nil {
		return nil, fmt.Errorf("clipboard not available: %w", err)
	}
	return io.NopCloser(bytes.NewReader(clipboard.Read(clipboard.FmtText))), nil
}

// Write replaces the clipboard text with everything read from r
func (s *SystemClipboard) Write(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read clipboard input: %w", err)
	}

	if native() == nil {
		clipboard.Write(clipboard.FmtText, data)
		return nil
	}

	args, ok := fallbackWriter()
	if !ok {
		return fmt.Errorf("clipboard operations not supported on %s", runtime.GOOS)
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = bytes.NewReader(data)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to run %s: %w", args[0], err)
	}
	return nil
}

// fallbackWriter returns the first clipboard command found on PATH
func fallbackWriter() ([]string, bool) {
	var candidates [][]string
	switch runtime.GOOS {
	case "darwin":
		candidates = [][]string{{"pbcopy"}}
	case "linux":
		candidates = [][]string{
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err == nil {
			return c, true
		}
	}
	return nil, false
}
