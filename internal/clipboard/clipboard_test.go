package clipboard_test

import (
	"errors"
	"io"
	"testing"

	"github.com/yiblet/sieve/internal/clipboard"
	"github.com/yiblet/sieve/internal/clipboard/mockboard"
)

type unsupported struct{}

func (unsupported) Read() (io.ReadCloser, error) { return nil, errors.New("unsupported") }
func (unsupported) Write(io.Reader) error        { return errors.New("unsupported") }
func (unsupported) IsSupported() bool            { return false }

func TestWriteAndReadText(t *testing.T) {
	cb := mockboard.New()

	if err := clipboard.WriteText(cb, "id\ttitle\n1\tLamp\n"); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if string(cb.GetData()) != "id\ttitle\n1\tLamp\n" {
		t.Errorf("unexpected clipboard data %q", cb.GetData())
	}

	text, err := clipboard.ReadText(cb)
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}
	if text != "id\ttitle\n1\tLamp\n" {
		t.Errorf("ReadText = %q", text)
	}
}

func TestWriteEmpty(t *testing.T) {
	cb := mockboard.New()
	cb.SetData([]byte("previous"))

	if err := clipboard.WriteText(cb, ""); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if len(cb.GetData()) != 0 {
		t.Errorf("Expected empty clipboard, got %d bytes", len(cb.GetData()))
	}
}

func TestUnsupportedClipboard(t *testing.T) {
	if err := clipboard.WriteText(unsupported{}, "x"); err == nil {
		t.Error("expected error writing to an unsupported clipboard")
	}
	if _, err := clipboard.ReadText(nil); err == nil {
		t.Error("expected error reading from a nil clipboard")
	}
}
