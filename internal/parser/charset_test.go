package parser

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// TestNewUTF8Reader_AlreadyUTF8 tests that UTF-8 content passes through unchanged
func TestNewUTF8Reader_AlreadyUTF8(t *testing.T) {
	t.Parallel()
	input := []byte(`{"results":[{"id":1,"title":"పుష్ప"}]}`)
	reader, err := NewUTF8Reader(bytes.NewReader(input), "application/json; charset=utf-8")
	if err != nil {
		t.Fatalf("NewUTF8Reader failed: %v", err)
	}

	output, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Failed to read from UTF-8 reader: %v", err)
	}

	if !bytes.Equal(output, input) {
		t.Errorf("Expected UTF-8 content to pass through unchanged, got %s", output)
	}
}

// TestNewUTF8Reader_NoCharsetIsNotSniffed tests that a long ASCII prefix does not
// cause later multi-byte runes to be reinterpreted
func TestNewUTF8Reader_NoCharsetIsNotSniffed(t *testing.T) {
	t.Parallel()
	input := []byte(`{"results":[{"id":1,"overview":"` + strings.Repeat("a", 2048) + `","title":"Amélie"}]}`)
	reader, err := NewUTF8Reader(bytes.NewReader(input), "application/json")
	if err != nil {
		t.Fatalf("NewUTF8Reader failed: %v", err)
	}

	output, _ := io.ReadAll(reader)
	if !bytes.Equal(output, input) {
		t.Error("Expected body without charset to pass through unchanged")
	}
}

// TestNewUTF8Reader_ISO88591ToUTF8 tests conversion from ISO-8859-1 to UTF-8
func TestNewUTF8Reader_ISO88591ToUTF8(t *testing.T) {
	t.Parallel()
	// é = 0xE9 in ISO-8859-1
	input := []byte(`{"results":[{"id":1,"title":"Caf` + string([]byte{0xE9}) + `"}]}`)

	reader, err := NewUTF8Reader(bytes.NewReader(input), "application/json; charset=ISO-8859-1")
	if err != nil {
		t.Fatalf("NewUTF8Reader failed: %v", err)
	}

	output, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Failed to read from UTF-8 reader: %v", err)
	}

	if !strings.Contains(string(output), "Café") {
		t.Errorf("Expected 'Café' in UTF-8 output, got: %s", output)
	}
}

// TestNewUTF8Reader_InvalidContentType tests that an unparsable header is ignored
func TestNewUTF8Reader_InvalidContentType(t *testing.T) {
	t.Parallel()
	input := []byte(`[]`)
	reader, err := NewUTF8Reader(bytes.NewReader(input), ";;;")
	if err != nil {
		t.Fatalf("NewUTF8Reader failed: %v", err)
	}
	output, _ := io.ReadAll(reader)
	if string(output) != "[]" {
		t.Errorf("Expected passthrough, got %s", output)
	}
}
