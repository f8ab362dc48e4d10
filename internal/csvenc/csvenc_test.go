package csvenc

import (
	"bytes"
	"io"
	"testing"
)

func TestReaderPassesThroughUTF8(t *testing.T) {
	input := []byte("LocationID,Zone\n1,Caf\xc3\xa9 District\n")
	r, err := Reader(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, input) {
		t.Fatalf("expected passthrough, got %q", out)
	}
}

func TestReaderDecodesWindows1252(t *testing.T) {
	// 0xE9 is é in Windows-1252 and invalid as standalone UTF-8.
	input := []byte("LocationID,Zone\n1,Caf\xe9 District\n")
	r, err := Reader(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "LocationID,Zone\n1,Café District\n"
	if string(out) != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}
