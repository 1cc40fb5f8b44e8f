package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

// drain reads every key until the input ends.
func drain(t *testing.T, c *Terminal) []byte {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []byte
	for {
		if err := c.WaitKey(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return got
			}
			t.Fatalf("WaitKey: %v", err)
		}
		b, ok := c.GetChar()
		if !ok {
			t.Fatalf("GetChar reported nothing after WaitKey")
		}
		got = append(got, b)
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		in, want byte
	}{
		{'\r', '\n'},
		{127, 8},
		{3, 27},
		{'A', 'A'},
		{'\n', '\n'},
	}
	for _, tt := range tests {
		if got := Translate(tt.in); got != tt.want {
			t.Errorf("Translate(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestInputIsTranslated(t *testing.T) {
	c := New(strings.NewReader("RUN\r\nA\x7fB\rC\x03"), io.Discard)

	got := drain(t, c)
	want := []byte("RUN\nA\bB\nC\x1b")
	if !bytes.Equal(got, want) {
		t.Errorf("keys = %q, want %q", got, want)
	}
}

func TestGetCharDoesNotBlock(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	c := New(r, io.Discard)

	if _, ok := c.GetChar(); ok {
		t.Fatalf("GetChar returned a key before any input")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.WaitKey(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitKey without input: err = %v, want deadline exceeded", err)
	}
}

func TestPutChar(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out)
	for _, b := range []byte("OK\n\b") {
		c.PutChar(b)
	}
	if got := out.String(); got != "OK\n\b" {
		t.Errorf("cooked output = %q", got)
	}

	out.Reset()
	c.raw = true
	for _, b := range []byte("OK\n\b") {
		c.PutChar(b)
	}
	if got := out.String(); got != "OK\r\n\b \b" {
		t.Errorf("raw output = %q", got)
	}
}
