// Package console connects the interpreter to the local keyboard and screen.
package console

import (
	"bufio"
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/antibyte/retrobasic/pkg/logger"
)

// Key codes delivered to the interpreter.
const (
	keyBackspace byte = 8
	keyBreak     byte = 27
	keyDelete    byte = 127
	keyCtrlC     byte = 3
)

// Terminal is a character console over a reader and a writer. Input is read by a
// background goroutine; GetChar and WaitKey must be called from one goroutine.
type Terminal struct {
	out  io.Writer
	keys chan byte

	pending    byte
	hasPending bool

	raw   bool
	fd    int
	state *term.State
}

// New creates a console reading keys from in and writing to out.
func New(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{
		out:  out,
		keys: make(chan byte, 256),
		fd:   -1,
	}
	go t.readLoop(in)
	return t
}

// Open creates a console on stdin and stdout. When stdin is a terminal it is put
// into raw mode so keys arrive one at a time without local echo.
func Open() (*Terminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		logger.Info(logger.AreaConsole, "stdin is not a terminal, reading lines")
		return New(os.Stdin, os.Stdout), nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	t := New(os.Stdin, os.Stdout)
	t.raw = true
	t.fd = fd
	t.state = state
	logger.Info(logger.AreaConsole, "terminal in raw mode")
	return t, nil
}

// Close restores the terminal mode.
func (t *Terminal) Close() error {
	if t.state == nil {
		return nil
	}
	err := term.Restore(t.fd, t.state)
	t.state = nil
	return err
}

func (t *Terminal) readLoop(in io.Reader) {
	defer close(t.keys)
	r := bufio.NewReader(in)
	lastCR := false
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err != io.EOF {
				logger.Warn(logger.AreaConsole, "read failed: %v", err)
			}
			return
		}
		if b == '\n' && lastCR {
			lastCR = false
			continue
		}
		lastCR = b == '\r'
		t.keys <- Translate(b)
	}
}

// Translate maps raw key codes to the ones the interpreter understands:
// carriage return to newline, DEL to backspace and Ctrl-C to break.
func Translate(b byte) byte {
	switch b {
	case '\r':
		return '\n'
	case keyDelete:
		return keyBackspace
	case keyCtrlC:
		return keyBreak
	}
	return b
}

// GetChar returns a pending key without blocking.
func (t *Terminal) GetChar() (byte, bool) {
	if t.hasPending {
		t.hasPending = false
		return t.pending, true
	}
	select {
	case b, ok := <-t.keys:
		return b, ok
	default:
		return 0, false
	}
}

// WaitKey blocks until a key is pending. It returns io.EOF once the input has
// ended and every key was read.
func (t *Terminal) WaitKey(ctx context.Context) error {
	if t.hasPending {
		return nil
	}
	select {
	case b, ok := <-t.keys:
		if !ok {
			return io.EOF
		}
		t.pending, t.hasPending = b, true
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PutChar writes one character. In raw mode a newline becomes CR LF and a
// backspace erases the character before the cursor.
func (t *Terminal) PutChar(c byte) {
	var err error
	switch {
	case t.raw && c == '\n':
		_, err = io.WriteString(t.out, "\r\n")
	case t.raw && c == keyBackspace:
		_, err = io.WriteString(t.out, "\b \b")
	default:
		_, err = t.out.Write([]byte{c})
	}
	if err != nil {
		logger.Debug(logger.AreaConsole, "write failed: %v", err)
	}
}
