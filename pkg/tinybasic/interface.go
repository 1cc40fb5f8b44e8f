package tinybasic

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Console is the character I/O collaborator.
type Console interface {
	// GetChar polls for a pending key without blocking.
	GetChar() (byte, bool)
	// PutChar writes one character to the screen.
	PutChar(c byte)
}

// KeyWaiter is implemented by consoles that can block until a key may be pending.
// Consoles without it are polled at the configured interval.
type KeyWaiter interface {
	WaitKey(ctx context.Context) error
}

// --- Output helpers ---

func (b *TinyBASIC) print(s string) {
	for i := 0; i < len(s); i++ {
		b.console.PutChar(s[i])
	}
}

func (b *TinyBASIC) printf(format string, args ...interface{}) {
	b.print(fmt.Sprintf(format, args...))
}

// formatNumber renders a value the way C's %g does: six significant digits,
// trailing zeros removed.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// --- Input helpers ---

// waitChar blocks until the console delivers a character or the session context ends.
func (b *TinyBASIC) waitChar() (byte, error) {
	if len(b.typeahead) > 0 {
		ch := b.typeahead[0]
		b.typeahead = b.typeahead[1:]
		return ch, nil
	}
	for {
		if ch, ok := b.console.GetChar(); ok {
			return ch, nil
		}
		if err := b.ctx.Err(); err != nil {
			return 0, err
		}
		if waiter, ok := b.console.(KeyWaiter); ok {
			if err := waiter.WaitKey(b.ctx); err != nil {
				return 0, err
			}
			continue
		}
		timer := time.NewTimer(b.limits.PollInterval)
		select {
		case <-b.ctx.Done():
			timer.Stop()
			return 0, b.ctx.Err()
		case <-timer.C:
		}
	}
}

// pollBreak checks for the break key between program lines. One pending key is
// read; anything but break is kept for the next read from the keyboard.
func (b *TinyBASIC) pollBreak(ctx *ExecutionContext) error {
	if b.ctx.Err() != nil {
		return ctx.halt(ErrBreak)
	}
	ch, ok := b.console.GetChar()
	if !ok {
		return nil
	}
	if ch == KeyBreak {
		b.typeahead = b.typeahead[:0]
		return ctx.halt(ErrBreak)
	}
	if b.limits.LineLength <= 0 || len(b.typeahead) < b.limits.LineLength {
		b.typeahead = append(b.typeahead, ch)
	}
	return nil
}
