package tinybasic

import "errors"

// cmdPrint prints quoted text and expression values. A ',' emits the column gap.
// Any ';' in the statement suppresses the closing newline.
func (b *TinyBASIC) cmdPrint(ctx *ExecutionContext) error {
	eol := true

	for {
		ctx.skipSpace()
		if ctx.Cursor == endOfLine {
			break
		}
		ch := ctx.current()
		if ch == ':' || ch > 127 {
			break
		}

		switch ch {
		case ';':
			eol = false
			ctx.Cursor++
		case ',':
			b.print(columnGap)
			ctx.Cursor++
		case '"':
			ctx.Cursor++
			for c := ctx.current(); c != '"' && c != 0; c = ctx.current() {
				b.console.PutChar(c)
				ctx.Cursor++
			}
			if ctx.current() == '"' {
				ctx.Cursor++
			}
		default:
			if err := b.evaluate(ctx); err != nil {
				return err
			}
			value, err := ctx.Operands.PopNumber()
			if err != nil {
				return err
			}
			b.print(formatNumber(value))
		}
	}

	if eol {
		b.console.PutChar(KeyNewline)
	}
	return nil
}

// cmdInput prints an optional quoted prompt and "? ", reads a line from the
// console and stores it as a number in a float variable.
func (b *TinyBASIC) cmdInput(ctx *ExecutionContext) error {
	ctx.skipSpace()
	if ctx.current() == '"' {
		ctx.Cursor++
		start := ctx.Cursor
		for ctx.current() != '"' {
			if ctx.current() == 0 {
				return ErrSyntax
			}
			ctx.Cursor++
		}
		prompt := ctx.Opcodes[start:ctx.Cursor]
		ctx.Cursor++
		if ctx.current() != ';' {
			return ErrSyntax
		}
		b.print(string(prompt))
	}

	ctx.skipSpace()
	if ctx.current() == ';' {
		ctx.Cursor++
		ctx.skipSpace()
	}

	raw, next := readSymbol(ctx.Opcodes, ctx.Cursor)
	if raw == "" || raw[0] > 127 {
		return ErrSyntax
	}
	ctx.Cursor = next
	name := ctx.Vars.Normalize(raw)

	b.print("? ")
	line, err := b.readLine(true)
	if err != nil {
		// Losing the keyboard halts the program like the break key.
		if !errors.Is(err, ErrBreak) {
			tinyBasicDebugLog("INPUT aborted in line %d: %v", ctx.Line, err)
		}
		return ErrBreak
	}

	value, _ := readNumber([]byte(line), 0)
	ctx.Vars.Set(name, KindFloat, value)

	if !ctx.atStatementEnd() {
		return ErrSyntax
	}
	return nil
}

// readLine collects one line of keyboard input with echo. Backspace removes the
// last character, a newline ends the line. With breakable set, the break key
// aborts with ErrBreak; otherwise it is ignored. The line is bounded by the
// configured line length.
func (b *TinyBASIC) readLine(breakable bool) (string, error) {
	buf := make([]byte, 0, b.limits.LineLength)
	for {
		ch, err := b.waitChar()
		if err != nil {
			return "", err
		}
		switch ch {
		case 0:
			continue
		case KeyBreak:
			if breakable {
				return "", ErrBreak
			}
		case KeyNewline:
			b.console.PutChar(ch)
			return string(buf), nil
		case KeyBackspace:
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
				b.console.PutChar(ch)
			}
		default:
			if b.limits.LineLength > 0 && len(buf) >= b.limits.LineLength-1 {
				continue
			}
			buf = append(buf, ch)
			b.console.PutChar(ch)
		}
	}
}
