package tinybasic

// ExecutionContext is the mutable run state of the engine.
type ExecutionContext struct {
	Line    int    // number of the line being executed, directLine at the prompt
	Text    string // source text of that line
	Opcodes []byte // tokenized Text, zero terminated
	Cursor  int    // position in Opcodes, endOfLine when exhausted

	Jump    int  // pending jump target
	HasJump bool // whether Jump is set

	Running bool
	Err     error // halt that stopped the last run, nil otherwise

	Operands *OperandStack
	Calls    *CallStack
	Vars     *Variables

	// directText is the immediate line a RETURN resumes when its GOSUB came from the prompt.
	directText string
}

// NewExecutionContext creates a fresh context with empty stacks and no variables.
func NewExecutionContext(limits Limits) *ExecutionContext {
	return &ExecutionContext{
		Line:     directLine,
		Operands: NewOperandStack(limits.OperandStackDepth),
		Calls:    NewCallStack(limits.CallStackDepth),
		Vars:     NewVariables(limits.NameWidth, limits.MaxArrayCells),
	}
}

// load tokenizes text as the current line. The cursor is left alone so a jump can
// resume mid-line.
func (ctx *ExecutionContext) load(number int, text string) {
	ctx.Line = number
	ctx.Text = text
	ctx.Opcodes = Tokenize(text)
}

// directMode reports whether the current line was typed at the prompt.
func (ctx *ExecutionContext) directMode() bool {
	return ctx.Line == directLine
}

// setJump records a pending jump.
func (ctx *ExecutionContext) setJump(line int) {
	ctx.Jump = line
	ctx.HasJump = true
}

// halt wraps cause as a halt at the current line.
func (ctx *ExecutionContext) halt(cause error) *BASICError {
	return NewBASICError(cause, ctx.Line, ctx.directMode())
}

// at returns the opcode byte at pos, or 0 past either end.
func (ctx *ExecutionContext) at(pos int) byte {
	if pos < 0 || pos >= len(ctx.Opcodes) {
		return 0
	}
	return ctx.Opcodes[pos]
}

// current returns the opcode byte under the cursor.
func (ctx *ExecutionContext) current() byte {
	return ctx.at(ctx.Cursor)
}

// skipSpace moves the cursor past blanks. It becomes endOfLine at the terminator.
func (ctx *ExecutionContext) skipSpace() {
	ctx.Cursor = skipSpace(ctx.Opcodes, ctx.Cursor)
}

func skipSpace(buf []byte, pos int) int {
	if pos < 0 {
		return endOfLine
	}
	for pos < len(buf) && buf[pos] != 0 && isSpace(buf[pos]) {
		pos++
	}
	if pos >= len(buf) || buf[pos] == 0 {
		return endOfLine
	}
	return pos
}

// atStatementEnd reports whether the cursor rests on ':' or the end of the line.
func (ctx *ExecutionContext) atStatementEnd() bool {
	ctx.skipSpace()
	return ctx.Cursor == endOfLine || ctx.current() == ':'
}

// nextStatement returns the position after the next ':' outside quotes, or endOfLine.
func (ctx *ExecutionContext) nextStatement() int {
	if ctx.Cursor < 0 {
		return endOfLine
	}
	quoted := false
	for pos := ctx.Cursor; pos < len(ctx.Opcodes); pos++ {
		switch ctx.Opcodes[pos] {
		case 0:
			return endOfLine
		case '"':
			quoted = !quoted
		case ':':
			if !quoted {
				return pos + 1
			}
		}
	}
	return endOfLine
}

// readSymbol reads a name (a run of letters, or one keyword opcode) with an
// optional $ and % suffix.
func readSymbol(buf []byte, pos int) (string, int) {
	if pos < 0 {
		return "", endOfLine
	}
	start := pos
	for pos < len(buf) && buf[pos] != 0 {
		if buf[pos] > 127 {
			pos++
			break
		}
		if !isAlpha(buf[pos]) {
			break
		}
		pos++
	}
	if pos < len(buf) && buf[pos] == '$' {
		pos++
	}
	if pos < len(buf) && buf[pos] == '%' {
		pos++
	}
	return string(buf[start:pos]), pos
}

// readNumber parses digits with at most one decimal point. A leading minus is
// accepted only at the start of the buffer.
func readNumber(buf []byte, pos int) (float64, int) {
	negative := false
	if pos == 0 && pos < len(buf) && buf[pos] == '-' {
		negative = true
		pos++
	}
	value, scale := 0.0, 1.0
	pointSeen := false
	for ; pos < len(buf); pos++ {
		ch := buf[pos]
		if ch == '.' && !pointSeen {
			pointSeen = true
			continue
		}
		if !isDigit(ch) {
			break
		}
		if pointSeen {
			scale /= 10
		}
		value = value*10 + float64(ch-'0')
	}
	value *= scale
	if negative {
		value = -value
	}
	return value, pos
}
