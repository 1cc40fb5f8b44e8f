package tinybasic

// cmdGoto evaluates the target line and requests the jump.
func (b *TinyBASIC) cmdGoto(ctx *ExecutionContext) error {
	if err := b.evaluate(ctx); err != nil {
		return err
	}
	target, err := ctx.Operands.PopNumber()
	if err != nil {
		return err
	}
	ctx.setJump(int(target))
	ctx.Cursor = 0
	return nil
}

// cmdGosub saves the position of the next statement and jumps like GOTO.
func (b *TinyBASIC) cmdGosub(ctx *ExecutionContext) error {
	if err := b.evaluate(ctx); err != nil {
		return err
	}
	target, err := ctx.Operands.PopNumber()
	if err != nil {
		return err
	}

	frame := Frame{Line: ctx.Line, Cursor: ctx.nextStatement()}
	if ctx.directMode() {
		frame.Text = ctx.Text
	}
	if err := ctx.Calls.Push(frame); err != nil {
		return err
	}
	tinyBasicDebugLog("GOSUB %d from line %d (depth %d)", int(target), ctx.Line, ctx.Calls.Depth())

	ctx.setJump(int(target))
	ctx.Cursor = 0
	return nil
}

// cmdReturn pops the saved position. The run loop re-tokenizes the calling line
// when it resolves the jump, and execution resumes at the saved cursor.
func (b *TinyBASIC) cmdReturn(ctx *ExecutionContext) error {
	frame, ok := ctx.Calls.Pop()
	if !ok {
		return ErrReturnWithoutGosub
	}
	if frame.Line == directLine {
		ctx.directText = frame.Text
	}
	ctx.setJump(frame.Line)
	ctx.Cursor = frame.Cursor
	return nil
}

// cmdIf evaluates the condition and requires THEN. A false condition skips the
// rest of the line; a true one falls through to the statement after THEN.
func (b *TinyBASIC) cmdIf(ctx *ExecutionContext) error {
	if err := b.evaluate(ctx); err != nil {
		return err
	}
	ctx.skipSpace()
	if Opcode(ctx.current()) != OpThen {
		return ErrSyntax
	}
	condition, err := ctx.Operands.PopNumber()
	if err != nil {
		return err
	}
	if condition == 0 {
		ctx.Cursor = endOfLine
	}
	return nil
}

// cmdEnd stops the program. END and STOP behave the same.
func (b *TinyBASIC) cmdEnd(ctx *ExecutionContext) error {
	ctx.Running = false
	return nil
}

// cmdRem ignores the rest of the statement.
func (b *TinyBASIC) cmdRem(ctx *ExecutionContext) error {
	return nil
}

// cmdThen continues with the statement that follows.
func (b *TinyBASIC) cmdThen(ctx *ExecutionContext) error {
	return nil
}
