package tinybasic

// cmdLet assigns a scalar or, with a [subscript], an array element. It also runs
// every statement that does not start with a keyword.
func (b *TinyBASIC) cmdLet(ctx *ExecutionContext) error {
	ctx.skipSpace()
	raw, next := readSymbol(ctx.Opcodes, ctx.Cursor)
	if raw == "" || raw[0] > 127 {
		return ErrSyntax
	}
	ctx.Cursor = next
	name := ctx.Vars.Normalize(raw)

	subscripted := false
	var index float64
	ctx.skipSpace()
	if ctx.current() == '[' {
		ctx.Cursor++
		if err := b.evaluate(ctx); err != nil {
			return err
		}
		i, err := ctx.Operands.PopNumber()
		if err != nil {
			return err
		}
		index, subscripted = i, true
		ctx.skipSpace()
	}

	if ctx.current() != '=' {
		return ErrSyntax
	}
	if err := b.evaluate(ctx); err != nil {
		return err
	}
	if !ctx.atStatementEnd() {
		return ErrSyntax
	}
	value, err := ctx.Operands.PopNumber()
	if err != nil {
		return err
	}

	if subscripted {
		return ctx.Vars.SetElement(name, index, value)
	}
	ctx.Vars.Set(name, kindOf(name), value)
	return nil
}

// cmdDim allocates one or more arrays: DIM A(10), B%(5).
func (b *TinyBASIC) cmdDim(ctx *ExecutionContext) error {
	for {
		ctx.skipSpace()
		raw, next := readSymbol(ctx.Opcodes, ctx.Cursor)
		if raw == "" || raw[0] > 127 {
			return ErrSyntax
		}
		ctx.Cursor = next
		name := ctx.Vars.Normalize(raw)

		ctx.skipSpace()
		if ctx.current() != '(' {
			return ErrSyntax
		}
		if err := b.evaluate(ctx); err != nil {
			return err
		}
		upper, err := ctx.Operands.PopNumber()
		if err != nil {
			return err
		}
		if err := ctx.Vars.Dim(name, upper); err != nil {
			return err
		}
		tinyBasicDebugLog("DIM %s(%g) in line %d", name, upper, ctx.Line)

		ctx.skipSpace()
		if ctx.current() != ',' {
			break
		}
		ctx.Cursor++
	}
	if !ctx.atStatementEnd() {
		return ErrSyntax
	}
	return nil
}
