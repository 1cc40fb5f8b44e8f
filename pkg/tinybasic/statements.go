package tinybasic

// Statement executes one statement starting at the cursor of ctx.
type Statement interface {
	Execute(b *TinyBASIC, ctx *ExecutionContext) error
}

// StatementFunc adapts a function to the Statement interface.
type StatementFunc func(b *TinyBASIC, ctx *ExecutionContext) error

// Execute calls f(b, ctx).
func (f StatementFunc) Execute(b *TinyBASIC, ctx *ExecutionContext) error {
	return f(b, ctx)
}

// newStatementTable maps every keyword opcode to its handler.
func newStatementTable() map[Opcode]Statement {
	return map[Opcode]Statement{
		OpPrint:  StatementFunc((*TinyBASIC).cmdPrint),
		OpInput:  StatementFunc((*TinyBASIC).cmdInput),
		OpReturn: StatementFunc((*TinyBASIC).cmdReturn),
		OpGoto:   StatementFunc((*TinyBASIC).cmdGoto),
		OpGosub:  StatementFunc((*TinyBASIC).cmdGosub),
		OpLet:    StatementFunc((*TinyBASIC).cmdLet),
		OpEnd:    StatementFunc((*TinyBASIC).cmdEnd),
		OpStop:   StatementFunc((*TinyBASIC).cmdEnd),
		OpIf:     StatementFunc((*TinyBASIC).cmdIf),
		OpDim:    StatementFunc((*TinyBASIC).cmdDim),
		OpRem:    StatementFunc((*TinyBASIC).cmdRem),
		OpThen:   StatementFunc((*TinyBASIC).cmdThen),
	}
}

// lookupStatement returns the handler for a symbol read at the start of a statement.
func (b *TinyBASIC) lookupStatement(symbol string) (Statement, bool) {
	if len(symbol) == 0 || symbol[0] <= 127 {
		return nil, false
	}
	stmt, ok := b.statements[Opcode(symbol[0])]
	return stmt, ok
}
