package tinybasic

// evaluate runs the expression at the cursor and leaves its value on the operand
// stack. There is no precedence: operators apply strictly left to right, each one
// to the top of the stack and the operand that follows it. A leading '=' seeds the
// stack; any later '=' compares. Parentheses save the pending operator on the stack.
//
// Evaluation stops before ':', ';', ',', a keyword opcode or the end of the line,
// and right after a ']'.
func (b *TinyBASIC) evaluate(ctx *ExecutionContext) error {
	pending := byte('=')
	stack := ctx.Operands

	for {
		ctx.skipSpace()
		if ctx.Cursor == endOfLine {
			return nil
		}
		ch := ctx.current()
		if ch == ':' || ch == ';' || ch == ',' || ch > 127 {
			return nil
		}

		var value float64
		operand := false

		switch {
		case isDigit(ch):
			value, ctx.Cursor = readNumber(ctx.Opcodes, ctx.Cursor)
			operand = true

		case isAlpha(ch):
			raw, next := readSymbol(ctx.Opcodes, ctx.Cursor)
			ctx.Cursor = next
			name := ctx.Vars.Normalize(raw)

			if ctx.Vars.HasArray(name) {
				if open := skipSpace(ctx.Opcodes, ctx.Cursor); open != endOfLine && ctx.Opcodes[open] == '(' {
					if err := stack.Push(subscriptCell(name)); err != nil {
						return err
					}
					if err := stack.Push(operatorCell(pending)); err != nil {
						return err
					}
					pending = '('
					ctx.Cursor = open + 1
					continue
				}
			}

			v, ok := ctx.Vars.Get(name)
			if !ok {
				autoVivify(ctx, name)
				v, _ = ctx.Vars.Get(name)
			}
			value = v.Value
			operand = true

		case isOperator(ch):
			ctx.Cursor++
			switch ch {
			case '(':
				if err := stack.Push(operatorCell(pending)); err != nil {
					return err
				}
				pending = '('
			case ')':
				v, err := stack.PopNumber()
				if err != nil {
					return err
				}
				tag, ok := stack.Pop()
				if !ok || tag.Kind != CellOperator {
					return ErrSyntax
				}
				pending = tag.Op
				if marker, ok := stack.Peek(); ok && marker.Kind == CellSubscript {
					stack.Pop()
					if v, err = ctx.Vars.Element(marker.Array, v); err != nil {
						return err
					}
				}
				value = v
				operand = true
			default:
				pending = ch
			}

		case ch == ']':
			ctx.Cursor++
			return nil

		default:
			ctx.Cursor++
			return ErrSyntax
		}

		if operand {
			if err := apply(stack, pending, value); err != nil {
				return err
			}
		}
	}
}

// autoVivify binds an unknown name as a float. Its value comes from the stack:
// with no numeric operand pending it is 0; otherwise the top operand is replaced
// by whether it equals zero and then popped into the new variable.
func autoVivify(ctx *ExecutionContext, name string) {
	value := 0.0
	if ctx.Operands.HasNumber() {
		top, _ := ctx.Operands.PopNumber()
		value = boolValue(top == 0)
	}
	ctx.Vars.Set(name, KindFloat, value)
	tinyBasicDebugLog("auto-vivified %s = %g in line %d", name, value, ctx.Line)
}

// apply combines the top of the stack with value using op. An operator with no
// numeric left operand works against an implicit zero.
func apply(stack *OperandStack, op byte, value float64) error {
	if op == '(' || (op == '=' && !stack.HasNumber()) {
		return stack.Push(numberCell(value))
	}
	left := 0.0
	if stack.HasNumber() {
		left, _ = stack.PopNumber()
	}
	var result float64
	switch op {
	case '=':
		result = boolValue(left == value)
	case '+':
		result = left + value
	case '-':
		result = left - value
	case '*':
		result = left * value
	case '/':
		if value == 0 {
			return ErrDivisionByZero
		}
		result = left / value
	case '>':
		result = boolValue(left > value)
	case '<':
		result = boolValue(left < value)
	default:
		return ErrSyntax
	}
	return stack.Push(numberCell(result))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
