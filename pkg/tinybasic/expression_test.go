package tinybasic

import (
	"errors"
	"testing"
)

// evalText evaluates text as one expression in a fresh context.
func evalText(b *TinyBASIC, ctx *ExecutionContext, text string) (float64, error) {
	ctx.load(directLine, text)
	ctx.Cursor = 0
	ctx.Operands.Clear()
	if err := b.evaluate(ctx); err != nil {
		return 0, err
	}
	return ctx.Operands.PopNumber()
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"1+2*3", 9},
		{"2*(3+4)", 14},
		{"10/4", 2.5},
		{"-5+2", -3},
		{"3>2", 1},
		{"3<2", 0},
		{"2=2", 1},
		{"=5", 5},
		{"((7))", 7},
		{"1.5*2", 3},
	}
	b, _, _ := newTestBASIC("")
	for _, tt := range tests {
		ctx := NewExecutionContext(testLimits)
		got, err := evalText(b, ctx, tt.text)
		if err != nil {
			t.Errorf("evaluate(%q): %v", tt.text, err)
			continue
		}
		if got != tt.want {
			t.Errorf("evaluate(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		text string
		want error
	}{
		{"1/0", ErrDivisionByZero},
		{")", ErrSyntax},
		{"1?2", ErrSyntax},
	}
	b, _, _ := newTestBASIC("")
	for _, tt := range tests {
		ctx := NewExecutionContext(testLimits)
		if _, err := evalText(b, ctx, tt.text); !errors.Is(err, tt.want) {
			t.Errorf("evaluate(%q): err = %v, want %v", tt.text, err, tt.want)
		}
	}
}

func TestEvaluateDeepParenthesesOverflow(t *testing.T) {
	limits := testLimits
	limits.OperandStackDepth = 4
	b, _, _ := newTestBASIC("")
	ctx := NewExecutionContext(limits)

	if _, err := evalText(b, ctx, "((((((1))))))"); !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("err = %v, want ErrOutOfMemory", err)
	}
}

func TestEvaluateStopsAtSeparator(t *testing.T) {
	b, _, _ := newTestBASIC("")
	ctx := NewExecutionContext(testLimits)

	got, err := evalText(b, ctx, "1+2:PRINT")
	if err != nil || got != 3 {
		t.Fatalf("evaluate = %v, %v, want 3", got, err)
	}
	if ctx.current() != ':' {
		t.Errorf("cursor rests on %q, want ':'", ctx.current())
	}
}

func TestEvaluateReadsArrayElements(t *testing.T) {
	b, _, _ := newTestBASIC("")
	ctx := NewExecutionContext(testLimits)
	ctx.Vars.Dim("A", 2)
	ctx.Vars.SetElement("A", 1, 7)

	got, err := evalText(b, ctx, "A(1)+1")
	if err != nil || got != 8 {
		t.Errorf("evaluate = %v, %v, want 8", got, err)
	}
	if _, err := evalText(b, ctx, "A(3)"); !errors.Is(err, ErrSubscript) {
		t.Errorf("out of range: err = %v, want ErrSubscript", err)
	}
}

func TestEvaluateVariables(t *testing.T) {
	b, _, _ := newTestBASIC("")
	ctx := NewExecutionContext(testLimits)
	ctx.Vars.Set("COUNT", KindFloat, 4)

	got, err := evalText(b, ctx, "COUNTER*2")
	if err != nil || got != 8 {
		t.Errorf("truncated name: evaluate = %v, %v, want 8", got, err)
	}

	got, err = evalText(b, ctx, "NEW")
	if err != nil || got != 0 {
		t.Errorf("unbound name: evaluate = %v, %v, want 0", got, err)
	}
	if _, ok := ctx.Vars.Lookup("NEW", KindFloat); !ok {
		t.Errorf("unbound name was not bound by reading it")
	}
}

func TestBASICErrorFormat(t *testing.T) {
	err := NewBASICError(ErrSyntax, 10, false)
	if got := err.Error(); got != "?Syntax error in 10" {
		t.Errorf("Error() = %q", got)
	}
	direct := NewBASICError(ErrBreak, directLine, true)
	if got := direct.Error(); got != "?Break" {
		t.Errorf("direct Error() = %q", got)
	}
	if !errors.Is(err, ErrUnexpected) || !errors.Is(err, ErrSyntax) {
		t.Errorf("BASICError does not match its kind and cause")
	}
	if errors.Is(err, ErrBreak) {
		t.Errorf("BASICError matches a foreign cause")
	}
}
