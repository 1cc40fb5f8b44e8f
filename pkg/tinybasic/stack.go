package tinybasic

import (
	"github.com/emirpasic/gods/stacks/arraystack"
)

// CellKind tells what an operand stack cell holds.
type CellKind int

const (
	// CellNumber is an arithmetic operand.
	CellNumber CellKind = iota
	// CellOperator saves the pending operator while a parenthesis is open.
	CellOperator
	// CellSubscript marks an open array subscript and names the array.
	CellSubscript
)

// Cell is one operand stack entry.
type Cell struct {
	Kind   CellKind
	Number float64
	Op     byte
	Array  string
}

func numberCell(v float64) Cell { return Cell{Kind: CellNumber, Number: v} }
func operatorCell(op byte) Cell { return Cell{Kind: CellOperator, Op: op} }
func subscriptCell(name string) Cell { return Cell{Kind: CellSubscript, Array: name} }

// OperandStack is the evaluator's bounded working stack.
type OperandStack struct {
	cells *arraystack.Stack
	limit int
}

// NewOperandStack creates a stack holding at most limit cells. A limit of 0 is unbounded.
func NewOperandStack(limit int) *OperandStack {
	return &OperandStack{cells: arraystack.New(), limit: limit}
}

// Push adds a cell, failing with ErrOutOfMemory when the stack is full.
func (s *OperandStack) Push(c Cell) error {
	if s.limit > 0 && s.cells.Size() >= s.limit {
		return ErrOutOfMemory
	}
	s.cells.Push(c)
	return nil
}

// Pop removes the top cell.
func (s *OperandStack) Pop() (Cell, bool) {
	value, ok := s.cells.Pop()
	if !ok {
		return Cell{}, false
	}
	return value.(Cell), true
}

// Peek returns the top cell without removing it.
func (s *OperandStack) Peek() (Cell, bool) {
	value, ok := s.cells.Peek()
	if !ok {
		return Cell{}, false
	}
	return value.(Cell), true
}

// HasNumber reports whether the top cell is a numeric operand.
func (s *OperandStack) HasNumber() bool {
	top, ok := s.Peek()
	return ok && top.Kind == CellNumber
}

// PopNumber removes a numeric top cell. Anything else is a syntax error.
func (s *OperandStack) PopNumber() (float64, error) {
	top, ok := s.Peek()
	if !ok || top.Kind != CellNumber {
		return 0, ErrSyntax
	}
	s.cells.Pop()
	return top.Number, nil
}

// ReplaceTop overwrites the numeric top cell.
func (s *OperandStack) ReplaceTop(v float64) {
	s.cells.Pop()
	s.cells.Push(numberCell(v))
}

// Len returns the number of cells.
func (s *OperandStack) Len() int {
	return s.cells.Size()
}

// Clear empties the stack.
func (s *OperandStack) Clear() {
	s.cells.Clear()
}

// Frame is one GOSUB return address: the calling line and the cursor of the
// statement after the GOSUB. Text is only kept for frames pushed from direct mode,
// since those lines are not in the program store.
type Frame struct {
	Line   int
	Cursor int
	Text   string
}

// CallStack holds GOSUB return addresses.
type CallStack struct {
	frames *arraystack.Stack
	limit  int
}

// NewCallStack creates a call stack with at most limit frames. A limit of 0 is unbounded.
func NewCallStack(limit int) *CallStack {
	return &CallStack{frames: arraystack.New(), limit: limit}
}

// Push saves a return address, failing with ErrOutOfMemory past the nesting limit.
func (s *CallStack) Push(f Frame) error {
	if s.limit > 0 && s.frames.Size() >= s.limit {
		return ErrOutOfMemory
	}
	s.frames.Push(f)
	return nil
}

// Pop returns the most recent return address.
func (s *CallStack) Pop() (Frame, bool) {
	value, ok := s.frames.Pop()
	if !ok {
		return Frame{}, false
	}
	return value.(Frame), true
}

// Depth returns the number of saved frames.
func (s *CallStack) Depth() int {
	return s.frames.Size()
}

// Clear drops every frame.
func (s *CallStack) Clear() {
	s.frames.Clear()
}
