package tinybasic

import (
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/utils"
)

// Line is one numbered program line as the user typed it.
type Line struct {
	Number int
	Text   string
}

// Program stores the numbered lines. Edits append or replace in place, so the
// list is unsorted until Sort is called (before RUN, LIST and SAVE).
type Program struct {
	lines *arraylist.List
}

// NewProgram returns an empty program store.
func NewProgram() *Program {
	return &Program{lines: arraylist.New()}
}

func byLineNumber(a, b interface{}) int {
	return utils.IntComparator(a.(Line).Number, b.(Line).Number)
}

func (p *Program) indexOf(number int) int {
	index, _ := p.lines.Find(func(_ int, value interface{}) bool {
		return value.(Line).Number == number
	})
	return index
}

// InsertOrReplace stores text under number, replacing an existing line.
func (p *Program) InsertOrReplace(number int, text string) {
	line := Line{Number: number, Text: text}
	if index := p.indexOf(number); index >= 0 {
		p.lines.Set(index, line)
		return
	}
	p.lines.Add(line)
}

// Delete removes the line and reports whether it existed.
func (p *Program) Delete(number int) bool {
	index := p.indexOf(number)
	if index < 0 {
		return false
	}
	p.lines.Remove(index)
	return true
}

// Find returns the line with the given number.
func (p *Program) Find(number int) (Line, bool) {
	index := p.indexOf(number)
	if index < 0 {
		return Line{}, false
	}
	value, _ := p.lines.Get(index)
	return value.(Line), true
}

// Sort orders the lines by ascending line number.
func (p *Program) Sort() {
	p.lines.Sort(byLineNumber)
}

// SortedLines sorts the store and returns a copy of its lines.
func (p *Program) SortedLines() []Line {
	p.Sort()
	result := make([]Line, 0, p.lines.Size())
	p.lines.Each(func(_ int, value interface{}) {
		result = append(result, value.(Line))
	})
	return result
}

// Len returns the number of stored lines.
func (p *Program) Len() int {
	return p.lines.Size()
}

// IsEmpty reports whether no lines are stored.
func (p *Program) IsEmpty() bool {
	return p.lines.Empty()
}

// Clear drops every line.
func (p *Program) Clear() {
	p.lines.Clear()
}
