package tinybasic

import (
	"math"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Kind is the storage type of a scalar variable.
type Kind int

const (
	KindFloat Kind = iota
	KindInteger
)

func (k Kind) String() string {
	if k == KindInteger {
		return "integer"
	}
	return "float"
}

// Variable is one scalar binding.
type Variable struct {
	Name  string
	Kind  Kind
	Value float64
}

type bindingKey struct {
	name string
	kind Kind
}

// Variables is the variable table of one execution context. Bindings keep their
// insertion order; a name may be bound once per kind.
type Variables struct {
	table     *linkedhashmap.Map
	arrays    map[string][]float64
	nameWidth int
	maxCells  int
}

// NewVariables creates an empty table. nameWidth is the number of significant
// letters in a name, 0 keeps names whole. maxCells bounds the size of one array;
// 0 selects DefaultMaxArrayCells.
func NewVariables(nameWidth, maxCells int) *Variables {
	if maxCells <= 0 {
		maxCells = DefaultMaxArrayCells
	}
	return &Variables{
		table:     linkedhashmap.New(),
		arrays:    make(map[string][]float64),
		nameWidth: nameWidth,
		maxCells:  maxCells,
	}
}

// Normalize cuts the letters of name to the significant width, keeping any
// trailing $ or % suffix.
func (v *Variables) Normalize(name string) string {
	if v.nameWidth <= 0 {
		return name
	}
	letters := strings.TrimRight(name, "$%")
	suffix := name[len(letters):]
	if len(letters) > v.nameWidth {
		letters = letters[:v.nameWidth]
	}
	return letters + suffix
}

// Set replaces the value bound to name with the given kind, or appends a new binding.
// Integer values are truncated toward zero.
func (v *Variables) Set(name string, kind Kind, value float64) {
	if kind == KindInteger {
		value = math.Trunc(value)
	}
	v.table.Put(bindingKey{name: name, kind: kind}, value)
}

// Lookup returns the value bound to name with exactly the given kind.
func (v *Variables) Lookup(name string, kind Kind) (float64, bool) {
	value, ok := v.table.Get(bindingKey{name: name, kind: kind})
	if !ok {
		return 0, false
	}
	return value.(float64), true
}

// Get returns the first binding of name in insertion order, whatever its kind.
// This is how expressions read variables.
func (v *Variables) Get(name string) (Variable, bool) {
	it := v.table.Iterator()
	for it.Next() {
		key := it.Key().(bindingKey)
		if key.name == name {
			return Variable{Name: key.name, Kind: key.kind, Value: it.Value().(float64)}, true
		}
	}
	return Variable{}, false
}

// All returns the bindings in insertion order.
func (v *Variables) All() []Variable {
	result := make([]Variable, 0, v.table.Size())
	v.table.Each(func(key, value interface{}) {
		k := key.(bindingKey)
		result = append(result, Variable{Name: k.name, Kind: k.kind, Value: value.(float64)})
	})
	return result
}

// Len returns the number of scalar bindings.
func (v *Variables) Len() int {
	return v.table.Size()
}

// ClearAll drops every scalar binding and every array.
func (v *Variables) ClearAll() {
	v.table.Clear()
	v.arrays = make(map[string][]float64)
}

// Dim allocates an array with indexes 0 through upper. An array larger than the
// cell limit fails with ErrOutOfMemory.
func (v *Variables) Dim(name string, upper float64) error {
	if upper < 0 {
		return ErrSubscript
	}
	// Written so that NaN fails too.
	if !(upper+1 <= float64(v.maxCells)) {
		return ErrOutOfMemory
	}
	if _, exists := v.arrays[name]; exists {
		return ErrRedimensioned
	}
	v.arrays[name] = make([]float64, int(upper)+1)
	return nil
}

// cell converts index to a position in cells.
func cell(cells []float64, index float64) (int, error) {
	if !(index >= 0 && index < float64(len(cells))) {
		return 0, ErrSubscript
	}
	return int(index), nil
}

// HasArray reports whether name was dimensioned.
func (v *Variables) HasArray(name string) bool {
	_, ok := v.arrays[name]
	return ok
}

// Element reads one array cell.
func (v *Variables) Element(name string, index float64) (float64, error) {
	cells, ok := v.arrays[name]
	if !ok {
		return 0, ErrSubscript
	}
	i, err := cell(cells, index)
	if err != nil {
		return 0, err
	}
	return cells[i], nil
}

// SetElement writes one array cell. Arrays named with a % suffix hold integers.
func (v *Variables) SetElement(name string, index float64, value float64) error {
	cells, ok := v.arrays[name]
	if !ok {
		return ErrSubscript
	}
	i, err := cell(cells, index)
	if err != nil {
		return err
	}
	if strings.HasSuffix(name, "%") {
		value = math.Trunc(value)
	}
	cells[i] = value
	return nil
}

// kindOf returns the kind a LET assigns for name.
func kindOf(name string) Kind {
	if strings.HasSuffix(name, "%") {
		return KindInteger
	}
	return KindFloat
}
