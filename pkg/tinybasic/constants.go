// Package tinybasic implements a line-numbered BASIC interpreter.
package tinybasic

import (
	"time"

	"github.com/antibyte/retrobasic/pkg/configuration"
)

// Opcode is the single byte a recognized keyword is replaced with by the tokenizer.
// Opcodes live above 127 so they never collide with program text.
type Opcode byte

const (
	OpPrint Opcode = 0x80 + iota
	OpInput
	OpReturn
	OpGoto
	OpGosub
	OpLet
	OpEnd
	OpStop
	OpIf
	OpDim
	OpRem
	OpThen
)

// keywords is matched in this order by the tokenizer.
var keywords = []struct {
	name string
	op   Opcode
}{
	{"PRINT", OpPrint},
	{"INPUT", OpInput},
	{"RETURN", OpReturn},
	{"GOTO", OpGoto},
	{"GOSUB", OpGosub},
	{"LET", OpLet},
	{"END", OpEnd},
	{"STOP", OpStop},
	{"IF", OpIf},
	{"DIM", OpDim},
	{"REM", OpRem},
	{"THEN", OpThen},
}

// String returns the keyword spelling of the opcode.
func (op Opcode) String() string {
	for _, kw := range keywords {
		if kw.op == op {
			return kw.name
		}
	}
	return "?"
}

// Key codes interpreted by the engine.
const (
	KeyBackspace byte = 8
	KeyBreak     byte = 27
	KeyNewline   byte = '\n'
)

const (
	// endOfLine is the cursor value once a line has no more opcodes.
	endOfLine = -1
	// directLine is the line number used for statements typed at the prompt.
	directLine = -1
	// columnGap is what a comma in PRINT emits.
	columnGap   = "     "
	readyPrompt = "\nReady.\n"
)

// Default limits. They mirror the fixed buffers of the engine this interpreter descends from.
const (
	DefaultOperandStackDepth = 64
	// MaxGosubDepth defines the maximum nesting level for GOSUB calls.
	MaxGosubDepth     = 100
	DefaultNameWidth  = 5
	DefaultLineLength = 160
	// DefaultMaxArrayCells bounds the cells one DIM may allocate.
	DefaultMaxArrayCells = 10000
	DefaultPollDelay  = 10 * time.Millisecond
)

// Limits bounds the fixed-capacity parts of the engine.
type Limits struct {
	OperandStackDepth int
	CallStackDepth    int
	// NameWidth is the number of significant letters in a variable name. 0 keeps names whole.
	NameWidth     int
	LineLength    int
	MaxArrayCells int
	PollInterval  time.Duration
	Banner        bool
}

// LimitsFromConfig reads the [Interpreter] section, falling back to the defaults.
func LimitsFromConfig() Limits {
	return Limits{
		OperandStackDepth: configuration.GetInt("Interpreter", "operand_stack_depth", DefaultOperandStackDepth),
		CallStackDepth:    configuration.GetInt("Interpreter", "call_stack_depth", MaxGosubDepth),
		NameWidth:         configuration.GetInt("Interpreter", "name_width", DefaultNameWidth),
		LineLength:        configuration.GetInt("Interpreter", "line_length", DefaultLineLength),
		MaxArrayCells:     configuration.GetInt("Interpreter", "max_array_cells", DefaultMaxArrayCells),
		PollInterval:      configuration.GetDuration("Interpreter", "poll_interval", DefaultPollDelay),
		Banner:            configuration.GetBool("Interpreter", "banner", true),
	}
}
