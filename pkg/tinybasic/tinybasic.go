package tinybasic

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/antibyte/retrobasic/pkg/logger"
)

// Helper function for TinyBASIC debug logging that respects configuration
func tinyBasicDebugLog(format string, args ...interface{}) {
	logger.Debug(logger.AreaTinyBasic, format, args...)
}

// Banner is printed when the REPL starts.
const Banner = "The Raspberry Pi BASIC Development System"

// TinyBASIC is the interpreter: program store, execution context and the REPL
// that drives them. One instance serves one console; it is not safe for
// concurrent use.
type TinyBASIC struct {
	// Collaborators
	console Console
	storage Storage // nil disables DIR, LOAD and SAVE

	// Interpreter state
	program    *Program
	exec       *ExecutionContext
	statements map[Opcode]Statement
	limits     Limits
	sessionID  string
	typeahead  []byte // keys read by the break poll, not yet consumed

	// ctx is the session context. Cancelling it breaks a running program and ends the REPL.
	ctx context.Context
}

// NewTinyBASIC creates an interpreter bound to a console and an optional storage.
func NewTinyBASIC(console Console, storage Storage, limits Limits) *TinyBASIC {
	if limits.PollInterval <= 0 {
		limits.PollInterval = DefaultPollDelay
	}
	return &TinyBASIC{
		console:    console,
		storage:    storage,
		program:    NewProgram(),
		exec:       NewExecutionContext(limits),
		statements: newStatementTable(),
		limits:     limits,
		ctx:        context.Background(),
	}
}

// SetSessionID tags log output with the session the interpreter serves.
func (b *TinyBASIC) SetSessionID(id string) {
	b.sessionID = id
}

// Program returns the program store.
func (b *TinyBASIC) Program() *Program {
	return b.program
}

// Context returns the current execution context.
func (b *TinyBASIC) Context() *ExecutionContext {
	return b.exec
}

// Run is the REPL. It reads lines from the console until ctx is cancelled or the
// console reports the end of its input.
func (b *TinyBASIC) Run(ctx context.Context) error {
	b.ctx = ctx
	defer func() { b.ctx = context.Background() }()

	logger.Info(logger.AreaTinyBasic, "REPL started (session %s)", b.sessionID)
	if b.limits.Banner {
		b.print("\n" + Banner + "\n")
	}
	b.print(readyPrompt)

	for {
		line, err := b.readLine(false)
		if err != nil {
			logger.Info(logger.AreaTinyBasic, "REPL stopped (session %s): %v", b.sessionID, err)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		b.ExecuteLine(line)
	}
}

// ExecuteLine handles one line typed at the prompt: a numbered line edits the
// program, a command runs, anything else executes immediately.
func (b *TinyBASIC) ExecuteLine(input string) {
	line := strings.TrimLeft(FoldCase(input), " \t")
	if line == "" {
		return
	}

	if isDigit(line[0]) {
		b.editLine(line)
		return
	}
	if !isAlpha(line[0]) {
		return
	}

	command := strings.TrimRight(line, " \t\r\n")
	switch {
	case command == "RUN":
		if err := b.cmdRun(); err != nil {
			b.reportHalt(err)
		}
	case isListCommand(command):
		if err := b.cmdList(command[len("LIST"):]); err != nil {
			b.reportHalt(NewBASICError(err, directLine, true))
		}
	case command == "NEW":
		b.print("\n")
		b.cmdNew()
	case command == "DIR":
		b.print("\n")
		b.cmdDir()
	case strings.HasPrefix(command, "LOAD "):
		b.print("\n")
		b.cmdLoad(command[len("LOAD "):])
	case strings.HasPrefix(command, "SAVE "):
		b.print("\n")
		b.cmdSave(command[len("SAVE "):])
	default:
		if err := b.Execute(line); err != nil {
			b.reportHalt(err)
		}
	}
	b.print(readyPrompt)
}

// isListCommand accepts LIST with nothing after it or with a line range.
func isListCommand(command string) bool {
	if !strings.HasPrefix(command, "LIST") {
		return false
	}
	rest := strings.TrimSpace(command[len("LIST"):])
	return rest == "" || isDigit(rest[0]) || rest[0] == '-'
}

// editLine stores, replaces or deletes a numbered program line.
func (b *TinyBASIC) editLine(line string) {
	digits := 0
	for digits < len(line) && isDigit(line[digits]) {
		digits++
	}
	number, err := strconv.Atoi(line[:digits])
	if err != nil {
		b.reportHalt(NewBASICError(ErrSyntax, directLine, true))
		b.print(readyPrompt)
		return
	}
	text := strings.TrimLeft(line[digits:], " ")
	if strings.TrimSpace(text) == "" {
		b.program.Delete(number)
		return
	}
	b.program.InsertOrReplace(number, text)
}

// Execute runs text as an immediate statement line. GOTO and GOSUB continue into
// the stored program; variables are shared with the last RUN.
func (b *TinyBASIC) Execute(text string) error {
	ctx := b.exec
	ctx.Operands.Clear()
	ctx.Calls.Clear()
	ctx.HasJump = false
	ctx.Err = nil
	ctx.Running = true
	ctx.load(directLine, text)
	ctx.Cursor = 0

	err := b.runLoop(ctx, b.program.SortedLines(), -1)
	ctx.Running = false
	ctx.Err = err
	return err
}

// execLine runs the statements of the loaded line from the cursor until the line
// ends, a jump is requested, the program stops or a statement fails.
func (b *TinyBASIC) execLine(ctx *ExecutionContext) error {
	for ctx.Running {
		ctx.skipSpace()
		if ctx.Cursor == endOfLine {
			return nil
		}

		start := ctx.Cursor
		symbol, next := readSymbol(ctx.Opcodes, ctx.Cursor)
		ctx.Operands.Clear()

		stmt, ok := b.lookupStatement(symbol)
		if ok {
			ctx.Cursor = next
		} else {
			stmt = b.statements[OpLet]
			ctx.Cursor = start
		}

		if err := stmt.Execute(b, ctx); err != nil {
			ctx.Running = false
			var halt *BASICError
			if !errors.As(err, &halt) {
				halt = ctx.halt(err)
			}
			ctx.Err = halt
			return halt
		}

		if ctx.HasJump {
			return nil
		}
		if ctx.Cursor != endOfLine {
			if Opcode(ctx.current()) == OpThen {
				ctx.Cursor++
			} else {
				ctx.Cursor = ctx.nextStatement()
			}
		}
	}
	return nil
}

// reportHalt prints a halt message on its own line.
func (b *TinyBASIC) reportHalt(err error) {
	tinyBasicDebugLog("halt: %v", err)
	b.print("\n" + err.Error())
}
