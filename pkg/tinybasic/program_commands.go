package tinybasic

import (
	"bufio"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/antibyte/retrobasic/pkg/logger"
)

// cmdNew clears the program and all variables.
func (b *TinyBASIC) cmdNew() {
	b.program.Clear()
	b.exec.Vars.ClearAll()
	b.exec.Calls.Clear()
	b.exec.Operands.Clear()
}

// cmdRun runs the stored program from its first line with a fresh execution context.
func (b *TinyBASIC) cmdRun() error {
	lines := b.program.SortedLines()
	b.exec = NewExecutionContext(b.limits)
	b.exec.Running = true

	logger.Info(logger.AreaTinyBasic, "RUN: %d lines", len(lines))
	err := b.runLoop(b.exec, lines, 0)
	b.exec.Running = false
	b.exec.Err = err
	if err != nil {
		logger.Debug(logger.AreaTinyBasic, "RUN halted: %v", err)
	} else {
		logger.Debug(logger.AreaTinyBasic, "RUN finished")
	}
	return err
}

// runLoop executes program lines starting at index. An index of -1 means the
// line already loaded into ctx is an immediate line that is not part of lines.
func (b *TinyBASIC) runLoop(ctx *ExecutionContext, lines []Line, index int) error {
	for ctx.Running {
		if index >= 0 {
			if index >= len(lines) {
				break
			}
			ctx.load(lines[index].Number, lines[index].Text)
		}

		if err := b.execLine(ctx); err != nil {
			return err
		}
		if err := b.pollBreak(ctx); err != nil {
			return err
		}

		if !ctx.HasJump {
			if index < 0 {
				break
			}
			index++
			ctx.Cursor = 0
			continue
		}

		ctx.HasJump = false
		if ctx.Jump == directLine {
			ctx.load(directLine, ctx.directText)
			index = -1
			continue
		}
		next, ok := findLine(lines, ctx.Jump)
		if !ok {
			return ctx.halt(ErrUndefinedLine)
		}
		index = next
	}
	return nil
}

// findLine returns the index of a line number in sorted lines.
func findLine(lines []Line, number int) (int, bool) {
	i := sort.Search(len(lines), func(i int) bool { return lines[i].Number >= number })
	if i < len(lines) && lines[i].Number == number {
		return i, true
	}
	return 0, false
}

// cmdList prints the program, optionally limited to a line range.
func (b *TinyBASIC) cmdList(args string) error {
	startLine, endLine, err := parseListRange(args)
	if err != nil {
		return err
	}
	b.print("\n")
	for _, line := range b.program.SortedLines() {
		if line.Number >= startLine && line.Number <= endLine {
			b.printf("%d %s\n", line.Number, line.Text)
		}
	}
	return nil
}

// parseListRange parses "", "10", "10-50", "-50" and "10-".
func parseListRange(args string) (int, int, error) {
	startLine := 0
	endLine := math.MaxInt32
	args = strings.TrimSpace(args)
	if args == "" {
		return startLine, endLine, nil
	}
	var parseErr error
	if strings.Contains(args, "-") {
		parts := strings.SplitN(args, "-", 2)
		p1 := strings.TrimSpace(parts[0])
		p2 := strings.TrimSpace(parts[1])
		if p1 != "" {
			if startLine, parseErr = strconv.Atoi(p1); parseErr != nil || startLine < 0 {
				return 0, 0, ErrSyntax
			}
		}
		if p2 != "" {
			if endLine, parseErr = strconv.Atoi(p2); parseErr != nil || endLine < 0 {
				return 0, 0, ErrSyntax
			}
		}
	} else {
		if startLine, parseErr = strconv.Atoi(args); parseErr != nil || startLine < 0 {
			return 0, 0, ErrSyntax
		}
		endLine = startLine
	}
	if endLine < startLine {
		return 0, 0, ErrSyntax
	}
	return startLine, endLine, nil
}

// cmdDir prints the names held by the storage collaborator.
func (b *TinyBASIC) cmdDir() {
	b.print("\nFiles:\n")
	if b.storage == nil {
		b.print("\n?Disk read error.")
		logger.Warn(logger.AreaFileSystem, "DIR: %v", ErrNoStorage)
		return
	}
	names, err := b.storage.List()
	if err != nil {
		b.print("\n?Disk read error.")
		logger.Warn(logger.AreaFileSystem, "DIR failed: %v", err)
		return
	}
	sort.Strings(names)
	for _, name := range names {
		b.printf("%s\n", name)
	}
	b.print("\n")
}

// cmdLoad replaces the program with the contents of <name>.BAS.
func (b *TinyBASIC) cmdLoad(name string) {
	b.program.Clear()

	name = strings.TrimSpace(name)
	b.printf("Searching for %s\n", name)
	if err := b.loadProgram(name); err != nil {
		b.printf("?File load error: %v", err)
		logger.Warn(logger.AreaFileSystem, "LOAD %s failed: %v", name, err)
		return
	}
	logger.Debug(logger.AreaFileSystem, "LOAD %s: %d lines", name, b.program.Len())
}

func (b *TinyBASIC) loadProgram(name string) error {
	if name == "" {
		return ErrEmptyFilename
	}
	if b.storage == nil {
		return ErrNoStorage
	}
	r, err := b.storage.Open(programFileName(name))
	if err != nil {
		return err
	}
	defer r.Close()

	b.print("Loading\n")
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		record := strings.TrimRight(scanner.Text(), "\r")
		number, text, ok := splitProgramRecord(record)
		if !ok {
			if strings.TrimSpace(record) != "" {
				logger.Debug(logger.AreaFileSystem, "LOAD %s: skipped record %q", name, record)
			}
			continue
		}
		b.program.InsertOrReplace(number, text)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", programFileName(name), err)
	}
	b.program.Sort()
	return nil
}

// splitProgramRecord splits "<number> <text>" into its parts, dropping the one
// space after the number. Records without a number or without text are rejected.
func splitProgramRecord(record string) (int, string, bool) {
	digits := 0
	for digits < len(record) && isDigit(record[digits]) {
		digits++
	}
	if digits == 0 {
		return 0, "", false
	}
	number, err := strconv.Atoi(record[:digits])
	if err != nil {
		return 0, "", false
	}
	text := strings.TrimPrefix(record[digits:], " ")
	if strings.TrimSpace(text) == "" {
		return 0, "", false
	}
	return number, text, true
}

// cmdSave writes the program to a new file <name>.BAS.
func (b *TinyBASIC) cmdSave(name string) {
	name = strings.TrimSpace(name)
	if err := b.saveProgram(name); err != nil {
		b.printf("?File save error: %v", err)
		logger.Warn(logger.AreaFileSystem, "SAVE %s failed: %v", name, err)
		return
	}
	logger.Debug(logger.AreaFileSystem, "SAVE %s: %d lines", name, b.program.Len())
}

func (b *TinyBASIC) saveProgram(name string) (err error) {
	if name == "" {
		return ErrEmptyFilename
	}
	if b.storage == nil {
		return ErrNoStorage
	}
	w, err := b.storage.Create(programFileName(name))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close %s: %w", programFileName(name), closeErr)
		}
	}()

	b.printf("Saving %s\n", name)
	bw := bufio.NewWriter(w)
	for _, line := range b.program.SortedLines() {
		if _, err := fmt.Fprintf(bw, "%d %s\n", line.Number, line.Text); err != nil {
			return fmt.Errorf("write %s: %w", programFileName(name), err)
		}
	}
	return bw.Flush()
}
