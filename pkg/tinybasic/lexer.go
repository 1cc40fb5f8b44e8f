package tinybasic

import "strings"

// isSpace reports whether ch is skipped between symbols.
func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

func isOperator(ch byte) bool {
	switch ch {
	case '+', '-', '*', '/', '<', '>', '=', '(', ')':
		return true
	}
	return false
}

// lookupKeyword matches an accumulated run of letters against the keyword table.
func lookupKeyword(run []byte) (Opcode, bool) {
	for _, kw := range keywords {
		if len(run) == len(kw.name) && strings.EqualFold(string(run), kw.name) {
			return kw.op, true
		}
	}
	return 0, false
}

// Tokenize converts a program line into its opcode form. Letters accumulate into a
// run that is replaced by the keyword's opcode as soon as the run spells a keyword;
// everything else, and everything between double quotes, is copied through. The
// result is case-folded with FoldCase and terminated by a zero byte.
func Tokenize(text string) []byte {
	out := make([]byte, 0, len(text)+1)
	run := make([]byte, 0, 8)
	inQuote := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inQuote {
			out = append(out, ch)
			if ch == '"' {
				inQuote = false
			}
			continue
		}
		if isAlpha(ch) {
			run = append(run, ch)
			if op, ok := lookupKeyword(run); ok {
				out = append(out, byte(op))
				run = run[:0]
			}
			continue
		}
		out = append(out, run...)
		run = run[:0]
		out = append(out, ch)
		if ch == '"' {
			inQuote = true
		}
	}
	out = append(out, run...)

	foldCase(out)
	return append(out, 0)
}

// FoldCase upper-cases s outside double-quoted regions. A single quote starts a
// comment that keeps its case until the next newline.
func FoldCase(s string) string {
	b := []byte(s)
	foldCase(b)
	return string(b)
}

func foldCase(b []byte) {
	fold := true
	for i, ch := range b {
		switch {
		case ch >= 'a' && ch <= 'z':
			if fold {
				b[i] = ch - ('a' - 'A')
			}
		case ch == '"':
			fold = !fold
		case ch == '\'':
			fold = false
		case ch == '\n':
			fold = true
		}
	}
}
