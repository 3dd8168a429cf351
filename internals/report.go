package internals

import (
	"errors"
	"fmt"
	"strings"

	"nervs/lexer"
)

// Positioned is implemented by errors that know where in the source they happened.
type Positioned interface {
	Position() lexer.Token
}

const (
	colorHeader = "\033[1;90m"
	colorCaret  = "\033[1;31m"
	colorReset  = "\033[0m"
)

// Report renders err the way the cli prints it: a file:row:col header, the
// line before, the offending line with a caret under the token, then the
// message. Joined errors are rendered one after the other.
func Report(filePath, source string, err error, color bool) string {
	if err == nil {
		return ""
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		parts := []string{}
		for _, e := range joined.Unwrap() {
			parts = append(parts, Report(filePath, source, e, color))
		}
		return strings.Join(parts, "\n")
	}

	var pos Positioned
	if !errors.As(err, &pos) || !pos.Position().IsValid() {
		return err.Error()
	}

	tok := pos.Position()
	lines := strings.Split(source, "\n")

	var out strings.Builder
	header := fmt.Sprintf("%s:%d:%d:", filePath, tok.Row, tok.Col)
	if color {
		header = colorHeader + header + colorReset
	}
	out.WriteString(header + "\n\n")

	if tok.Row <= len(lines) {
		if tok.Row > 1 {
			fmt.Fprintf(&out, "%d    %s\n", tok.Row-1, lines[tok.Row-2])
		}

		lineNumStr := fmt.Sprintf("%d", tok.Row)
		fmt.Fprintf(&out, "%s    %s\n", lineNumStr, lines[tok.Row-1])

		// tabs are kept so the caret lines up with the source
		prefix := []rune(lines[tok.Row-1])
		if tok.Col > 0 && tok.Col-1 < len(prefix) {
			prefix = prefix[:tok.Col-1]
		}
		indent := strings.Repeat(" ", len(lineNumStr)+4)
		for _, r := range prefix {
			if r == '\t' {
				indent += "\t"
			} else {
				indent += " "
			}
		}

		repeat := len([]rune(tok.Text))
		if repeat == 0 || tok.Kind == lexer.TokenError {
			repeat = 1
		}
		caret := strings.Repeat("^", repeat)
		if color {
			caret = colorCaret + caret + colorReset
		}
		out.WriteString(indent + caret + "\n")
	}

	out.WriteString(stripPosition(err.Error()))
	return out.String()
}

// the header already shows the position, drop the "file:row:col: " prefix
func stripPosition(msg string) string {
	if idx := strings.Index(msg, "ERROR:"); idx > 0 {
		return msg[idx:]
	}
	return msg
}
