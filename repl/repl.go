package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"nervs/compiler"
	"nervs/internals"
	"nervs/interpreter"
	"nervs/lexer"
	"nervs/object"
)

const (
	PROMPT      = `>>> `
	CONT_PROMPT = `... `
	historyFile = ".nervs_history"
	unitName    = "<repl>"
)

// Session keeps every realm entered so far. Each new declaration is analyzed
// together with the previous ones, rejected input leaves the session as it
// was.
type Session struct {
	compiler *compiler.Compiler
	logger   *zap.Logger
	source   string
	interp   *interpreter.Interpreter
}

func NewSession(logger *zap.Logger) *Session {
	return &Session{
		compiler: compiler.New(compiler.WithLogger(logger)),
		logger:   logger,
	}
}

// Eval handles one complete input: either a :command or realm declarations.
func (s *Session) Eval(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}

	if strings.HasPrefix(input, ":") {
		return s.command(input)
	}

	candidate := input
	if s.source != "" {
		candidate = s.source + "\n" + input
	}

	unit, err := s.compiler.Compile(unitName, candidate)
	if err != nil {
		return "", errors.New(internals.Report(unitName, candidate, err, false))
	}

	s.source = candidate
	// member state starts over whenever the program changes
	s.interp = interpreter.New(unit.Program, interpreter.WithLogger(s.logger))
	return fmt.Sprintf("ok, %d realm(s) loaded", len(unit.Program.Realms)), nil
}

func (s *Session) command(input string) (string, error) {
	fields := strings.Fields(input)
	switch fields[0] {
	case ":run":
		if len(fields) < 2 {
			return "", errors.New("ERROR: usage :run Realm.Being.ritual [args...]")
		}
		if s.interp == nil {
			return "", errors.New("ERROR: nothing loaded yet, declare a realm first")
		}
		return Run(s.interp, fields[1], fields[2:])
	case ":source":
		return s.source, nil
	case ":reset":
		s.source = ""
		s.interp = nil
		return "session cleared", nil
	default:
		return "", fmt.Errorf("ERROR: unknown command %s, try :run, :source, :reset or :quit", fields[0])
	}
}

// Run executes target (Realm.Being.ritual) with textual arguments converted to
// the parameter types of the ritual. The cli run command goes through it too.
func Run(interp *interpreter.Interpreter, target string, textArgs []string) (string, error) {
	parts := strings.Split(target, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("ERROR: expected Realm.Being.ritual, got %s", target)
	}

	rt, err := interp.Ritual(parts[0], parts[1], parts[2])
	if err != nil {
		return "", fmt.Errorf("ERROR: %w", err)
	}
	if len(textArgs) != len(rt.Parameters) {
		return "", fmt.Errorf("ERROR: ritual (%s) expects %d argument(s), got %d", rt.Name, len(rt.Parameters), len(textArgs))
	}

	args := make([]object.Object, 0, len(textArgs))
	for idx, text := range textArgs {
		arg, err := object.Parse(rt.Parameters[idx].Type, text)
		if err != nil {
			return "", fmt.Errorf("ERROR: argument %d: %w", idx, err)
		}
		args = append(args, arg)
	}

	result, err := interp.Execute(parts[0], parts[1], parts[2], args...)
	if err != nil {
		return "", err
	}
	return result.Inspect(), nil
}

// openBraces counts the { still waiting for their }, so multi line realms
// can be typed in one go.
func openBraces(src string) int {
	depth := 0
	for _, tok := range lexer.NewLexer("", src).Tokenize() {
		switch tok.Kind {
		case lexer.TokenCurlyBraceOpen:
			depth++
		case lexer.TokenCurlyBraceClose:
			depth--
		}
	}
	return depth
}

func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := PROMPT
		if b.Len() > 0 {
			prompt = CONT_PROMPT
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// ctrl-c drops the pending input
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if openBraces(b.String()) <= 0 {
			return b.String(), true
		}
	}
}

func Start(out io.Writer, logger *zap.Logger) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintln(out, "Nervs repl, declare realms or :run Realm.Being.ritual args, :quit to leave")

	session := NewSession(logger)
	for {
		input, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(out)
			return
		}
		if strings.TrimSpace(input) == ":quit" {
			return
		}

		res, err := session.Eval(input)
		if err != nil {
			fmt.Fprintln(out, err)
		} else if res != "" {
			fmt.Fprintln(out, res)
		}
		if strings.TrimSpace(input) != "" {
			ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		}
	}
}
