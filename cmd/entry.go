package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"nervs/compiler"
	"nervs/internals"
	"nervs/interpreter"
	"nervs/lexer"
	"nervs/parser"
	"nervs/repl"
)

type (
	CommandFunc func(args []string, stdout, stderr io.Writer) int

	FlagInfo struct {
		Name        string
		Description string
	}

	CommandInfo struct {
		Description string
		Function    CommandFunc
		Flags       []FlagInfo
	}
)

var commands map[string]CommandInfo

func init() {
	commands = map[string]CommandInfo{
		"check": {
			Description: "Analyzes one or more programs, reports the first error of each",
			Function:    Check,
			Flags: []FlagInfo{
				{Name: "-v", Description: "verbose logging"},
			},
		},
		"run": {
			Description: "Takes the filepath of program, and executes one of its rituals",
			Function:    Run,
			Flags: []FlagInfo{
				{Name: "-f", Description: "program file path"},
				{Name: "-r", Description: "ritual to execute, as Realm.Being.ritual"},
				{Name: "-max-cycles", Description: "iterations allowed per cycle statement"},
				{Name: "-max-depth", Description: "nested ritual calls allowed"},
				{Name: "-v", Description: "verbose logging"},
			},
		},
		"dump": {
			Description: "Prints the parsed tree of a program",
			Function:    Dump,
			Flags: []FlagInfo{
				{Name: "-f", Description: "program file path"},
			},
		},
		"repl": {
			Description: "Starts an interactive session",
			Function:    Repl,
			Flags: []FlagInfo{
				{Name: "-v", Description: "verbose logging"},
			},
		},
		"help": {
			Description: "Prints the usage of all commands",
			Function:    Help,
			Flags:       []FlagInfo{},
		},
	}
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func Help(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		// show the whole help catalog
		printResult := "\n\033[1;35mSupported Commands:\033[0m\n\n"

		names := make([]string, 0, len(commands))
		for name := range commands {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			printResult += usage(name, commands[name], "  ")
			printResult += "\n"
		}

		fmt.Fprintln(stdout, printResult)
		return 0
	}

	// print the help of the specified commands
	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintln(stderr, "ERROR: provided command, isn't supported")
		return 2
	}

	fmt.Fprintln(stdout, "\n\033[1;35mCommand:\033[0m\n"+usage(cmdName, cmd, ""))
	return 0
}

func usage(name string, cmd CommandInfo, indent string) string {
	out := fmt.Sprintf("%s\033[1;36m%v\033[0m\n", indent, name)
	out += fmt.Sprintf("%s  \033[1;37mDescription:\033[0m \033[0;37m%v\033[0m\n", indent, cmd.Description)

	if len(cmd.Flags) == 0 {
		return out + fmt.Sprintf("%s  \033[0;37m(No flags available)\033[0m\n", indent)
	}
	out += fmt.Sprintf("%s  \033[1;37mFlags:\033[0m\n", indent)
	for _, flag := range cmd.Flags {
		out += fmt.Sprintf("%s    \033[1;33m%v\033[0m - \033[0;37m%v\033[0m\n", indent, flag.Name, flag.Description)
	}
	return out
}

func Check(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "ERROR: provide at least one program to check")
		return 2
	}

	logger := newLogger(*verbose)
	defer logger.Sync() //nolint:errcheck

	files := make([]compiler.File, 0, fs.NArg())
	for _, path := range fs.Args() {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stderr, "ERROR:", err)
			return 1
		}
		files = append(files, compiler.File{Name: path, Source: string(content)})
	}

	results, err := compiler.New(compiler.WithLogger(logger)).CheckAll(context.Background(), files)
	if err != nil {
		fmt.Fprintln(stderr, "ERROR:", err)
		return 1
	}

	code := 0
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintln(stderr, internals.Report(res.File.Name, res.File.Source, res.Err, true))
			code = 1
			continue
		}
		fmt.Fprintf(stdout, "%s: ok\n", res.File.Name)
	}
	return code
}

func Run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fileTarget := fs.String("f", "", "program file path")
	ritual := fs.String("r", "", "ritual to execute, as Realm.Being.ritual")
	maxCycles := fs.Int("max-cycles", interpreter.DefaultMaxCycleIterations, "iterations allowed per cycle statement")
	maxDepth := fs.Int("max-depth", interpreter.DefaultMaxCallDepth, "nested ritual calls allowed")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *fileTarget == "" {
		fmt.Fprintln(stderr, "ERROR: provide the filepath flag -f to assign the path to it")
		return 2
	}
	if *ritual == "" {
		fmt.Fprintln(stderr, "ERROR: provide the ritual to execute with -r Realm.Being.ritual")
		return 2
	}

	logger := newLogger(*verbose)
	defer logger.Sync() //nolint:errcheck

	content, err := os.ReadFile(*fileTarget)
	if err != nil {
		fmt.Fprintln(stderr, "ERROR:", err)
		return 1
	}
	source := string(content)

	unit, err := compiler.New(compiler.WithLogger(logger)).Compile(*fileTarget, source)
	if err != nil {
		fmt.Fprintln(stderr, internals.Report(*fileTarget, source, err, true))
		return 1
	}

	interp := interpreter.New(unit.Program,
		interpreter.WithLogger(logger),
		interpreter.WithMaxCycleIterations(*maxCycles),
		interpreter.WithMaxCallDepth(*maxDepth),
	)
	result, err := repl.Run(interp, *ritual, fs.Args())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	fmt.Fprintln(stdout, result)
	return 0
}

func Dump(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fileTarget := fs.String("f", "", "program file path")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *fileTarget == "" {
		fmt.Fprintln(stderr, "ERROR: provide the filepath flag -f to assign the path to it")
		return 2
	}

	content, err := os.ReadFile(*fileTarget)
	if err != nil {
		fmt.Fprintln(stderr, "ERROR:", err)
		return 1
	}
	source := string(content)

	program, err := parser.NewParser(lexer.NewLexer(*fileTarget, source), *fileTarget).Parse()
	if err != nil {
		fmt.Fprintln(stderr, internals.Report(*fileTarget, source, err, true))
		return 1
	}

	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
	cfg.Fdump(stdout, program)
	return 0
}

func Repl(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := newLogger(*verbose)
	defer logger.Sync() //nolint:errcheck

	repl.Start(stdout, logger)
	return 0
}

// Dispatch runs the command named by args[0].
func Dispatch(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "ERROR: at least provide command name to kick off the cli")
		return 2
	}

	name := strings.TrimSpace(args[0])
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "ERROR: unknown command %v, check help for manual.\n", name)
		return 2
	}

	return cmd.Function(args[1:], stdout, stderr)
}

func Execute() {
	os.Exit(Dispatch(os.Args[1:], os.Stdout, os.Stderr))
}
