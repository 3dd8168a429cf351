// Package compiler runs the Nervs front end over source text: lexing,
// parsing and semantic analysis of one or several compilation units.
package compiler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"nervs/ast"
	"nervs/lexer"
	"nervs/parser"
	"nervs/semantics"
)

// Unit is one analyzed source file.
type Unit struct {
	Name    string
	Source  string
	Program *ast.Program
	Info    *semantics.Info
}

// File is the input of CheckAll.
type File struct {
	Name   string
	Source string
}

// Result pairs a file with the outcome of its analysis.
type Result struct {
	File File
	Unit *Unit
	Err  error
}

type Compiler struct {
	logger      *zap.Logger
	concurrency int
}

type Option func(*Compiler)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithConcurrency bounds how many units CheckAll analyzes at once, zero or
// less means no bound.
func WithConcurrency(n int) Option {
	return func(c *Compiler) {
		c.concurrency = n
	}
}

func New(opts ...Option) *Compiler {
	c := &Compiler{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile lexes, parses and analyzes a single unit. Syntax errors come back
// joined, analysis stops at its first error.
func (c *Compiler) Compile(name, source string) (*Unit, error) {
	start := time.Now()
	log := c.logger.With(zap.String("unit", name))

	program, err := parser.NewParser(lexer.NewLexer(name, source), name).Parse()
	if err != nil {
		log.Debug("parse failed", zap.Error(err))
		return nil, err
	}
	log.Debug("parsed", zap.Int("realms", len(program.Realms)))

	info, err := semantics.NewAnalyzer().Analyze(program)
	if err != nil {
		log.Debug("analysis failed", zap.Error(err))
		return nil, err
	}

	log.Debug("analyzed",
		zap.Int("expressions", len(info.Types)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Unit{
		Name:    name,
		Source:  source,
		Program: program,
		Info:    info,
	}, nil
}

// CheckAll compiles every file with its own analyzer. A failing file does not
// stop the others; the returned error is only set when ctx is done before
// every file was checked. Results keep the order of files.
func (c *Compiler) CheckAll(ctx context.Context, files []File) ([]Result, error) {
	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}

	for idx, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("checking %s: %w", file.Name, err)
			}
			unit, err := c.Compile(file.Name, file.Source)
			results[idx] = Result{File: file, Unit: unit, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	c.logger.Info("checked units", zap.Int("units", len(files)), zap.Int("failed", failed))

	return results, nil
}
