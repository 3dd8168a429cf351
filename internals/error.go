package internals

import (
	"errors"
	"fmt"

	"nervs/lexer"
)

// This file handles an error collector obj

// SyntaxError is an error tied to a token of the source file.
type SyntaxError struct {
	FilePath string
	Token    lexer.Token
	Message  string
}

func (e *SyntaxError) Error() string {
	if e.FilePath == "" {
		return fmt.Sprintf("%d:%d: ERROR: %s", e.Token.Row, e.Token.Col, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: ERROR: %s", e.FilePath, e.Token.Row, e.Token.Col, e.Message)
}

func (e *SyntaxError) Position() lexer.Token { return e.Token }

type ErrorCollector struct {
	FilePath string
	Errors   []error
}

func NewErrorCollector(filePath string) *ErrorCollector {
	return &ErrorCollector{
		FilePath: filePath,
		Errors:   make([]error, 0),
	}
}

func (ec *ErrorCollector) Add(err error) {
	ec.Errors = append(ec.Errors, err)
}

// Error builds a positioned error, it doesn't add it to the collector.
func (ec *ErrorCollector) Error(tok lexer.Token, msg ...any) error {
	return &SyntaxError{
		FilePath: ec.FilePath,
		Token:    tok,
		Message:  fmt.Sprint(msg...),
	}
}

func (ec *ErrorCollector) HasErrors() bool {
	return len(ec.Errors) > 0
}

// Err joins every collected error, nil when nothing was collected.
func (ec *ErrorCollector) Err() error {
	return errors.Join(ec.Errors...)
}
