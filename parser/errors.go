package parser

import (
	"fmt"

	"github.com/beanls/beanls/ast"
)

// SyntaxError describes a parse failure at a source position. The
// parser recovers from these locally (they become ast.Error entries);
// they are never fatal.
type SyntaxError struct {
	Pos ast.Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func newErrorf(pos ast.Position, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
