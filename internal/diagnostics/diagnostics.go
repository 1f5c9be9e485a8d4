// Package diagnostics collects the positioned error types that need no
// Type: parse, import, annotation and synonym errors, plus the
// unbound-variable error the inferencer raises. Errors that must mention a Type
// live in internal/typesystem instead, to avoid a typesystem <-> this
// package import cycle.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/5l1v3r1/Expresso/internal/token"
)

// ParseError is raised by the expression or type-annotation parser on
// any malformed input: an unexpected token, a missing closing
// delimiter, an override arm that is not the last, and so on.
type ParseError struct {
	Pos     token.Position
	Message string
}

func NewParseError(pos token.Position, format string, args ...interface{}) *ParseError {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Message)
}

// ImportError is raised when an import path cannot be resolved against
// any configured library directory, or when resolving it would require
// re-entering a file already on the current import chain.
type ImportError struct {
	Pos    token.Position
	Path   string
	Dirs   []string
	Cyclic bool

	// ID identifies the file that closes the cycle by its resolver-assigned
	// identity tag, so a cycle through two differently-spelled (but
	// same-file) import paths is reported against one stable name rather
	// than whichever spelling happened to be typed last.
	ID string
}

func (e *ImportError) Error() string {
	if e.Cyclic {
		return fmt.Sprintf("import error at %s: %q forms an import cycle (import %s)", e.Pos, e.Path, e.ID)
	}
	return fmt.Sprintf("import error at %s: could not find %q in any of [%s]",
		e.Pos, e.Path, strings.Join(e.Dirs, ", "))
}

// AnnotationError is raised by the type-annotation parser when a
// written-out type mentions a variable that was never bound by an
// enclosing forall, or attaches a constraint to a variable the
// annotation itself never quantifies.
type AnnotationError struct {
	Pos     token.Position
	Message string
}

func NewAnnotationError(pos token.Position, format string, args ...interface{}) *AnnotationError {
	return &AnnotationError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (e *AnnotationError) Error() string {
	return fmt.Sprintf("annotation error at %s: %s", e.Pos, e.Message)
}

// BindingError is raised by the inferencer when a plain Var refers to a
// term variable with no enclosing binder and no entry in the environment.
type BindingError struct {
	Pos  token.Position
	Name string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("unbound variable %q at %s", e.Name, e.Pos)
}

// SynonymError is raised by declaration-time synonym well-formedness
// validation: a synonym body mentioning a variable outside its own
// formals, or a synonym referring to an unknown name.
type SynonymError struct {
	Pos     token.Position
	Name    string
	Message string
}

func (e *SynonymError) Error() string {
	return fmt.Sprintf("synonym %q at %s: %s", e.Name, e.Pos, e.Message)
}
