package typesystem

import (
	"fmt"
	"strings"

	"github.com/5l1v3r1/Expresso/internal/token"
)

// MismatchError is raised when two types cannot be unified at all.
type MismatchError struct {
	Pos1, Pos2 token.Position
	T1, T2     Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("type mismatch: %s (at %s) does not unify with %s (at %s)",
		e.T1, e.Pos1, e.T2, e.Pos2)
}

// OccursError is raised when a variable would have to be bound to a
// type that mentions itself.
type OccursError struct {
	Var TyVar
	T   Type
}

func (e *OccursError) Error() string {
	return fmt.Sprintf("occurs check failed: %s occurs in %s", e.Var, e.T)
}

// KindMismatchError is raised when a Star-kinded variable is unified
// against a Row-kinded one, or vice versa.
type KindMismatchError struct {
	V1, V2 TyVar
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("kind mismatch: %s has kind %s, %s has kind %s", e.V1, e.V1.VarKind, e.V2, e.V2.VarKind)
}

// RepeatedLabelError is raised when a row-variable bind would introduce
// a label that already occurs lower in the same row.
type RepeatedLabelError struct {
	Labels []string
	Pos    token.Position
}

func (e *RepeatedLabelError) Error() string {
	return fmt.Sprintf("repeated label(s) %s at %s", strings.Join(e.Labels, ", "), e.Pos)
}

// EmptyRowInsertError is raised when rewriteRow runs off the end of a
// closed row without finding the label it was looking for.
type EmptyRowInsertError struct {
	Label string
	Pos   token.Position
}

func (e *EmptyRowInsertError) Error() string {
	return fmt.Sprintf("label %q cannot be inserted into a closed row at %s", e.Label, e.Pos)
}

// RecursiveRowError is raised when rewriting a row would require a
// variable to be bound to a row that already mentions it.
type RecursiveRowError struct {
	Var TyVar
}

func (e *RecursiveRowError) Error() string {
	return fmt.Sprintf("recursive row type at %s", e.Var)
}

// LacksViolationError is raised when a row variable's lacks set forbids
// a label the row it is being unified against actually carries.
type LacksViolationError struct {
	Var   TyVar
	Label string
}

func (e *LacksViolationError) Error() string {
	return fmt.Sprintf("%s lacks %q, but the row being unified against it provides %q", e.Var, e.Label, e.Label)
}

// RecordWildcardError is raised when a `{..}` binder is matched against
// a type that never resolves to a closed record.
type RecordWildcardError struct {
	Pos token.Position
	T   Type
}

func (e *RecordWildcardError) Error() string {
	return fmt.Sprintf("record wildcard at %s does not bind to a record type: %s", e.Pos, e.T)
}
