// Package ast defines the expression tree Expresso's parser produces.
//
// Two trees share this package: the pre-elaboration tree still contains
// Import nodes (produced directly by the parser) and the elaborated tree
// the import resolver hands to the inferencer (Import nodes spliced away).
// Every surface sugar form is compiled away at parse time, so the
// elaborated tree only ever contains the eight node kinds below other
// than Import, and the pre-elaboration tree those eight plus Import.
package ast

import (
	"github.com/5l1v3r1/Expresso/internal/token"
	"github.com/5l1v3r1/Expresso/internal/typesystem"
)

// Type is the surface and internal representation of a type: the same
// tree the type-expression parser builds from a `forall ... => ...`
// annotation is what the inferencer unifies and generalises.
type Type = typesystem.Type

// Expr is satisfied by every expression node. GetPos anchors diagnostics
// back to source the way the teacher's TokenProvider does for its richer
// node set; Expresso's closed eight-node grammar does not carry the
// teacher's Visitor machinery, since every consumer here is a direct type
// switch (the import resolver, the inferencer), not a
// multi-backend dispatch.
type Expr interface {
	GetPos() token.Position
	exprNode()
}

// Var references a bound term name.
type Var struct {
	Pos  token.Position
	Name string
}

// PrimExpr wraps a primitive operation tag as a leaf expression.
type PrimExpr struct {
	Pos  token.Position
	Prim Prim
}

// App is function application: Fn Arg.
type App struct {
	Pos token.Position
	Fn  Expr
	Arg Expr
}

// Lam is an unannotated lambda: \bind -> Body.
type Lam struct {
	Pos  token.Position
	Bind Bind
	Body Expr
}

// Let is a non-recursive local binding: let Bind = Value in Body.
type Let struct {
	Pos   token.Position
	Bind  Bind
	Value Expr
	Body  Expr
}

// AnnLam is a lambda whose binder carries an explicit type annotation.
type AnnLam struct {
	Pos  token.Position
	Bind Bind
	Type Type
	Body Expr
}

// AnnLet is a let whose bound value carries an explicit type annotation.
type AnnLet struct {
	Pos   token.Position
	Bind  Bind
	Type  Type
	Value Expr
	Body  Expr
}

// Ann is an expression with an explicit type ascription: Expr : Type.
type Ann struct {
	Pos  token.Position
	Expr Expr
	Type Type
}

// Import splices another source file's body expression in place. Only
// ever present in the pre-elaboration tree; the import resolver removes
// every Import node before the inferencer runs.
type Import struct {
	Pos  token.Position
	Path string
}

func (e *Var) GetPos() token.Position { return e.Pos }
func (e *PrimExpr) GetPos() token.Position { return e.Pos }
func (e *App) GetPos() token.Position { return e.Pos }
func (e *Lam) GetPos() token.Position { return e.Pos }
func (e *Let) GetPos() token.Position { return e.Pos }
func (e *AnnLam) GetPos() token.Position { return e.Pos }
func (e *AnnLet) GetPos() token.Position { return e.Pos }
func (e *Ann) GetPos() token.Position { return e.Pos }
func (e *Import) GetPos() token.Position { return e.Pos }

func (e *Var) exprNode() {}
func (e *PrimExpr) exprNode() {}
func (e *App) exprNode() {}
func (e *Lam) exprNode() {}
func (e *Let) exprNode() {}
func (e *AnnLam) exprNode() {}
func (e *AnnLet) exprNode() {}
func (e *Ann) exprNode() {}
func (e *Import) exprNode() {}

// Bind classifies a lambda/let binder.
type Bind interface {
	GetPos() token.Position
	bindNode()
}

// Arg is a plain single-name binder: \x -> ...
type Arg struct {
	Pos  token.Position
	Name string
}

// RecLabel is one label/local-name pair in a record-destructuring binder.
type RecLabel struct {
	Label string
	Name  string // local name; equals Label for an un-renamed pun
}

// RecArg destructures a record argument: \{x, y=local} -> ...
type RecArg struct {
	Pos    token.Position
	Labels []RecLabel
}

// RecWildcard binds every field of a (necessarily closed) record type to
// a same-named local variable: \{..} -> ...
type RecWildcard struct {
	Pos token.Position
}

func (b *Arg) GetPos() token.Position { return b.Pos }
func (b *RecArg) GetPos() token.Position { return b.Pos }
func (b *RecWildcard) GetPos() token.Position { return b.Pos }

func (b *Arg) bindNode() {}
func (b *RecArg) bindNode() {}
func (b *RecWildcard) bindNode() {}

// BindNames returns every local name a binder introduces, in binder order.
func BindNames(b Bind) []string {
	switch b := b.(type) {
	case *Arg:
		return []string{b.Name}
	case *RecArg:
		names := make([]string, len(b.Labels))
		for i, l := range b.Labels {
			names[i] = l.Name
		}
		return names
	case *RecWildcard:
		return nil // resolved dynamically against the record's type
	default:
		return nil
	}
}
