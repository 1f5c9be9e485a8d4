// Package synonym expands transparent type synonym declarations
// (`type Name a b = <type>`) at the point of use, and validates them at
// declaration time. Synonyms never reach the unifier: expansion always
// happens first, so internal/typesystem's mgu has no TSynonym case.
package synonym

import (
	"github.com/5l1v3r1/Expresso/internal/diagnostics"
	"github.com/5l1v3r1/Expresso/internal/token"
	"github.com/5l1v3r1/Expresso/internal/typesystem"
)

// Decl is one `type Name formals... = body` declaration.
type Decl struct {
	Pos     token.Position
	Name    string
	Formals []string
	Body    typesystem.Type
}

// Table is the set of synonym declarations visible in a module, keyed
// by name. Declarations accumulate across imports the same way the
// front end's other module-level bindings do (see internal/imports).
type Table map[string]Decl

// Validate checks that d's body mentions only d's own formals as bare
// type variables and only other names already present in table as
// TSynonym uses — the well-formedness rule a complete front end needs
// beyond what spec.md's distillation spelled out, since an unbound
// synonym variable or a forward/unknown reference would otherwise
// surface as a confusing unification failure far from its declaration.
func Validate(table Table, d Decl) error {
	formals := make(map[string]bool, len(d.Formals))
	for _, f := range d.Formals {
		formals[f] = true
	}
	return validateBody(table, d, d.Body, formals)
}

func validateBody(table Table, d Decl, t typesystem.Type, formals map[string]bool) error {
	switch ty := t.(type) {
	case typesystem.TVar:
		if !formals[ty.Var.Prefix] {
			return &diagnostics.SynonymError{
				Pos: ty.Pos(), Name: d.Name,
				Message: "refers to a type variable not bound by its own formals: " + ty.Var.Prefix,
			}
		}
		return nil
	case typesystem.TSynonym:
		if ty.Name != d.Name {
			if _, ok := table[ty.Name]; !ok {
				return &diagnostics.SynonymError{
					Pos: ty.Pos(), Name: d.Name,
					Message: "refers to unknown synonym " + ty.Name,
				}
			}
		}
		for _, a := range ty.Args {
			if err := validateBody(table, d, a, formals); err != nil {
				return err
			}
		}
		return nil
	case typesystem.TFun:
		if err := validateBody(table, d, ty.Arg, formals); err != nil {
			return err
		}
		return validateBody(table, d, ty.Result, formals)
	case typesystem.TList:
		return validateBody(table, d, ty.Elem, formals)
	case typesystem.TRecord:
		return validateBody(table, d, ty.Row, formals)
	case typesystem.TVariant:
		return validateBody(table, d, ty.Row, formals)
	case typesystem.TRowExtend:
		if err := validateBody(table, d, ty.Field, formals); err != nil {
			return err
		}
		return validateBody(table, d, ty.Rest, formals)
	case typesystem.TForAll:
		inner := make(map[string]bool, len(formals)+len(ty.Vars))
		for k := range formals {
			inner[k] = true
		}
		for _, v := range ty.Vars {
			inner[v.Prefix] = true
		}
		return validateBody(table, d, ty.Type, inner)
	default:
		return nil
	}
}

// Expand substitutes t's TSynonym nodes with their declarations'
// bodies, recursively, so the result contains no TSynonym whose name is
// in table; a TSynonym naming an unknown synonym is left as written.
// Formals are bound positionally; a synonym applied to the wrong
// number of arguments expands with the excess silently ignored or
// missing formals left as written — declaration-time Validate is what
// catches a genuinely malformed synonym, not Expand.
func Expand(table Table, t typesystem.Type) typesystem.Type {
	switch ty := t.(type) {
	case typesystem.TSynonym:
		decl, ok := table[ty.Name]
		if !ok {
			return t
		}
		args := make([]typesystem.Type, len(ty.Args))
		for i, a := range ty.Args {
			args[i] = Expand(table, a)
		}
		sub := make(map[string]typesystem.Type, len(decl.Formals))
		for i, f := range decl.Formals {
			if i < len(args) {
				sub[f] = args[i]
			}
		}
		return Expand(table, substVars(decl.Body, sub))
	case typesystem.TFun:
		return typesystem.TFun{P: ty.P, Arg: Expand(table, ty.Arg), Result: Expand(table, ty.Result)}
	case typesystem.TList:
		return typesystem.TList{P: ty.P, Elem: Expand(table, ty.Elem)}
	case typesystem.TRecord:
		return typesystem.TRecord{P: ty.P, Row: Expand(table, ty.Row)}
	case typesystem.TVariant:
		return typesystem.TVariant{P: ty.P, Row: Expand(table, ty.Row)}
	case typesystem.TRowExtend:
		return typesystem.TRowExtend{P: ty.P, Label: ty.Label, Field: Expand(table, ty.Field), Rest: Expand(table, ty.Rest)}
	case typesystem.TForAll:
		return typesystem.TForAll{P: ty.P, Vars: ty.Vars, Type: Expand(table, ty.Type)}
	default:
		return t
	}
}

// substVars replaces bare TVar occurrences whose Prefix matches a
// formal name with the corresponding actual type — synonym formals are
// textual placeholders, not allocated type variables, so matching is
// by name rather than by TyVar id.
func substVars(t typesystem.Type, sub map[string]typesystem.Type) typesystem.Type {
	switch ty := t.(type) {
	case typesystem.TVar:
		if repl, ok := sub[ty.Var.Prefix]; ok {
			return repl
		}
		return t
	case typesystem.TFun:
		return typesystem.TFun{P: ty.P, Arg: substVars(ty.Arg, sub), Result: substVars(ty.Result, sub)}
	case typesystem.TList:
		return typesystem.TList{P: ty.P, Elem: substVars(ty.Elem, sub)}
	case typesystem.TRecord:
		return typesystem.TRecord{P: ty.P, Row: substVars(ty.Row, sub)}
	case typesystem.TVariant:
		return typesystem.TVariant{P: ty.P, Row: substVars(ty.Row, sub)}
	case typesystem.TRowExtend:
		return typesystem.TRowExtend{P: ty.P, Label: ty.Label, Field: substVars(ty.Field, sub), Rest: substVars(ty.Rest, sub)}
	case typesystem.TSynonym:
		args := make([]typesystem.Type, len(ty.Args))
		for i, a := range ty.Args {
			args[i] = substVars(a, sub)
		}
		return typesystem.TSynonym{P: ty.P, Name: ty.Name, Args: args}
	case typesystem.TForAll:
		return typesystem.TForAll{P: ty.P, Vars: ty.Vars, Type: substVars(ty.Type, sub)}
	default:
		return t
	}
}
