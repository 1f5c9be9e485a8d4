package infer

import (
	"fmt"

	"github.com/5l1v3r1/Expresso/internal/ast"
	"github.com/5l1v3r1/Expresso/internal/typesystem"
)

// tiBinds produces the name -> type map a binder introduces at type ty,
// per spec.md §4.7. Arg binds its one name directly; RecArg unifies ty
// against an open record row with one fresh field per destructured
// label; RecWildcard demands ty already resolve, under the current
// substitution, to a closed record and binds every one of its fields.
func (ti *TIState) tiBinds(b ast.Bind, ty typesystem.Type) (map[string]typesystem.Type, error) {
	switch bind := b.(type) {
	case *ast.Arg:
		return map[string]typesystem.Type{bind.Name: ty}, nil

	case *ast.RecArg:
		fields := make([]typesystem.RowField, len(bind.Labels))
		names := make(map[string]typesystem.Type, len(bind.Labels))
		lacks := make([]string, len(bind.Labels))
		for i, l := range bind.Labels {
			alpha := ti.newTyVar(bind.Pos, "a")
			fields[i] = typesystem.RowField{Label: l.Label, Field: typesystem.TVar{Var: alpha}}
			names[l.Name] = typesystem.TVar{Var: alpha}
			lacks[i] = l.Label
		}
		tail := ti.newTyVarWith(bind.Pos, "r", typesystem.Row, typesystem.Inferred, typesystem.LacksConstraint(lacks...))
		recTy := typesystem.TRecord{P: bind.Pos, Row: typesystem.MkRowType(typesystem.TVar{Var: tail}, fields)}
		if err := ti.unify(ty, recTy); err != nil {
			return nil, err
		}
		return names, nil

	case *ast.RecWildcard:
		applied := typesystem.Apply(ti.Subst, ty)
		rec, ok := applied.(typesystem.TRecord)
		if !ok {
			return nil, &typesystem.RecordWildcardError{Pos: bind.Pos, T: applied}
		}
		fields, tail := typesystem.RowToList(rec.Row)
		if tail != nil {
			return nil, &typesystem.RecordWildcardError{Pos: bind.Pos, T: applied}
		}
		names := make(map[string]typesystem.Type, len(fields))
		for _, f := range fields {
			names[f.Label] = f.Field
		}
		return names, nil

	default:
		return nil, fmt.Errorf("infer: unrecognised binder %T", b)
	}
}
