package infer

import (
	"fmt"

	"github.com/5l1v3r1/Expresso/internal/ast"
	"github.com/5l1v3r1/Expresso/internal/token"
	"github.com/5l1v3r1/Expresso/internal/typesystem"
)

// fn right-folds a primitive's argument types and result into a TFun
// chain, the shape every arrow in spec.md §4.7's primitive table takes.
func fn(pos token.Position, parts ...typesystem.Type) typesystem.Type {
	result := parts[len(parts)-1]
	for i := len(parts) - 2; i >= 0; i-- {
		result = typesystem.TFun{P: pos, Arg: parts[i], Result: result}
	}
	return result
}

func tv(v typesystem.TyVar) typesystem.Type { return typesystem.TVar{Var: v} }

func list(pos token.Position, elem typesystem.Type) typesystem.Type {
	return typesystem.TList{P: pos, Elem: elem}
}

// tiPrim types one primitive occurrence, per spec.md §4.7's table. Every
// type variable it mentions is freshly allocated for this one call —
// primitives are not looked up through the environment and so are never
// instantiate'd the way a Var is; each occurrence in the source gets its
// own fresh variables directly.
func (ti *TIState) tiPrim(pos token.Position, p ast.Prim) (typesystem.Type, error) {
	star := func(prefix string) typesystem.TyVar { return ti.newTyVar(pos, prefix) }
	row := func(prefix string, lacks ...string) typesystem.TyVar {
		return ti.newTyVarWith(pos, prefix, typesystem.Row, typesystem.Inferred, typesystem.LacksConstraint(lacks...))
	}

	switch p.Tag {

	// Literal injectors
	case ast.PInt:
		return typesystem.TInt(pos), nil
	case ast.PDbl:
		return typesystem.TDbl(pos), nil
	case ast.PChar:
		return typesystem.TChar(pos), nil
	case ast.PBool:
		return typesystem.TBool(pos), nil
	case ast.PText:
		return typesystem.TText(pos), nil

	// Arithmetic
	case ast.PNeg:
		return fn(pos, typesystem.TInt(pos), typesystem.TInt(pos)), nil
	case ast.PAdd, ast.PSub, ast.PMul, ast.PDiv, ast.PMod:
		return fn(pos, typesystem.TInt(pos), typesystem.TInt(pos), typesystem.TInt(pos)), nil
	case ast.PAbs:
		a := star("a")
		return fn(pos, tv(a), tv(a)), nil
	case ast.PDouble:
		return fn(pos, typesystem.TInt(pos), typesystem.TDbl(pos)), nil
	case ast.PFloor, ast.PCeiling:
		return fn(pos, typesystem.TDbl(pos), typesystem.TInt(pos)), nil

	// Relational
	case ast.PEq, ast.PNEq, ast.PRGT, ast.PRGTE, ast.PRLT, ast.PRLTE:
		a := star("a")
		return fn(pos, tv(a), tv(a), typesystem.TBool(pos)), nil

	// Logical
	case ast.PAnd, ast.POr:
		return fn(pos, typesystem.TBool(pos), typesystem.TBool(pos), typesystem.TBool(pos)), nil
	case ast.PNot:
		return fn(pos, typesystem.TBool(pos), typesystem.TBool(pos)), nil

	// Conditional
	case ast.PCond:
		a := star("a")
		return fn(pos, typesystem.TBool(pos), tv(a), tv(a), tv(a)), nil

	// List
	case ast.PListEmpty:
		a := star("a")
		return list(pos, tv(a)), nil
	case ast.PListCons:
		a := star("a")
		return fn(pos, tv(a), list(pos, tv(a)), list(pos, tv(a))), nil
	case ast.PListUncons:
		return ti.tiListUncons(pos), nil
	case ast.PListAppend:
		a := star("a")
		return fn(pos, list(pos, tv(a)), list(pos, tv(a)), list(pos, tv(a))), nil
	case ast.PListFoldr:
		a, b := star("a"), star("b")
		return fn(pos, fn(pos, tv(a), tv(b), tv(b)), tv(b), list(pos, tv(a)), tv(b)), nil
	case ast.PListNull:
		a := star("a")
		return fn(pos, list(pos, tv(a)), typesystem.TBool(pos)), nil

	// Text
	case ast.PTextAppend:
		return fn(pos, typesystem.TText(pos), typesystem.TText(pos), typesystem.TText(pos)), nil
	case ast.PPack:
		return fn(pos, list(pos, typesystem.TChar(pos)), typesystem.TText(pos)), nil
	case ast.PUnpack:
		return fn(pos, typesystem.TText(pos), list(pos, typesystem.TChar(pos))), nil
	case ast.PShow:
		// Show's type is an open question per spec.md §9; Expresso picks
		// forall a. (Eq a) => a -> Text (see DESIGN.md) so the class
		// constraint machinery has a real producer.
		a := ti.newTyVarWith(pos, "a", typesystem.Star, typesystem.Inferred, typesystem.ClassConstraint(typesystem.ClassEq))
		return fn(pos, tv(a), typesystem.TText(pos)), nil

	// Record
	case ast.PRecordEmpty:
		return typesystem.TRecord{P: pos, Row: typesystem.TRowEmpty{P: pos}}, nil
	case ast.PRecordSelect:
		a := star("a")
		r := row("r", p.Label)
		recTy := typesystem.TRecord{P: pos, Row: typesystem.TRowExtend{P: pos, Label: p.Label, Field: tv(a), Rest: tv(r)}}
		return fn(pos, recTy, tv(a)), nil
	case ast.PRecordExtend:
		a := star("a")
		r := row("r", p.Label)
		inTy := typesystem.TRecord{P: pos, Row: tv(r)}
		outTy := typesystem.TRecord{P: pos, Row: typesystem.TRowExtend{P: pos, Label: p.Label, Field: tv(a), Rest: tv(r)}}
		return fn(pos, tv(a), inTy, outTy), nil
	case ast.PRecordRestrict:
		a := star("a")
		r := row("r", p.Label)
		inTy := typesystem.TRecord{P: pos, Row: typesystem.TRowExtend{P: pos, Label: p.Label, Field: tv(a), Rest: tv(r)}}
		outTy := typesystem.TRecord{P: pos, Row: tv(r)}
		return fn(pos, inTy, outTy), nil

	// Variant
	case ast.PVariantInject:
		a := star("a")
		r := row("r", p.Label)
		outTy := typesystem.TVariant{P: pos, Row: typesystem.TRowExtend{P: pos, Label: p.Label, Field: tv(a), Rest: tv(r)}}
		return fn(pos, tv(a), outTy), nil
	case ast.PVariantEmbed:
		a := star("a")
		r := row("r", p.Label)
		inTy := typesystem.TVariant{P: pos, Row: tv(r)}
		outTy := typesystem.TVariant{P: pos, Row: typesystem.TRowExtend{P: pos, Label: p.Label, Field: tv(a), Rest: tv(r)}}
		return fn(pos, inTy, outTy), nil
	case ast.PVariantElim:
		a, b := star("a"), star("b")
		r := row("r", p.Label)
		scrutTy := typesystem.TVariant{P: pos, Row: typesystem.TRowExtend{P: pos, Label: p.Label, Field: tv(a), Rest: tv(r)}}
		restTy := typesystem.TVariant{P: pos, Row: tv(r)}
		return fn(pos, fn(pos, tv(a), tv(b)), fn(pos, restTy, tv(b)), scrutTy, tv(b)), nil
	case ast.PAbsurd:
		b := star("b")
		emptyVariant := typesystem.TVariant{P: pos, Row: typesystem.TRowEmpty{P: pos}}
		return fn(pos, emptyVariant, tv(b)), nil

	// Composition
	case ast.PFwdComp:
		a, b, c := star("a"), star("b"), star("c")
		return fn(pos, fn(pos, tv(a), tv(b)), fn(pos, tv(b), tv(c)), fn(pos, tv(a), tv(c))), nil
	case ast.PBwdComp:
		a, b, c := star("a"), star("b"), star("c")
		return fn(pos, fn(pos, tv(b), tv(c)), fn(pos, tv(a), tv(b)), fn(pos, tv(a), tv(c))), nil

	// Fixed-point
	case ast.PFix:
		a := star("a")
		return fn(pos, fn(pos, tv(a), tv(a)), tv(a)), nil

	// Diagnostic
	case ast.PError:
		a := star("a")
		return fn(pos, typesystem.TText(pos), tv(a)), nil
	case ast.PTrace:
		a := star("a")
		return fn(pos, fn(pos, typesystem.TText(pos), tv(a)), tv(a)), nil

	default:
		return nil, fmt.Errorf("infer: unrecognised primitive %s", p.Tag)
	}
}

// tiListUncons builds ListUncons's type: [a] -> <Nil:{} | Cons:{head:a, tail:[a]}>,
// the most natural of the two choices spec.md §9 leaves open — a closed
// variant over a closed record per constructor, no open tail on either.
func (ti *TIState) tiListUncons(pos token.Position) typesystem.Type {
	a := ti.newTyVar(pos, "a")
	nilPayload := typesystem.TRecord{P: pos, Row: typesystem.TRowEmpty{P: pos}}
	consPayload := typesystem.TRecord{P: pos, Row: typesystem.MkRowType(typesystem.TRowEmpty{P: pos}, []typesystem.RowField{
		{Label: "head", Field: tv(a)},
		{Label: "tail", Field: list(pos, tv(a))},
	})}
	variantRow := typesystem.MkRowType(typesystem.TRowEmpty{P: pos}, []typesystem.RowField{
		{Label: "Nil", Field: nilPayload},
		{Label: "Cons", Field: consPayload},
	})
	return fn(pos, list(pos, tv(a)), typesystem.TVariant{P: pos, Row: variantRow})
}
