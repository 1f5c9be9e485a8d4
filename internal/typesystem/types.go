package typesystem

import (
	"strings"

	"github.com/5l1v3r1/Expresso/internal/token"
)

// Type is the interface implemented by every node in a type tree:
// ground types, constructors, variables, rows, synonyms and foralls.
// The same tree doubles as the surface annotation AST (produced by the
// type-expression parser) and the internal representation the unifier
// and inferencer operate on.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVars() []TyVar
	Pos() token.Position
}

// GroundKind enumerates Expresso's five base types.
type GroundKind int

const (
	GInt GroundKind = iota
	GDbl
	GBool
	GChar
	GText
)

func (g GroundKind) String() string {
	switch g {
	case GInt:
		return "Int"
	case GDbl:
		return "Dbl"
	case GBool:
		return "Bool"
	case GChar:
		return "Char"
	default:
		return "Text"
	}
}

// TGround is one of TInt/TDbl/TBool/TChar/TText.
type TGround struct {
	P    token.Position
	Kind GroundKind
}

func TInt(p token.Position) Type  { return TGround{P: p, Kind: GInt} }
func TDbl(p token.Position) Type  { return TGround{P: p, Kind: GDbl} }
func TBool(p token.Position) Type { return TGround{P: p, Kind: GBool} }
func TChar(p token.Position) Type { return TGround{P: p, Kind: GChar} }
func TText(p token.Position) Type { return TGround{P: p, Kind: GText} }

func (t TGround) String() string { return t.Kind.String() }
func (t TGround) Apply(Subst) Type { return t }
func (t TGround) FreeTypeVars() []TyVar { return nil }
func (t TGround) Pos() token.Position { return t.P }

// TList is a homogeneous list type: [t].
type TList struct {
	P    token.Position
	Elem Type
}

func (t TList) String() string        { return "[" + t.Elem.String() + "]" }
func (t TList) Apply(s Subst) Type    { return TList{P: t.P, Elem: t.Elem.Apply(s)} }
func (t TList) FreeTypeVars() []TyVar { return t.Elem.FreeTypeVars() }
func (t TList) Pos() token.Position   { return t.P }

// TFun is a function type: Arg -> Result.
type TFun struct {
	P      token.Position
	Arg    Type
	Result Type
}

func (t TFun) String() string {
	argStr := t.Arg.String()
	if _, ok := t.Arg.(TFun); ok {
		argStr = "(" + argStr + ")"
	}
	return argStr + " -> " + t.Result.String()
}
func (t TFun) Apply(s Subst) Type {
	return TFun{P: t.P, Arg: t.Arg.Apply(s), Result: t.Result.Apply(s)}
}
func (t TFun) FreeTypeVars() []TyVar { return append(t.Arg.FreeTypeVars(), t.Result.FreeTypeVars()...) }
func (t TFun) Pos() token.Position   { return t.P }

// TRecord is an extensible record type: {Row}. Row is always itself a
// Type — TRowEmpty, a chain of TRowExtend, or (if open) a TVar of Row kind.
type TRecord struct {
	P   token.Position
	Row Type
}

func (t TRecord) String() string        { return "{" + rowBody(t.Row) + "}" }
func (t TRecord) Apply(s Subst) Type    { return TRecord{P: t.P, Row: t.Row.Apply(s)} }
func (t TRecord) FreeTypeVars() []TyVar { return t.Row.FreeTypeVars() }
func (t TRecord) Pos() token.Position   { return t.P }

// TVariant is a polymorphic variant type: <Row>.
type TVariant struct {
	P   token.Position
	Row Type
}

func (t TVariant) String() string        { return "<" + rowBody(t.Row) + ">" }
func (t TVariant) Apply(s Subst) Type    { return TVariant{P: t.P, Row: t.Row.Apply(s)} }
func (t TVariant) FreeTypeVars() []TyVar { return t.Row.FreeTypeVars() }
func (t TVariant) Pos() token.Position   { return t.P }

func rowBody(row Type) string {
	var fields []string
	cur := row
	for {
		switch r := cur.(type) {
		case TRowExtend:
			fields = append(fields, r.Label+":"+r.Field.String())
			cur = r.Rest
		case TRowEmpty:
			return strings.Join(fields, ", ")
		default:
			tail := cur.String()
			if len(fields) == 0 {
				return tail
			}
			return strings.Join(fields, ", ") + " | " + tail
		}
	}
}

// TSynonym is a use of a transparent type synonym: Name applied to Args.
// Synonyms are expanded at use (see internal/synonym); a TSynonym node
// that survives to the unifier unexpanded is a bug in the caller, never
// a case the unifier itself special-cases (per spec.md §4.6).
type TSynonym struct {
	P    token.Position
	Name string
	Args []Type
}

func (t TSynonym) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	if len(parts) == 0 {
		return t.Name
	}
	return t.Name + " " + strings.Join(parts, " ")
}
func (t TSynonym) Apply(s Subst) Type {
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Apply(s)
	}
	return TSynonym{P: t.P, Name: t.Name, Args: args}
}
func (t TSynonym) FreeTypeVars() []TyVar {
	var out []TyVar
	for _, a := range t.Args {
		out = append(out, a.FreeTypeVars()...)
	}
	return out
}
func (t TSynonym) Pos() token.Position { return t.P }

// TVar is an occurrence of a type variable.
type TVar struct {
	Var TyVar
}

func (t TVar) String() string        { return t.Var.String() }
func (t TVar) FreeTypeVars() []TyVar { return []TyVar{t.Var} }
func (t TVar) Pos() token.Position   { return t.Var.SrcPos }
func (t TVar) Apply(s Subst) Type    { return applyVar(t.Var, s, map[int]bool{}) }

func applyVar(v TyVar, s Subst, visited map[int]bool) Type {
	if visited[v.Id] {
		return TVar{Var: v}
	}
	repl, ok := s[v.Id]
	if !ok {
		return TVar{Var: v}
	}
	if rv, ok := repl.(TVar); ok && rv.Var.Id == v.Id {
		return TVar{Var: v}
	}
	visited[v.Id] = true
	return applyDeep(repl, s, visited)
}

// applyDeep applies s to t, chasing further TVar indirection with cycle
// protection. Plain Apply methods recurse structurally and eventually
// call back into applyVar for each variable they hit.
func applyDeep(t Type, s Subst, visited map[int]bool) Type {
	if tv, ok := t.(TVar); ok {
		return applyVar(tv.Var, s, visited)
	}
	return t.Apply(s)
}

// TRowEmpty terminates a closed row.
type TRowEmpty struct {
	P token.Position
}

func (t TRowEmpty) String() string        { return "" }
func (t TRowEmpty) Apply(Subst) Type      { return t }
func (t TRowEmpty) FreeTypeVars() []TyVar { return nil }
func (t TRowEmpty) Pos() token.Position   { return t.P }

// TRowExtend is one cell of a row spine: {Label: Field | Rest}.
type TRowExtend struct {
	P     token.Position
	Label string
	Field Type
	Rest  Type
}

func (t TRowExtend) String() string { return "{" + rowBody(t) + "}" }
func (t TRowExtend) Apply(s Subst) Type {
	return TRowExtend{P: t.P, Label: t.Label, Field: t.Field.Apply(s), Rest: t.Rest.Apply(s)}
}
func (t TRowExtend) FreeTypeVars() []TyVar {
	return append(t.Field.FreeTypeVars(), t.Rest.FreeTypeVars()...)
}
func (t TRowExtend) Pos() token.Position { return t.P }

// TForAll quantifies a type over a list of bound variables, each of
// which carries its own constraint (set by the annotation parser).
type TForAll struct {
	P    token.Position
	Vars []TyVar
	Type Type
}

func (t TForAll) String() string {
	names := make([]string, len(t.Vars))
	for i, v := range t.Vars {
		names[i] = v.String()
	}
	return "forall " + strings.Join(names, " ") + ". " + t.Type.String()
}
func (t TForAll) Apply(s Subst) Type {
	filtered := make(Subst, len(s))
	bound := make(map[int]bool, len(t.Vars))
	for _, v := range t.Vars {
		bound[v.Id] = true
	}
	for k, v := range s {
		if !bound[k] {
			filtered[k] = v
		}
	}
	return TForAll{P: t.P, Vars: t.Vars, Type: t.Type.Apply(filtered)}
}
func (t TForAll) FreeTypeVars() []TyVar {
	bound := make(map[int]bool, len(t.Vars))
	for _, v := range t.Vars {
		bound[v.Id] = true
	}
	var out []TyVar
	for _, v := range t.Type.FreeTypeVars() {
		if !bound[v.Id] {
			out = append(out, v)
		}
	}
	return out
}
func (t TForAll) Pos() token.Position { return t.P }

// Scheme is a principal (or locally generalised) type: its bound
// variables plus the body type they quantify over.
type Scheme struct {
	Vars []TyVar
	Type Type
}

func (s Scheme) String() string {
	if len(s.Vars) == 0 {
		return s.Type.String()
	}
	names := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		names[i] = v.String()
	}
	return "forall " + strings.Join(names, " ") + ". " + s.Type.String()
}

// MonoScheme wraps a plain type in a scheme with no bound variables —
// used for lambda-bound names, which are never generalised.
func MonoScheme(t Type) Scheme { return Scheme{Type: t} }
