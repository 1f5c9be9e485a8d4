package synonym

import (
	"testing"

	"github.com/5l1v3r1/Expresso/internal/diagnostics"
	"github.com/5l1v3r1/Expresso/internal/token"
	"github.com/5l1v3r1/Expresso/internal/typesystem"
)

func p() token.Position { return token.Position{File: "t", Line: 1, Column: 1} }

// Pair a = {fst : a, snd : a}
func pairDecl() Decl {
	a := typesystem.TyVar{Prefix: "a", Id: 1, VarKind: typesystem.Star}
	row := typesystem.MkRowType(typesystem.TRowEmpty{P: p()}, []typesystem.RowField{
		{Label: "fst", Field: typesystem.TVar{Var: a}},
		{Label: "snd", Field: typesystem.TVar{Var: a}},
	})
	return Decl{Pos: p(), Name: "Pair", Formals: []string{"a"}, Body: typesystem.TRecord{P: p(), Row: row}}
}

func TestValidateAcceptsWellFormedSynonym(t *testing.T) {
	table := Table{}
	d := pairDecl()
	if err := Validate(table, d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnboundFormal(t *testing.T) {
	b := typesystem.TyVar{Prefix: "b", Id: 2, VarKind: typesystem.Star}
	d := Decl{Pos: p(), Name: "Bad", Formals: []string{"a"}, Body: typesystem.TVar{Var: b}}

	err := Validate(Table{}, d)
	if err == nil {
		t.Fatal("expected a synonym error for an unbound formal")
	}
	if _, ok := err.(*diagnostics.SynonymError); !ok {
		t.Errorf("expected *diagnostics.SynonymError, got %T", err)
	}
}

func TestValidateRejectsUnknownSynonymReference(t *testing.T) {
	d := Decl{
		Pos: p(), Name: "Bad", Formals: nil,
		Body: typesystem.TSynonym{P: p(), Name: "DoesNotExist"},
	}
	err := Validate(Table{}, d)
	if err == nil {
		t.Fatal("expected an error for an unknown synonym reference")
	}
	if _, ok := err.(*diagnostics.SynonymError); !ok {
		t.Errorf("expected *diagnostics.SynonymError, got %T", err)
	}
}

func TestValidateAllowsSelfReferenceByName(t *testing.T) {
	// Validate accepts a synonym that mentions its own name; only *other*
	// unknown names are rejected.
	d := Decl{
		Pos: p(), Name: "Self", Formals: nil,
		Body: typesystem.TSynonym{P: p(), Name: "Self"},
	}
	if err := Validate(Table{}, d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpandSubstitutesFormalsPositionally(t *testing.T) {
	table := Table{"Pair": pairDecl()}
	use := typesystem.TSynonym{P: p(), Name: "Pair", Args: []typesystem.Type{typesystem.TInt(p())}}

	expanded := Expand(table, use)
	rec, ok := expanded.(typesystem.TRecord)
	if !ok {
		t.Fatalf("expected a record type, got %T", expanded)
	}
	fields, err := typesystem.RowToMap(rec.Row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, label := range []string{"fst", "snd"} {
		g, ok := fields[label].(typesystem.TGround)
		if !ok || g.Kind != typesystem.GInt {
			t.Errorf("expected %s : Int, got %s", label, fields[label])
		}
	}
}

func TestExpandLeavesUnknownSynonymsAsIs(t *testing.T) {
	use := typesystem.TSynonym{P: p(), Name: "Nope"}
	got := Expand(Table{}, use)
	if _, ok := got.(typesystem.TSynonym); !ok {
		t.Errorf("expected an unexpanded TSynonym to be returned unchanged, got %T", got)
	}
}

func TestExpandRecursesIntoNestedSynonyms(t *testing.T) {
	inner := pairDecl()
	a := typesystem.TyVar{Prefix: "a", Id: 3, VarKind: typesystem.Star}
	outer := Decl{
		Pos: p(), Name: "Wrapped", Formals: []string{"a"},
		Body: typesystem.TList{P: p(), Elem: typesystem.TSynonym{
			P: p(), Name: "Pair", Args: []typesystem.Type{typesystem.TVar{Var: a}},
		}},
	}
	table := Table{"Pair": inner, "Wrapped": outer}
	use := typesystem.TSynonym{P: p(), Name: "Wrapped", Args: []typesystem.Type{typesystem.TBool(p())}}

	expanded := Expand(table, use)
	list, ok := expanded.(typesystem.TList)
	if !ok {
		t.Fatalf("expected a list type, got %T", expanded)
	}
	rec, ok := list.Elem.(typesystem.TRecord)
	if !ok {
		t.Fatalf("expected the list's element to be a record, got %T", list.Elem)
	}
	fields, err := typesystem.RowToMap(rec.Row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g, ok := fields["fst"].(typesystem.TGround); !ok || g.Kind != typesystem.GBool {
		t.Errorf("expected fst : Bool, got %s", fields["fst"])
	}
}
