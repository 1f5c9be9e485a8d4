package infer

import (
	"testing"

	"github.com/5l1v3r1/Expresso/internal/parser"
	"github.com/5l1v3r1/Expresso/internal/synonym"
	"github.com/5l1v3r1/Expresso/internal/typesystem"
)

// inferSource parses and infers src in one pipeline, failing the test on
// a parse error (every source string below is assumed syntactically
// valid; only the type-level outcome is under test).
func inferSource(t *testing.T, src string) (typesystem.Scheme, error) {
	t.Helper()
	supply := &typesystem.VarSupply{}
	decls, body, err := parser.ParseProgramWithSupply("test.expr", src, supply)
	if err != nil {
		t.Fatalf("parse error: %v\nsource: %s", err, src)
	}
	table := synonym.Table{}
	for _, d := range decls {
		if err := synonym.Validate(table, d); err != nil {
			t.Fatalf("synonym validate error: %v", err)
		}
		table[d.Name] = d
	}
	return TypeInference(body, typesystem.TypeEnv{}, table, supply)
}

func mustInfer(t *testing.T, src string) typesystem.Scheme {
	t.Helper()
	sch, err := inferSource(t, src)
	if err != nil {
		t.Fatalf("unexpected inference error: %v\nsource: %s", err, src)
	}
	return sch
}

func TestIdentityFunctionIsFullyPolymorphic(t *testing.T) {
	sch := mustInfer(t, `\x -> x`)
	if len(sch.Vars) != 1 {
		t.Fatalf("expected exactly one quantified variable, got %d (%s)", len(sch.Vars), sch)
	}
	fn, ok := sch.Type.(typesystem.TFun)
	if !ok {
		t.Fatalf("expected a function type, got %T (%s)", sch.Type, sch)
	}
	argVar, ok := fn.Arg.(typesystem.TVar)
	if !ok {
		t.Fatalf("expected arg to be a type variable, got %T", fn.Arg)
	}
	resultVar, ok := fn.Result.(typesystem.TVar)
	if !ok {
		t.Fatalf("expected result to be a type variable, got %T", fn.Result)
	}
	if argVar.Var.Id != resultVar.Var.Id {
		t.Errorf("expected argument and result to be the same variable, got %d and %d", argVar.Var.Id, resultVar.Var.Id)
	}
}

func TestFieldProjectionIsRowPolymorphic(t *testing.T) {
	sch := mustInfer(t, `\r -> r.x`)
	if len(sch.Vars) != 2 {
		t.Fatalf("expected two quantified variables (the field and the row tail), got %d (%s)", len(sch.Vars), sch)
	}
	fn, ok := sch.Type.(typesystem.TFun)
	if !ok {
		t.Fatalf("expected a function type, got %T (%s)", sch.Type, sch)
	}
	rec, ok := fn.Arg.(typesystem.TRecord)
	if !ok {
		t.Fatalf("expected the argument to be a record type, got %T", fn.Arg)
	}
	fields, tail := typesystem.RowToList(rec.Row)
	if len(fields) != 1 || fields[0].Label != "x" {
		t.Fatalf("expected a single field x, got %+v", fields)
	}
	if tail == nil {
		t.Fatal("expected the row to remain open")
	}
	if _, ok := fn.Result.(typesystem.TVar); !ok {
		t.Errorf("expected the result to be the field's own type variable, got %T", fn.Result)
	}
}

func TestRecordLiteralTypesEachField(t *testing.T) {
	sch := mustInfer(t, `{x = 1, y = True}`)
	if len(sch.Vars) != 0 {
		t.Fatalf("expected a fully monomorphic record, got %d free variables (%s)", len(sch.Vars), sch)
	}
	rec, ok := sch.Type.(typesystem.TRecord)
	if !ok {
		t.Fatalf("expected a record type, got %T", sch.Type)
	}
	fields, err := typesystem.RowToMap(rec.Row)
	if err != nil {
		t.Fatalf("expected a closed row, got error: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("expected exactly two fields, got %d", len(fields))
	}
	if _, ok := fields["x"].(typesystem.TGround); !ok {
		t.Errorf("expected x : Int, got %s", fields["x"])
	}
	if _, ok := fields["y"].(typesystem.TGround); !ok {
		t.Errorf("expected y : Bool, got %s", fields["y"])
	}
}

func TestRecordUpdatePreservesRowShapeUnderLacks(t *testing.T) {
	sch := mustInfer(t, `\r -> {x := r.x + 1 | r}`)
	if len(sch.Vars) != 1 {
		t.Fatalf("expected exactly one quantified row variable, got %d (%s)", len(sch.Vars), sch)
	}
	if sch.Vars[0].VarKind != typesystem.Row {
		t.Fatalf("expected the sole quantified variable to be row-kinded, got %s", sch.Vars[0].VarKind)
	}
	fn, ok := sch.Type.(typesystem.TFun)
	if !ok {
		t.Fatalf("expected a function type, got %T (%s)", sch.Type, sch)
	}
	argRec, ok := fn.Arg.(typesystem.TRecord)
	if !ok {
		t.Fatalf("expected the argument to be a record, got %T", fn.Arg)
	}
	resultRec, ok := fn.Result.(typesystem.TRecord)
	if !ok {
		t.Fatalf("expected the result to be a record, got %T", fn.Result)
	}
	if argRec.Row.String() != resultRec.Row.String() {
		t.Errorf("expected the update to preserve the row's shape, got %s -> %s", argRec.Row, resultRec.Row)
	}
	argFields, argTail := typesystem.RowToList(argRec.Row)
	if len(argFields) != 1 || argFields[0].Label != "x" {
		t.Fatalf("expected a single field x, got %+v", argFields)
	}
	if argTail == nil {
		t.Fatal("expected the row to remain open after update")
	}
}

func TestLetGeneralizationAllowsTwoInstantiations(t *testing.T) {
	sch := mustInfer(t, `let id = \x -> x in {a = id 1, b = id True}`)
	if len(sch.Vars) != 0 {
		t.Fatalf("expected a fully monomorphic result, got %d free variables (%s)", len(sch.Vars), sch)
	}
	rec, ok := sch.Type.(typesystem.TRecord)
	if !ok {
		t.Fatalf("expected a record type, got %T", sch.Type)
	}
	fields, err := typesystem.RowToMap(rec.Row)
	if err != nil {
		t.Fatalf("expected a closed row, got error: %v", err)
	}
	if _, ok := fields["a"].(typesystem.TGround); !ok {
		t.Errorf("expected a : Int, got %s", fields["a"])
	}
	if _, ok := fields["b"].(typesystem.TGround); !ok {
		t.Errorf("expected b : Bool, got %s", fields["b"])
	}
}

func TestVariantCaseEliminationTypesToTheHandlerResult(t *testing.T) {
	// A bare constructor applied to a value injects it into an open
	// variant; the case's two arms close the row and resolve to Int.
	sch := mustInfer(t, `case (Left 1) of { Left -> \n -> n, Right -> \n -> n }`)
	if len(sch.Vars) != 0 {
		t.Fatalf("expected a monomorphic Int result, got %d free variables (%s)", len(sch.Vars), sch)
	}
	if _, ok := sch.Type.(typesystem.TGround); !ok {
		t.Errorf("expected Int, got %T (%s)", sch.Type, sch)
	}
}

func TestSelfApplicationFailsTheOccursCheck(t *testing.T) {
	_, err := inferSource(t, `\x -> x x`)
	if err == nil {
		t.Fatal("expected an occurs-check failure")
	}
	if _, ok := err.(*typesystem.OccursError); !ok {
		t.Errorf("expected *typesystem.OccursError, got %T (%v)", err, err)
	}
}

func TestSelectingAnAbsentFieldFromAClosedRecordFails(t *testing.T) {
	_, err := inferSource(t, `{x = 1}.y`)
	if err == nil {
		t.Fatal("expected a row error")
	}
	if _, ok := err.(*typesystem.EmptyRowInsertError); !ok {
		t.Errorf("expected *typesystem.EmptyRowInsertError, got %T (%v)", err, err)
	}
}

func TestRecordWildcardRequiresAClosedRecord(t *testing.T) {
	_, err := inferSource(t, `\{..} -> 1`)
	if err == nil {
		t.Fatal("expected a record-wildcard error: the argument's row is still open")
	}
	if _, ok := err.(*typesystem.RecordWildcardError); !ok {
		t.Errorf("expected *typesystem.RecordWildcardError, got %T (%v)", err, err)
	}
}

func TestRecordWildcardBindsEveryFieldWhenApplied(t *testing.T) {
	sch := mustInfer(t, `(\({..} : {x : Int}) -> x) {x = 1}`)
	if _, ok := sch.Type.(typesystem.TGround); !ok {
		t.Errorf("expected Int, got %T (%s)", sch.Type, sch)
	}
}

func TestAnnotationConstrainsInference(t *testing.T) {
	sch := mustInfer(t, `(\x -> x) : Int -> Int`)
	fn, ok := sch.Type.(typesystem.TFun)
	if !ok {
		t.Fatalf("expected a function type, got %T", sch.Type)
	}
	if _, ok := fn.Arg.(typesystem.TGround); !ok {
		t.Errorf("expected Int argument, got %s", fn.Arg)
	}
	if _, ok := fn.Result.(typesystem.TGround); !ok {
		t.Errorf("expected Int result, got %s", fn.Result)
	}
}

func TestAnnotationMismatchFails(t *testing.T) {
	_, err := inferSource(t, `(\x -> x) : Int -> Bool`)
	if err == nil {
		t.Fatal("expected a mismatch error")
	}
	if _, ok := err.(*typesystem.MismatchError); !ok {
		t.Errorf("expected *typesystem.MismatchError, got %T (%v)", err, err)
	}
}

func TestUnboundVariableFails(t *testing.T) {
	_, err := inferSource(t, `nonexistent`)
	if err == nil {
		t.Fatal("expected a binding error")
	}
}
