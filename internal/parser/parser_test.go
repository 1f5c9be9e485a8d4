package parser

import (
	"testing"

	"github.com/5l1v3r1/Expresso/internal/ast"
)

func parseExprOnly(t *testing.T, src string) ast.Expr {
	t.Helper()
	_, body, err := ParseProgram("test.expr", src)
	if err != nil {
		t.Fatalf("parse error: %v\nsource: %s", err, src)
	}
	return body
}

func TestMultiBinderLambdaFoldsToNestedLam(t *testing.T) {
	e := parseExprOnly(t, `\x y -> x`)
	outer, ok := e.(*ast.Lam)
	if !ok {
		t.Fatalf("expected outer Lam, got %T", e)
	}
	if outer.Bind.(*ast.Arg).Name != "x" {
		t.Errorf("expected outer binder x, got %s", outer.Bind.(*ast.Arg).Name)
	}
	inner, ok := outer.Body.(*ast.Lam)
	if !ok {
		t.Fatalf("expected inner Lam, got %T", outer.Body)
	}
	if inner.Bind.(*ast.Arg).Name != "y" {
		t.Errorf("expected inner binder y, got %s", inner.Bind.(*ast.Arg).Name)
	}
}

func TestMultiBindingLetFoldsToNestedLet(t *testing.T) {
	e := parseExprOnly(t, `let x = 1; y = 2 in x`)
	outer, ok := e.(*ast.Let)
	if !ok {
		t.Fatalf("expected outer Let, got %T", e)
	}
	if outer.Bind.(*ast.Arg).Name != "x" {
		t.Errorf("expected outer binding x, got %s", outer.Bind.(*ast.Arg).Name)
	}
	inner, ok := outer.Body.(*ast.Let)
	if !ok {
		t.Fatalf("expected inner Let nested in outer's body, got %T", outer.Body)
	}
	if inner.Bind.(*ast.Arg).Name != "y" {
		t.Errorf("expected inner binding y, got %s", inner.Bind.(*ast.Arg).Name)
	}
}

func TestListLiteralFoldsToConsChain(t *testing.T) {
	e := parseExprOnly(t, `[1, 2]`)
	outer, ok := e.(*ast.App)
	if !ok {
		t.Fatalf("expected App (Cons 1 ...), got %T", e)
	}
	cons, ok := outer.Fn.(*ast.App)
	if !ok {
		t.Fatalf("expected curried Cons application, got %T", outer.Fn)
	}
	prim, ok := cons.Fn.(*ast.PrimExpr)
	if !ok || prim.Prim.Tag != ast.PListCons {
		t.Fatalf("expected PListCons at the head, got %#v", cons.Fn)
	}
	tail, ok := outer.Arg.(*ast.App)
	if !ok {
		t.Fatalf("expected a nested Cons application for the tail, got %T", outer.Arg)
	}
	tailPrim := tail.Fn.(*ast.App).Fn.(*ast.PrimExpr)
	if tailPrim.Prim.Tag != ast.PListCons {
		t.Errorf("expected the tail to cons onto ListEmpty, got %s", tailPrim.Prim.Tag)
	}
}

func TestEmptyListLiteralIsListEmpty(t *testing.T) {
	e := parseExprOnly(t, `[]`)
	p, ok := e.(*ast.PrimExpr)
	if !ok || p.Prim.Tag != ast.PListEmpty {
		t.Fatalf("expected PListEmpty, got %#v", e)
	}
}

func TestRecordLiteralFoldsToExtendChain(t *testing.T) {
	e := parseExprOnly(t, `{x = 1, y = 2}`)
	outer, ok := e.(*ast.App)
	if !ok {
		t.Fatalf("expected App, got %T", e)
	}
	extend, ok := outer.Fn.(*ast.App)
	if !ok {
		t.Fatalf("expected curried RecordExtend, got %T", outer.Fn)
	}
	prim, ok := extend.Fn.(*ast.PrimExpr)
	if !ok || prim.Prim.Tag != ast.PRecordExtend || prim.Prim.Label != "x" {
		t.Fatalf("expected RecordExtend{x}, got %#v", extend.Fn)
	}
}

func TestRecordUpdateFieldDesugarsToExtendOverRestrict(t *testing.T) {
	e := parseExprOnly(t, `{x := 1 | r}`)
	outer, ok := e.(*ast.App)
	if !ok {
		t.Fatalf("expected App, got %T", e)
	}
	extend := outer.Fn.(*ast.App)
	extendPrim := extend.Fn.(*ast.PrimExpr)
	if extendPrim.Prim.Tag != ast.PRecordExtend || extendPrim.Prim.Label != "x" {
		t.Fatalf("expected RecordExtend{x} at the top, got %#v", extendPrim)
	}
	restrict, ok := outer.Arg.(*ast.App)
	if !ok {
		t.Fatalf("expected RecordRestrict applied to r, got %T", outer.Arg)
	}
	restrictPrim := restrict.Fn.(*ast.PrimExpr)
	if restrictPrim.Prim.Tag != ast.PRecordRestrict || restrictPrim.Prim.Label != "x" {
		t.Fatalf("expected RecordRestrict{x}, got %#v", restrictPrim)
	}
	if restrict.Arg.(*ast.Var).Name != "r" {
		t.Errorf("expected RecordRestrict applied to r, got %#v", restrict.Arg)
	}
}

func TestDifferenceRecordDesugarsToLambdaOverSentinelBinder(t *testing.T) {
	e := parseExprOnly(t, `{| x = 1 |}`)
	lam, ok := e.(*ast.Lam)
	if !ok {
		t.Fatalf("expected Lam, got %T", e)
	}
	if lam.Bind.(*ast.Arg).Name != "#r" {
		t.Errorf("expected the sentinel binder #r, got %q", lam.Bind.(*ast.Arg).Name)
	}
}

func TestVariantEmbedDesugarsToLambdaOverSentinelBinder(t *testing.T) {
	e := parseExprOnly(t, `<|Left, Right|>`)
	lam, ok := e.(*ast.Lam)
	if !ok {
		t.Fatalf("expected Lam, got %T", e)
	}
	if lam.Bind.(*ast.Arg).Name != "#r" {
		t.Errorf("expected the sentinel binder #r, got %q", lam.Bind.(*ast.Arg).Name)
	}
	embed, ok := lam.Body.(*ast.App)
	if !ok {
		t.Fatalf("expected an App, got %T", lam.Body)
	}
	p, ok := embed.Fn.(*ast.PrimExpr)
	if !ok || p.Prim.Tag != ast.PVariantEmbed || p.Prim.Label != "Left" {
		t.Fatalf("expected the outermost embed to be Left, got %#v", embed.Fn)
	}
}

func TestCaseWithoutOverrideFoldsToAbsurd(t *testing.T) {
	e := parseExprOnly(t, `case v of { Left -> \n -> n }`)
	app, ok := e.(*ast.App)
	if !ok {
		t.Fatalf("expected App(eliminator, scrutinee), got %T", e)
	}
	if app.Arg.(*ast.Var).Name != "v" {
		t.Errorf("expected the scrutinee to be v, got %#v", app.Arg)
	}
	acc := app.Fn.(*ast.App)
	elimPrim := acc.Fn.(*ast.App).Fn.(*ast.PrimExpr)
	if elimPrim.Prim.Tag != ast.PVariantElim || elimPrim.Prim.Label != "Left" {
		t.Fatalf("expected VariantElim{Left}, got %#v", elimPrim)
	}
	fallback := acc.Arg.(*ast.PrimExpr)
	if fallback.Prim.Tag != ast.PAbsurd {
		t.Errorf("expected the fallback to be Absurd, got %s", fallback.Prim.Tag)
	}
}

func TestCaseWithOverrideFoldsLastArmToItsOwnEliminator(t *testing.T) {
	e := parseExprOnly(t, `case v of { Left -> \n -> n, override Right -> k }`)
	app := e.(*ast.App)
	elim := app.Fn.(*ast.App)
	fallback, ok := elim.Arg.(*ast.App)
	if !ok {
		t.Fatalf("expected the fallback to itself be a VariantElim application, got %T", elim.Arg)
	}
	fallbackPrim := fallback.Fn.(*ast.App).Fn.(*ast.PrimExpr)
	if fallbackPrim.Prim.Tag != ast.PVariantElim || fallbackPrim.Prim.Label != "Right" {
		t.Fatalf("expected the override arm to be VariantElim{Right}, got %#v", fallbackPrim)
	}
}

func TestOverrideOnlyPermittedAsFinalArm(t *testing.T) {
	_, _, err := ParseProgram("t", `case v of { override Left -> f, Right -> g }`)
	if err == nil {
		t.Fatal("expected a parse error: override is only permitted as the final arm")
	}
}

func TestArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3), not (1 + 2) * 3.
	e := parseExprOnly(t, `1 + 2 * 3`)
	add := e.(*ast.App).Fn.(*ast.App)
	addPrim := add.Fn.(*ast.PrimExpr)
	if addPrim.Prim.Tag != ast.PAdd {
		t.Fatalf("expected the outermost operator to be +, got %s", addPrim.Prim.Tag)
	}
	rhs := e.(*ast.App).Arg
	mulApp, ok := rhs.(*ast.App)
	if !ok {
		t.Fatalf("expected the right operand to be a multiplication, got %T", rhs)
	}
	mulPrim := mulApp.Fn.(*ast.App).Fn.(*ast.PrimExpr)
	if mulPrim.Prim.Tag != ast.PMul {
		t.Errorf("expected *, got %s", mulPrim.Prim.Tag)
	}
}

func TestIfDesugarsToCondPrimitive(t *testing.T) {
	e := parseExprOnly(t, `if True then 1 else 2`)
	app := e.(*ast.App)
	inner := app.Fn.(*ast.App).Fn.(*ast.App)
	condPrim := inner.Fn.(*ast.PrimExpr)
	if condPrim.Prim.Tag != ast.PCond {
		t.Fatalf("expected PCond, got %s", condPrim.Prim.Tag)
	}
}

func TestUnboundTypeVariableInAnnotationIsRejected(t *testing.T) {
	_, _, err := ParseProgram("t", `(\x -> x) : a -> a`)
	if err == nil {
		t.Fatal("expected an unbound-type-variable error: a is not quantified by a forall")
	}
}

func TestForallBoundVariableIsAccepted(t *testing.T) {
	_, _, err := ParseProgram("t", `(\x -> x) : forall a. a -> a`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWildcardInAnnotationNeedsNoBinder(t *testing.T) {
	_, _, err := ParseProgram("t", `(\x -> x) : _ -> _`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTrailingInputIsRejected(t *testing.T) {
	_, _, err := ParseProgram("t", `1 2 3 )`)
	if err == nil {
		t.Fatal("expected a trailing-input parse error")
	}
}

func TestSynonymDeclarationBindsOwnFormals(t *testing.T) {
	decls, _, err := ParseProgram("t", `type Pair a b = {fst:a, snd:b}; 1`)
	if err != nil {
		t.Fatalf("unexpected error: a synonym's formals should be treated as bound in its own body: %v", err)
	}
	if len(decls) != 1 || decls[0].Name != "Pair" || len(decls[0].Formals) != 2 {
		t.Fatalf("expected one Pair synonym with two formals, got %#v", decls)
	}
}

func TestSynonymDeclarationRejectsTrulyUnboundVariable(t *testing.T) {
	_, _, err := ParseProgram("t", `type Pair a = {fst:a, snd:b}; 1`)
	if err == nil {
		t.Fatal("expected an unbound-type-variable error: b is not one of Pair's formals")
	}
}
