package typesystem

import "testing"

func TestApplyChasesChainedIndirection(t *testing.T) {
	supply := &VarSupply{}
	a := supply.Fresh(pos(), "a", Star)
	b := supply.Fresh(pos(), "b", Star)
	s := Subst{a.Id: TVar{Var: b}, b.Id: TInt(pos())}

	got := Apply(s, TVar{Var: a})
	if !sameGround(got, GInt) {
		t.Errorf("Apply(s, a) = %s, want Int (a -> b -> Int)", got)
	}
}

func TestComposePrefersLeftOnConflict(t *testing.T) {
	supply := &VarSupply{}
	a := supply.Fresh(pos(), "a", Star)
	s1 := Subst{a.Id: TInt(pos())}
	s2 := Subst{a.Id: TBool(pos())}

	composed := Compose(s1, s2)
	got := Apply(composed, TVar{Var: a})
	if !sameGround(got, GInt) {
		t.Errorf("Compose(s1, s2)[a] = %s, want Int (s1 wins)", got)
	}
}

func TestComposeAppliesLeftOverRightsRange(t *testing.T) {
	supply := &VarSupply{}
	a := supply.Fresh(pos(), "a", Star)
	b := supply.Fresh(pos(), "b", Star)
	s1 := Subst{b.Id: TInt(pos())}
	s2 := Subst{a.Id: TVar{Var: b}}

	composed := Compose(s1, s2)
	got := Apply(composed, TVar{Var: a})
	if !sameGround(got, GInt) {
		t.Errorf("Compose(s1, s2)[a] = %s, want Int (a -> b, s1 rewrites b -> Int)", got)
	}
}

func TestFtvDeduplicatesByIdInOccurrenceOrder(t *testing.T) {
	supply := &VarSupply{}
	a := supply.Fresh(pos(), "a", Star)
	ty := TFun{P: pos(), Arg: TVar{Var: a}, Result: TList{P: pos(), Elem: TVar{Var: a}}}

	got := Ftv(ty)
	if len(got) != 1 || got[0].Id != a.Id {
		t.Errorf("Ftv(a -> [a]) = %+v, want a single occurrence of a", got)
	}
}

func TestFtvEnvReportsMonoSchemeVars(t *testing.T) {
	supply := &VarSupply{}
	a := supply.Fresh(pos(), "a", Star)
	env := TypeEnv{}.Extend("x", MonoScheme(TVar{Var: a}))

	envFree := FtvEnv(env)
	if len(envFree) != 1 || envFree[0].Id != a.Id {
		t.Errorf("FtvEnv = %+v, want exactly a", envFree)
	}
}

func TestTypeEnvExtendAndRemoveAreImmutable(t *testing.T) {
	base := TypeEnv{}
	extended := base.Extend("x", MonoScheme(TInt(pos())))
	if _, ok := base["x"]; ok {
		t.Fatal("Extend mutated the receiver")
	}
	if _, ok := extended["x"]; !ok {
		t.Fatal("Extend did not bind x in the returned environment")
	}
	removed := extended.Remove("x")
	if _, ok := extended["x"]; !ok {
		t.Fatal("Remove mutated the receiver")
	}
	if _, ok := removed["x"]; ok {
		t.Fatal("Remove did not unbind x")
	}
}

func TestTypeEnvApplySkipsSchemeBoundVars(t *testing.T) {
	supply := &VarSupply{}
	a := supply.Fresh(pos(), "a", Star)
	sch := Scheme{Vars: []TyVar{a}, Type: TFun{P: pos(), Arg: TVar{Var: a}, Result: TVar{Var: a}}}
	env := TypeEnv{}.Extend("id", sch)

	s := Subst{a.Id: TInt(pos())}
	applied := env.Apply(s)
	fn := applied["id"].Type.(TFun)
	if _, ok := fn.Arg.(TVar); !ok {
		t.Errorf("Apply substituted a's own bound variable: got %s", fn.Arg)
	}
}
