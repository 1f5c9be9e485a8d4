// Package infer implements spec.md §4.7's Algorithm W: it walks an
// elaborated ast.Expr, emitting unification constraints against a
// single mutable substitution, and returns the expression's principal
// Scheme. Every exported entry point owns a fresh TIState — per §5,
// there is no mutable state shared between concurrent callers.
package infer

import (
	"github.com/5l1v3r1/Expresso/internal/ast"
	"github.com/5l1v3r1/Expresso/internal/synonym"
	"github.com/5l1v3r1/Expresso/internal/token"
	"github.com/5l1v3r1/Expresso/internal/typesystem"
)

// TIState is Algorithm W's mutable state for one top-level inference
// call: the fresh-variable supply and the accumulated substitution.
// Synonyms are read-only lookup data, not inference state, but travel
// alongside it since every annotation the inferencer meets needs them
// expanded before it can be unified.
type TIState struct {
	Supply   *typesystem.VarSupply
	Subst    typesystem.Subst
	Synonyms synonym.Table
}

// NewState constructs a TIState. supply may be the same VarSupply the
// parser and import resolver already drew ids from (see
// internal/imports.Resolve) so that type variables written in an
// annotation and type variables Algorithm W allocates never collide on
// id; a nil supply starts a private one instead, for inferring a bare
// expression parsed in isolation (tests, a REPL one-liner with no
// imports).
func NewState(supply *typesystem.VarSupply, synonyms synonym.Table) *TIState {
	if supply == nil {
		supply = &typesystem.VarSupply{}
	}
	return &TIState{Supply: supply, Subst: typesystem.Subst{}, Synonyms: synonyms}
}

// TypeInference infers e's principal type scheme under env, per
// spec.md §4.7's `typeInference(e) = generalise(ti(e))`. supply should
// be the supply threaded through parsing when e came from
// internal/imports.Resolve; pass nil to infer a standalone expression.
func TypeInference(e ast.Expr, env typesystem.TypeEnv, synonyms synonym.Table, supply *typesystem.VarSupply) (typesystem.Scheme, error) {
	ti := NewState(supply, synonyms)
	t, err := ti.infer(env, e)
	if err != nil {
		return typesystem.Scheme{}, err
	}
	return ti.generalise(env, t), nil
}

// newTyVar allocates a fresh Star-kinded, unconstrained type variable.
func (ti *TIState) newTyVar(pos token.Position, prefix string) typesystem.TyVar {
	return ti.Supply.Fresh(pos, prefix, typesystem.Star)
}

// newTyVarWith allocates a fresh type variable with an explicit kind,
// flavour and constraint.
func (ti *TIState) newTyVarWith(pos token.Position, prefix string, kind typesystem.Kind, flavour typesystem.Flavour, c typesystem.Constraint) typesystem.TyVar {
	return ti.Supply.FreshWith(pos, prefix, kind, flavour, c)
}

// unify applies the current substitution to both sides, computes their
// most general unifier, and composes the result into the running
// substitution — spec.md §4.6's "unify(t1, t2) applies the current
// substitution to both arguments and calls mgu. The result substitution
// is composed into the inferencer's global substitution."
func (ti *TIState) unify(t1, t2 typesystem.Type) error {
	a := typesystem.Apply(ti.Subst, t1)
	b := typesystem.Apply(ti.Subst, t2)
	s, err := typesystem.MGU(a, b, ti.Supply)
	if err != nil {
		return err
	}
	ti.Subst = typesystem.Compose(s, ti.Subst)
	return nil
}

// instantiate replaces every variable a scheme quantifies with a fresh
// one of the same kind and constraint, via a zip-substitution — a
// scheme with no bound variables (a lambda-bound MonoScheme) is
// returned unchanged.
func (ti *TIState) instantiate(sch typesystem.Scheme, pos token.Position) typesystem.Type {
	if len(sch.Vars) == 0 {
		return sch.Type
	}
	sub := make(typesystem.Subst, len(sch.Vars))
	for _, v := range sch.Vars {
		nv := ti.Supply.FreshWith(pos, v.Prefix, v.VarKind, typesystem.Inferred, v.Constraint)
		sub[v.Id] = typesystem.TVar{Var: nv}
	}
	return typesystem.Apply(sub, sch.Type)
}

// generalise closes t over every type variable free in t but not free
// in env, both read through the current substitution — spec.md §4.7:
// "applies the current substitution to both t and the environment, then
// quantifies over ftv(t') \ ftv(env')."
func (ti *TIState) generalise(env typesystem.TypeEnv, t typesystem.Type) typesystem.Scheme {
	t2 := typesystem.Apply(ti.Subst, t)
	env2 := env.Apply(ti.Subst)
	envFree := make(map[int]bool)
	for _, v := range typesystem.FtvEnv(env2) {
		envFree[v.Id] = true
	}
	var vars []typesystem.TyVar
	for _, v := range typesystem.Ftv(t2) {
		if !envFree[v.Id] {
			vars = append(vars, v)
		}
	}
	return typesystem.Scheme{Vars: vars, Type: t2}
}

// elaborateAnnotation expands any type synonym the written annotation
// uses and, if the annotation is itself a forall, instantiates it with
// fresh variables carrying the original's kinds and constraints —
// spec.md §4.7: "unify the inferred component type with the annotation
// T after instantiating any forall in T with fresh variables." Wildcard
// variables the parser already allocated need no special handling here:
// they are ordinary fresh type variables to the unifier, merely exempt
// from the parser's own unbound-tyvar check.
func (ti *TIState) elaborateAnnotation(t typesystem.Type) typesystem.Type {
	expanded := synonym.Expand(ti.Synonyms, t)
	fa, ok := expanded.(typesystem.TForAll)
	if !ok {
		return expanded
	}
	sub := make(typesystem.Subst, len(fa.Vars))
	for _, v := range fa.Vars {
		nv := ti.Supply.FreshWith(v.SrcPos, v.Prefix, v.VarKind, typesystem.Inferred, v.Constraint)
		sub[v.Id] = typesystem.TVar{Var: nv}
	}
	return typesystem.Apply(sub, fa.Type)
}
