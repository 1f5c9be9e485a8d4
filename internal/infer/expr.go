package infer

import (
	"fmt"

	"github.com/5l1v3r1/Expresso/internal/ast"
	"github.com/5l1v3r1/Expresso/internal/diagnostics"
	"github.com/5l1v3r1/Expresso/internal/typesystem"
)

// infer is Algorithm W's syntax-directed core: one case per elaborated
// ast.Expr node, threading env functionally and ti.Subst imperatively.
func (ti *TIState) infer(env typesystem.TypeEnv, e ast.Expr) (typesystem.Type, error) {
	switch n := e.(type) {

	case *ast.Var:
		sch, ok := env[n.Name]
		if !ok {
			return nil, &diagnostics.BindingError{Pos: n.Pos, Name: n.Name}
		}
		return ti.instantiate(sch, n.Pos), nil

	case *ast.PrimExpr:
		return ti.tiPrim(n.Pos, n.Prim)

	case *ast.App:
		fnTy, err := ti.infer(env, n.Fn)
		if err != nil {
			return nil, err
		}
		argTy, err := ti.infer(env, n.Arg)
		if err != nil {
			return nil, err
		}
		result := ti.newTyVar(n.Pos, "a")
		if err := ti.unify(fnTy, typesystem.TFun{P: n.Pos, Arg: argTy, Result: typesystem.TVar{Var: result}}); err != nil {
			return nil, err
		}
		return typesystem.TVar{Var: result}, nil

	case *ast.Lam:
		argVar := ti.newTyVar(n.Pos, "a")
		binds, err := ti.tiBinds(n.Bind, typesystem.TVar{Var: argVar})
		if err != nil {
			return nil, err
		}
		bodyEnv := extendMono(env, binds)
		bodyTy, err := ti.infer(bodyEnv, n.Body)
		if err != nil {
			return nil, err
		}
		return typesystem.TFun{P: n.Pos, Arg: typesystem.TVar{Var: argVar}, Result: bodyTy}, nil

	case *ast.AnnLam:
		argVar := ti.newTyVar(n.Pos, "a")
		annTy := ti.elaborateAnnotation(n.Type)
		if err := ti.unify(typesystem.TVar{Var: argVar}, annTy); err != nil {
			return nil, err
		}
		binds, err := ti.tiBinds(n.Bind, typesystem.TVar{Var: argVar})
		if err != nil {
			return nil, err
		}
		bodyEnv := extendMono(env, binds)
		bodyTy, err := ti.infer(bodyEnv, n.Body)
		if err != nil {
			return nil, err
		}
		return typesystem.TFun{P: n.Pos, Arg: typesystem.TVar{Var: argVar}, Result: bodyTy}, nil

	case *ast.Let:
		valueTy, err := ti.infer(env, n.Value)
		if err != nil {
			return nil, err
		}
		return ti.inferLetBody(env, n.Bind, valueTy, n.Body)

	case *ast.AnnLet:
		valueTy, err := ti.infer(env, n.Value)
		if err != nil {
			return nil, err
		}
		annTy := ti.elaborateAnnotation(n.Type)
		if err := ti.unify(valueTy, annTy); err != nil {
			return nil, err
		}
		return ti.inferLetBody(env, n.Bind, valueTy, n.Body)

	case *ast.Ann:
		t, err := ti.infer(env, n.Expr)
		if err != nil {
			return nil, err
		}
		annTy := ti.elaborateAnnotation(n.Type)
		if err := ti.unify(t, annTy); err != nil {
			return nil, err
		}
		return t, nil

	case *ast.Import:
		return nil, fmt.Errorf("infer: unresolved import %q reached the inferencer at %s", n.Path, n.Pos)

	default:
		return nil, fmt.Errorf("infer: unhandled expression node %T", e)
	}
}

// inferLetBody implements the common tail of Let/AnnLet: bind b's names
// at valueTy, generalise each one against the let-bound names already
// removed from env (let-generalisation), then infer body under the
// extended environment.
func (ti *TIState) inferLetBody(env typesystem.TypeEnv, b ast.Bind, valueTy typesystem.Type, body ast.Expr) (typesystem.Type, error) {
	binds, err := ti.tiBinds(b, valueTy)
	if err != nil {
		return nil, err
	}
	baseEnv := env
	for name := range binds {
		baseEnv = baseEnv.Remove(name)
	}
	bodyEnv := baseEnv
	for name, ty := range binds {
		bodyEnv = bodyEnv.Extend(name, ti.generalise(baseEnv, ty))
	}
	return ti.infer(bodyEnv, body)
}

// extendMono extends env with each name in binds wrapped in an
// un-generalised scheme — lambda-bound names are never quantified, only
// let-bound ones are (spec.md §4.7: Lam "extend with bindingSchemes
// (each wrapped in an empty-var scheme)").
func extendMono(env typesystem.TypeEnv, binds map[string]typesystem.Type) typesystem.TypeEnv {
	out := env
	for name := range binds {
		out = out.Remove(name)
	}
	for name, ty := range binds {
		out = out.Extend(name, typesystem.MonoScheme(ty))
	}
	return out
}
