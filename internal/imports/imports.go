// Package imports implements spec.md §4.4's import resolver: it walks a
// pre-elaboration AST bottom-up and, for each Import node, splices in
// the parsed body expression of the file it names. Imports are textual
// splicing, not linking — there is no module scope, no name mangling,
// and no cache (module caching is an explicit non-goal).
package imports

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/5l1v3r1/Expresso/internal/ast"
	"github.com/5l1v3r1/Expresso/internal/diagnostics"
	"github.com/5l1v3r1/Expresso/internal/parser"
	"github.com/5l1v3r1/Expresso/internal/synonym"
	"github.com/5l1v3r1/Expresso/internal/typesystem"
)

// Resolve reads file, parses it, and recursively splices away every
// Import node reachable from its body, searching libDirs (in order) for
// relative import paths. It returns the fully elaborated body, the flat
// table of every synonym declaration accumulated across every file
// visited (validated as a whole once resolution completes), and the
// fresh-variable supply every file was parsed against — the caller
// (normally internal/infer's entry point) must keep drawing from this
// same supply rather than starting a new one, or ids allocated here and
// ids the inferencer allocates later could collide.
func Resolve(libDirs []string, file string) (ast.Expr, synonym.Table, *typesystem.VarSupply, error) {
	supply := &typesystem.VarSupply{}
	r := &resolver{
		libDirs:    libDirs,
		supply:     supply,
		ids:        map[string]string{},
		processing: map[string]bool{},
	}
	body, err := r.resolveFile(file)
	if err != nil {
		return nil, nil, nil, err
	}

	table := make(synonym.Table, len(r.decls))
	for _, d := range r.decls {
		if _, dup := table[d.Name]; dup {
			return nil, nil, nil, &diagnostics.SynonymError{Pos: d.Pos, Name: d.Name, Message: "synonym redeclared"}
		}
		table[d.Name] = d
	}
	for _, d := range r.decls {
		if err := synonym.Validate(table, d); err != nil {
			return nil, nil, nil, err
		}
	}
	return body, table, supply, nil
}

// resolver carries the state shared across one whole-program resolution:
// the flat synonym accumulator (spec.md §4.4: "the accumulator is
// flat"), the one fresh-variable supply every file parsed here draws
// from, a per-absolute-path uuid identity tag (assigned the first time a
// path is visited, and carried into a cyclic ImportError's ID field so
// the file closing the cycle is named by one stable identity rather than
// whichever relative spelling happened to trigger the re-entry), and the
// set of paths currently on the resolution stack (cycle detection, keyed
// on the absolute path itself - the uuid names the file for diagnostics,
// it is not the cycle-detection key).
type resolver struct {
	libDirs    []string
	supply     *typesystem.VarSupply
	decls      []synonym.Decl
	ids        map[string]string
	processing map[string]bool
}

func (r *resolver) resolveFile(path string) (ast.Expr, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if _, ok := r.ids[abs]; !ok {
		r.ids[abs] = uuid.NewString()
	}
	if r.processing[abs] {
		return nil, &diagnostics.ImportError{Path: path, Cyclic: true, ID: r.ids[abs]}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	decls, body, err := parser.ParseProgramWithSupply(path, string(data), r.supply)
	if err != nil {
		return nil, err
	}
	r.decls = append(r.decls, decls...)

	r.processing[abs] = true
	defer delete(r.processing, abs)

	return r.resolveExpr(body)
}

func (r *resolver) resolveExpr(e ast.Expr) (ast.Expr, error) {
	switch n := e.(type) {
	case *ast.Var, *ast.PrimExpr:
		return e, nil

	case *ast.App:
		fn, err := r.resolveExpr(n.Fn)
		if err != nil {
			return nil, err
		}
		arg, err := r.resolveExpr(n.Arg)
		if err != nil {
			return nil, err
		}
		return &ast.App{Pos: n.Pos, Fn: fn, Arg: arg}, nil

	case *ast.Lam:
		body, err := r.resolveExpr(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Lam{Pos: n.Pos, Bind: n.Bind, Body: body}, nil

	case *ast.Let:
		value, err := r.resolveExpr(n.Value)
		if err != nil {
			return nil, err
		}
		body, err := r.resolveExpr(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Let{Pos: n.Pos, Bind: n.Bind, Value: value, Body: body}, nil

	case *ast.AnnLam:
		body, err := r.resolveExpr(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.AnnLam{Pos: n.Pos, Bind: n.Bind, Type: n.Type, Body: body}, nil

	case *ast.AnnLet:
		value, err := r.resolveExpr(n.Value)
		if err != nil {
			return nil, err
		}
		body, err := r.resolveExpr(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.AnnLet{Pos: n.Pos, Bind: n.Bind, Type: n.Type, Value: value, Body: body}, nil

	case *ast.Ann:
		inner, err := r.resolveExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Ann{Pos: n.Pos, Expr: inner, Type: n.Type}, nil

	case *ast.Import:
		return r.resolveImport(n)

	default:
		return nil, fmt.Errorf("imports: unhandled expression node %T", e)
	}
}

func (r *resolver) resolveImport(n *ast.Import) (ast.Expr, error) {
	resolved, searched, err := r.locate(n.Path)
	if err != nil {
		return nil, &diagnostics.ImportError{Pos: n.Pos, Path: n.Path, Dirs: searched}
	}
	body, err := r.resolveFile(resolved)
	if err != nil {
		if ie, ok := err.(*diagnostics.ImportError); ok && ie.Cyclic {
			return nil, &diagnostics.ImportError{Pos: n.Pos, Path: n.Path, Cyclic: true, ID: ie.ID}
		}
		return nil, err
	}
	return body, nil
}

// locate finds the file an import path names: absolute paths are read
// directly, relative paths search libDirs in order for the first
// existing file, per spec.md §4.4.
func (r *resolver) locate(path string) (string, []string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", []string{path}, err
		}
		return path, nil, nil
	}
	var searched []string
	for _, dir := range r.libDirs {
		candidate := filepath.Join(dir, path)
		searched = append(searched, candidate)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil, nil
		}
	}
	return "", searched, os.ErrNotExist
}
