// Package parser turns Expresso source text into a pre-elaboration AST
// plus the program's top-level type-synonym declarations. All surface
// sugar is compiled away here: the parser never hands the inferencer
// anything outside the eight ast.Expr node kinds.
//
// Unlike the teacher's streaming pull-parser (cur/peek fed directly by
// the lexer), this parser buffers the whole token stream up front. The
// grammar's `forall (C1, C2, ...) => T` form is ambiguous with a
// parenthesised function type until the closing paren is seen followed
// (or not) by `=>`, and backtracking over a live lexer would mean
// re-lexing; backtracking over a slice index is free and the source
// files this front end parses are never large enough for the upfront
// buffering to matter.
package parser

import (
	"github.com/5l1v3r1/Expresso/internal/ast"
	"github.com/5l1v3r1/Expresso/internal/diagnostics"
	"github.com/5l1v3r1/Expresso/internal/lexer"
	"github.com/5l1v3r1/Expresso/internal/synonym"
	"github.com/5l1v3r1/Expresso/internal/token"
	"github.com/5l1v3r1/Expresso/internal/typesystem"
)

// Parser holds the buffered token stream and the fresh-variable supply
// used for every type annotation parsed along the way. One Parser is
// used for exactly one source file; the import resolver constructs a
// fresh Parser per file it reads.
type Parser struct {
	file string
	toks []token.Token
	idx  int

	supply *typesystem.VarSupply

	// per-annotation scope, reset at the start of parseAnnotation and
	// parseSynonymBody. forall only ever appears at an
	// annotation's outermost position in this language (every scheme in
	// spec.md's own testable-properties table does this), so a single
	// flat scope suffices - nested foralls are not supported.
	boundVars map[string]int
	boundList []typesystem.TyVar
	freeVars  map[string]typesystem.TyVar
}

// New tokenizes src in full and returns a Parser positioned at its first
// token, allocating type variables from a fresh supply of its own. Use
// NewWithSupply instead when parsing is one part of a larger pipeline
// (the import resolver, the inferencer's entry point) that must keep a
// single fresh-variable counter across every file and phase involved.
func New(file, src string) *Parser {
	return NewWithSupply(file, src, &typesystem.VarSupply{})
}

// NewWithSupply tokenizes src in full and returns a Parser positioned at
// its first token, allocating every type variable it parses from supply
// rather than one of its own. The import resolver shares one supply
// across every file it reads so a synonym declared in one file and an
// annotation written in another, or a type variable the inferencer
// later allocates during the same run, never collide on id — TyVar
// identity is by Id alone, and a Subst keyed by a colliding id would
// silently conflate two unrelated variables.
func NewWithSupply(file, src string, supply *typesystem.VarSupply) *Parser {
	lx := lexer.New(file, src)
	var toks []token.Token
	for {
		t := lx.NextToken()
		if t.Type == token.NEWLINE {
			continue
		}
		toks = append(toks, t)
		if t.Type == token.EOF {
			break
		}
	}
	return &Parser{file: file, toks: toks, supply: supply}
}

func (p *Parser) cur() token.Token { return p.toks[p.idx] }

func (p *Parser) peekAt(n int) token.Token {
	i := p.idx + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.idx < len(p.toks)-1 {
		p.idx++
	}
	return t
}

func (p *Parser) curIs(t token.Type) bool { return p.cur().Type == t }

func (p *Parser) checkpoint() int { return p.idx }
func (p *Parser) restore(i int) { p.idx = i }

func (p *Parser) expect(t token.Type) (token.Token, error) {
	tok := p.cur()
	if tok.Type != t {
		return tok, diagnostics.NewParseError(tok.Pos, "expected %s, got %s %q", t, tok.Type, tok.Lexeme)
	}
	return p.advance(), nil
}

// ParseProgram parses zero or more leading synonym declarations followed
// by exactly one top-level expression, per spec.md §6's input grammar.
// Type variables are drawn from a supply private to this one call; use
// ParseProgramWithSupply to parse as part of a larger pipeline.
func ParseProgram(file, src string) ([]synonym.Decl, ast.Expr, error) {
	return ParseProgramWithSupply(file, src, &typesystem.VarSupply{})
}

// ParseProgramWithSupply is ParseProgram, drawing fresh type variables
// from supply instead of a private one.
func ParseProgramWithSupply(file, src string, supply *typesystem.VarSupply) ([]synonym.Decl, ast.Expr, error) {
	p := NewWithSupply(file, src, supply)

	var decls []synonym.Decl
	for p.curIs(token.TYPE) {
		d, err := p.parseSynonymDecl()
		if err != nil {
			return nil, nil, err
		}
		decls = append(decls, d)
	}

	body, err := p.parseExpr()
	if err != nil {
		return nil, nil, err
	}
	if !p.curIs(token.EOF) {
		return nil, nil, diagnostics.NewParseError(p.cur().Pos, "unexpected trailing input %q", p.cur().Lexeme)
	}
	return decls, body, nil
}

// parseSynonymDecl parses `type Name formal1 formal2 ... = Type ;`.
func (p *Parser) parseSynonymDecl() (synonym.Decl, error) {
	pos := p.cur().Pos
	if _, err := p.expect(token.TYPE); err != nil {
		return synonym.Decl{}, err
	}
	nameTok, err := p.expect(token.UPPER_IDENT)
	if err != nil {
		return synonym.Decl{}, err
	}

	var formals []string
	for p.curIs(token.LOWER_IDENT) {
		formals = append(formals, p.advance().Lexeme)
	}

	if _, err := p.expect(token.ASSIGN); err != nil {
		return synonym.Decl{}, err
	}

	body, err := p.parseSynonymBody(formals)
	if err != nil {
		return synonym.Decl{}, err
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return synonym.Decl{}, err
	}

	return synonym.Decl{Pos: pos, Name: nameTok.Lexeme, Formals: formals, Body: body}, nil
}

// parseAnnotation parses one complete type annotation (an optional
// forall header over a body type) and runs the unbound-tyvar check
// spec.md §4.3 requires of every annotation.
func (p *Parser) parseAnnotation() (typesystem.Type, error) {
	p.boundVars = map[string]int{}
	p.boundList = nil
	p.freeVars = map[string]typesystem.TyVar{}

	t, err := p.parseAnnotationBody()
	if err != nil {
		return nil, err
	}
	if err := checkUnbound(t, nil); err != nil {
		return nil, err
	}
	return t, nil
}

// parseSynonymBody parses a synonym declaration's body type, exempting
// the synonym's own formals from the unbound-tyvar check the same way a
// forall header would - a synonym's formal list is an implicit
// quantifier with no constraints and no fixed kind; each formal's kind
// is instead determined by its first occurrence in body, exactly like
// any other name-resolved-on-first-use type variable.
func (p *Parser) parseSynonymBody(formals []string) (typesystem.Type, error) {
	p.boundVars = map[string]int{}
	p.boundList = nil
	p.freeVars = map[string]typesystem.TyVar{}

	t, err := p.parseAnnotationBody()
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]bool, len(formals))
	for _, f := range formals {
		allowed[f] = true
	}
	if err := checkUnbound(t, allowed); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *Parser) parseAnnotationBody() (typesystem.Type, error) {
	if p.curIs(token.FORALL) {
		return p.parseForallType()
	}
	return p.parseFunType()
}

func checkUnbound(t typesystem.Type, allowed map[string]bool) error {
	for _, v := range typesystem.Ftv(t) {
		if v.Flavour != typesystem.Wildcard && !allowed[v.Prefix] {
			return diagnostics.NewAnnotationError(v.SrcPos, "unbound type variable %s", v.Prefix)
		}
	}
	return nil
}

// typeVarRef resolves a lower-identifier occurrence to a TyVar: an
// already-bound forall variable, a name already seen free earlier in
// this same annotation, or (if this is the first occurrence) a freshly
// allocated Inferred variable that checkUnbound will reject unless the
// annotation turns out to quantify it after all.
func (p *Parser) typeVarRef(name string, pos token.Position, kind typesystem.Kind) (typesystem.TyVar, error) {
	if i, ok := p.boundVars[name]; ok {
		tv := p.boundList[i]
		if tv.VarKind != kind {
			return typesystem.TyVar{}, diagnostics.NewAnnotationError(pos, "type variable %s used at inconsistent kind", name)
		}
		return tv, nil
	}
	if tv, ok := p.freeVars[name]; ok {
		if tv.VarKind != kind {
			return typesystem.TyVar{}, diagnostics.NewAnnotationError(pos, "type variable %s used at inconsistent kind", name)
		}
		return tv, nil
	}
	tv := p.supply.Fresh(pos, name, kind)
	p.freeVars[name] = tv
	return tv, nil
}
