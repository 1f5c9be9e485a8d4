package parser

import (
	"strconv"

	"github.com/5l1v3r1/Expresso/internal/ast"
	"github.com/5l1v3r1/Expresso/internal/diagnostics"
	"github.com/5l1v3r1/Expresso/internal/token"
	"github.com/5l1v3r1/Expresso/internal/typesystem"
)

func parseIntLiteral(lexeme string) int64 {
	v, _ := strconv.ParseInt(lexeme, 10, 64)
	return v
}

func parseDblLiteral(lexeme string) float64 {
	v, _ := strconv.ParseFloat(lexeme, 64)
	return v
}

// preludeNames maps the lowercase spellings of primitives that have no
// dedicated operator or keyword sugar onto their tag. Unlike a variant
// constructor (any UPPER_IDENT) these are a closed, specific set of
// identifiers - writing one of these names as a bare atom always yields
// the primitive, never a Var, since the grammar gives the inferencer no
// other way to reach them.
var preludeNames = map[string]ast.PrimTag{
	"abs": ast.PAbs, "floor": ast.PFloor, "ceiling": ast.PCeiling, "double": ast.PDouble,
	"mod": ast.PMod, "not": ast.PNot, "fix": ast.PFix,
	"error": ast.PError, "trace": ast.PTrace,
	"uncons": ast.PListUncons, "foldr": ast.PListFoldr, "null": ast.PListNull,
	"pack": ast.PPack, "unpack": ast.PUnpack, "show": ast.PShow,
	"textAppend": ast.PTextAppend, "compose": ast.PFwdComp, "composeBackward": ast.PBwdComp,
	"absurd": ast.PAbsurd,
}

func prim(pos token.Position, tag ast.PrimTag) ast.Expr {
	return &ast.PrimExpr{Pos: pos, Prim: ast.Prim{Tag: tag}}
}

func primLabel(pos token.Position, tag ast.PrimTag, label string) ast.Expr {
	return &ast.PrimExpr{Pos: pos, Prim: ast.Prim{Tag: tag, Label: label}}
}

func app(fn, arg ast.Expr) ast.Expr {
	return &ast.App{Pos: fn.GetPos(), Fn: fn, Arg: arg}
}

func app2(fn, a1, a2 ast.Expr) ast.Expr {
	return app(app(fn, a1), a2)
}

// parseExpr is the expression grammar's entry point: every other
// expression-parsing function in this package (lambda bodies, let
// values/bodies, record-field values, ...) ultimately calls back into
// this one. Ascription `e : T` sits outside the operator precedence
// ladder, binding loosest of all.
func (p *Parser) parseExpr() (ast.Expr, error) {
	e, err := p.parseOrLevel()
	if err != nil {
		return nil, err
	}
	if p.curIs(token.COLON) {
		p.advance()
		ty, err := p.parseAnnotation()
		if err != nil {
			return nil, err
		}
		e = &ast.Ann{Pos: e.GetPos(), Expr: e, Type: ty}
	}
	return e, nil
}

// parseOrLevel: `||`, loosest binary operator, right-associative.
func (p *Parser) parseOrLevel() (ast.Expr, error) {
	lhs, err := p.parseAndLevel()
	if err != nil {
		return nil, err
	}
	if p.curIs(token.OR) {
		pos := p.advance().Pos
		rhs, err := p.parseOrLevel()
		if err != nil {
			return nil, err
		}
		return app2(prim(pos, ast.POr), lhs, rhs), nil
	}
	return lhs, nil
}

// parseAndLevel: `&&`, right-associative.
func (p *Parser) parseAndLevel() (ast.Expr, error) {
	lhs, err := p.parseCompareLevel()
	if err != nil {
		return nil, err
	}
	if p.curIs(token.AND) {
		pos := p.advance().Pos
		rhs, err := p.parseAndLevel()
		if err != nil {
			return nil, err
		}
		return app2(prim(pos, ast.PAnd), lhs, rhs), nil
	}
	return lhs, nil
}

// parseCompareLevel: `==`, `/=`, `>`, `>=`, `<`, `<=`, left-associative.
func (p *Parser) parseCompareLevel() (ast.Expr, error) {
	lhs, err := p.parseAppendConsLevel()
	if err != nil {
		return nil, err
	}
	for {
		var tag ast.PrimTag
		switch p.cur().Type {
		case token.EQ:
			tag = ast.PEq
		case token.NEQ:
			tag = ast.PNEq
		case token.GT:
			tag = ast.PRGT
		case token.GTE:
			tag = ast.PRGTE
		case token.LT:
			tag = ast.PRLT
		case token.LTE:
			tag = ast.PRLTE
		default:
			return lhs, nil
		}
		pos := p.advance().Pos
		rhs, err := p.parseAppendConsLevel()
		if err != nil {
			return nil, err
		}
		lhs = app2(prim(pos, tag), lhs, rhs)
	}
}

// parseAppendConsLevel: `++` (list append, left-associative) and `::`
// (cons, right-associative) share one precedence level.
func (p *Parser) parseAppendConsLevel() (ast.Expr, error) {
	lhs, err := p.parseAdditiveLevel()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Type {
		case token.PLUSPLUS:
			pos := p.advance().Pos
			rhs, err := p.parseAdditiveLevel()
			if err != nil {
				return nil, err
			}
			lhs = app2(prim(pos, ast.PListAppend), lhs, rhs)
		case token.DCOLON:
			pos := p.advance().Pos
			rhs, err := p.parseAppendConsLevel()
			if err != nil {
				return nil, err
			}
			return app2(prim(pos, ast.PListCons), lhs, rhs), nil
		default:
			return lhs, nil
		}
	}
}

// parseAdditiveLevel: `+`, `-`, left-associative.
func (p *Parser) parseAdditiveLevel() (ast.Expr, error) {
	lhs, err := p.parseMultiplicativeLevel()
	if err != nil {
		return nil, err
	}
	for {
		var tag ast.PrimTag
		switch p.cur().Type {
		case token.PLUS:
			tag = ast.PAdd
		case token.MINUS:
			tag = ast.PSub
		default:
			return lhs, nil
		}
		pos := p.advance().Pos
		rhs, err := p.parseMultiplicativeLevel()
		if err != nil {
			return nil, err
		}
		lhs = app2(prim(pos, tag), lhs, rhs)
	}
}

// parseMultiplicativeLevel: `*`, `/`, left-associative.
func (p *Parser) parseMultiplicativeLevel() (ast.Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var tag ast.PrimTag
		switch p.cur().Type {
		case token.STAR:
			tag = ast.PMul
		case token.SLASH:
			tag = ast.PDiv
		default:
			return lhs, nil
		}
		pos := p.advance().Pos
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = app2(prim(pos, tag), lhs, rhs)
	}
}

// parseUnary handles prefix `-`, looser than application (`-f x` negates
// the whole application) but tighter than every binary operator.
func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.curIs(token.MINUS) {
		pos := p.advance().Pos
		operand, err := p.parseApp()
		if err != nil {
			return nil, err
		}
		return app(prim(pos, ast.PNeg), operand), nil
	}
	return p.parseApp()
}

// startsAtom reports whether the current token can open a new atom, used
// both to know when an application chain continues and to reject a
// dangling operator.
func (p *Parser) startsAtom() bool {
	switch p.cur().Type {
	case token.LOWER_IDENT, token.UPPER_IDENT, token.INT, token.DBL, token.CHAR,
		token.STRING, token.TRUE, token.FALSE,
		token.LPAREN, token.LBRACE, token.LBRACE_PIPE, token.LANGLE_PIPE, token.LBRACKET,
		token.BACKSLASH, token.LET, token.IF, token.CASE, token.IMPORT:
		return true
	}
	return false
}

// parseApp parses a left-associative juxtaposition chain: f a b c.
func (p *Parser) parseApp() (ast.Expr, error) {
	base, err := p.parseAtomWithPostfix()
	if err != nil {
		return nil, err
	}
	for p.startsAtom() {
		arg, err := p.parseAtomWithPostfix()
		if err != nil {
			return nil, err
		}
		base = &ast.App{Pos: base.GetPos(), Fn: base, Arg: arg}
	}
	return base, nil
}

func (p *Parser) parseAtomWithPostfix() (ast.Expr, error) {
	a, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(a)
}

// parsePostfix consumes field projection `.ℓ` and record restriction
// `\ℓ` suffixes, both of which bind tighter than application.
func (p *Parser) parsePostfix(base ast.Expr) (ast.Expr, error) {
	for {
		switch p.cur().Type {
		case token.DOT:
			p.advance()
			lbl, err := p.expect(token.LOWER_IDENT)
			if err != nil {
				return nil, err
			}
			base = app(primLabel(lbl.Pos, ast.PRecordSelect, lbl.Lexeme), base)
		case token.BACKSLASH:
			p.advance()
			lbl, err := p.expect(token.LOWER_IDENT)
			if err != nil {
				return nil, err
			}
			base = app(primLabel(lbl.Pos, ast.PRecordRestrict, lbl.Lexeme), base)
		default:
			return base, nil
		}
	}
}

func (p *Parser) parseAtom() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Type {
	case token.INT:
		p.advance()
		return &ast.PrimExpr{Pos: tok.Pos, Prim: ast.Prim{Tag: ast.PInt, IntVal: parseIntLiteral(tok.Lexeme)}}, nil
	case token.DBL:
		p.advance()
		return &ast.PrimExpr{Pos: tok.Pos, Prim: ast.Prim{Tag: ast.PDbl, DblVal: parseDblLiteral(tok.Lexeme)}}, nil
	case token.CHAR:
		p.advance()
		r := []rune(tok.Lexeme)
		var c rune
		if len(r) > 0 {
			c = r[0]
		}
		return &ast.PrimExpr{Pos: tok.Pos, Prim: ast.Prim{Tag: ast.PChar, CharVal: c}}, nil
	case token.STRING:
		p.advance()
		return &ast.PrimExpr{Pos: tok.Pos, Prim: ast.Prim{Tag: ast.PText, TextVal: tok.Lexeme}}, nil
	case token.TRUE:
		p.advance()
		return &ast.PrimExpr{Pos: tok.Pos, Prim: ast.Prim{Tag: ast.PBool, BoolVal: true}}, nil
	case token.FALSE:
		p.advance()
		return &ast.PrimExpr{Pos: tok.Pos, Prim: ast.Prim{Tag: ast.PBool, BoolVal: false}}, nil

	case token.LOWER_IDENT:
		p.advance()
		if tag, ok := preludeNames[tok.Lexeme]; ok {
			return prim(tok.Pos, tag), nil
		}
		return &ast.Var{Pos: tok.Pos, Name: tok.Lexeme}, nil

	case token.UPPER_IDENT:
		p.advance()
		return primLabel(tok.Pos, ast.PVariantInject, tok.Lexeme), nil

	case token.BACKSLASH:
		return p.parseLambda()
	case token.LET:
		return p.parseLet()
	case token.IF:
		return p.parseIf()
	case token.CASE:
		return p.parseCase()
	case token.IMPORT:
		return p.parseImport()

	case token.LBRACKET:
		return p.parseListLiteral()
	case token.LBRACE:
		return p.parseRecordLiteral()
	case token.LBRACE_PIPE:
		return p.parseDiffRecord()
	case token.LANGLE_PIPE:
		return p.parseVariantEmbed()

	case token.LPAREN:
		return p.parseParenthesised()

	default:
		return nil, diagnostics.NewParseError(tok.Pos, "expected an expression, got %s %q", tok.Type, tok.Lexeme)
	}
}

func (p *Parser) parseImport() (ast.Expr, error) {
	pos := p.cur().Pos
	p.advance() // 'import'
	pathTok, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	return &ast.Import{Pos: pos, Path: pathTok.Lexeme}, nil
}

func (p *Parser) parseIf() (ast.Expr, error) {
	pos := p.cur().Pos
	p.advance() // 'if'
	c, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.THEN); err != nil {
		return nil, err
	}
	t, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ELSE); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return app(app2(prim(pos, ast.PCond), c, t), e), nil
}

// parseParenthesised handles `(e)` and the signature section `(: T)`,
// the latter desugaring to `(\x -> x) : T -> T` with any leading forall
// lifted back over the arrow per spec.md §4.2.
func (p *Parser) parseParenthesised() (ast.Expr, error) {
	pos := p.cur().Pos
	p.advance() // '('
	if p.curIs(token.COLON) {
		p.advance()
		ty, err := p.parseAnnotation()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		ident := &ast.Lam{Pos: pos, Bind: &ast.Arg{Pos: pos, Name: "x"}, Body: &ast.Var{Pos: pos, Name: "x"}}
		arrowTy := liftSignatureType(ty)
		return &ast.Ann{Pos: pos, Expr: ident, Type: arrowTy}, nil
	}
	inner, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return inner, nil
}

// --- list literal ---

func (p *Parser) parseListLiteral() (ast.Expr, error) {
	pos := p.cur().Pos
	p.advance() // '['
	if p.curIs(token.RBRACKET) {
		p.advance()
		return prim(pos, ast.PListEmpty), nil
	}
	var elems []ast.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	acc := prim(pos, ast.PListEmpty)
	for i := len(elems) - 1; i >= 0; i-- {
		acc = app2(prim(pos, ast.PListCons), elems[i], acc)
	}
	return acc, nil
}

// --- record literals, difference records ---

type recordFieldKind int

const (
	fieldExtend recordFieldKind = iota
	fieldUpdate
)

type recordField struct {
	kind  recordFieldKind
	label string
	pos   token.Position
	value ast.Expr
}

// parseRecordFields parses the shared `ℓ=e | ℓ | ℓ:=e, ...` field list,
// optionally followed by `| tail`. A nil tail means the fold should
// start from RecordEmpty rather than a written-out expression.
func (p *Parser) parseRecordFields() ([]recordField, ast.Expr, error) {
	var fields []recordField
	for p.curIs(token.LOWER_IDENT) {
		labelTok := p.advance()
		switch {
		case p.curIs(token.ASSIGN):
			p.advance()
			v, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			fields = append(fields, recordField{fieldExtend, labelTok.Lexeme, labelTok.Pos, v})
		case p.curIs(token.COLON_EQ):
			p.advance()
			v, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			fields = append(fields, recordField{fieldUpdate, labelTok.Lexeme, labelTok.Pos, v})
		default:
			fields = append(fields, recordField{fieldExtend, labelTok.Lexeme, labelTok.Pos, &ast.Var{Pos: labelTok.Pos, Name: labelTok.Lexeme}})
		}
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	var tail ast.Expr
	if p.curIs(token.PIPE) {
		p.advance()
		t, err := p.parseExpr()
		if err != nil {
			return nil, nil, err
		}
		tail = t
	}
	return fields, tail, nil
}

// buildRecordFold right-folds RecordExtend (and RecordExtend+Restrict for
// an update field) over base, defaulting base to RecordEmpty.
func buildRecordFold(pos token.Position, fields []recordField, base ast.Expr) ast.Expr {
	acc := base
	if acc == nil {
		acc = prim(pos, ast.PRecordEmpty)
	}
	for i := len(fields) - 1; i >= 0; i-- {
		f := fields[i]
		switch f.kind {
		case fieldUpdate:
			restricted := app(primLabel(f.pos, ast.PRecordRestrict, f.label), acc)
			acc = app2(primLabel(f.pos, ast.PRecordExtend, f.label), f.value, restricted)
		default:
			acc = app2(primLabel(f.pos, ast.PRecordExtend, f.label), f.value, acc)
		}
	}
	return acc
}

func (p *Parser) parseRecordLiteral() (ast.Expr, error) {
	pos := p.cur().Pos
	p.advance() // '{'
	if p.curIs(token.RBRACE) {
		p.advance()
		return prim(pos, ast.PRecordEmpty), nil
	}
	fields, tail, err := p.parseRecordFields()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return buildRecordFold(pos, fields, tail), nil
}

// parseDiffRecord parses `{| ℓ=e, ... |}`, desugaring to a function
// `\#r -> {...| #r}` over the fields given. The binder name `#r` can
// never collide with a user-written identifier: the lexer only ever
// produces LOWER_IDENT tokens starting with a letter or underscore, so
// no surface program can spell this name.
func (p *Parser) parseDiffRecord() (ast.Expr, error) {
	pos := p.cur().Pos
	p.advance() // '{|'
	fields, _, err := p.parseRecordFields()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.PIPE_RBRACE); err != nil {
		return nil, err
	}
	body := buildRecordFold(pos, fields, &ast.Var{Pos: pos, Name: "#r"})
	return &ast.Lam{Pos: pos, Bind: &ast.Arg{Pos: pos, Name: "#r"}, Body: body}, nil
}

// parseVariantEmbed parses `<| C1, C2, ... |>`, desugaring to
// `\#r -> VariantEmbed C1 (VariantEmbed C2 ... #r)`.
func (p *Parser) parseVariantEmbed() (ast.Expr, error) {
	pos := p.cur().Pos
	p.advance() // '<|'
	var ctors []token.Token
	for {
		c, err := p.expect(token.UPPER_IDENT)
		if err != nil {
			return nil, err
		}
		ctors = append(ctors, c)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.PIPE_RANGLE); err != nil {
		return nil, err
	}
	body := ast.Expr(&ast.Var{Pos: pos, Name: "#r"})
	for i := len(ctors) - 1; i >= 0; i-- {
		body = app(primLabel(ctors[i].Pos, ast.PVariantEmbed, ctors[i].Lexeme), body)
	}
	return &ast.Lam{Pos: pos, Bind: &ast.Arg{Pos: pos, Name: "#r"}, Body: body}, nil
}

// --- case / override ---

type caseArm struct {
	ctor       string
	pos        token.Position
	handler    ast.Expr
	isOverride bool
}

// parseCase parses `case s of { Ctor -> f, ..., [override Ctor -> f] }`.
// An arm list exhaustively matched folds down to Absurd; a trailing
// `override Ctor -> f` arm instead folds down to the table's
// `VariantElim Ctor f (\#r -> k (VariantEmbed Ctor #r))` form, letting
// the case extend some enclosing eliminator bound as `k` rather than
// requiring every constructor to be named.
func (p *Parser) parseCase() (ast.Expr, error) {
	pos := p.cur().Pos
	p.advance() // 'case'
	scrutinee, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.OF); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}

	var arms []caseArm
	for !p.curIs(token.RBRACE) {
		isOverride := false
		if p.curIs(token.OVERRIDE) {
			isOverride = true
			p.advance()
		}
		ctorTok, err := p.expect(token.UPPER_IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ARROW); err != nil {
			return nil, err
		}
		handler, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		arms = append(arms, caseArm{ctorTok.Lexeme, ctorTok.Pos, handler, isOverride})
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}

	eliminator, err := buildCaseEliminator(pos, arms)
	if err != nil {
		return nil, err
	}
	return app(eliminator, scrutinee), nil
}

func buildCaseEliminator(pos token.Position, arms []caseArm) (ast.Expr, error) {
	n := len(arms)
	var acc ast.Expr
	start := n - 1

	if n > 0 && arms[n-1].isOverride {
		last := arms[n-1]
		rVar := &ast.Var{Pos: last.pos, Name: "#r"}
		embedded := app(primLabel(last.pos, ast.PVariantEmbed, last.ctor), rVar)
		kApplied := app(&ast.Var{Pos: last.pos, Name: "k"}, embedded)
		fallback := &ast.Lam{Pos: last.pos, Bind: &ast.Arg{Pos: last.pos, Name: "#r"}, Body: kApplied}
		acc = app2(primLabel(last.pos, ast.PVariantElim, last.ctor), last.handler, fallback)
		start = n - 2
	} else {
		acc = prim(pos, ast.PAbsurd)
	}

	for i := start; i >= 0; i-- {
		a := arms[i]
		if a.isOverride {
			return nil, diagnostics.NewParseError(a.pos, "override is only permitted as the final case arm")
		}
		acc = app2(primLabel(a.pos, ast.PVariantElim, a.ctor), a.handler, acc)
	}
	return acc, nil
}

// liftSignatureType builds T -> T for a signature section, lifting any
// leading forall back over the constructed arrow so `(: forall a. a)`
// becomes `forall a. a -> a`, not `(forall a. a) -> (forall a. a)`.
func liftSignatureType(ty ast.Type) ast.Type {
	if fa, ok := ty.(typesystem.TForAll); ok {
		arrow := typesystem.TFun{P: fa.P, Arg: fa.Type, Result: fa.Type}
		return typesystem.TForAll{P: fa.P, Vars: fa.Vars, Type: arrow}
	}
	return typesystem.TFun{P: ty.Pos(), Arg: ty, Result: ty}
}
