package parser

import (
	"github.com/5l1v3r1/Expresso/internal/ast"
	"github.com/5l1v3r1/Expresso/internal/diagnostics"
	"github.com/5l1v3r1/Expresso/internal/token"
)

// parseBind parses one unadorned binder: a plain name, a record
// destructuring `{x, y=local}`, or a record wildcard `{..}`.
func (p *Parser) parseBind() (ast.Bind, error) {
	tok := p.cur()
	switch tok.Type {
	case token.LOWER_IDENT:
		p.advance()
		return &ast.Arg{Pos: tok.Pos, Name: tok.Lexeme}, nil

	case token.WILDCARD:
		p.advance()
		return &ast.Arg{Pos: tok.Pos, Name: "_"}, nil

	case token.DOTDOT_REC:
		p.advance()
		return &ast.RecWildcard{Pos: tok.Pos}, nil

	case token.LBRACE:
		return p.parseRecArg()

	default:
		return nil, diagnostics.NewParseError(tok.Pos, "expected a binder, got %s %q", tok.Type, tok.Lexeme)
	}
}

// parseRecArg parses `{x, y=local, z}`: each label either punned (the
// local name equals the label) or explicitly renamed.
func (p *Parser) parseRecArg() (ast.Bind, error) {
	pos := p.cur().Pos
	p.advance() // '{'

	var labels []ast.RecLabel
	for {
		labelTok, err := p.expect(token.LOWER_IDENT)
		if err != nil {
			return nil, err
		}
		local := labelTok.Lexeme
		if p.curIs(token.ASSIGN) {
			p.advance()
			nameTok, err := p.expect(token.LOWER_IDENT)
			if err != nil {
				return nil, err
			}
			local = nameTok.Lexeme
		}
		labels = append(labels, ast.RecLabel{Label: labelTok.Lexeme, Name: local})

		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.RecArg{Pos: pos, Labels: labels}, nil
}

// parseLambdaBinder parses one binder position in a lambda's binder
// list: either a bare Bind, or a parenthesised annotated one `(b : T)`.
// It returns the Bind and, when annotated, the parsed type (nil otherwise).
func (p *Parser) parseLambdaBinder() (ast.Bind, ast.Type, error) {
	if p.curIs(token.LPAREN) && p.startsAnnotatedBinder() {
		p.advance() // '('
		b, err := p.parseBind()
		if err != nil {
			return nil, nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, nil, err
		}
		ty, err := p.parseAnnotation()
		if err != nil {
			return nil, nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, nil, err
		}
		return b, ty, nil
	}
	b, err := p.parseBind()
	return b, nil, err
}

// startsAnnotatedBinder looks past the '(' to see whether this
// parenthesised group opens an annotated binder `(b : T)` rather than a
// parenthesised sub-expression/section - distinguished by the colon
// following a bare binder before any operator could appear.
func (p *Parser) startsAnnotatedBinder() bool {
	save := p.checkpoint()
	defer p.restore(save)
	p.advance() // '('
	if _, err := p.parseBind(); err != nil {
		return false
	}
	return p.curIs(token.COLON)
}

// parseLambda parses `\b1 b2 ... -> body`, left-folding multiple
// binders into nested Lam/AnnLam per spec.md §4.2.
func (p *Parser) parseLambda() (ast.Expr, error) {
	pos := p.cur().Pos
	p.advance() // '\'

	type binderSpec struct {
		bind ast.Bind
		ty   ast.Type
	}
	var binders []binderSpec
	for !p.curIs(token.ARROW) {
		b, ty, err := p.parseLambdaBinder()
		if err != nil {
			return nil, err
		}
		binders = append(binders, binderSpec{b, ty})
	}
	if len(binders) == 0 {
		return nil, diagnostics.NewParseError(pos, "lambda requires at least one binder")
	}
	if _, err := p.expect(token.ARROW); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	for i := len(binders) - 1; i >= 0; i-- {
		bs := binders[i]
		if bs.ty != nil {
			body = &ast.AnnLam{Pos: pos, Bind: bs.bind, Type: bs.ty, Body: body}
		} else {
			body = &ast.Lam{Pos: pos, Bind: bs.bind, Body: body}
		}
	}
	return body, nil
}

// parseLet parses `let b1 = e1 ; b2 = e2 ; ... in body`, right-folding
// the binding list into nested Lets (so each later binding's value is in
// the scope of the earlier bindings' names).
func (p *Parser) parseLet() (ast.Expr, error) {
	pos := p.cur().Pos
	p.advance() // 'let'

	type bindingSpec struct {
		bind  ast.Bind
		ty    ast.Type
		value ast.Expr
	}
	var bindings []bindingSpec
	for {
		var b ast.Bind
		var ty ast.Type
		var err error
		if p.curIs(token.LPAREN) && p.startsAnnotatedBinder() {
			p.advance()
			b, err = p.parseBind()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
			ty, err = p.parseAnnotation()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
		} else {
			b, err = p.parseBind()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.ASSIGN); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, bindingSpec{b, ty, value})

		if p.curIs(token.SEMI) {
			p.advance()
			continue
		}
		break
	}

	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	for i := len(bindings) - 1; i >= 0; i-- {
		bs := bindings[i]
		if bs.ty != nil {
			body = &ast.AnnLet{Pos: pos, Bind: bs.bind, Type: bs.ty, Value: bs.value, Body: body}
		} else {
			body = &ast.Let{Pos: pos, Bind: bs.bind, Value: bs.value, Body: body}
		}
	}
	return body, nil
}
