package parser

import (
	"github.com/5l1v3r1/Expresso/internal/diagnostics"
	"github.com/5l1v3r1/Expresso/internal/token"
	"github.com/5l1v3r1/Expresso/internal/typesystem"
)

// parseForallType parses `forall a b c. (C1, C2, ...) => T`, per
// spec.md §4.3. The constraint tuple is optional and, when present, is
// disambiguated from a parenthesised body type by trying it first and
// backtracking to a plain body parse if no `=>` follows the close paren.
func (p *Parser) parseForallType() (typesystem.Type, error) {
	pos := p.cur().Pos
	p.advance() // 'forall'

	var names []string
	for p.curIs(token.LOWER_IDENT) {
		names = append(names, p.advance().Lexeme)
	}
	if len(names) == 0 {
		return nil, diagnostics.NewParseError(pos, "forall requires at least one bound type variable")
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}

	for _, n := range names {
		tv := p.supply.FreshWith(pos, n, typesystem.Star, typesystem.Bound, typesystem.NoConstraint())
		p.boundList = append(p.boundList, tv)
		p.boundVars[n] = len(p.boundList) - 1
	}

	if p.curIs(token.LPAREN) {
		cp := p.checkpoint()
		if err := p.tryParseConstraintTuple(names); err != nil {
			p.restore(cp)
		}
	}

	body, err := p.parseFunType()
	if err != nil {
		return nil, err
	}

	vars := make([]typesystem.TyVar, len(names))
	for i, n := range names {
		vars[i] = p.boundList[p.boundVars[n]]
	}
	return typesystem.TForAll{P: pos, Vars: vars, Type: body}, nil
}

// tryParseConstraintTuple attempts to consume `(C1, C2, ...) =>`. It
// returns an error (leaving the token position meaningless to the
// caller, which restores its checkpoint) if what follows the opening
// paren does not parse as a constraint list followed by `=>` - in that
// case the parenthesised text was actually the start of the body type.
func (p *Parser) tryParseConstraintTuple(boundNames []string) error {
	allowed := make(map[string]bool, len(boundNames))
	for _, n := range boundNames {
		allowed[n] = true
	}

	p.advance() // '('
	if !p.curIs(token.RPAREN) {
		for {
			if err := p.parseOneConstraint(allowed); err != nil {
				return err
			}
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return err
	}
	if _, err := p.expect(token.FATARROW); err != nil {
		return err
	}
	return nil
}

func (p *Parser) parseOneConstraint(allowed map[string]bool) error {
	switch p.cur().Type {
	case token.EQCLASS, token.ORDCLASS, token.NUMCLASS:
		class := classFor(p.cur().Type)
		p.advance()
		nameTok, err := p.expect(token.LOWER_IDENT)
		if err != nil {
			return err
		}
		if !allowed[nameTok.Lexeme] {
			return diagnostics.NewAnnotationError(nameTok.Pos, "constraint refers to unbound type variable %s", nameTok.Lexeme)
		}
		i := p.boundVars[nameTok.Lexeme]
		old := p.boundList[i]
		if old.VarKind != typesystem.Star {
			return diagnostics.NewAnnotationError(nameTok.Pos, "class constraint on a row variable %s", nameTok.Lexeme)
		}
		old.Constraint = typesystem.ClassConstraint(class)
		p.boundList[i] = old
		return nil

	case token.LOWER_IDENT:
		nameTok := p.advance()
		if !allowed[nameTok.Lexeme] {
			return diagnostics.NewAnnotationError(nameTok.Pos, "constraint refers to unbound type variable %s", nameTok.Lexeme)
		}
		if _, err := p.expect(token.BACKSLASH); err != nil {
			return err
		}
		labelTok, err := p.expect(token.LOWER_IDENT)
		if err != nil {
			return err
		}
		i := p.boundVars[nameTok.Lexeme]
		old := p.boundList[i]
		old.VarKind = typesystem.Row
		old.Constraint = typesystem.UnionLacks(old.Constraint, typesystem.LacksConstraint(labelTok.Lexeme))
		p.boundList[i] = old
		return nil

	default:
		return diagnostics.NewParseError(p.cur().Pos, "expected a class or lacks constraint, got %s", p.cur().Type)
	}
}

func classFor(t token.Type) typesystem.ClassName {
	switch t {
	case token.ORDCLASS:
		return typesystem.ClassOrd
	case token.NUMCLASS:
		return typesystem.ClassNum
	default:
		return typesystem.ClassEq
	}
}

// parseFunType parses a right-associative `->` chain over application types.
func (p *Parser) parseFunType() (typesystem.Type, error) {
	lhs, err := p.parseAppType()
	if err != nil {
		return nil, err
	}
	if p.curIs(token.ARROW) {
		p.advance()
		rhs, err := p.parseFunType()
		if err != nil {
			return nil, err
		}
		return typesystem.TFun{P: lhs.Pos(), Arg: lhs, Result: rhs}, nil
	}
	return lhs, nil
}

func (p *Parser) startsAtomType() bool {
	switch p.cur().Type {
	case token.LOWER_IDENT, token.UPPER_IDENT, token.WILDCARD, token.LPAREN, token.LBRACKET, token.LBRACE, token.LT:
		return true
	}
	return false
}

// parseAppType parses a synonym application: an UPPER_IDENT followed by
// zero or more juxtaposed atom types.
func (p *Parser) parseAppType() (typesystem.Type, error) {
	base, err := p.parseAtomType()
	if err != nil {
		return nil, err
	}
	syn, ok := base.(typesystem.TSynonym)
	if !ok {
		return base, nil
	}
	var args []typesystem.Type
	for p.startsAtomType() {
		a, err := p.parseAtomType()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	syn.Args = args
	return syn, nil
}

func (p *Parser) parseAtomType() (typesystem.Type, error) {
	tok := p.cur()
	switch tok.Type {
	case token.LOWER_IDENT:
		p.advance()
		tv, err := p.typeVarRef(tok.Lexeme, tok.Pos, typesystem.Star)
		if err != nil {
			return nil, err
		}
		return typesystem.TVar{Var: tv}, nil

	case token.WILDCARD:
		p.advance()
		tv := p.supply.FreshWith(tok.Pos, "_", typesystem.Star, typesystem.Wildcard, typesystem.NoConstraint())
		return typesystem.TVar{Var: tv}, nil

	case token.UPPER_IDENT:
		p.advance()
		switch tok.Lexeme {
		case "Int":
			return typesystem.TInt(tok.Pos), nil
		case "Dbl":
			return typesystem.TDbl(tok.Pos), nil
		case "Bool":
			return typesystem.TBool(tok.Pos), nil
		case "Char":
			return typesystem.TChar(tok.Pos), nil
		case "Text":
			return typesystem.TText(tok.Pos), nil
		default:
			return typesystem.TSynonym{P: tok.Pos, Name: tok.Lexeme}, nil
		}

	case token.LBRACKET:
		p.advance()
		elem, err := p.parseFunType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		return typesystem.TList{P: tok.Pos, Elem: elem}, nil

	case token.LPAREN:
		p.advance()
		inner, err := p.parseAnnotationBody()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil

	case token.LBRACE:
		return p.parseRecordType()

	case token.LT:
		return p.parseVariantType()

	default:
		return nil, diagnostics.NewParseError(tok.Pos, "expected a type, got %s %q", tok.Type, tok.Lexeme)
	}
}

// parseRowBody parses the shared `label:type, ... [| tail]` body used by
// both record and variant surface types, stopping just before close.
func (p *Parser) parseRowBody() ([]typesystem.RowField, typesystem.Type, error) {
	var fields []typesystem.RowField
	tail := typesystem.Type(typesystem.TRowEmpty{P: p.cur().Pos})

	if p.curIs(token.PIPE) {
		p.advance()
		tv, err := p.parseRowTailVar()
		if err != nil {
			return nil, nil, err
		}
		return fields, tv, nil
	}

	for p.curIs(token.LOWER_IDENT) || p.curIs(token.UPPER_IDENT) {
		labelTok := p.advance()
		if _, err := p.expect(token.COLON); err != nil {
			return nil, nil, err
		}
		fieldTy, err := p.parseFunType()
		if err != nil {
			return nil, nil, err
		}
		fields = append(fields, typesystem.RowField{Label: labelTok.Lexeme, Field: fieldTy})

		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		if p.curIs(token.PIPE) {
			p.advance()
			tv, err := p.parseRowTailVar()
			if err != nil {
				return nil, nil, err
			}
			return fields, tv, nil
		}
		break
	}
	return fields, tail, nil
}

func (p *Parser) parseRowTailVar() (typesystem.Type, error) {
	tok, err := p.expect(token.LOWER_IDENT)
	if err != nil {
		return nil, err
	}
	tv, err := p.typeVarRef(tok.Lexeme, tok.Pos, typesystem.Row)
	if err != nil {
		return nil, err
	}
	return typesystem.TVar{Var: tv}, nil
}

func (p *Parser) parseRecordType() (typesystem.Type, error) {
	pos := p.cur().Pos
	p.advance() // '{'
	fields, tail, err := p.parseRowBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return typesystem.TRecord{P: pos, Row: typesystem.MkRowType(tail, fields)}, nil
}

func (p *Parser) parseVariantType() (typesystem.Type, error) {
	pos := p.cur().Pos
	p.advance() // '<'
	fields, tail, err := p.parseRowBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.GT); err != nil {
		return nil, err
	}
	return typesystem.TVariant{P: pos, Row: typesystem.MkRowType(tail, fields)}, nil
}
