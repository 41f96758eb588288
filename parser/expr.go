// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

import (
	"strconv"
	"strings"

	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/token"
)

// parseExpr parses a full comma-expression, the loosest-binding production.
func (p *Parser) parseExpr() (ast.Expr, error) {
	e, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == token.Comma {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		e = ast.NewBinOp(pos, ast.BinComma, e, rhs)
	}
	return e, nil
}

// parseConstantExpr parses a constant-expression: a conditional-expression,
// per the grammar (no assignment or comma at this level).
func (p *Parser) parseConstantExpr() (ast.Expr, error) {
	return p.parseConditional()
}

var assignOps = map[token.Kind]ast.BinaryOp{
	token.Assign:       ast.BinAssign,
	token.MulAssign:    ast.BinMulAssign,
	token.DivAssign:    ast.BinDivAssign,
	token.ModAssign:    ast.BinModAssign,
	token.AddAssign:    ast.BinAddAssign,
	token.SubAssign:    ast.BinSubAssign,
	token.LShiftAssign: ast.BinShlAssign,
	token.RShiftAssign: ast.BinShrAssign,
	token.AndAssign:    ast.BinAndAssign,
	token.XorAssign:    ast.BinXorAssign,
	token.OrAssign:     ast.BinOrAssign,
}

func (p *Parser) parseAssignment() (ast.Expr, error) {
	pos := p.cur.Pos
	lhs, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	op, ok := assignOps[p.cur.Kind]
	if !ok {
		return lhs, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	rhs, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return ast.NewBinOp(pos, op, lhs, rhs), nil
}

func (p *Parser) parseConditional() (ast.Expr, error) {
	pos := p.cur.Pos
	cond, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.Question {
		return cond, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	els, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return ast.NewConditional(pos, cond, then, els), nil
}

// binaryLevel describes one left-associative precedence level: the set of
// token kinds accepted at this level mapped to their ast.BinaryOp, and the
// parser for the next tighter-binding level.
type binaryLevel struct {
	ops  map[token.Kind]ast.BinaryOp
	next func(*Parser) (ast.Expr, error)
}

func (p *Parser) parseBinaryLevel(lvl binaryLevel) (ast.Expr, error) {
	lhs, err := lvl.next(p)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := lvl.ops[p.cur.Kind]
		if !ok {
			return lhs, nil
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := lvl.next(p)
		if err != nil {
			return nil, err
		}
		lhs = ast.NewBinOp(pos, op, lhs, rhs)
	}
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	return p.parseBinaryLevel(binaryLevel{map[token.Kind]ast.BinaryOp{token.LogicalOr: ast.BinLogicalOr}, (*Parser).parseLogicalAnd})
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	return p.parseBinaryLevel(binaryLevel{map[token.Kind]ast.BinaryOp{token.LogicalAnd: ast.BinLogicalAnd}, (*Parser).parseBitOr})
}

func (p *Parser) parseBitOr() (ast.Expr, error) {
	return p.parseBinaryLevel(binaryLevel{map[token.Kind]ast.BinaryOp{token.Or: ast.BinBitOr}, (*Parser).parseBitXor})
}

func (p *Parser) parseBitXor() (ast.Expr, error) {
	return p.parseBinaryLevel(binaryLevel{map[token.Kind]ast.BinaryOp{token.Xor: ast.BinBitXor}, (*Parser).parseBitAnd})
}

func (p *Parser) parseBitAnd() (ast.Expr, error) {
	return p.parseBinaryLevel(binaryLevel{map[token.Kind]ast.BinaryOp{token.Ampersand: ast.BinBitAnd}, (*Parser).parseEquality})
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.parseBinaryLevel(binaryLevel{map[token.Kind]ast.BinaryOp{token.Eq: ast.BinEq, token.Ne: ast.BinNe}, (*Parser).parseRelational})
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	return p.parseBinaryLevel(binaryLevel{map[token.Kind]ast.BinaryOp{
		token.Lt: ast.BinLt, token.Gt: ast.BinGt, token.Le: ast.BinLe, token.Ge: ast.BinGe,
	}, (*Parser).parseShift})
}

func (p *Parser) parseShift() (ast.Expr, error) {
	return p.parseBinaryLevel(binaryLevel{map[token.Kind]ast.BinaryOp{token.LShift: ast.BinShl, token.RShift: ast.BinShr}, (*Parser).parseAdditive})
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.parseBinaryLevel(binaryLevel{map[token.Kind]ast.BinaryOp{token.Add: ast.BinAdd, token.Sub: ast.BinSub}, (*Parser).parseMultiplicative})
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.parseBinaryLevel(binaryLevel{map[token.Kind]ast.BinaryOp{
		token.Star: ast.BinMul, token.Div: ast.BinDiv, token.Mod: ast.BinMod,
	}, (*Parser).parseCast})
}

var unaryOps = map[token.Kind]ast.UnaryOp{
	token.Not:       ast.UnaryNot,
	token.BitNot:    ast.UnaryBitNot,
	token.Sub:       ast.UnaryNeg,
	token.Ampersand: ast.UnaryAddr,
	token.Star:      ast.UnaryDeref,
	token.Inc:       ast.UnaryPreInc,
	token.Dec:       ast.UnaryPreDec,
}

// parseCast is the entry point for cast-expression, which also handles the
// lexer-hack disambiguation of «( type-name )» from a parenthesized
// expression: having consumed '(', isTypeStart decides which production
// applies without any backtracking.
func (p *Parser) parseCast() (ast.Expr, error) {
	if p.cur.Kind == token.LPar {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isTypeStart() {
			ty, err := p.parseTypeName()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPar); err != nil {
				return nil, err
			}
			operand, err := p.parseCast()
			if err != nil {
				return nil, err
			}
			return ast.NewCast(pos, ty, operand), nil
		}
		if p.cur.Kind == token.LCurlyBrace {
			body, err := p.parseCompoundStmt()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPar); err != nil {
				return nil, err
			}
			return p.parsePostfixFrom(ast.NewStmtExpr(pos, body))
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPar); err != nil {
			return nil, err
		}
		return p.parsePostfixFrom(e)
	}
	return p.parseUnary()
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if op, ok := unaryOps[p.cur.Kind]; ok {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch op {
		case ast.UnaryPreInc, ast.UnaryPreDec:
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return ast.NewUnOp(pos, op, operand), nil
		default:
			operand, err := p.parseCast()
			if err != nil {
				return nil, err
			}
			return ast.NewUnOp(pos, op, operand), nil
		}
	}
	switch p.cur.Kind {
	case token.SizeOf:
		return p.parseSizeOrAlign(false)
	case token.AlignOf:
		return p.parseSizeOrAlign(true)
	}
	return p.parsePostfix()
}

// parseSizeOrAlign parses «sizeof unary-expr», «sizeof(type-name)»,
// «_Alignof(type-name)», or «_Alignof(unary-expr)» (GCC accepts the latter
// as an extension; this compiler follows suit for symmetry with sizeof).
func (p *Parser) parseSizeOrAlign(isAlign bool) (ast.Expr, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Kind == token.LPar {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isTypeStart() {
			ty, err := p.parseTypeName()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPar); err != nil {
				return nil, err
			}
			if isAlign {
				return ast.NewAlignOfExpr(pos, nil, ty), nil
			}
			return ast.NewSizeOfExpr(pos, nil, ty), nil
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPar); err != nil {
			return nil, err
		}
		operand, err := p.parsePostfixFrom(inner)
		if err != nil {
			return nil, err
		}
		if isAlign {
			return ast.NewAlignOfExpr(pos, operand, nil), nil
		}
		return ast.NewSizeOfExpr(pos, operand, nil), nil
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if isAlign {
		return ast.NewAlignOfExpr(pos, operand, nil), nil
	}
	return ast.NewSizeOfExpr(pos, operand, nil), nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfixFrom(e)
}

func (p *Parser) parsePostfixFrom(base ast.Expr) (ast.Expr, error) {
	for {
		pos := p.cur.Pos
		switch p.cur.Kind {
		case token.LSquareBrace:
			if err := p.advance(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RSquareBrace); err != nil {
				return nil, err
			}
			base = ast.NewIndexExpr(pos, base, idx)
		case token.LPar:
			if err := p.advance(); err != nil {
				return nil, err
			}
			var args []ast.Expr
			if p.cur.Kind != token.RPar {
				for {
					arg, err := p.parseAssignment()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					more, err := p.accept(token.Comma)
					if err != nil {
						return nil, err
					}
					if !more {
						break
					}
				}
			}
			if _, err := p.expect(token.RPar); err != nil {
				return nil, err
			}
			base = ast.NewCallExpr(pos, base, args)
		case token.Dot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(token.Identifier)
			if err != nil {
				return nil, err
			}
			base = ast.NewMemberAccess(pos, base, name.Lexeme, false)
		case token.Arrow:
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(token.Identifier)
			if err != nil {
				return nil, err
			}
			base = ast.NewMemberAccess(pos, base, name.Lexeme, true)
		case token.Inc:
			if err := p.advance(); err != nil {
				return nil, err
			}
			base = ast.NewUnOp(pos, ast.UnaryPostInc, base)
		case token.Dec:
			if err := p.advance(); err != nil {
				return nil, err
			}
			base = ast.NewUnOp(pos, ast.UnaryPostDec, base)
		default:
			return base, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.IntLiteral:
		lexeme := p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		return parseIntLiteral(pos, lexeme)
	case token.StringLiteral:
		var b strings.Builder
		for p.cur.Kind == token.StringLiteral {
			b.WriteString(strings.Trim(p.cur.Lexeme, `"`))
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		return ast.NewStringLit(pos, b.String()), nil
	case token.CharLiteral:
		lexeme := p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		trimmed := strings.Trim(lexeme, "'")
		return ast.NewCharLit(pos, trimmed[0]), nil
	case token.True:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewBoolLit(pos, true), nil
	case token.False:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewBoolLit(pos, false), nil
	case token.PrettyFunction:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewPrettyFunction(pos), nil
	case token.Identifier:
		name := p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewDeclRef(pos, name), nil
	case token.LCurlyBrace:
		return p.parseInitializerList()
	default:
		return nil, p.errorf("expected an expression but found %v (%q)", p.cur.Kind, p.cur.Lexeme)
	}
}

// parseInitializerList parses a brace-enclosed «{ elem, elem, ... }»
// initializer, the current token being '{'. Each element is an
// assignment-expression (never comma, so commas separate elements) with an
// optional «.name =» designator prefix.
func (p *Parser) parseInitializerList() (ast.Expr, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	var elems []*ast.InitializerElem
	for p.cur.Kind != token.RCurlyBrace {
		var designator string
		if p.cur.Kind == token.Dot {
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(token.Identifier)
			if err != nil {
				return nil, err
			}
			designator = name.Lexeme
			if _, err := p.expect(token.Assign); err != nil {
				return nil, err
			}
		}
		val, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		elems = append(elems, &ast.InitializerElem{Designator: designator, Value: val})
		more, err := p.accept(token.Comma)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	if _, err := p.expect(token.RCurlyBrace); err != nil {
		return nil, err
	}
	return ast.NewInitializerList(pos, elems), nil
}

// parseIntLiteral decodes an IntLiteral's lexeme (still carrying its 0x
// prefix and trailing u/l suffixes, as produced by the lexer) into its
// numeric value and resolved BuiltinKind, per spec §4.3's integer constant
// typing table: unsuffixed decimal fits the smallest of int/long/long long
// that holds it; a 'u' suffix forces unsigned; one or two 'l' force
// (unsigned) long/long long.
func parseIntLiteral(pos token.Pos, lexeme string) (ast.Expr, error) {
	body := lexeme
	unsigned := false
	longCount := 0
loop:
	for len(body) > 0 {
		switch body[len(body)-1] {
		case 'u', 'U':
			unsigned = true
			body = body[:len(body)-1]
		case 'l', 'L':
			longCount++
			body = body[:len(body)-1]
		default:
			break loop
		}
	}

	base := 10
	if strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X") {
		base = 16
		body = body[2:]
	}
	value, err := strconv.ParseUint(body, base, 64)
	if err != nil {
		return nil, &Error{pos, "malformed integer literal: " + err.Error()}
	}

	var kind ast.BuiltinKind
	switch {
	case longCount >= 2:
		kind = ast.LongLong
		if unsigned {
			kind = ast.UnsignedLongLong
		}
	case longCount == 1:
		kind = ast.Long
		if unsigned {
			kind = ast.UnsignedLong
		}
	case unsigned:
		kind = ast.UnsignedInt
		if value > 0xFFFFFFFF {
			kind = ast.UnsignedLong
		}
	default:
		kind = ast.Int
		if value > 0x7FFFFFFF {
			kind = ast.Long
		}
	}
	return ast.NewIntLit(pos, value, kind), nil
}
