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
	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/token"
)

// parseCompoundStmt parses a «{ stmt... }» block, the current token being
// '{'. Each statement is parsed in turn; a declaration with several
// comma-separated declarators (e.g. «int a, *b = &a;») expands to one
// DeclStmt per declarator, in source order.
func (p *Parser) parseCompoundStmt() (*ast.CompoundStmt, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.LCurlyBrace); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for p.cur.Kind != token.RCurlyBrace {
		next, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, next...)
	}
	if _, err := p.expect(token.RCurlyBrace); err != nil {
		return nil, err
	}
	return ast.NewCompoundStmt(pos, stmts), nil
}

// parseStatement parses one source statement, returning one or more
// ast.Stmt (more than one only for a multi-declarator local declaration).
func (p *Parser) parseStatement() ([]ast.Stmt, error) {
	switch p.cur.Kind {
	case token.LCurlyBrace:
		body, err := p.parseCompoundStmt()
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{body}, nil
	case token.If:
		s, err := p.parseIfStmt()
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{s}, nil
	case token.While:
		s, err := p.parseWhileStmt()
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{s}, nil
	case token.For:
		s, err := p.parseForStmt()
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{s}, nil
	case token.Switch:
		s, err := p.parseSwitchStmt()
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{s}, nil
	case token.Return:
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		var e ast.Expr
		if p.cur.Kind != token.Semicolon {
			var err error
			e, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
		return []ast.Stmt{ast.NewReturnStmt(pos, e)}, nil
	case token.Break:
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
		return []ast.Stmt{ast.NewBreakStmt(pos)}, nil
	case token.Continue:
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
		return []ast.Stmt{ast.NewContinueStmt(pos)}, nil
	case token.Semicolon:
		// An empty statement; swallow it and produce nothing, matching how
		// the original source's statement parser treats a bare ';'.
		if err := p.advance(); err != nil {
			return nil, err
		}
		return nil, nil
	case token.Typedef:
		return nil, p.errorf("typedef is not valid at statement scope")
	}
	if p.isDeclStart() {
		return p.parseLocalDeclaration()
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return []ast.Stmt{ast.NewExprStmt(e.Pos(), e)}, nil
}

// isDeclStart reports whether the current token can open a local
// declaration: any type-start token, or a storage-class/qualifier keyword
// that parseSpecifiers itself consumes.
func (p *Parser) isDeclStart() bool {
	if p.isTypeStart() {
		return true
	}
	return token.IsStorageClass(p.cur.Kind)
}

// parseLocalDeclaration parses «specifiers declarator [= init] (, declarator
// [= init])* ;» and expands it into one DeclStmt per declarator.
func (p *Parser) parseLocalDeclaration() ([]ast.Stmt, error) {
	pos := p.cur.Pos
	base, _, _, err := p.parseSpecifiers()
	if err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for {
		name, ty, err := p.parseDeclarator(base)
		if err != nil {
			return nil, err
		}
		var init ast.Expr
		if ok, err := p.accept(token.Assign); err != nil {
			return nil, err
		} else if ok {
			init, err = p.parseAssignment()
			if err != nil {
				return nil, err
			}
		}
		stmts = append(stmts, ast.NewDeclStmt(pos, name, ty, init))
		more, err := p.accept(token.Comma)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	if err := p.skipAttributesAndAsm(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseIfStmt() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPar); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPar); err != nil {
		return nil, err
	}
	body, err := p.parseSingleStatement()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if ok, err := p.accept(token.Else); err != nil {
		return nil, err
	} else if ok {
		els, err = p.parseSingleStatement()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIfStmt(pos, cond, body, els), nil
}

// parseSingleStatement parses a statement in a position that syntactically
// admits exactly one (an if/while/for body). A multi-declarator local
// declaration is wrapped in a synthesized CompoundStmt so the Stmt shape
// stays single-valued; this only changes shape, never scoping, since
// codegen already treats every CompoundStmt as its own lexical scope.
func (p *Parser) parseSingleStatement() (ast.Stmt, error) {
	pos := p.cur.Pos
	stmts, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	switch len(stmts) {
	case 0:
		return ast.NewCompoundStmt(pos, nil), nil
	case 1:
		return stmts[0], nil
	default:
		return ast.NewCompoundStmt(pos, stmts), nil
	}
}

func (p *Parser) parseWhileStmt() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPar); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPar); err != nil {
		return nil, err
	}
	body, err := p.parseSingleStatement()
	if err != nil {
		return nil, err
	}
	return ast.NewWhileStmt(pos, cond, body), nil
}

func (p *Parser) parseForStmt() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPar); err != nil {
		return nil, err
	}
	var init ast.Stmt
	if p.cur.Kind != token.Semicolon {
		if p.isDeclStart() {
			stmts, err := p.parseLocalDeclaration()
			if err != nil {
				return nil, err
			}
			init = ast.NewCompoundStmt(pos, stmts)
		} else {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.Semicolon); err != nil {
				return nil, err
			}
			init = ast.NewExprStmt(e.Pos(), e)
		}
	} else {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	var cond ast.Expr
	if p.cur.Kind != token.Semicolon {
		var err error
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	var iter ast.Expr
	if p.cur.Kind != token.RPar {
		var err error
		iter, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPar); err != nil {
		return nil, err
	}
	body, err := p.parseSingleStatement()
	if err != nil {
		return nil, err
	}
	return ast.NewForStmt(pos, init, cond, iter, body), nil
}

func (p *Parser) parseSwitchStmt() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPar); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPar); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LCurlyBrace); err != nil {
		return nil, err
	}
	var cases []*ast.SwitchCase
	var defaultStmts []ast.Stmt
	sawDefault := false
	for p.cur.Kind != token.RCurlyBrace {
		switch p.cur.Kind {
		case token.Case:
			if err := p.advance(); err != nil {
				return nil, err
			}
			caseCond, err := p.parseConstantExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.Colon); err != nil {
				return nil, err
			}
			stmts, err := p.parseCaseBody()
			if err != nil {
				return nil, err
			}
			cases = append(cases, &ast.SwitchCase{Cond: caseCond, Stmts: stmts})
		case token.Default:
			if sawDefault {
				return nil, p.errorf("switch statement has more than one default label")
			}
			sawDefault = true
			if err := p.advance(); err != nil {
				return nil, err
			}
			if _, err := p.expect(token.Colon); err != nil {
				return nil, err
			}
			stmts, err := p.parseCaseBody()
			if err != nil {
				return nil, err
			}
			defaultStmts = stmts
		default:
			return nil, p.errorf("expected case or default but found %v", p.cur.Kind)
		}
	}
	if _, err := p.expect(token.RCurlyBrace); err != nil {
		return nil, err
	}
	return ast.NewSwitchStmt(pos, cond, cases, defaultStmts), nil
}

// parseCaseBody parses the statements belonging to one case/default arm,
// stopping at the next case, default, or the closing '}' of the switch.
func (p *Parser) parseCaseBody() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for p.cur.Kind != token.Case && p.cur.Kind != token.Default && p.cur.Kind != token.RCurlyBrace {
		next, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, next...)
	}
	return stmts, nil
}
