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

// ParseTranslationUnit parses every top-level node up to EOF. It is the
// sole public entry point into package parser; the driver calls it once
// per input file and then threads the returned nodes through Sema and the
// lowerer one at a time (spec §2: "data flows strictly forward").
func (p *Parser) ParseTranslationUnit() ([]ast.TopLevel, error) {
	var nodes []ast.TopLevel
	for p.cur.Kind != token.Eof {
		node, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// parseTopLevel parses one top-level construct. It returns a nil node (and
// nil error) for a bare ';', which the original source also silently
// accepts between declarations.
func (p *Parser) parseTopLevel() (ast.TopLevel, error) {
	switch p.cur.Kind {
	case token.Semicolon:
		return nil, p.advance()
	case token.Typedef:
		return p.parseTypedef()
	case token.StaticAssert:
		return p.parseStaticAssert()
	}

	pos := p.cur.Pos
	base, storage, isInline, err := p.parseSpecifiers()
	if err != nil {
		return nil, err
	}

	// A bare tag declaration with no declarator, e.g. «struct Foo { ... };»
	// or «enum E { ... };», is itself the top-level node.
	if p.cur.Kind == token.Semicolon {
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch t := base.(type) {
		case *ast.StructType:
			return ast.NewStructDecl(pos, t), nil
		case *ast.UnionType:
			return ast.NewUnionDecl(pos, t), nil
		case *ast.EnumType:
			return ast.NewEnumDecl(pos, t), nil
		default:
			return nil, p.errorf("expected a declarator after type specifiers")
		}
	}

	if storage == scAuto {
		return nil, p.errorf("'auto' storage class is not valid at file scope")
	}

	name, ty, err := p.parseDeclarator(base)
	if err != nil {
		return nil, err
	}

	if fn, ok := ty.(*ast.FunctionType); ok {
		if p.cur.Kind == token.LCurlyBrace {
			paramNames := make([]string, len(fn.Params))
			for i, param := range fn.Params {
				paramNames[i] = param.Name
			}
			body, err := p.parseCompoundStmt()
			if err != nil {
				return nil, err
			}
			return ast.NewFunctionDef(pos, name, fn, paramNames, body, storage == scStatic, isInline), nil
		}
		if err := p.skipAttributesAndAsm(); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
		return ast.NewGlobalVarDecl(pos, name, fn, nil, storage == scStatic, storage == scExtern), nil
	}

	var init ast.Expr
	if ok, err := p.accept(token.Assign); err != nil {
		return nil, err
	} else if ok {
		init, err = p.parseInitializer()
		if err != nil {
			return nil, err
		}
	}
	if err := p.skipAttributesAndAsm(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return ast.NewGlobalVarDecl(pos, name, ty, init, storage == scStatic, storage == scExtern), nil
}

// parseInitializer parses the right-hand side of «= ...» in a variable
// declaration: either a brace-enclosed initializer list or a plain
// assignment-expression. It is the same production the expression parser
// reaches via parsePrimary for a nested «{...}»; the top-level entry point
// is separate only because a file-scope initializer never sees a leading
// '(' lexer-hack ambiguity.
func (p *Parser) parseInitializer() (ast.Expr, error) {
	if p.cur.Kind == token.LCurlyBrace {
		return p.parseInitializerList()
	}
	return p.parseAssignment()
}

// parseTypedef parses «typedef type-specifiers declarator ;» and records
// the declared name in the parser's typedef set, the syntactic half of the
// lexer hack (see isTypeStart).
func (p *Parser) parseTypedef() (ast.TopLevel, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	base, _, _, err := p.parseSpecifiers()
	if err != nil {
		return nil, err
	}
	name, ty, err := p.parseDeclarator(base)
	if err != nil {
		return nil, err
	}
	if err := p.skipAttributesAndAsm(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	p.addTypedefName(name)
	return ast.NewTypedefDecl(pos, name, ty), nil
}

// parseStaticAssert parses «_Static_assert(cond[, "message"]);».
func (p *Parser) parseStaticAssert() (ast.TopLevel, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPar); err != nil {
		return nil, err
	}
	cond, err := p.parseConstantExpr()
	if err != nil {
		return nil, err
	}
	var message string
	if ok, err := p.accept(token.Comma); err != nil {
		return nil, err
	} else if ok {
		tok, err := p.expect(token.StringLiteral)
		if err != nil {
			return nil, err
		}
		message = tok.Lexeme
	}
	if _, err := p.expect(token.RPar); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return ast.NewStaticAssertDecl(pos, cond, message), nil
}
