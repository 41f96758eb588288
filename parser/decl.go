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

// declBody is one level of a C declarator, parsed independently of the base
// type it will eventually be folded onto. C declarators are not read in a
// single left-to-right pass: a leading run of pointers modifies the base
// type directly, while a trailing run of array/function suffixes wraps
// around that result from the inside out, and parentheses can nest another
// whole declarator in between. Rather than mutate a placeholder type while
// parsing (the original source's sentinel-type trick), this parser first
// records the shape of a declarator as a declBody tree and only builds the
// ast.Type afterward, in foldDeclBody, once the real base type is known.
type declBody struct {
	pointers []ast.Qualifiers // prefix '*' chunks, in source order
	name     string           // set when the core is a plain identifier
	nested   *declBody        // set when the core is '(' declarator ')'
	suffixes []declSuffix     // trailing [] and () chunks, in source order
}

type declSuffix interface{ isDeclSuffix() }

type arraySuffix struct{ Size ast.Expr }

func (arraySuffix) isDeclSuffix() {}

type funcSuffix struct {
	Params   []*ast.Param
	Variadic bool
}

func (funcSuffix) isDeclSuffix() {}

// parseDeclBody parses one declarator's shape: pointers, core, suffixes.
// The core may be empty (no identifier and no parens), which is how
// abstract declarators in parameter lists and type-names are represented.
func (p *Parser) parseDeclBody() (*declBody, error) {
	var db declBody
	for p.cur.Kind == token.Star {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var q ast.Qualifiers
		for {
			switch p.cur.Kind {
			case token.Const:
				q |= ast.QConst
			case token.Volatile:
				q |= ast.QVolatile
			case token.Restrict:
				q |= ast.QRestrict
			default:
				goto doneQuals
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	doneQuals:
		db.pointers = append(db.pointers, q)
	}

	if err := p.skipAttributesAndAsm(); err != nil {
		return nil, err
	}

	switch {
	case p.cur.Kind == token.LPar:
		if err := p.advance(); err != nil {
			return nil, err
		}
		nested, err := p.parseDeclBody()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPar); err != nil {
			return nil, err
		}
		db.nested = nested
	case p.cur.Kind == token.Identifier:
		db.name = p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	for {
		switch p.cur.Kind {
		case token.LSquareBrace:
			if err := p.advance(); err != nil {
				return nil, err
			}
			var size ast.Expr
			if p.cur.Kind != token.RSquareBrace {
				var err error
				size, err = p.parseAssignment()
				if err != nil {
					return nil, err
				}
			}
			if _, err := p.expect(token.RSquareBrace); err != nil {
				return nil, err
			}
			db.suffixes = append(db.suffixes, arraySuffix{size})
		case token.LPar:
			if err := p.advance(); err != nil {
				return nil, err
			}
			params, variadic, err := p.parseParamList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPar); err != nil {
				return nil, err
			}
			db.suffixes = append(db.suffixes, funcSuffix{params, variadic})
		default:
			if err := p.skipAttributesAndAsm(); err != nil {
				return nil, err
			}
			return &db, nil
		}
	}
}

// foldDeclBody applies db's pointers (forward source order: the first '*'
// parsed wraps base directly, each later one wraps the previous result, so
// in «int **x» the star nearer the base ends up as the innermost pointer)
// and then db's suffixes in REVERSE source order (the last suffix, farthest
// from the identifier, wraps the pointer result first; the suffix nearest
// the identifier ends up outermost, matching how «T x[A][B]» means
// "array[A] of array[B] of T").
// If db wraps a parenthesized nested declarator, the type built so far is
// fed back in as the new base for that inner declarator — this is what
// lets «int (*fptr)(void)» parse as "pointer to function returning int"
// instead of "function returning pointer to int".
func foldDeclBody(db *declBody, base ast.Type) (string, ast.Type) {
	t := base
	for _, q := range db.pointers {
		t = ast.NewPointer(t, q)
	}
	for i := len(db.suffixes) - 1; i >= 0; i-- {
		switch s := db.suffixes[i].(type) {
		case arraySuffix:
			t = ast.NewArray(t, s.Size, 0)
		case funcSuffix:
			t = ast.NewFunction(t, s.Params, s.Variadic)
		}
	}
	if db.nested != nil {
		return foldDeclBody(db.nested, t)
	}
	return db.name, t
}

// parseDeclarator parses a (possibly abstract) declarator and folds it onto
// base, returning the declared name (empty for an abstract declarator) and
// its full type.
func (p *Parser) parseDeclarator(base ast.Type) (string, ast.Type, error) {
	db, err := p.parseDeclBody()
	if err != nil {
		return "", nil, err
	}
	name, ty := foldDeclBody(db, base)
	return name, ty, nil
}

// parseParamList parses a function declarator's parameter list, the
// current token being whatever follows the already-consumed '('. A bare
// «(void)» is zero parameters, not one void-typed parameter; a bare «()» is
// an old-style unspecified parameter list, treated the same as «(void)»
// since this compiler has no K&R call-site checking to relax.
func (p *Parser) parseParamList() ([]*ast.Param, bool, error) {
	if p.cur.Kind == token.RPar {
		return nil, false, nil
	}
	if p.cur.Kind == token.Void {
		// Lookahead-free special case: "(void)" alone means no params, but
		// "(void *p)" is a real parameter, so only swallow the bare form.
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		if p.cur.Kind == token.RPar {
			return nil, false, nil
		}
		base := ast.NewBuiltin(ast.Void, 0)
		name, ty, err := p.parseDeclarator(base)
		if err != nil {
			return nil, false, err
		}
		params := []*ast.Param{{Name: name, Type: ty}}
		return p.parseMoreParams(params)
	}

	var params []*ast.Param
	for {
		if p.cur.Kind == token.Ellipsis {
			if err := p.advance(); err != nil {
				return nil, false, err
			}
			return params, true, nil
		}
		base, _, _, err := p.parseSpecifiers()
		if err != nil {
			return nil, false, err
		}
		name, ty, err := p.parseDeclarator(base)
		if err != nil {
			return nil, false, err
		}
		params = append(params, &ast.Param{Name: name, Type: ty})
		more, err := p.accept(token.Comma)
		if err != nil {
			return nil, false, err
		}
		if !more {
			return params, false, nil
		}
	}
}

func (p *Parser) parseMoreParams(params []*ast.Param) ([]*ast.Param, bool, error) {
	more, err := p.accept(token.Comma)
	if err != nil {
		return nil, false, err
	}
	if !more {
		return params, false, nil
	}
	for {
		if p.cur.Kind == token.Ellipsis {
			if err := p.advance(); err != nil {
				return nil, false, err
			}
			return params, true, nil
		}
		base, _, _, err := p.parseSpecifiers()
		if err != nil {
			return nil, false, err
		}
		name, ty, err := p.parseDeclarator(base)
		if err != nil {
			return nil, false, err
		}
		params = append(params, &ast.Param{Name: name, Type: ty})
		again, err := p.accept(token.Comma)
		if err != nil {
			return nil, false, err
		}
		if !again {
			return params, false, nil
		}
	}
}

// parseTypeName parses a type-name: a specifier sequence followed by an
// optional abstract declarator, used by casts, sizeof/_Alignof, and
// compound literals.
func (p *Parser) parseTypeName() (ast.Type, error) {
	base, _, _, err := p.parseSpecifiers()
	if err != nil {
		return nil, err
	}
	_, ty, err := p.parseDeclarator(base)
	if err != nil {
		return nil, err
	}
	return ty, nil
}
