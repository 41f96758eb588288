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

// parseStructOrUnion parses a «struct|union [tag] [{ members }]»
// specifier, the current token already being the struct/union keyword.
// A body-less reference («struct Foo») yields a StructType/UnionType with
// a nil Members slice; Sema resolves it against the tag namespace.
func (p *Parser) parseStructOrUnion(isUnion bool) (ast.Type, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.skipAttributesAndAsm(); err != nil {
		return nil, err
	}

	var tag string
	if p.cur.Kind == token.Identifier {
		tag = p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if p.cur.Kind != token.LCurlyBrace {
		if isUnion {
			return ast.NewUnion(tag, nil, false, 0), nil
		}
		return ast.NewStruct(tag, nil, false, 0), nil
	}

	members, packed, err := p.parseMemberList()
	if err != nil {
		return nil, err
	}
	if isUnion {
		return ast.NewUnion(tag, members, packed, 0), nil
	}
	return ast.NewStruct(tag, members, packed, 0), nil
}

// parseMemberList parses the «{ member-decl... }» body of a struct or
// union, the current token being '{'. __attribute__((packed)) appearing
// anywhere in the body sets the returned packed flag, matching how the
// original source records it: as a property of the whole aggregate, not
// of one member.
func (p *Parser) parseMemberList() ([]*ast.Member, bool, error) {
	if _, err := p.expect(token.LCurlyBrace); err != nil {
		return nil, false, err
	}

	var members []*ast.Member
	packed := false
	for p.cur.Kind != token.RCurlyBrace {
		base, _, _, err := p.parseSpecifiers()
		if err != nil {
			return nil, false, err
		}
		for {
			name, ty, err := p.parseDeclarator(base)
			if err != nil {
				return nil, false, err
			}
			var bitfield ast.Expr
			if ok, err := p.accept(token.Colon); err != nil {
				return nil, false, err
			} else if ok {
				bitfield, err = p.parseConstantExpr()
				if err != nil {
					return nil, false, err
				}
			}
			members = append(members, &ast.Member{Name: name, Type: ty, Bitfield: bitfield})

			more, err := p.accept(token.Comma)
			if err != nil {
				return nil, false, err
			}
			if !more {
				break
			}
		}
		if err := p.skipAttributesAndAsm(); err != nil {
			return nil, false, err
		}
		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, false, err
		}
	}
	if err := p.skipAttributesAndAsm(); err != nil {
		return nil, false, err
	}
	if p.sawPackedAttribute {
		packed = true
		p.sawPackedAttribute = false
	}
	if _, err := p.expect(token.RCurlyBrace); err != nil {
		return nil, false, err
	}
	return members, packed, nil
}

// parseEnum parses an «enum [tag] [{ name [= value], ... }]» specifier,
// the current token already being the enum keyword.
func (p *Parser) parseEnum() (ast.Type, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.skipAttributesAndAsm(); err != nil {
		return nil, err
	}

	var tag string
	if p.cur.Kind == token.Identifier {
		tag = p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if p.cur.Kind != token.LCurlyBrace {
		return ast.NewEnum(tag, nil, 0), nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var values []*ast.EnumValue
	for p.cur.Kind != token.RCurlyBrace {
		name, err := p.expect(token.Identifier)
		if err != nil {
			return nil, err
		}
		var value ast.Expr
		if ok, err := p.accept(token.Assign); err != nil {
			return nil, err
		} else if ok {
			value, err = p.parseConstantExpr()
			if err != nil {
				return nil, err
			}
		}
		values = append(values, &ast.EnumValue{Name: name.Lexeme, Value: value})

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
	return ast.NewEnum(tag, values, 0), nil
}
