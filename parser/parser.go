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

// Package parser implements a recursive-descent parser converting a
// token.Token stream into the ast package's trees: expressions, the C
// declarator grammar (the "hard part": see declarator.go), statements, and
// top-level declarations.
package parser

import (
	"fmt"

	"github.com/PiJoules/c-sub000/token"
)

// tokenSource is the minimal contract package parser needs from package
// lexer, kept narrow so tests can feed a parser from a canned token slice.
type tokenSource interface {
	Lex() (token.Token, error)
}

// Error is a parse error: an expected-vs-found token mismatch or an
// unrecognized top-level construct, always carrying a source location.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// Parser holds all the state needed to parse one translation unit: the
// token stream, one token of lookahead, and the in-flight typedef name set
// used for the lexer hack (see isTypeStart).
type Parser struct {
	lex      tokenSource
	cur      token.Token
	typedefs map[string]bool

	// sawPackedAttribute is set by skipAttributesAndAsm whenever it consumes
	// an __attribute__((packed, ...)) and cleared by whoever consumes it;
	// see parseMemberList.
	sawPackedAttribute bool
}

// New creates a Parser reading tokens from lex.
func New(lex tokenSource) (*Parser, error) {
	p := &Parser{lex: lex, typedefs: make(map[string]bool)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	tok, err := p.lex.Lex()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &Error{p.cur.Pos, fmt.Sprintf(format, args...)}
}

// expect consumes the current token if it has kind k, returning that token;
// otherwise it returns an *Error describing the expected-vs-found
// mismatch.
func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.cur.Kind != k {
		return token.Token{}, p.errorf("expected %v but found %v (%q)", k, p.cur.Kind, p.cur.Lexeme)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

// accept consumes and returns true if the current token has kind k,
// otherwise it leaves the stream untouched and returns false.
func (p *Parser) accept(k token.Kind) (bool, error) {
	if p.cur.Kind != k {
		return false, nil
	}
	if err := p.advance(); err != nil {
		return false, err
	}
	return true, nil
}

// addTypedefName records name as a known type name for the remainder of
// this parse, the syntactic half of the lexer hack: once a typedef's
// declarator is parsed, its name must immediately be recognized as a type
// start by every subsequent declaration in the same translation unit.
func (p *Parser) addTypedefName(name string) { p.typedefs[name] = true }

// isTypedefName reports whether name has been registered by a typedef
// parsed earlier in this translation unit.
func (p *Parser) isTypedefName(name string) bool { return p.typedefs[name] }

// isTypeStart reports whether the current token could begin a type: a
// builtin keyword, a qualifier, struct/union/enum, or an identifier present
// in the typedef set. Storage-class keywords are not type starts. This
// single check disambiguates both sizeof/alignof's argument and the
// cast-vs-parenthesized-expression "lexer hack" in this package's
// cast/paren-expr grammar.
func (p *Parser) isTypeStart() bool {
	switch p.cur.Kind {
	case token.Struct, token.Union, token.Enum:
		return true
	}
	if token.IsBuiltinType(p.cur.Kind) || token.IsQualifier(p.cur.Kind) {
		return true
	}
	if p.cur.Kind == token.Identifier {
		return p.isTypedefName(p.cur.Lexeme)
	}
	return false
}

// skipAttributesAndAsm consumes and discards GCC __attribute__((...)),
// __asm__(...) labels, and __extension__ markers wherever they may appear
// at declarator boundaries (just before ',', '=', or ';').
func (p *Parser) skipAttributesAndAsm() error {
	for {
		switch p.cur.Kind {
		case token.Attribute:
			if err := p.advance(); err != nil {
				return err
			}
			if _, err := p.expect(token.LPar); err != nil {
				return err
			}
			if err := p.skipAttributeArgs(); err != nil {
				return err
			}
		case token.Asm:
			if err := p.advance(); err != nil {
				return err
			}
			if _, err := p.expect(token.LPar); err != nil {
				return err
			}
			if err := p.skipBalancedParens(); err != nil {
				return err
			}
		case token.Extension:
			if err := p.advance(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// skipBalancedParens consumes tokens up to and including the matching ')'
// of an already-consumed '('; depth starts at one open paren.
func (p *Parser) skipBalancedParens() error {
	depth := 1
	for depth > 0 {
		switch p.cur.Kind {
		case token.LPar:
			depth++
		case token.RPar:
			depth--
		case token.Eof:
			return p.errorf("unexpected end of file inside attribute/asm parentheses")
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// skipAttributeArgs is skipBalancedParens specialized for
// __attribute__((...)) bodies: it records sawPackedAttribute when it spots
// the "packed" identifier anywhere inside, since that's the one attribute
// this compiler's layout computation acts on (see SPEC_FULL.md).
func (p *Parser) skipAttributeArgs() error {
	depth := 1
	for depth > 0 {
		switch p.cur.Kind {
		case token.LPar:
			depth++
		case token.RPar:
			depth--
		case token.Identifier:
			if p.cur.Lexeme == "packed" {
				p.sawPackedAttribute = true
			}
		case token.Eof:
			return p.errorf("unexpected end of file inside attribute/asm parentheses")
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}
