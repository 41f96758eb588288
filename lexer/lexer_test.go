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

package lexer

import (
	"testing"

	"github.com/PiJoules/c-sub000/token"
)

func lexAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New(src)
	var toks []token.Token
	for {
		tok, err := l.Lex()
		if err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Kind == token.Eof {
			return toks
		}
	}
}

func TestLexPunctuationAndOperators(t *testing.T) {
	want := []token.Kind{
		token.Arrow, token.Inc, token.AddAssign, token.Add,
		token.LShiftAssign, token.LShift, token.Le,
		token.LogicalAnd, token.Ampersand, token.Ellipsis, token.Dot,
		token.Eof,
	}
	got := lexAll(t, "-> ++ += + <<= << <= && & ... .")
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(got), len(want), got)
	}
	for i, k := range want {
		if got[i].Kind != k {
			t.Errorf("token %d: got %v, want %v", i, got[i].Kind, k)
		}
	}
}

func TestLexMalformedEllipsis(t *testing.T) {
	l := New("..x")
	if _, err := l.Lex(); err == nil {
		t.Fatalf("expected an error for a 2-dot ellipsis")
	}
}

func TestLexStringLiteralEscapes(t *testing.T) {
	toks := lexAll(t, `"a\nb\t\"c\\"`)
	if toks[0].Kind != token.StringLiteral {
		t.Fatalf("got kind %v, want StringLiteral", toks[0].Kind)
	}
	want := "\"a\nb\t\"c\\\""
	if toks[0].Lexeme != want {
		t.Errorf("got lexeme %q, want %q", toks[0].Lexeme, want)
	}
}

func TestLexIntegerLiterals(t *testing.T) {
	for _, tt := range []struct {
		src  string
		want string
	}{
		{"123", "123"},
		{"0x1F", "0x1F"},
		{"0X1f", "0X1f"},
		{"10u", "10u"},
		{"10l", "10l"},
		{"10ll", "10ll"},
		{"10ul", "10ul"},
	} {
		toks := lexAll(t, tt.src)
		if toks[0].Kind != token.IntLiteral {
			t.Fatalf("%s: got kind %v, want IntLiteral", tt.src, toks[0].Kind)
		}
		if toks[0].Lexeme != tt.want {
			t.Errorf("%s: got lexeme %q, want %q", tt.src, toks[0].Lexeme, tt.want)
		}
	}
}

func TestLexKeywordsIncludingGCCSpellings(t *testing.T) {
	for _, tt := range []struct {
		src  string
		want token.Kind
	}{
		{"struct", token.Struct},
		{"__restrict", token.Restrict},
		{"__asm__", token.Asm},
		{"__inline", token.Inline},
		{"__attribute__", token.Attribute},
		{"__extension__", token.Extension},
		{"__builtin_va_list", token.BuiltinVAList},
		{"__PRETTY_FUNCTION__", token.PrettyFunction},
		{"__float128", token.Float128},
		{"_Complex", token.Complex},
		{"true", token.True},
		{"false", token.False},
		{"my_typedef_name", token.Identifier},
	} {
		toks := lexAll(t, tt.src)
		if toks[0].Kind != tt.want {
			t.Errorf("%s: got kind %v, want %v", tt.src, toks[0].Kind, tt.want)
		}
	}
}

func TestLexCommentsAreSkipped(t *testing.T) {
	toks := lexAll(t, "int /* comment */ x; // trailing\n")
	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	want := []token.Kind{token.Int, token.Identifier, token.Semicolon, token.Eof}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestLexPositions(t *testing.T) {
	l := New("int\nx")
	first, _ := l.Lex()
	if first.Pos.Line != 1 {
		t.Errorf("got line %d, want 1", first.Pos.Line)
	}
	second, _ := l.Lex()
	if second.Pos.Line != 2 {
		t.Errorf("got line %d, want 2", second.Pos.Line)
	}
}
