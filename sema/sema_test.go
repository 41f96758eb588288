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

package sema

import (
	"testing"

	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/token"
)

func TestNewSeedsSizeT(t *testing.T) {
	s := New()
	ty := s.LookupTypedef("size_t")
	if ty == nil {
		t.Fatal("size_t is not registered as a typedef")
	}
	b, ok := ty.(*ast.BuiltinType)
	if !ok || b.Kind != ast.UnsignedLong {
		t.Errorf("got %#v, want *ast.BuiltinType{Kind: UnsignedLong}", ty)
	}
}

func TestDefineTypedefRejectsRedefinition(t *testing.T) {
	s := New()
	if err := s.DefineTypedef(token.Pos{}, "myint", ast.NewBuiltin(ast.Int, 0)); err != nil {
		t.Fatalf("first definition failed: %v", err)
	}
	if err := s.DefineTypedef(token.Pos{}, "myint", ast.NewBuiltin(ast.Long, 0)); err == nil {
		t.Error("expected an error redefining a typedef")
	}
}

func TestFlattenResolvesNamedChain(t *testing.T) {
	s := New()
	must(t, s.DefineTypedef(token.Pos{}, "byte_t", ast.NewBuiltin(ast.UnsignedChar, 0)))
	must(t, s.DefineTypedef(token.Pos{}, "octet", ast.NewNamed("byte_t", 0)))

	flat := s.Flatten(ast.NewNamed("octet", ast.QConst))
	b, ok := flat.(*ast.BuiltinType)
	if !ok || b.Kind != ast.UnsignedChar {
		t.Fatalf("got %#v, want *ast.BuiltinType{Kind: UnsignedChar}", flat)
	}
	if !b.Quals().Has(ast.QConst) {
		t.Error("expected the const qualifier carried on the NamedType reference to survive flattening")
	}
}

func TestDeclareTagKeepsMostCompleteDefinition(t *testing.T) {
	s := New()
	fwd := ast.NewStruct("Point", nil, false, 0)
	must(t, s.DeclareTag(token.Pos{}, fwd))
	if got := s.LookupStruct("Point"); got.Members != nil {
		t.Fatalf("forward declaration should have no members, got %v", got.Members)
	}

	members := []*ast.Member{{Name: "x", Type: ast.NewBuiltin(ast.Int, 0)}, {Name: "y", Type: ast.NewBuiltin(ast.Int, 0)}}
	full := ast.NewStruct("Point", members, false, 0)
	must(t, s.DeclareTag(token.Pos{}, full))
	if got := s.LookupStruct("Point"); len(got.Members) != 2 {
		t.Fatalf("expected the complete definition to replace the forward declaration, got %v", got.Members)
	}

	if err := s.DeclareTag(token.Pos{}, full); err == nil {
		t.Error("expected a redefinition error declaring a second complete struct with the same tag")
	}
}

func TestDeclareTagRegistersEnumValues(t *testing.T) {
	s := New()
	values := []*ast.EnumValue{
		{Name: "A"},
		{Name: "B", Value: &ast.IntLit{Value: 3}},
		{Name: "C"},
	}
	must(t, s.DeclareTag(token.Pos{}, ast.NewEnum("Color", values, 0)))

	for name, want := range map[string]int64{"A": 0, "B": 3, "C": 4} {
		v, owner, ok := s.LookupEnumValue(name)
		if !ok {
			t.Fatalf("enum value %q was not registered", name)
		}
		if v != want {
			t.Errorf("%s: got %d, want %d", name, v, want)
		}
		if owner.Tag != "Color" {
			t.Errorf("%s: got owning enum %q, want Color", name, owner.Tag)
		}
	}
}

func TestDeclareGlobalRejectsRedefinition(t *testing.T) {
	s := New()
	def := &ast.GlobalVarDecl{Name: "x", Type: ast.NewBuiltin(ast.Int, 0), Init: &ast.IntLit{Value: 1}}
	must(t, s.DeclareGlobal(token.Pos{}, "x", def, true))

	redef := &ast.GlobalVarDecl{Name: "x", Type: ast.NewBuiltin(ast.Int, 0), Init: &ast.IntLit{Value: 2}}
	if err := s.DeclareGlobal(token.Pos{}, "x", redef, true); err == nil {
		t.Error("expected a redefinition error for a second definition of the same global")
	}
}

func TestDeclareGlobalAllowsDeclarationThenDefinition(t *testing.T) {
	s := New()
	decl := &ast.GlobalVarDecl{Name: "x", Type: ast.NewBuiltin(ast.Int, 0), IsExtern: true}
	must(t, s.DeclareGlobal(token.Pos{}, "x", decl, false))

	def := &ast.GlobalVarDecl{Name: "x", Type: ast.NewBuiltin(ast.Int, 0), Init: &ast.IntLit{Value: 1}}
	if err := s.DeclareGlobal(token.Pos{}, "x", def, true); err != nil {
		t.Errorf("a definition following a declaration-only entry should be accepted, got %v", err)
	}
	if s.LookupGlobal("x") != ast.TopLevel(def) {
		t.Error("LookupGlobal should return the definition once one has been recorded")
	}
}

func TestUsualArithmeticConversion(t *testing.T) {
	for _, tt := range []struct {
		a, b ast.BuiltinKind
		want ast.BuiltinKind
	}{
		{ast.Int, ast.Int, ast.Int},
		{ast.Int, ast.Long, ast.Long},
		{ast.UnsignedInt, ast.Int, ast.UnsignedInt},
		{ast.Int, ast.UnsignedLong, ast.UnsignedLong},
		{ast.Char, ast.Short, ast.Short},
	} {
		if got := UsualArithmeticConversion(tt.a, tt.b); got != tt.want {
			t.Errorf("UsualArithmeticConversion(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSizeOfStructLayout(t *testing.T) {
	s := New()
	// struct { char c; int i; } packs to 8 bytes on a 4-byte-aligned int
	// following a 1-byte char: 3 bytes of padding before i.
	members := []*ast.Member{
		{Name: "c", Type: ast.NewBuiltin(ast.Char, 0)},
		{Name: "i", Type: ast.NewBuiltin(ast.Int, 0)},
	}
	sz, err := s.SizeOf(token.Pos{}, ast.NewStruct("", members, false, 0))
	if err != nil {
		t.Fatal(err)
	}
	if sz != 8 {
		t.Errorf("got size %d, want 8", sz)
	}
}

func TestSizeOfUnionIsMaxMember(t *testing.T) {
	s := New()
	members := []*ast.Member{
		{Name: "c", Type: ast.NewBuiltin(ast.Char, 0)},
		{Name: "d", Type: ast.NewBuiltin(ast.Double, 0)},
	}
	sz, err := s.SizeOf(token.Pos{}, ast.NewUnion("", members, false, 0))
	if err != nil {
		t.Fatal(err)
	}
	if sz != 8 {
		t.Errorf("got size %d, want 8", sz)
	}
}

func TestCompatibleIgnoresQualsWhenAsked(t *testing.T) {
	s := New()
	a := ast.NewBuiltin(ast.Int, ast.QConst)
	b := ast.NewBuiltin(ast.Int, 0)
	if s.Compatible(a, b, false) {
		t.Error("expected const int and int to be incompatible when qualifiers are compared")
	}
	if !s.Compatible(a, b, true) {
		t.Error("expected const int and int to be compatible when qualifiers are ignored")
	}
}

func TestConstEvalArithmetic(t *testing.T) {
	s := New()
	// (2 + 3) << 1 == 10
	expr := &ast.BinOp{
		Op: ast.BinShl,
		LHS: &ast.BinOp{
			Op:  ast.BinAdd,
			LHS: &ast.IntLit{Value: 2},
			RHS: &ast.IntLit{Value: 3},
		},
		RHS: &ast.IntLit{Value: 1},
	}
	v, err := s.ConstEval(expr, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v.Int() != 10 {
		t.Errorf("got %d, want 10", v.Int())
	}
}

func TestConstEvalSizeofType(t *testing.T) {
	s := New()
	expr := &ast.SizeOfExpr{Type: ast.NewBuiltin(ast.Long, 0)}
	v, err := s.ConstEval(expr, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v.Int() != 8 {
		t.Errorf("got %d, want 8", v.Int())
	}
}

func TestConstEvalRejectsLocalDeclRef(t *testing.T) {
	s := New()
	locals := map[string]ast.Type{"x": ast.NewBuiltin(ast.Int, 0)}
	if _, err := s.ConstEval(&ast.DeclRef{Name: "x"}, locals); err == nil {
		t.Error("a local variable reference must never be a compile-time constant")
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
