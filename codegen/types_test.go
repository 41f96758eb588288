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

package codegen

import (
	"testing"

	"github.com/llir/llvm/ir/types"

	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/sema"
	"github.com/PiJoules/c-sub000/token"
)

func newModule(t *testing.T) (*Module, *sema.Sema) {
	t.Helper()
	s := sema.New()
	return NewModule("test", s, false), s
}

func TestLlvmTypeBuiltins(t *testing.T) {
	m, _ := newModule(t)
	for _, tt := range []struct {
		kind ast.BuiltinKind
		want types.Type
	}{
		{ast.Void, types.Void},
		{ast.Bool, types.I8},
		{ast.Char, types.I8},
		{ast.Int, types.I32},
		{ast.Long, types.I64},
		{ast.Float, types.Float},
		{ast.Double, types.Double},
	} {
		got, err := m.llvmType(token.Pos{}, ast.NewBuiltin(tt.kind, 0))
		if err != nil {
			t.Fatalf("%v: %v", tt.kind, err)
		}
		if got != tt.want {
			t.Errorf("%v: got %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestLlvmTypeVoidPointerIsI8Pointer(t *testing.T) {
	m, _ := newModule(t)
	got, err := m.llvmType(token.Pos{}, ast.NewPointer(ast.NewBuiltin(ast.Void, 0), 0))
	if err != nil {
		t.Fatal(err)
	}
	want := types.NewPointer(types.I8)
	if got.String() != want.String() {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLlvmTypeArrayOfKnownSize(t *testing.T) {
	m, _ := newModule(t)
	arr := ast.NewArray(ast.NewBuiltin(ast.Int, 0), &ast.IntLit{Value: 4}, 0)
	got, err := m.llvmType(token.Pos{}, arr)
	if err != nil {
		t.Fatal(err)
	}
	at, ok := got.(*types.ArrayType)
	if !ok {
		t.Fatalf("got %T, want *types.ArrayType", got)
	}
	if at.Len != 4 {
		t.Errorf("got length %d, want 4", at.Len)
	}
}

func TestLlvmAggregateStructSharesCachedType(t *testing.T) {
	m, s := newModule(t)
	members := []*ast.Member{{Name: "x", Type: ast.NewBuiltin(ast.Int, 0)}}
	must(t, s.DeclareTag(token.Pos{}, ast.NewStruct("Point", members, false, 0)))

	first, err := m.llvmType(token.Pos{}, ast.NewStruct("Point", nil, false, 0))
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.llvmType(token.Pos{}, ast.NewStruct("Point", nil, false, 0))
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("two references to the same struct tag should share one LLVM type")
	}
}

func TestLlvmTypeUnionIsByteArrayOfWidestMember(t *testing.T) {
	m, _ := newModule(t)
	members := []*ast.Member{
		{Name: "c", Type: ast.NewBuiltin(ast.Char, 0)},
		{Name: "d", Type: ast.NewBuiltin(ast.Double, 0)},
	}
	got, err := m.llvmType(token.Pos{}, ast.NewUnion("", members, false, 0))
	if err != nil {
		t.Fatal(err)
	}
	st, ok := got.(*types.StructType)
	if !ok || len(st.Fields) != 1 {
		t.Fatalf("got %#v, want a one-field struct", got)
	}
	arr, ok := st.Fields[0].(*types.ArrayType)
	if !ok || arr.Len != 8 {
		t.Fatalf("got field %#v, want [8 x i8]", st.Fields[0])
	}
}

func TestLlvmFuncType(t *testing.T) {
	m, _ := newModule(t)
	fn := ast.NewFunction(ast.NewBuiltin(ast.Int, 0), []*ast.Param{
		{Name: "a", Type: ast.NewBuiltin(ast.Int, 0)},
	}, false)
	got, err := m.llvmFuncType(token.Pos{}, fn)
	if err != nil {
		t.Fatal(err)
	}
	if got.RetType != types.I32 {
		t.Errorf("got return type %v, want i32", got.RetType)
	}
	if len(got.Params) != 1 || got.Params[0] != types.I32 {
		t.Errorf("got params %v, want [i32]", got.Params)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
