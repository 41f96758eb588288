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
	"testing"

	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/lexer"
)

func parseUnit(t *testing.T, src string) []ast.TopLevel {
	t.Helper()
	p, err := New(lexer.New(src))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	nodes, err := p.ParseTranslationUnit()
	if err != nil {
		t.Fatalf("ParseTranslationUnit(%q): %v", src, err)
	}
	return nodes
}

func TestParseTypedefAndGlobal(t *testing.T) {
	nodes := parseUnit(t, "typedef int myint;\nmyint x = 1;\n")
	if len(nodes) != 2 {
		t.Fatalf("got %d top-level nodes, want 2", len(nodes))
	}
	td, ok := nodes[0].(*ast.TypedefDecl)
	if !ok || td.Name != "myint" {
		t.Fatalf("node 0: got %#v, want a TypedefDecl named myint", nodes[0])
	}
	gv, ok := nodes[1].(*ast.GlobalVarDecl)
	if !ok || gv.Name != "x" {
		t.Fatalf("node 1: got %#v, want a GlobalVarDecl named x", nodes[1])
	}
	if _, ok := gv.Type.(*ast.NamedType); !ok {
		t.Errorf("x's type should reference the typedef name myint, got %T", gv.Type)
	}
}

func TestParseFunctionDefBody(t *testing.T) {
	nodes := parseUnit(t, `
int add(int a, int b) {
	int sum = a + b;
	return sum;
}
`)
	if len(nodes) != 1 {
		t.Fatalf("got %d top-level nodes, want 1", len(nodes))
	}
	fn, ok := nodes[0].(*ast.FunctionDef)
	if !ok {
		t.Fatalf("got %#v, want a FunctionDef", nodes[0])
	}
	if fn.Name != "add" {
		t.Errorf("got name %q, want add", fn.Name)
	}
	if len(fn.Body.Stmts) != 2 {
		t.Fatalf("got %d body statements, want 2", len(fn.Body.Stmts))
	}
	if _, ok := fn.Body.Stmts[0].(*ast.DeclStmt); !ok {
		t.Errorf("statement 0: got %T, want *ast.DeclStmt", fn.Body.Stmts[0])
	}
	ret, ok := fn.Body.Stmts[1].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("statement 1: got %T, want *ast.ReturnStmt", fn.Body.Stmts[1])
	}
	if _, ok := ret.Expr.(*ast.DeclRef); !ok {
		t.Errorf("return expr: got %T, want *ast.DeclRef", ret.Expr)
	}
}

func TestParseIfWhileForSwitch(t *testing.T) {
	nodes := parseUnit(t, `
void f(void) {
	if (1) {
		break;
	} else {
		continue;
	}
	while (1) {
		break;
	}
	for (;;) {
		continue;
	}
	switch (1) {
	case 1:
		break;
	default:
		break;
	}
}
`)
	fn := nodes[0].(*ast.FunctionDef)
	stmts := fn.Body.Stmts
	if len(stmts) != 4 {
		t.Fatalf("got %d statements, want 4", len(stmts))
	}
	ifStmt, ok := stmts[0].(*ast.IfStmt)
	if !ok || ifStmt.Else == nil {
		t.Fatalf("statement 0: got %#v, want an IfStmt with an Else branch", stmts[0])
	}
	if _, ok := stmts[1].(*ast.WhileStmt); !ok {
		t.Errorf("statement 1: got %T, want *ast.WhileStmt", stmts[1])
	}
	if _, ok := stmts[2].(*ast.ForStmt); !ok {
		t.Errorf("statement 2: got %T, want *ast.ForStmt", stmts[2])
	}
	sw, ok := stmts[3].(*ast.SwitchStmt)
	if !ok {
		t.Fatalf("statement 3: got %T, want *ast.SwitchStmt", stmts[3])
	}
	if len(sw.Cases) != 1 || sw.DefaultStmts == nil {
		t.Errorf("got %d cases and default=%v, want 1 case and a non-nil default", len(sw.Cases), sw.DefaultStmts)
	}
}

func TestParseStructDeclAndUsage(t *testing.T) {
	nodes := parseUnit(t, `
struct Point {
	int x;
	int y;
};
struct Point origin;
`)
	if len(nodes) != 2 {
		t.Fatalf("got %d top-level nodes, want 2", len(nodes))
	}
	sd, ok := nodes[0].(*ast.StructDecl)
	if !ok || sd.Type.Tag != "Point" || len(sd.Type.Members) != 2 {
		t.Fatalf("node 0: got %#v, want a 2-member StructDecl tagged Point", nodes[0])
	}
	gv, ok := nodes[1].(*ast.GlobalVarDecl)
	if !ok {
		t.Fatalf("node 1: got %#v, want a GlobalVarDecl", nodes[1])
	}
	st, ok := gv.Type.(*ast.StructType)
	if !ok || st.Tag != "Point" {
		t.Errorf("origin's type: got %#v, want struct Point", gv.Type)
	}
}

func TestParseFunctionPointerDeclarator(t *testing.T) {
	nodes := parseUnit(t, "int (*fptr)(int, int);\n")
	if len(nodes) != 1 {
		t.Fatalf("got %d top-level nodes, want 1", len(nodes))
	}
	gv, ok := nodes[0].(*ast.GlobalVarDecl)
	if !ok {
		t.Fatalf("got %#v, want a GlobalVarDecl", nodes[0])
	}
	pt, ok := gv.Type.(*ast.PointerType)
	if !ok {
		t.Fatalf("fptr's type: got %T, want *ast.PointerType", gv.Type)
	}
	if _, ok := pt.Pointee.(*ast.FunctionType); !ok {
		t.Errorf("fptr's pointee: got %T, want *ast.FunctionType", pt.Pointee)
	}
}

func TestParseErrorOnMismatchedBrace(t *testing.T) {
	p, err := New(lexer.New("int f(void) { return 0; "))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.ParseTranslationUnit(); err == nil {
		t.Error("expected a parse error for an unterminated function body")
	}
}
