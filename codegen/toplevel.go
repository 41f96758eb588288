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
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/diag"
	"github.com/PiJoules/c-sub000/token"
)

// LowerTopLevel lowers one already-sema-checked top-level node into m,
// per spec §2's forward-only, one-node-at-a-time data flow: the driver
// registers node into Sema first, then hands it to LowerTopLevel, and
// never revisits an earlier node.
func (m *Module) LowerTopLevel(node ast.TopLevel) error {
	switch n := node.(type) {
	case *ast.FunctionDef:
		return m.lowerFunctionDef(n)
	case *ast.GlobalVarDecl:
		return m.lowerGlobalVarDecl(n)
	case *ast.StaticAssertDecl:
		return m.lowerStaticAssert(n)
	case *ast.TypedefDecl, *ast.StructDecl, *ast.UnionDecl, *ast.EnumDecl:
		// Types carry no runtime representation of their own; Sema has
		// already recorded them, and lowering only reaches for them when a
		// value of that type is declared or referenced elsewhere.
		return nil
	default:
		return fail(node.Pos(), "cannot lower top-level node %T", node)
	}
}

func (m *Module) lowerStaticAssert(n *ast.StaticAssertDecl) error {
	v, err := m.sema.ConstEval(n.Cond, nil)
	if err != nil {
		return err
	}
	if v.IsZero() {
		msg := "static assertion failed"
		if n.Message != "" {
			msg = n.Message
		}
		return diag.Semaf(n.Pos(), "%s", msg)
	}
	return nil
}

// getOrDeclareFunc returns the IR function for name, declaring an external
// (bodyless) *ir.Func the first time any reference to name is lowered —
// a call, an address-of, or its own later FunctionDef. A FunctionDef that
// arrives after its prototype has already been referenced reuses this same
// *ir.Func and attaches a body to it.
func (m *Module) getOrDeclareFunc(pos token.Pos, name string) (*ir.Func, error) {
	if fn, ok := m.funcs[name]; ok {
		return fn, nil
	}
	ft, err := m.functionTypeOf(pos, name)
	if err != nil {
		return nil, err
	}
	llty, err := m.llvmFuncType(pos, ft)
	if err != nil {
		return nil, err
	}
	params := make([]*ir.Param, len(llty.Params))
	for i, pt := range llty.Params {
		params[i] = ir.NewParam("", pt)
	}
	fn := m.IR.NewFunc(name, llty.RetType, params...)
	fn.Sig.Variadic = ft.Variadic
	m.funcs[name] = fn
	return fn, nil
}

func (m *Module) functionTypeOf(pos token.Pos, name string) (*ast.FunctionType, error) {
	switch g := m.sema.LookupGlobal(name).(type) {
	case *ast.FunctionDef:
		return g.Type, nil
	case *ast.GlobalVarDecl:
		if ft, ok := g.Type.(*ast.FunctionType); ok {
			return ft, nil
		}
	}
	return nil, diag.Semaf(pos, "%q is not declared as a function", name)
}

// getOrDeclareGlobal returns the IR global for name, declaring it (with a
// zero initializer, replaced later if a definition supplies one) the first
// time any reference to it is lowered.
func (m *Module) getOrDeclareGlobal(pos token.Pos, name string) (*ir.Global, error) {
	if g, ok := m.globals[name]; ok {
		return g, nil
	}
	decl, ok := m.sema.LookupGlobal(name).(*ast.GlobalVarDecl)
	if !ok {
		return nil, diag.Semaf(pos, "%q is not declared as a variable", name)
	}
	llty, err := m.llvmType(pos, decl.Type)
	if err != nil {
		return nil, err
	}
	g := m.IR.NewGlobal(name, llty)
	g.Init = constant.NewZeroInitializer(llty)
	m.globals[name] = g
	return g, nil
}

// globalAddr resolves a bare identifier reference to the address of its
// storage: a function's own value if name names a function, otherwise the
// address of a file-scope variable.
func (m *Module) globalAddr(pos token.Pos, name string) (*lvalue, error) {
	switch g := m.sema.LookupGlobal(name).(type) {
	case *ast.GlobalVarDecl:
		if _, isFunc := g.Type.(*ast.FunctionType); !isFunc {
			gv, err := m.getOrDeclareGlobal(pos, name)
			if err != nil {
				return nil, err
			}
			return &lvalue{addr: gv, ty: g.Type}, nil
		}
		fn, err := m.getOrDeclareFunc(pos, name)
		if err != nil {
			return nil, err
		}
		return &lvalue{addr: fn, ty: g.Type}, nil
	case *ast.FunctionDef:
		fn, err := m.getOrDeclareFunc(pos, name)
		if err != nil {
			return nil, err
		}
		return &lvalue{addr: fn, ty: g.Type}, nil
	default:
		return nil, diag.Semaf(pos, "use of undeclared identifier %q", name)
	}
}

// lowerFunctionDef lowers one function body. Every parameter is spilled to
// its own entry-block alloca immediately (spec §5: "a parameter behaves
// exactly like a local variable initialized from the incoming SSA
// argument"), so the rest of lowering never has to special-case a
// parameter reference versus a local one. A function whose body falls off
// its last statement without an explicit return either returns void (if
// its return type is void) or lowers to an unreachable terminator — this
// compiler never fabricates a return value spec §5 says it has no basis
// to choose.
func (m *Module) lowerFunctionDef(n *ast.FunctionDef) error {
	fn, err := m.getOrDeclareFunc(n.Pos(), n.Name)
	if err != nil {
		return err
	}
	if len(fn.Blocks) > 0 {
		return diag.Semaf(n.Pos(), "redefinition of function %q", n.Name)
	}
	f := m.newFunction(fn, n.Type.Return)
	for i, pname := range n.ParamNames {
		if i >= len(n.Type.Params) || pname == "" {
			continue
		}
		addr, err := f.declareLocal(pname, n.Type.Params[i].Type)
		if err != nil {
			return err
		}
		fn.Params[i].LocalName = pname
		f.cur.NewStore(fn.Params[i], addr)
	}
	if err := f.lowerCompoundStmt(n.Body); err != nil {
		return err
	}
	if !f.terminated() {
		if isVoidType(m, n.Type.Return) {
			f.cur.NewRet(nil)
		} else {
			trap, err := m.getOrDeclareDebugtrap()
			if err != nil {
				return err
			}
			f.cur.NewCall(trap)
			f.cur.NewUnreachable()
		}
	}
	if m.debug {
		m.subprogramFor(fn)
	}
	return nil
}

// getOrDeclareDebugtrap returns the IR function for the llvm.debugtrap
// intrinsic, declaring it once and caching it like any other external
// function reference (see getOrDeclareFunc). spec §5 requires a function
// whose body falls off its end without returning to trap rather than
// silently return garbage: "gets an inserted llvm.debugtrap then
// unreachable".
func (m *Module) getOrDeclareDebugtrap() (*ir.Func, error) {
	const name = "llvm.debugtrap"
	if fn, ok := m.funcs[name]; ok {
		return fn, nil
	}
	fn := m.IR.NewFunc(name, types.Void)
	m.funcs[name] = fn
	return fn, nil
}

func isVoidType(m *Module, ty ast.Type) bool {
	b, ok := m.sema.Flatten(ty).(*ast.BuiltinType)
	return ok && b.Kind == ast.Void
}

// lowerGlobalVarDecl declares (and, if initialized, defines) a file-scope
// variable. A bare declaration (extern, or a tentative definition with no
// initializer) only reserves the IR global with a zero initializer; a
// real initializer is lowered through the constant-only expression path,
// since a global initializer can never reference runtime state (spec §5).
func (m *Module) lowerGlobalVarDecl(n *ast.GlobalVarDecl) error {
	if _, isFunc := n.Type.(*ast.FunctionType); isFunc {
		_, err := m.getOrDeclareFunc(n.Pos(), n.Name)
		return err
	}
	g, err := m.getOrDeclareGlobal(n.Pos(), n.Name)
	if err != nil {
		return err
	}
	if n.Init == nil {
		return nil
	}
	init, err := m.lowerConstExpr(n.Init, n.Type)
	if err != nil {
		return err
	}
	g.Init = init
	return nil
}
