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
)

// lowerCompoundStmt lowers a brace-delimited statement list in its own
// cloned scope (see Function's doc comment), so declarations made inside
// it vanish once it ends.
func (f *Function) lowerCompoundStmt(body *ast.CompoundStmt) error {
	return f.withScope(func() error {
		for _, s := range body.Stmts {
			if f.terminated() {
				break
			}
			if err := f.lowerStmt(s); err != nil {
				return err
			}
		}
		return nil
	})
}

func (f *Function) lowerStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		if s.Expr == nil {
			return nil
		}
		_, err := f.lowerRValueTyped(s.Expr)
		return err
	case *ast.DeclStmt:
		return f.lowerDeclStmt(s)
	case *ast.CompoundStmt:
		return f.lowerCompoundStmt(s)
	case *ast.IfStmt:
		return f.lowerIfStmt(s)
	case *ast.WhileStmt:
		return f.lowerWhileStmt(s)
	case *ast.ForStmt:
		return f.lowerForStmt(s)
	case *ast.SwitchStmt:
		return f.lowerSwitchStmt(s)
	case *ast.ReturnStmt:
		return f.lowerReturnStmt(s)
	case *ast.BreakStmt:
		return f.lowerBreakStmt(s)
	case *ast.ContinueStmt:
		return f.lowerContinueStmt(s)
	default:
		return fail(stmt.Pos(), "cannot lower statement %T", stmt)
	}
}

func (f *Function) lowerDeclStmt(s *ast.DeclStmt) error {
	addr, err := f.declareLocal(s.Name, s.Type)
	if err != nil {
		return err
	}
	if s.Init == nil {
		return nil
	}
	v, err := f.lowerRValueAs(s.Init, s.Type)
	if err != nil {
		return err
	}
	f.cur.NewStore(v, addr)
	return nil
}

func (f *Function) lowerReturnStmt(s *ast.ReturnStmt) error {
	if s.Expr == nil {
		f.cur.NewRet(nil)
		return nil
	}
	v, err := f.lowerRValueAs(s.Expr, f.retTy)
	if err != nil {
		return err
	}
	f.cur.NewRet(v)
	return nil
}

func (f *Function) lowerBreakStmt(s *ast.BreakStmt) error {
	if len(f.breakTargets) == 0 {
		return diag.Semaf(s.Pos(), "break statement not within a loop or switch")
	}
	f.cur.NewBr(f.breakTargets[len(f.breakTargets)-1])
	return nil
}

func (f *Function) lowerContinueStmt(s *ast.ContinueStmt) error {
	if len(f.continueTargets) == 0 {
		return diag.Semaf(s.Pos(), "continue statement not within a loop")
	}
	f.cur.NewBr(f.continueTargets[len(f.continueTargets)-1])
	return nil
}

// lowerIfStmt lowers structured if/else control flow into explicit basic
// blocks, per spec §5's "structured control flow" requirement.
func (f *Function) lowerIfStmt(s *ast.IfStmt) error {
	cond, err := f.lowerBool(s.Cond)
	if err != nil {
		return err
	}
	thenBlk := f.IR.NewBlock("")
	mergeBlk := f.IR.NewBlock("")
	elseBlk := mergeBlk
	if s.Else != nil {
		elseBlk = f.IR.NewBlock("")
	}
	f.cur.NewCondBr(cond, thenBlk, elseBlk)

	f.cur = thenBlk
	if err := f.lowerSingleAsCompound(s.Body); err != nil {
		return err
	}
	if !f.terminated() {
		f.cur.NewBr(mergeBlk)
	}

	if s.Else != nil {
		f.cur = elseBlk
		if err := f.lowerSingleAsCompound(s.Else); err != nil {
			return err
		}
		if !f.terminated() {
			f.cur.NewBr(mergeBlk)
		}
	}

	f.cur = mergeBlk
	return nil
}

// lowerSingleAsCompound lowers s as the (possibly single, possibly
// compound) body of an if/while/for/case arm, wrapping it in the same
// scope-clone discipline lowerCompoundStmt applies, whether or not s
// itself is a CompoundStmt.
func (f *Function) lowerSingleAsCompound(s ast.Stmt) error {
	if cs, ok := s.(*ast.CompoundStmt); ok {
		return f.lowerCompoundStmt(cs)
	}
	return f.withScope(func() error {
		return f.lowerStmt(s)
	})
}

func (f *Function) lowerWhileStmt(s *ast.WhileStmt) error {
	condBlk := f.IR.NewBlock("")
	bodyBlk := f.IR.NewBlock("")
	endBlk := f.IR.NewBlock("")

	f.cur.NewBr(condBlk)
	f.cur = condBlk
	cond, err := f.lowerBool(s.Cond)
	if err != nil {
		return err
	}
	f.cur.NewCondBr(cond, bodyBlk, endBlk)

	f.breakTargets = append(f.breakTargets, endBlk)
	f.continueTargets = append(f.continueTargets, condBlk)
	f.cur = bodyBlk
	if err := f.lowerSingleAsCompound(s.Body); err != nil {
		return err
	}
	if !f.terminated() {
		f.cur.NewBr(condBlk)
	}
	f.breakTargets = f.breakTargets[:len(f.breakTargets)-1]
	f.continueTargets = f.continueTargets[:len(f.continueTargets)-1]

	f.cur = endBlk
	return nil
}

func (f *Function) lowerForStmt(s *ast.ForStmt) error {
	return f.withScope(func() error {
		if s.Init != nil {
			if err := f.lowerStmt(s.Init); err != nil {
				return err
			}
		}
		condBlk := f.IR.NewBlock("")
		bodyBlk := f.IR.NewBlock("")
		iterBlk := f.IR.NewBlock("")
		endBlk := f.IR.NewBlock("")

		f.cur.NewBr(condBlk)
		f.cur = condBlk
		if s.Cond != nil {
			cond, err := f.lowerBool(s.Cond)
			if err != nil {
				return err
			}
			f.cur.NewCondBr(cond, bodyBlk, endBlk)
		} else {
			f.cur.NewBr(bodyBlk)
		}

		f.breakTargets = append(f.breakTargets, endBlk)
		f.continueTargets = append(f.continueTargets, iterBlk)
		f.cur = bodyBlk
		if err := f.lowerSingleAsCompound(s.Body); err != nil {
			return err
		}
		if !f.terminated() {
			f.cur.NewBr(iterBlk)
		}
		f.breakTargets = f.breakTargets[:len(f.breakTargets)-1]
		f.continueTargets = f.continueTargets[:len(f.continueTargets)-1]

		f.cur = iterBlk
		if s.Iter != nil {
			if _, err := f.lowerRValueTyped(s.Iter); err != nil {
				return err
			}
		}
		if !f.terminated() {
			f.cur.NewBr(condBlk)
		}

		f.cur = endBlk
		return nil
	})
}

// lowerSwitchStmt lowers to a real, multi-successor LLVM switch
// instruction (the REDESIGN FLAG spec §8 calls out: the original's broken
// fall-through-chain replaced with llvm.switch plus explicit case-to-case
// branches to still honor C's true fall-through semantics when a case body
// does not itself end in break/return).
func (f *Function) lowerSwitchStmt(s *ast.SwitchStmt) error {
	cond, err := f.lowerRValueTyped(s.Cond)
	if err != nil {
		return err
	}
	condIntTy, ok := cond.Type().(*types.IntType)
	if !ok {
		return fail(s.Pos(), "switch condition must have integer type")
	}

	endBlk := f.IR.NewBlock("")
	arms := make([]switchArm, len(s.Cases))
	for i, c := range s.Cases {
		arms[i] = switchArm{blk: f.IR.NewBlock(""), swcase: c}
	}
	defaultBlk := endBlk
	if s.DefaultStmts != nil {
		defaultBlk = f.IR.NewBlock("")
	}

	cases := make([]*ir.Case, len(arms))
	for i, a := range arms {
		v, err := f.m.sema.ConstEval(a.swcase.Cond, nil)
		if err != nil {
			return err
		}
		cases[i] = ir.NewCase(constant.NewInt(condIntTy, v.Int()), a.blk)
	}
	f.cur.NewSwitch(cond, defaultBlk, cases...)

	f.breakTargets = append(f.breakTargets, endBlk)
	for i, a := range arms {
		f.cur = a.blk
		if err := f.lowerCaseBody(a.swcase.Stmts); err != nil {
			return err
		}
		if !f.terminated() {
			f.cur.NewBr(f.fallthroughTarget(arms, i, defaultBlk, endBlk))
		}
	}
	if s.DefaultStmts != nil {
		f.cur = defaultBlk
		if err := f.lowerCaseBody(s.DefaultStmts); err != nil {
			return err
		}
		if !f.terminated() {
			f.cur.NewBr(endBlk)
		}
	}
	f.breakTargets = f.breakTargets[:len(f.breakTargets)-1]

	f.cur = endBlk
	return nil
}

// fallthroughTarget returns the block execution reaches when case arms[i]'s
// body does not itself end in a terminator — the next case in source order,
// or the default arm, or the switch's end block, implementing true C
// fall-through over the real multi-successor switch instruction.
func (f *Function) fallthroughTarget(arms []switchArm, i int, defaultBlk, endBlk *ir.Block) *ir.Block {
	if i+1 < len(arms) {
		return arms[i+1].blk
	}
	// defaultBlk already equals endBlk when the switch has no default arm.
	return defaultBlk
}

func (f *Function) lowerCaseBody(stmts []ast.Stmt) error {
	return f.withScope(func() error {
		for _, st := range stmts {
			if f.terminated() {
				break
			}
			if err := f.lowerStmt(st); err != nil {
				return err
			}
		}
		return nil
	})
}

type switchArm struct {
	blk    *ir.Block
	swcase *ast.SwitchCase
}
