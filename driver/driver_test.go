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

package driver

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/llir/llvm/ir"
)

func newTestDriver(t *testing.T) (*Driver, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	return New("test.c", false, logger), &buf
}

func TestCompileSourceSimpleFunction(t *testing.T) {
	d, _ := newTestDriver(t)
	src := `
int add(int a, int b) {
	return a + b;
}
`
	if err := d.CompileSource(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Sema.LookupGlobal("add") == nil {
		t.Error("expected add to be registered as a global")
	}
	ir := d.Module.IR.String()
	if !strings.Contains(ir, "define i32 @add") {
		t.Errorf("expected a definition of add in the emitted IR, got:\n%s", ir)
	}
}

func TestCompileSourceTypedefThenGlobal(t *testing.T) {
	d, _ := newTestDriver(t)
	src := `
typedef int myint;
myint counter = 0;
`
	if err := d.CompileSource(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Sema.LookupTypedef("myint") == nil {
		t.Error("expected myint to be registered as a typedef")
	}
	ir := d.Module.IR.String()
	if !strings.Contains(ir, "@counter") {
		t.Errorf("expected a counter global in the emitted IR, got:\n%s", ir)
	}
}

func TestCompileSourceRedefinitionIsAnError(t *testing.T) {
	d, _ := newTestDriver(t)
	src := `
int x = 1;
int x = 2;
`
	if err := d.CompileSource(src); err == nil {
		t.Error("expected a redefinition error")
	}
}

// TestCompileSourceSwitchFallthroughAndDefault exercises the real
// multi-successor switch lowering directly on the emitted IR objects: a
// case with no break must branch into the next case's block (true C
// fall-through), while a case ending in break branches straight to the
// switch's end block, and an unmatched value reaches a distinct default
// block.
func TestCompileSourceSwitchFallthroughAndDefault(t *testing.T) {
	d, _ := newTestDriver(t)
	src := `
int classify(int x) {
	int r = 0;
	switch (x) {
	case 1:
		r = 1;
	case 2:
		r = 2;
		break;
	case 3:
		r = 3;
		break;
	default:
		r = -1;
	}
	return r;
}
`
	if err := d.CompileSource(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fn := findFunc(t, d.Module.IR, "classify")
	sw := findSwitch(t, fn)

	if len(sw.Cases) != 3 {
		t.Fatalf("got %d switch cases, want 3", len(sw.Cases))
	}
	if sw.TargetDefault == nil {
		t.Fatal("expected a default target block")
	}
	for _, c := range sw.Cases {
		if sw.TargetDefault == c.Target {
			t.Fatal("expected the default block to be distinct from every case block")
		}
	}

	case1, case2 := sw.Cases[0].Target, sw.Cases[1].Target
	br1, ok := case1.Term.(*ir.TermBr)
	if !ok {
		t.Fatalf("case 1's terminator is %T, want *ir.TermBr", case1.Term)
	}
	if br1.Target != case2 {
		t.Errorf("case 1 (no break) should fall through into case 2's block, branched to %v instead", br1.Target)
	}

	case3 := sw.Cases[2].Target
	br2, ok := case2.Term.(*ir.TermBr)
	if !ok {
		t.Fatalf("case 2's terminator is %T, want *ir.TermBr", case2.Term)
	}
	if br2.Target == case3 {
		t.Error("case 2 ends in break and should not fall through into case 3's block")
	}

	if _, ok := case3.Term.(*ir.TermBr); !ok {
		t.Fatalf("case 3's terminator is %T, want *ir.TermBr", case3.Term)
	}
	if _, ok := sw.TargetDefault.Term.(*ir.TermBr); !ok {
		t.Fatalf("default's terminator is %T, want *ir.TermBr", sw.TargetDefault.Term)
	}
}

func findFunc(t *testing.T, m *ir.Module, name string) *ir.Func {
	t.Helper()
	for _, fn := range m.Funcs {
		if fn.Name() == name {
			return fn
		}
	}
	t.Fatalf("function %q not found in module", name)
	return nil
}

func findSwitch(t *testing.T, fn *ir.Func) *ir.TermSwitch {
	t.Helper()
	for _, blk := range fn.Blocks {
		if sw, ok := blk.Term.(*ir.TermSwitch); ok {
			return sw
		}
	}
	t.Fatalf("no switch terminator found in function %q", fn.Name())
	return nil
}

func TestCompileSourceLogsOneDebugLinePerNode(t *testing.T) {
	d, buf := newTestDriver(t)
	src := `int f(void) { return 0; }`
	if err := d.CompileSource(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "checking FunctionDef f") {
		t.Errorf("expected a checking log line naming f, got:\n%s", out)
	}
	if !strings.Contains(out, "lowering FunctionDef f") {
		t.Errorf("expected a lowering log line naming f, got:\n%s", out)
	}
}
