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

// Package sema implements this compiler's semantic analysis: the typedef,
// tag, and global namespaces; type compatibility and the usual arithmetic
// conversions; size/alignment computation; and the compile-time constant
// evaluator used by sizeof, alignof, static_assert, array bounds, and enum
// members. It mirrors the split the teacher keeps between gapil/resolver
// (name resolution, type inference) and gapil/semantic (the resolved tree
// and its queries) by folding both roles into one process-wide Sema value,
// since this compiler's "resolved tree" is the same ast.Type the parser
// already produced — there is no separate semantic IR to build.
package sema

import (
	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/diag"
	"github.com/PiJoules/c-sub000/token"
)

// Sema holds every table spec §3 lists as process-wide state for one
// translation unit: typedefs, the three tag namespaces, globals, the enum
// namespaces (kept in lockstep), and the arena of non-owning pointer types
// synthesized by address-of type inference.
type Sema struct {
	typedefs map[string]ast.Type
	structs  map[string]*ast.StructType
	unions   map[string]*ast.UnionType
	enums    map[string]*ast.EnumType

	globals map[string]ast.TopLevel

	enumValues map[string]int64
	enumNames  map[string]*ast.EnumType

	// ptrArena interns non-owning pointer types synthesized by unary '&'
	// type inference, keyed by pointee+qualifier shape so two inferences
	// of "pointer to the same thing" share a value, matching spec §3's
	// "arena of non-owning pointer types". Growth is monotonic: entries
	// are added, never removed or mutated, as spec §5 requires.
	ptrArena map[ptrArenaKey]*ast.PointerType

	// builtins are the canonical singleton Type for each BuiltinKind, so
	// equality checks in Compatible can short-circuit on pointer identity
	// before falling back to structural comparison.
	builtins [ast.BuiltinVAList + 1]*ast.BuiltinType

	// stringLitType is the canonical "const char*" type spec §3 requires
	// every StringLit to carry.
	stringLitType *ast.PointerType
}

type ptrArenaKey struct {
	pointee ast.Type
	quals   ast.Qualifiers
}

// New returns a freshly initialized Sema for one translation unit. It
// seeds the typedef table with size_t, matching spec §4.4's requirement
// that "a typedef the program must define" exist before any sizeof/alignof
// expression is resolved (DESIGN.md records this as the chosen resolution
// of that Open Question).
func New() *Sema {
	s := &Sema{
		typedefs:   make(map[string]ast.Type),
		structs:    make(map[string]*ast.StructType),
		unions:     make(map[string]*ast.UnionType),
		enums:      make(map[string]*ast.EnumType),
		globals:    make(map[string]ast.TopLevel),
		enumValues: make(map[string]int64),
		enumNames:  make(map[string]*ast.EnumType),
		ptrArena:   make(map[ptrArenaKey]*ast.PointerType),
	}
	for k := ast.Char; k <= ast.BuiltinVAList; k++ {
		s.builtins[k] = ast.NewBuiltin(k, 0)
	}
	s.stringLitType = ast.NewPointer(ast.NewBuiltin(ast.Char, ast.QConst), 0)
	s.typedefs["size_t"] = s.Builtin(ast.UnsignedLong)
	s.typedefs["__builtin_va_list"] = s.Builtin(ast.BuiltinVAList)
	return s
}

// Builtin returns the canonical unqualified Type for k.
func (s *Sema) Builtin(k ast.BuiltinKind) *ast.BuiltinType { return s.builtins[k] }

// StringLiteralType returns the canonical "const char*" type of a
// StringLit expression.
func (s *Sema) StringLiteralType() *ast.PointerType { return s.stringLitType }

// PointerTo returns the (possibly shared) non-owning pointer-to-pointee
// type used for '&' type inference, interned in Sema's arena.
func (s *Sema) PointerTo(pointee ast.Type, quals ast.Qualifiers) *ast.PointerType {
	key := ptrArenaKey{pointee, quals}
	if p, ok := s.ptrArena[key]; ok {
		return p
	}
	p := ast.NewPointer(pointee, quals)
	s.ptrArena[key] = p
	return p
}

// DefineTypedef records name as a typedef for ty, flattening any Named
// chain in ty first so that, per spec §3's invariant, no Named type is
// ever stored in a Sema table. It is an error to redefine a typedef name
// (spec §7: "duplicate typedef").
func (s *Sema) DefineTypedef(pos token.Pos, name string, ty ast.Type) error {
	if _, exists := s.typedefs[name]; exists {
		return diag.Semaf(pos, "redefinition of typedef %q", name)
	}
	s.typedefs[name] = s.Flatten(ty)
	return nil
}

// LookupTypedef returns the flattened type name resolves to, or nil if
// name is not a known typedef.
func (s *Sema) LookupTypedef(name string) ast.Type {
	return s.typedefs[name]
}

// Flatten follows the chain of NamedTypes at the root of ty to its typedef
// target, so the result is not itself Named unless a name in the chain is
// not a known typedef (that NamedType is then returned as is). Only the
// root is unwrapped; child types (pointee, element,
// members, ...) keep whatever Named references they contain; resolving
// those is the job of the recursive Compatible/SizeOf/infer walks, which
// call Flatten again whenever they reach for a child's kind.
func (s *Sema) Flatten(ty ast.Type) ast.Type {
	for {
		n, ok := ty.(*ast.NamedType)
		if !ok {
			return ty
		}
		target, ok := s.typedefs[n.Name]
		if !ok {
			return ty
		}
		ty = ast.WithQuals(target, target.Quals()|n.Quals())
	}
}

// DeclareTag records a struct/union/enum tag's definition, keeping the
// most complete one seen (spec §4.4: "tag lookups return the most
// complete known definition"). A tag with a nil member/value list never
// overwrites a previously recorded complete definition, but a complete
// definition always overwrites an earlier forward declaration; two
// complete definitions of the same tag is a redefinition error (spec §3:
// "a struct/union tag is defined at most once").
func (s *Sema) DeclareTag(pos token.Pos, ty ast.Type) error {
	switch t := ty.(type) {
	case *ast.StructType:
		if t.Tag == "" {
			return nil
		}
		existing, ok := s.structs[t.Tag]
		if ok && existing.Members != nil {
			if t.Members != nil {
				return diag.Semaf(pos, "redefinition of struct %q", t.Tag)
			}
			return nil
		}
		s.structs[t.Tag] = t
	case *ast.UnionType:
		if t.Tag == "" {
			return nil
		}
		existing, ok := s.unions[t.Tag]
		if ok && existing.Members != nil {
			if t.Members != nil {
				return diag.Semaf(pos, "redefinition of union %q", t.Tag)
			}
			return nil
		}
		s.unions[t.Tag] = t
	case *ast.EnumType:
		if t.Tag == "" {
			return s.declareEnumValues(pos, t)
		}
		existing, ok := s.enums[t.Tag]
		if ok && existing.Values != nil {
			if t.Values != nil {
				return diag.Semaf(pos, "redefinition of enum %q", t.Tag)
			}
			return nil
		}
		s.enums[t.Tag] = t
		return s.declareEnumValues(pos, t)
	}
	return nil
}

// declareEnumValues evaluates and records every member of an enum
// definition into enumValues/enumNames, keeping the two in lockstep (spec
// §3's invariant). A member with no explicit value is one more than the
// previous member's value, starting at 0 (spec §8 scenario: "enum { A,
// B=3, C }" registers A=0, B=3, C=4).
func (s *Sema) declareEnumValues(pos token.Pos, t *ast.EnumType) error {
	if t.Values == nil {
		return nil
	}
	next := int64(0)
	for _, v := range t.Values {
		val := next
		if v.Value != nil {
			cv, err := s.ConstEval(v.Value, nil)
			if err != nil {
				return err
			}
			val = cv.Int()
		}
		if _, exists := s.enumValues[v.Name]; exists {
			return diag.Semaf(pos, "redefinition of enum value %q", v.Name)
		}
		s.enumValues[v.Name] = val
		s.enumNames[v.Name] = t
		next = val + 1
	}
	return nil
}

// LookupStruct, LookupUnion, and LookupEnum return the most complete known
// definition for tag, or nil if tag has not been declared.
func (s *Sema) LookupStruct(tag string) *ast.StructType { return s.structs[tag] }
func (s *Sema) LookupUnion(tag string) *ast.UnionType   { return s.unions[tag] }
func (s *Sema) LookupEnum(tag string) *ast.EnumType     { return s.enums[tag] }

// LookupEnumValue returns the constant value and owning EnumType of an
// enum member name, or (0, nil, false) if name is not an enum member.
func (s *Sema) LookupEnumValue(name string) (int64, *ast.EnumType, bool) {
	v, ok := s.enumValues[name]
	if !ok {
		return 0, nil, false
	}
	return v, s.enumNames[name], true
}

// DeclareGlobal records a file-scope variable or function in the globals
// table. A declaration (no initializer, no body) never overwrites an
// existing definition; two definitions of the same name is an error (spec
// §3: "an identifier has at most one definition across globals"). A
// previously-declared-only entry is replaced by a later, compatible
// definition or redeclaration.
func (s *Sema) DeclareGlobal(pos token.Pos, name string, node ast.TopLevel, isDefinition bool) error {
	existing, ok := s.globals[name]
	if !ok {
		s.globals[name] = node
		return nil
	}
	typeOf := func(n ast.TopLevel) ast.Type {
		switch n := n.(type) {
		case *ast.GlobalVarDecl:
			return n.Type
		case *ast.FunctionDef:
			return n.Type
		}
		return nil
	}
	if a, b := typeOf(existing), typeOf(node); a != nil && b != nil && !s.Compatible(a, b, false) {
		return diag.Semaf(pos, "incompatible redeclaration of %q", name)
	}
	if isDefinition && isGlobalDefinition(existing) {
		return diag.Semaf(pos, "redefinition of %q", name)
	}
	if isDefinition || !isGlobalDefinition(existing) {
		s.globals[name] = node
	}
	return nil
}

func isGlobalDefinition(node ast.TopLevel) bool {
	switch n := node.(type) {
	case *ast.FunctionDef:
		return true
	case *ast.GlobalVarDecl:
		_, isFunc := n.Type.(*ast.FunctionType)
		return !isFunc && n.Init != nil
	}
	return false
}

// LookupGlobal returns the recorded TopLevel for name, or nil.
func (s *Sema) LookupGlobal(name string) ast.TopLevel { return s.globals[name] }
