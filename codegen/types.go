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
	"github.com/llir/llvm/ir/types"

	"github.com/PiJoules/c-sub000/ast"
	"github.com/PiJoules/c-sub000/sema"
	"github.com/PiJoules/c-sub000/token"
)

// llvmType lowers a resolved ast.Type to the types.Type this compiler
// builds IR against, per spec §5's lowering table. Struct/union types are
// cached by tag in m.aggregateTypes so repeated references to the same
// aggregate share one types.Type, which LLVM's type system requires for
// GEP/load/store to agree.
func (m *Module) llvmType(pos token.Pos, ty ast.Type) (types.Type, error) {
	switch t := m.sema.Flatten(ty).(type) {
	case *ast.BuiltinType:
		return m.llvmBuiltin(t.Kind), nil
	case *ast.PointerType:
		elem, err := m.llvmType(pos, t.Pointee)
		if err != nil {
			return nil, err
		}
		if _, isVoid := elem.(*types.VoidType); isVoid {
			// LLVM has no void* in modern IR; this compiler represents it
			// as a pointer to i8, matching the original's char*-as-opaque
			// convention (spec §5).
			elem = types.I8
		}
		return types.NewPointer(elem), nil
	case *ast.ArrayType:
		elem, err := m.llvmType(pos, t.Elem)
		if err != nil {
			return nil, err
		}
		if t.Size == nil {
			return types.NewPointer(elem), nil
		}
		n, err := m.sema.ConstEval(t.Size, nil)
		if err != nil {
			return nil, err
		}
		return types.NewArray(uint64(n.Int()), elem), nil
	case *ast.StructType:
		return m.llvmAggregate(pos, t.Tag, t.Members, false)
	case *ast.UnionType:
		return m.llvmAggregate(pos, t.Tag, t.Members, true)
	case *ast.EnumType:
		return m.llvmBuiltin(ast.Int), nil
	case *ast.FunctionType:
		return m.llvmFuncType(pos, t)
	default:
		return nil, fail(pos, "cannot lower type %T to LLVM IR", ty)
	}
}

func (m *Module) llvmFuncType(pos token.Pos, t *ast.FunctionType) (*types.FuncType, error) {
	ret, err := m.llvmType(pos, t.Return)
	if err != nil {
		return nil, err
	}
	params := make([]types.Type, len(t.Params))
	for i, p := range t.Params {
		pt, err := m.llvmType(pos, p.Type)
		if err != nil {
			return nil, err
		}
		params[i] = pt
	}
	return types.NewFunc(ret, params...), nil
}

// llvmBuiltin maps a scalar BuiltinKind to its LLVM type, per spec §5.
// _Complex kinds are lowered as a two-element struct of their component
// real type, matching the lowering this compiler applies to every other
// aggregate-shaped scalar.
func (m *Module) llvmBuiltin(k ast.BuiltinKind) types.Type {
	switch k {
	case ast.Void:
		return types.Void
	case ast.Bool:
		// spec requires every bool-valued rvalue (a comparison, '!', a
		// cast to _Bool) to be zero-extended to this 8-bit representation;
		// see toBoolValue's callers.
		return types.I8
	case ast.Char, ast.SignedChar, ast.UnsignedChar:
		return types.I8
	case ast.Short, ast.UnsignedShort:
		return types.I16
	case ast.Int, ast.UnsignedInt:
		return types.I32
	case ast.Long, ast.UnsignedLong, ast.LongLong, ast.UnsignedLongLong:
		return types.I64
	case ast.Float:
		return types.Float
	case ast.Double:
		return types.Double
	case ast.LongDouble, ast.Float128:
		return types.FP128
	case ast.ComplexFloat:
		return types.NewStruct(types.Float, types.Float)
	case ast.ComplexDouble:
		return types.NewStruct(types.Double, types.Double)
	case ast.ComplexLongDouble:
		return types.NewStruct(types.FP128, types.FP128)
	case ast.BuiltinVAList:
		return types.NewArray(uint64(sema.BuiltinSize(ast.BuiltinVAList)), types.I8)
	default:
		return types.I64
	}
}

// llvmAggregate returns the cached LLVM struct type for tag, lowering and
// caching it the first time it is requested. An anonymous aggregate (empty
// tag) is lowered fresh every time, since it has no namespace slot to
// dedup through.
func (m *Module) llvmAggregate(pos token.Pos, tag string, members []*ast.Member, isUnion bool) (*types.StructType, error) {
	if tag != "" {
		if cached, ok := m.aggregateTypes[tag]; ok {
			return cached, nil
		}
	}
	if members == nil {
		members = m.resolveAggregateMembers(tag, isUnion)
	}
	st := types.NewStruct()
	if tag != "" {
		m.aggregateTypes[tag] = st
	}
	fields, err := m.layoutFields(pos, members, isUnion)
	if err != nil {
		return nil, err
	}
	st.Fields = fields
	return st, nil
}

func (m *Module) resolveAggregateMembers(tag string, isUnion bool) []*ast.Member {
	if isUnion {
		if u := m.sema.LookupUnion(tag); u != nil {
			return u.Members
		}
		return nil
	}
	if s := m.sema.LookupStruct(tag); s != nil {
		return s.Members
	}
	return nil
}

// layoutFields builds the literal LLVM field list for an aggregate. A
// union is represented as a single byte-array field sized to its largest
// member (LLVM struct types have no native union), matching spec §5's
// "a union's single LLVM field is a byte array the size of its widest
// member"; member access through a union reinterprets that buffer via a
// bitcast pointer (see lvalue.go).
func (m *Module) layoutFields(pos token.Pos, members []*ast.Member, isUnion bool) ([]types.Type, error) {
	if isUnion {
		size, _, err := m.unionLayout(pos, members)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			return nil, nil
		}
		return []types.Type{types.NewArray(size, types.I8)}, nil
	}
	fields := make([]types.Type, 0, len(members))
	for _, mem := range members {
		ft, err := m.llvmType(pos, mem.Type)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ft)
	}
	return fields, nil
}

func (m *Module) unionLayout(pos token.Pos, members []*ast.Member) (uint64, uint64, error) {
	var maxSize uint64
	for _, mem := range members {
		sz, err := m.sema.SizeOf(pos, mem.Type)
		if err != nil {
			return 0, 0, err
		}
		if sz > maxSize {
			maxSize = sz
		}
	}
	return maxSize, 0, nil
}

func signed(ty ast.Type, s *sema.Sema) bool {
	if b, ok := s.Flatten(ty).(*ast.BuiltinType); ok {
		return sema.IsSigned(b.Kind)
	}
	return false
}

func integerLike(ty ast.Type, s *sema.Sema) bool {
	switch t := s.Flatten(ty).(type) {
	case *ast.BuiltinType:
		return sema.IsInteger(t.Kind)
	case *ast.EnumType:
		return true
	default:
		return false
	}
}

func floatingLike(ty ast.Type, s *sema.Sema) bool {
	b, ok := s.Flatten(ty).(*ast.BuiltinType)
	return ok && sema.IsFloating(b.Kind)
}

func pointerLike(ty ast.Type, s *sema.Sema) (*ast.PointerType, bool) {
	p, ok := s.Flatten(ty).(*ast.PointerType)
	return p, ok
}
