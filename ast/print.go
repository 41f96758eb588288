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

package ast

import (
	"fmt"
	"io"
)

// Fprint writes a one-line-per-node textual rendering of a top-level node
// to w, the debug dump original_source/src/ast-dump.c offers under its own
// -v flag (see SPEC_FULL.md §7A). It exists purely for -v diagnostics; no
// other package reads this format back.
func Fprint(w io.Writer, node TopLevel) {
	fprintTop(w, node, 0)
}

func indent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Fprint(w, "  ")
	}
}

func fprintTop(w io.Writer, node TopLevel, depth int) {
	indent(w, depth)
	switch n := node.(type) {
	case *TypedefDecl:
		fmt.Fprintf(w, "TypedefDecl %s -> %s\n", n.Name, TypeString(n.Type))
	case *StaticAssertDecl:
		fmt.Fprintln(w, "StaticAssertDecl")
	case *GlobalVarDecl:
		fmt.Fprintf(w, "GlobalVarDecl %s : %s\n", n.Name, TypeString(n.Type))
	case *FunctionDef:
		fmt.Fprintf(w, "FunctionDef %s : %s\n", n.Name, TypeString(n.Type))
	case *StructDecl:
		fmt.Fprintf(w, "StructDecl %s\n", n.Type.Tag)
	case *UnionDecl:
		fmt.Fprintf(w, "UnionDecl %s\n", n.Type.Tag)
	case *EnumDecl:
		fmt.Fprintf(w, "EnumDecl %s\n", n.Type.Tag)
	default:
		fmt.Fprintf(w, "%T\n", node)
	}
}

// TypeString renders ty as a compact single-line description, the same
// information a diagnostic message embeds inline.
func TypeString(ty Type) string {
	switch t := ty.(type) {
	case *BuiltinType:
		return builtinKindString(t.Kind)
	case *NamedType:
		return t.Name
	case *PointerType:
		return TypeString(t.Pointee) + "*"
	case *ArrayType:
		if t.Size == nil {
			return TypeString(t.Elem) + "[]"
		}
		return TypeString(t.Elem) + "[N]"
	case *FunctionType:
		s := TypeString(t.Return) + "("
		for i, p := range t.Params {
			if i > 0 {
				s += ", "
			}
			s += TypeString(p.Type)
		}
		if t.Variadic {
			if len(t.Params) > 0 {
				s += ", "
			}
			s += "..."
		}
		return s + ")"
	case *StructType:
		return "struct " + t.Tag
	case *UnionType:
		return "union " + t.Tag
	case *EnumType:
		return "enum " + t.Tag
	default:
		return "?"
	}
}

func builtinKindString(k BuiltinKind) string {
	switch k {
	case Void:
		return "void"
	case Bool:
		return "_Bool"
	case Char:
		return "char"
	case SignedChar:
		return "signed char"
	case UnsignedChar:
		return "unsigned char"
	case Short:
		return "short"
	case UnsignedShort:
		return "unsigned short"
	case Int:
		return "int"
	case UnsignedInt:
		return "unsigned int"
	case Long:
		return "long"
	case UnsignedLong:
		return "unsigned long"
	case LongLong:
		return "long long"
	case UnsignedLongLong:
		return "unsigned long long"
	case Float:
		return "float"
	case Double:
		return "double"
	case LongDouble:
		return "long double"
	case Float128:
		return "_Float128"
	case ComplexFloat:
		return "float _Complex"
	case ComplexDouble:
		return "double _Complex"
	case ComplexLongDouble:
		return "long double _Complex"
	case BuiltinVAList:
		return "__builtin_va_list"
	default:
		return "?"
	}
}
