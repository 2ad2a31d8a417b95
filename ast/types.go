// Package ast is the typed tree produced by the parser: declarations,
// statements, expressions, and the small type lattice of spec.md §3.
//
// Nodes are plain structs implementing marker interfaces and are dispatched
// with exhaustive type switches elsewhere (parser, codegen) rather than a
// visitor hierarchy — spec.md §9 calls the visitor form "unnecessary and
// harmful to exhaustiveness checking" for this shape of tree.
package ast

import "fmt"

// Kind is the tag of a Type.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindVoid
	KindF64
	KindPointer
	KindArray
	KindClass
)

// Type is the HolyC type lattice: primitive integers (signed/unsigned ×
// 8/16/32/64 bits), Bool (semantically U8), Void, F64 (parses only, per
// spec.md's floating-point Non-goal), pointer-to-T, array-of-T with a
// compile-time length, and named class aggregates.
type Type struct {
	Kind   Kind
	Signed bool // meaningful only for KindInt
	Bits   int  // 8, 16, 32, or 64; meaningful only for KindInt

	Elem *Type // pointer/array element type
	Len  uint64 // array length

	ClassName string  // KindClass
	Fields    []Field // KindClass, resolved fields in declaration order
}

// Field is one member of a class aggregate.
type Field struct {
	Name string
	Type *Type
}

func Int(bits int, signed bool) *Type { return &Type{Kind: KindInt, Bits: bits, Signed: signed} }
func U8() *Type                       { return Int(8, false) }
func U16() *Type                      { return Int(16, false) }
func U32() *Type                      { return Int(32, false) }
func U64() *Type                      { return Int(64, false) }
func I8() *Type                       { return Int(8, true) }
func I16() *Type                      { return Int(16, true) }
func I32() *Type                      { return Int(32, true) }
func I64() *Type                      { return Int(64, true) }
func BoolType() *Type                 { return &Type{Kind: KindBool, Bits: 8, Signed: false} }
func VoidType() *Type                 { return &Type{Kind: KindVoid} }
func F64Type() *Type                  { return &Type{Kind: KindF64, Bits: 64, Signed: true} }

func PointerTo(elem *Type) *Type { return &Type{Kind: KindPointer, Elem: elem} }
func ArrayOf(elem *Type, length uint64) *Type {
	return &Type{Kind: KindArray, Elem: elem, Len: length}
}
func ClassRef(name string) *Type { return &Type{Kind: KindClass, ClassName: name} }

// Size returns the in-memory byte size of t. Class types must have Fields
// resolved (done by the parser against the class table) before Size is
// meaningful.
func (t *Type) Size() int {
	switch t.Kind {
	case KindInt:
		return t.Bits / 8
	case KindBool:
		return 1
	case KindVoid:
		return 0
	case KindF64:
		return 8
	case KindPointer:
		return 8
	case KindArray:
		return int(t.Len) * t.Elem.Size()
	case KindClass:
		size := 0
		for _, f := range t.Fields {
			size += f.Type.Size()
		}
		return size
	}
	return 0
}

// IsSigned reports whether arithmetic/comparison on t should use signed
// semantics. Pointers and Bool are unsigned.
func (t *Type) IsSigned() bool {
	return t.Kind == KindInt && t.Signed
}

// IsInteger reports whether t participates in the integer arithmetic
// lattice (includes Bool and pointers, which are byte-addressed integers).
func (t *Type) IsInteger() bool {
	switch t.Kind {
	case KindInt, KindBool, KindPointer:
		return true
	}
	return false
}

func (t *Type) String() string {
	switch t.Kind {
	case KindInt:
		prefix := "U"
		if t.Signed {
			prefix = "I"
		}
		return fmt.Sprintf("%s%d", prefix, t.Bits)
	case KindBool:
		return "Bool"
	case KindVoid:
		return "Void"
	case KindF64:
		return "F64"
	case KindPointer:
		return t.Elem.String() + "*"
	case KindArray:
		return fmt.Sprintf("%s[%d]", t.Elem.String(), t.Len)
	case KindClass:
		return t.ClassName
	}
	return "<invalid type>"
}

// Equal reports whether t and u name the same type. Class equality is by
// name; field lists are not compared (a class name is unique per program).
func (t *Type) Equal(u *Type) bool {
	if t == nil || u == nil {
		return t == u
	}
	if t.Kind != u.Kind {
		return false
	}
	switch t.Kind {
	case KindInt:
		return t.Bits == u.Bits && t.Signed == u.Signed
	case KindPointer:
		return t.Elem.Equal(u.Elem)
	case KindArray:
		return t.Len == u.Len && t.Elem.Equal(u.Elem)
	case KindClass:
		return t.ClassName == u.ClassName
	default:
		return true
	}
}
