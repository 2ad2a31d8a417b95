package ast

import "holybpf/token"

// Item is the marker interface every top-level declaration implements.
type Item interface {
	Pos() token.Position
	itemNode()
}

// Param is one entry of a function's parameter list.
type Param struct {
	Type *Type
	Name string
}

// ClassDecl is `class NAME { (TYPE NAME ;)* };`. Field names are unique
// within a class (enforced by the parser).
type ClassDecl struct {
	Name     string
	Fields   []Field
	Position token.Position
}

func (n ClassDecl) Pos() token.Position { return n.Position }
func (ClassDecl) itemNode()             {}

// FuncDecl is a function definition: return type, name, up to 5 parameters,
// and a body block.
type FuncDecl struct {
	RetType  *Type
	Name     string
	Params   []Param
	Body     *Block
	Position token.Position
}

func (n FuncDecl) Pos() token.Position { return n.Position }
func (FuncDecl) itemNode()             {}

// DefineDecl is `#define NAME VALUE`. Value must fold to a constant integer
// (spec.md §3: "#define values are constant integers available to the
// codegen's symbol lookup").
type DefineDecl struct {
	Name     string
	Value    Expr
	Position token.Position
}

func (n DefineDecl) Pos() token.Position { return n.Position }
func (DefineDecl) itemNode()             {}

// IncludeDecl is `#include "..."` — parsed and carried for completeness,
// never expanded (spec.md §1 Non-goals).
type IncludeDecl struct {
	Path     string
	Position token.Position
}

func (n IncludeDecl) Pos() token.Position { return n.Position }
func (IncludeDecl) itemNode()             {}

// File is the result of parsing one HolyC source file: an ordered list of
// top-level items, in source order.
type File struct {
	Items []Item
}
