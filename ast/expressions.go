package ast

import "holybpf/token"

// Expr is the marker interface every expression node implements. Every node
// carries the source position of its first token (spec.md §3 invariant).
type Expr interface {
	Pos() token.Position
	exprNode()
}

// IntLiteral is an integer constant; Value is always the unsigned 64-bit
// interpretation, Radix is kept only for diagnostics (spec.md testable
// property 2).
type IntLiteral struct {
	Value    uint64
	Radix    int
	Position token.Position
}

func (n IntLiteral) Pos() token.Position { return n.Position }
func (IntLiteral) exprNode()             {}

// StringLiteral is a raw byte vector; the lexer performs no implicit
// termination, matching spec.md §4.1 — codegen adds a NUL only if the
// string is actually used as a C string.
type StringLiteral struct {
	Value    []byte
	Position token.Position
}

func (n StringLiteral) Pos() token.Position { return n.Position }
func (StringLiteral) exprNode()             {}

// BoolLiteral is TRUE/FALSE.
type BoolLiteral struct {
	Value    bool
	Position token.Position
}

func (n BoolLiteral) Pos() token.Position { return n.Position }
func (BoolLiteral) exprNode()             {}

// Ident references a variable, parameter, or #define constant by name.
type Ident struct {
	Name     string
	Position token.Position
}

func (n Ident) Pos() token.Position { return n.Position }
func (Ident) exprNode()             {}

// UnaryOp is a prefix or postfix unary expression: negate, logical-not,
// bitwise-not, dereference, address-of, or increment/decrement.
type UnaryOp struct {
	Op       token.Type
	Operand  Expr
	Postfix  bool // true for x++ / x--; Op is always INC/DEC when Postfix
	Position token.Position
}

func (n UnaryOp) Pos() token.Position { return n.Position }
func (UnaryOp) exprNode()             {}

// BinaryOp covers every binary operator in spec.md §4.2's precedence table
// except assignment, which is its own node (Assign).
type BinaryOp struct {
	Op       token.Type
	Left     Expr
	Right    Expr
	Position token.Position
}

func (n BinaryOp) Pos() token.Position { return n.Position }
func (BinaryOp) exprNode()             {}

// LogicalOp is && / ||, kept distinct from BinaryOp because codegen must
// lower it to a short-circuiting branch sequence rather than a single ALU
// instruction (spec.md §4.4).
type LogicalOp struct {
	Op       token.Type // ANDAND or OROR
	Left     Expr
	Right    Expr
	Position token.Position
}

func (n LogicalOp) Pos() token.Position { return n.Position }
func (LogicalOp) exprNode()             {}

// Assign is a simple (`=`) or compound (`+=`, `&=`, ...) assignment. Target
// must be an lvalue: Ident, a dereferencing UnaryOp, Index, or Member — the
// parser rejects anything else at parse time (spec.md §4.2).
type Assign struct {
	Op       token.Type
	Target   Expr
	Value    Expr
	Position token.Position
}

func (n Assign) Pos() token.Position { return n.Position }
func (Assign) exprNode()             {}

// Call is a function call by name; spec.md caps argument count at 5.
type Call struct {
	Callee   string
	Args     []Expr
	Position token.Position
}

func (n Call) Pos() token.Position { return n.Position }
func (Call) exprNode()             {}

// Index is array/pointer subscripting: Base[Idx].
type Index struct {
	Base     Expr
	Idx      Expr
	Position token.Position
}

func (n Index) Pos() token.Position { return n.Position }
func (Index) exprNode()             {}

// Member is aggregate field access: Base.Field.
type Member struct {
	Base     Expr
	Field    string
	Position token.Position
}

func (n Member) Pos() token.Position { return n.Position }
func (Member) exprNode()             {}

// Paren is a parenthesized expression, kept as its own node so that
// diagnostics and pretty-printing can round-trip the source grouping.
type Paren struct {
	Inner    Expr
	Position token.Position
}

func (n Paren) Pos() token.Position { return n.Position }
func (Paren) exprNode()             {}
