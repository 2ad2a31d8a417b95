package parser

import "holybpf/token"

// binaryPrecedence implements the 14-level ladder of spec.md §4.2 for the
// binary-operator levels (2 through 11); assignment (level 1) is handled by
// assignment, and prefix/postfix/primary (levels 12-14) by their own
// recursive-descent layers. Every level is left-associative.
var binaryPrecedence = map[token.Type]int{
	token.OROR: 2,

	token.ANDAND: 3,

	token.PIPE: 4,

	token.CARET: 5,

	token.AMP: 6,

	token.EQ: 7,
	token.NE: 7,

	token.LT: 8,
	token.LE: 8,
	token.GT: 8,
	token.GE: 8,

	token.SHL: 9,
	token.SHR: 9,

	token.PLUS:  10,
	token.MINUS: 10,

	token.STAR:    11,
	token.SLASH:   11,
	token.PERCENT: 11,
}

// assignOps is the set of level-1, right-associative assignment operators.
var assignOps = map[token.Type]bool{
	token.ASSIGN:         true,
	token.PLUS_ASSIGN:    true,
	token.MINUS_ASSIGN:   true,
	token.STAR_ASSIGN:    true,
	token.SLASH_ASSIGN:   true,
	token.PERCENT_ASSIGN: true,
	token.AMP_ASSIGN:     true,
	token.PIPE_ASSIGN:    true,
	token.CARET_ASSIGN:   true,
	token.SHL_ASSIGN:     true,
	token.SHR_ASSIGN:     true,
}

// unaryOps is the set of level-12 prefix operators.
var unaryOps = map[token.Type]bool{
	token.MINUS: true,
	token.BANG:  true,
	token.TILDE: true,
	token.STAR:  true, // dereference
	token.AMP:   true, // address-of
	token.INC:   true,
	token.DEC:   true,
}
