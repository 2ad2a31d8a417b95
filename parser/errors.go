package parser

import (
	"fmt"
	"strings"

	"holybpf/token"
)

// Error is a parse-time failure. Parsing aborts on the first error
// encountered, per spec.md §4.2's failure model ("first error is reported
// and aborts").
type Error struct {
	Kind     string
	Pos      token.Position
	Msg      string
	Expected []string
	Found    string
}

func (e *Error) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("%s: %s at %s", e.Kind, e.Msg, e.Pos)
	}
	return fmt.Sprintf("%s: expected %s but found %s at %s", e.Kind, strings.Join(e.Expected, " or "), e.Found, e.Pos)
}

func errExpected(pos token.Position, found string, expected ...string) *Error {
	return &Error{Kind: "parse.expected", Pos: pos, Expected: expected, Found: found}
}

func errBadType(pos token.Position, msg string) *Error {
	return &Error{Kind: "parse.bad-type", Pos: pos, Msg: msg}
}

func errBadLValue(pos token.Position, msg string) *Error {
	return &Error{Kind: "parse.bad-lvalue", Pos: pos, Msg: msg}
}

func errTooManyParams(pos token.Position, count int) *Error {
	return &Error{Kind: "parse.too-many-params", Pos: pos, Msg: fmt.Sprintf("function declares %d parameters, maximum is 5", count)}
}

func errDuplicateField(pos token.Position, name string) *Error {
	return &Error{Kind: "parse.duplicate-field", Pos: pos, Msg: fmt.Sprintf("duplicate field name %q", name)}
}
