// SPDX-License-Identifier: MPL-2.0

package luaprint

import (
	"strconv"
	"strings"

	"github.com/yuin/gopher-lua/ast"
)

// Lua 5.1 operator precedence, lowest first.
const (
	precOr = iota + 1
	precAnd
	precCompare
	precConcat
	precAdd
	precMul
	precUnary
	precPow
	precAtom
)

var keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// binaryPrec returns the precedence of a binary operator and whether it
// associates to the right.
func binaryPrec(op string) (int, bool) {
	switch op {
	case "or":
		return precOr, false
	case "and":
		return precAnd, false
	case "<", ">", "<=", ">=", "~=", "==":
		return precCompare, false
	case "..":
		return precConcat, true
	case "+", "-":
		return precAdd, false
	case "*", "/", "%":
		return precMul, false
	case "^":
		return precPow, true
	}
	return precAtom, false
}

func exprPrec(e ast.Expr) int {
	switch e := e.(type) {
	case *ast.LogicalOpExpr:
		prec, _ := binaryPrec(e.Operator)
		return prec
	case *ast.RelationalOpExpr:
		return precCompare
	case *ast.StringConcatOpExpr:
		return precConcat
	case *ast.ArithmeticOpExpr:
		prec, _ := binaryPrec(e.Operator)
		return prec
	case *ast.UnaryMinusOpExpr, *ast.UnaryNotOpExpr, *ast.UnaryLenOpExpr:
		return precUnary
	case *ast.NumberExpr:
		// a folded negative literal binds like unary minus
		if strings.HasPrefix(e.Value, "-") {
			return precUnary
		}
	}
	return precAtom
}

func isPrefixExpr(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.IdentExpr, *ast.AttrGetExpr, *ast.FuncCallExpr:
		return true
	case *ast.Comma3Expr:
		return e.AdjustRet
	}
	return false
}

// startsWithParen reports whether the rendered statement begins with '('.
func startsWithParen(s ast.Stmt) bool {
	var e ast.Expr
	switch s := s.(type) {
	case *ast.FuncCallStmt:
		call, ok := s.Expr.(*ast.FuncCallExpr)
		if !ok {
			return false
		}
		// the statement form never keeps the call's own parentheses
		e = call.Func
		if e == nil {
			e = call.Receiver
		}
	case *ast.AssignStmt:
		if len(s.Lhs) == 0 {
			return false
		}
		e = s.Lhs[0]
	default:
		return false
	}
	return leftmostParen(e)
}

func leftmostParen(e ast.Expr) bool {
	for {
		if !isPrefixExpr(e) {
			return true
		}
		switch x := e.(type) {
		case *ast.FuncCallExpr:
			if x.AdjustRet {
				return true
			}
			if x.Func != nil {
				e = x.Func
			} else {
				e = x.Receiver
			}
		case *ast.AttrGetExpr:
			e = x.Object
		case *ast.Comma3Expr:
			return x.AdjustRet
		default:
			return false
		}
	}
}

// IsName reports whether s is a valid Lua identifier that is not a keyword.
func IsName(s string) bool {
	if s == "" || keywords[s] || isDigit(s[0]) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isWordByte(s[i]) {
			return false
		}
	}
	return true
}

// Quote returns s as a double-quoted Lua string literal. Control bytes use
// three-digit decimal escapes so a following digit cannot extend them;
// bytes >= 0x80 are copied through unchanged.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				b.WriteByte('\\')
				d := strconv.Itoa(int(c))
				b.WriteString(strings.Repeat("0", 3-len(d)))
				b.WriteString(d)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordByte(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
