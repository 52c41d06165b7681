// SPDX-License-Identifier: MPL-2.0

package luaprint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/gopher-lua/ast"
)

// DefaultIndent is used when Options.Indent is empty.
const DefaultIndent = "  "

// ErrUnsupportedNode is returned for tree nodes the printer cannot render.
var ErrUnsupportedNode = errors.New("unsupported syntax node")

type (
	// Options selects the output layout.
	Options struct {
		// Minify drops indentation and newlines.
		Minify bool
		// Indent is one indentation level in readable output.
		Indent string
	}

	printer struct {
		opts  Options
		b     strings.Builder
		depth int
		// last is the final byte written; lastNum is set when that byte
		// ended a numeric literal.
		last    byte
		lastNum bool
		err     error
	}
)

// String renders chunk as Lua source.
func String(chunk []ast.Stmt, opts Options) (string, error) {
	if opts.Indent == "" {
		opts.Indent = DefaultIndent
	}
	p := &printer{opts: opts}
	for i, s := range chunk {
		if i > 0 {
			p.newline()
			p.separate(s)
		}
		p.stmt(s)
	}
	if p.err != nil {
		return "", p.err
	}
	if !opts.Minify && len(chunk) > 0 {
		p.b.WriteByte('\n')
	}
	return p.b.String(), nil
}

// --- token output ---

func (p *printer) write(s string, number bool) {
	if s == "" {
		return
	}
	if p.b.Len() > 0 && (p.needsSpace(s[0]) || p.spaceBeforeKeyword(s)) {
		p.b.WriteByte(' ')
	}
	p.b.WriteString(s)
	p.last = s[len(s)-1]
	p.lastNum = number
}

// tok writes a keyword, name or punctuation token.
func (p *printer) tok(s string) { p.write(s, false) }

func (p *printer) number(s string) { p.write(s, true) }

// needsSpace reports whether next would fuse with the previous token.
func (p *printer) needsSpace(next byte) bool {
	last := p.last
	switch {
	case isWordByte(last) && isWordByte(next):
		return true
	case p.lastNum && (next == '.' || isWordByte(next)):
		return true
	case last == '-' && next == '-':
		return true
	case last == '.' && (next == '.' || isDigit(next)):
		return true
	case last == '[' && (next == '[' || next == '='):
		return true
	}
	return false
}

// blockKeywords close a header or a block and read poorly when glued to a
// preceding ')' or string.
var blockKeywords = map[string]bool{
	"do": true, "then": true, "else": true, "elseif": true,
	"end": true, "in": true, "until": true,
}

func (p *printer) spaceBeforeKeyword(s string) bool {
	if p.opts.Minify || !blockKeywords[s] {
		return false
	}
	return p.last != ' ' && p.last != '\n' && !isWordByte(p.last)
}

func (p *printer) space() {
	if !p.opts.Minify {
		p.b.WriteByte(' ')
		p.last = ' '
		p.lastNum = false
	}
}

func (p *printer) newline() {
	if p.opts.Minify {
		return
	}
	p.b.WriteByte('\n')
	p.b.WriteString(strings.Repeat(p.opts.Indent, p.depth))
	p.last = '\n'
	p.lastNum = false
}

// op writes a binary operator or assignment sign.
func (p *printer) op(s string) {
	p.space()
	p.tok(s)
	p.space()
}

func (p *printer) comma() {
	p.tok(",")
	p.space()
}

func (p *printer) fail(n any) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %T", ErrUnsupportedNode, n)
	}
}

// --- blocks and statements ---

// separate opens the next statement with ';' when it would otherwise be
// read as a continuation of the previous one, and always when minifying.
func (p *printer) separate(next ast.Stmt) {
	if p.opts.Minify || startsWithParen(next) {
		p.tok(";")
	}
}

func (p *printer) block(stmts []ast.Stmt) {
	if len(stmts) == 0 {
		p.space()
		return
	}
	p.depth++
	for i, s := range stmts {
		p.newline()
		if i > 0 {
			p.separate(s)
		}
		p.stmt(s)
	}
	p.depth--
	p.newline()
}

func (p *printer) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.AssignStmt:
		p.exprList(s.Lhs)
		p.op("=")
		p.exprList(s.Rhs)
	case *ast.LocalAssignStmt:
		p.tok("local")
		if len(s.Names) == 1 && len(s.Exprs) == 1 {
			if fn, ok := s.Exprs[0].(*ast.FunctionExpr); ok {
				p.tok("function")
				p.tok(s.Names[0])
				p.funcBody(fn.ParList, fn.Stmts)
				return
			}
		}
		p.names(s.Names)
		if len(s.Exprs) > 0 {
			p.op("=")
			p.exprList(s.Exprs)
		}
	case *ast.FuncCallStmt:
		call, ok := s.Expr.(*ast.FuncCallExpr)
		if !ok {
			p.fail(s.Expr)
			return
		}
		p.call(call, false)
	case *ast.DoBlockStmt:
		p.tok("do")
		p.block(s.Stmts)
		p.tok("end")
	case *ast.WhileStmt:
		p.tok("while")
		p.expr(s.Condition)
		p.tok("do")
		p.block(s.Stmts)
		p.tok("end")
	case *ast.RepeatStmt:
		p.tok("repeat")
		p.block(s.Stmts)
		p.tok("until")
		p.expr(s.Condition)
	case *ast.IfStmt:
		p.ifStmt(s)
	case *ast.NumberForStmt:
		p.tok("for")
		p.tok(s.Name)
		p.op("=")
		p.expr(s.Init)
		p.comma()
		p.expr(s.Limit)
		if s.Step != nil {
			p.comma()
			p.expr(s.Step)
		}
		p.tok("do")
		p.block(s.Stmts)
		p.tok("end")
	case *ast.GenericForStmt:
		p.tok("for")
		p.names(s.Names)
		p.tok("in")
		p.exprList(s.Exprs)
		p.tok("do")
		p.block(s.Stmts)
		p.tok("end")
	case *ast.FuncDefStmt:
		p.funcDef(s)
	case *ast.ReturnStmt:
		p.tok("return")
		if len(s.Exprs) > 0 {
			p.space()
			p.exprList(s.Exprs)
		}
	case *ast.BreakStmt:
		p.tok("break")
	case *ast.GotoStmt:
		p.tok("goto")
		p.tok(s.Label)
	case *ast.LabelStmt:
		p.tok("::" + s.Name + "::")
	default:
		p.fail(s)
	}
}

func (p *printer) ifStmt(s *ast.IfStmt) {
	p.tok("if")
	for {
		p.expr(s.Condition)
		p.tok("then")
		p.block(s.Then)
		if len(s.Else) == 1 {
			if next, ok := s.Else[0].(*ast.IfStmt); ok {
				p.tok("elseif")
				s = next
				continue
			}
		}
		if len(s.Else) > 0 {
			p.tok("else")
			p.block(s.Else)
		}
		p.tok("end")
		return
	}
}

func (p *printer) funcDef(s *ast.FuncDefStmt) {
	p.tok("function")
	if s.Name.Func != nil {
		p.expr(s.Name.Func)
		p.funcBody(s.Func.ParList, s.Func.Stmts)
		return
	}
	// Method definitions carry an implicit self that the ':' form restores.
	p.expr(s.Name.Receiver)
	p.tok(":")
	p.tok(s.Name.Method)
	params := s.Func.ParList
	if params != nil && len(params.Names) > 0 && params.Names[0] == "self" {
		params = &ast.ParList{HasVargs: params.HasVargs, Names: params.Names[1:]}
	}
	p.funcBody(params, s.Func.Stmts)
}

func (p *printer) funcBody(params *ast.ParList, body []ast.Stmt) {
	p.tok("(")
	if params != nil {
		p.names(params.Names)
		if params.HasVargs {
			if len(params.Names) > 0 {
				p.comma()
			}
			p.tok("...")
		}
	}
	p.tok(")")
	p.block(body)
	p.tok("end")
}

func (p *printer) names(names []string) {
	for i, n := range names {
		if i > 0 {
			p.comma()
		}
		p.tok(n)
	}
}

// --- expressions ---

func (p *printer) exprList(exprs []ast.Expr) {
	for i, e := range exprs {
		if i > 0 {
			p.comma()
		}
		p.expr(e)
	}
}

func (p *printer) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.NilExpr:
		p.tok("nil")
	case *ast.TrueExpr:
		p.tok("true")
	case *ast.FalseExpr:
		p.tok("false")
	case *ast.NumberExpr:
		p.number(e.Value)
	case *ast.StringExpr:
		p.tok(Quote(e.Value))
	case *ast.Comma3Expr:
		if e.AdjustRet {
			p.tok("(...)")
		} else {
			p.tok("...")
		}
	case *ast.IdentExpr:
		p.tok(e.Value)
	case *ast.AttrGetExpr:
		p.prefix(e.Object)
		if key, ok := e.Key.(*ast.StringExpr); ok && IsName(key.Value) {
			p.tok(".")
			p.tok(key.Value)
			return
		}
		p.tok("[")
		p.expr(e.Key)
		p.tok("]")
	case *ast.TableExpr:
		p.table(e)
	case *ast.FuncCallExpr:
		p.call(e, true)
	case *ast.FunctionExpr:
		p.tok("function")
		p.funcBody(e.ParList, e.Stmts)
	case *ast.LogicalOpExpr:
		p.binary(e.Operator, e.Lhs, e.Rhs)
	case *ast.RelationalOpExpr:
		p.binary(e.Operator, e.Lhs, e.Rhs)
	case *ast.ArithmeticOpExpr:
		p.binary(e.Operator, e.Lhs, e.Rhs)
	case *ast.StringConcatOpExpr:
		p.binary("..", e.Lhs, e.Rhs)
	case *ast.UnaryMinusOpExpr:
		p.unary("-", e.Expr)
	case *ast.UnaryNotOpExpr:
		p.unary("not", e.Expr)
	case *ast.UnaryLenOpExpr:
		p.unary("#", e.Expr)
	default:
		p.fail(e)
	}
}

// prefix writes e where Lua's grammar requires a prefix expression: the
// callee of a call or the object of an index.
func (p *printer) prefix(e ast.Expr) {
	if isPrefixExpr(e) {
		p.expr(e)
		return
	}
	p.tok("(")
	p.expr(e)
	p.tok(")")
}

func (p *printer) call(e *ast.FuncCallExpr, keepParens bool) {
	wrap := keepParens && e.AdjustRet
	if wrap {
		p.tok("(")
	}
	if e.Func != nil {
		p.prefix(e.Func)
	} else {
		p.prefix(e.Receiver)
		p.tok(":")
		p.tok(e.Method)
	}
	p.tok("(")
	p.exprList(e.Args)
	p.tok(")")
	if wrap {
		p.tok(")")
	}
}

func (p *printer) table(e *ast.TableExpr) {
	p.tok("{")
	for i, f := range e.Fields {
		if i > 0 {
			p.comma()
		}
		switch key := f.Key.(type) {
		case nil:
		case *ast.StringExpr:
			if IsName(key.Value) {
				p.tok(key.Value)
			} else {
				p.tok("[")
				p.expr(key)
				p.tok("]")
			}
			p.op("=")
		default:
			p.tok("[")
			p.expr(key)
			p.tok("]")
			p.op("=")
		}
		p.expr(f.Value)
	}
	p.tok("}")
}

func (p *printer) binary(op string, lhs, rhs ast.Expr) {
	prec, rightAssoc := binaryPrec(op)

	lp, rp := exprPrec(lhs), exprPrec(rhs)
	p.operand(lhs, lp < prec || (rightAssoc && lp == prec))
	p.op(op)
	p.operand(rhs, rp < prec || (!rightAssoc && rp == prec))
}

func (p *printer) unary(op string, operand ast.Expr) {
	p.tok(op)
	if op == "not" {
		p.space()
	}
	p.operand(operand, exprPrec(operand) < precUnary)
}

func (p *printer) operand(e ast.Expr, paren bool) {
	if !paren {
		p.expr(e)
		return
	}
	p.tok("(")
	p.expr(e)
	p.tok(")")
}
