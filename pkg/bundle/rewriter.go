// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"github.com/luapack/luapack/pkg/script"
	"github.com/luapack/luapack/pkg/types"

	"github.com/yuin/gopher-lua/ast"
)

const (
	// RequireName is the import function recognized in source.
	RequireName = "require"
	// ExportObject and ExportField spell the export slot module.exports.
	ExportObject = "module"
	ExportField  = "exports"

	// LoaderName, RegistryName and CacheName are the bundle-wide locals
	// the emitted program declares.
	LoaderName   = "__luapack_load"
	RegistryName = "__luapack_modules"
	CacheName    = "__luapack_cache"
)

// rewriter makes one pass over a freshly parsed chunk, in source order.
// require calls are built (depth-first, through the builder) as they are
// met and replaced with loader calls; module.exports becomes the module's
// cache slot.
type rewriter struct {
	b      *builder
	script *script.Ref
	id     types.ModuleID
	// record is nil for the entry.
	record *Record
}

func (r *rewriter) rewrite(chunk []ast.Stmt) error {
	return r.block(chunk)
}

func (r *rewriter) block(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := r.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *rewriter) stmt(s ast.Stmt) error {
	var err error
	switch s := s.(type) {
	case *ast.AssignStmt:
		// Lua evaluates the values before storing them, so requires on the
		// right run while the export slot is still empty.
		if err = r.exprs(s.Rhs); err != nil {
			return err
		}
		exported := false
		for i, target := range s.Lhs {
			if isExportSlot(target) {
				if r.record == nil {
					return &InvalidExportPositionError{File: r.script.Path(), Line: s.Line()}
				}
				s.Lhs[i] = r.cacheSlot()
				exported = true
				continue
			}
			if s.Lhs[i], err = r.expr(target); err != nil {
				return err
			}
		}
		if exported {
			// Once the export is in place the id may be handed out.
			r.record.State = StateResolved
		}
		return nil
	case *ast.LocalAssignStmt:
		return r.exprs(s.Exprs)
	case *ast.FuncCallStmt:
		s.Expr, err = r.expr(s.Expr)
		return err
	case *ast.DoBlockStmt:
		return r.block(s.Stmts)
	case *ast.WhileStmt:
		if s.Condition, err = r.expr(s.Condition); err != nil {
			return err
		}
		return r.block(s.Stmts)
	case *ast.RepeatStmt:
		if err := r.block(s.Stmts); err != nil {
			return err
		}
		s.Condition, err = r.expr(s.Condition)
		return err
	case *ast.IfStmt:
		if s.Condition, err = r.expr(s.Condition); err != nil {
			return err
		}
		if err := r.block(s.Then); err != nil {
			return err
		}
		return r.block(s.Else)
	case *ast.NumberForStmt:
		if s.Init, err = r.expr(s.Init); err != nil {
			return err
		}
		if s.Limit, err = r.expr(s.Limit); err != nil {
			return err
		}
		if s.Step != nil {
			if s.Step, err = r.expr(s.Step); err != nil {
				return err
			}
		}
		return r.block(s.Stmts)
	case *ast.GenericForStmt:
		if err := r.exprs(s.Exprs); err != nil {
			return err
		}
		return r.block(s.Stmts)
	case *ast.FuncDefStmt:
		if s.Name.Func != nil {
			if s.Name.Func, err = r.expr(s.Name.Func); err != nil {
				return err
			}
		} else if s.Name.Receiver, err = r.expr(s.Name.Receiver); err != nil {
			return err
		}
		return r.block(s.Func.Stmts)
	case *ast.ReturnStmt:
		return r.exprs(s.Exprs)
	}
	return nil
}

func (r *rewriter) exprs(list []ast.Expr) error {
	for i, e := range list {
		var err error
		if list[i], err = r.expr(e); err != nil {
			return err
		}
	}
	return nil
}

// expr returns e with every require call and export slot below it
// replaced. Nodes are rewritten in place where possible.
func (r *rewriter) expr(e ast.Expr) (ast.Expr, error) {
	var err error
	switch e := e.(type) {
	case *ast.FuncCallExpr:
		if isRequire(e) {
			return r.require(e)
		}
		if e.Func != nil {
			if e.Func, err = r.expr(e.Func); err != nil {
				return nil, err
			}
		} else if e.Receiver, err = r.expr(e.Receiver); err != nil {
			return nil, err
		}
		return e, r.exprs(e.Args)
	case *ast.AttrGetExpr:
		if isExportSlot(e) && r.record != nil {
			return r.cacheSlot(), nil
		}
		if e.Object, err = r.expr(e.Object); err != nil {
			return nil, err
		}
		e.Key, err = r.expr(e.Key)
		return e, err
	case *ast.TableExpr:
		for _, f := range e.Fields {
			if f.Key != nil {
				if f.Key, err = r.expr(f.Key); err != nil {
					return nil, err
				}
			}
			if f.Value, err = r.expr(f.Value); err != nil {
				return nil, err
			}
		}
		return e, nil
	case *ast.FunctionExpr:
		return e, r.block(e.Stmts)
	case *ast.LogicalOpExpr:
		return e, r.pair(&e.Lhs, &e.Rhs)
	case *ast.RelationalOpExpr:
		return e, r.pair(&e.Lhs, &e.Rhs)
	case *ast.ArithmeticOpExpr:
		return e, r.pair(&e.Lhs, &e.Rhs)
	case *ast.StringConcatOpExpr:
		return e, r.pair(&e.Lhs, &e.Rhs)
	case *ast.UnaryMinusOpExpr:
		e.Expr, err = r.expr(e.Expr)
		return e, err
	case *ast.UnaryNotOpExpr:
		e.Expr, err = r.expr(e.Expr)
		return e, err
	case *ast.UnaryLenOpExpr:
		e.Expr, err = r.expr(e.Expr)
		return e, err
	}
	return e, nil
}

func (r *rewriter) pair(lhs, rhs *ast.Expr) error {
	var err error
	if *lhs, err = r.expr(*lhs); err != nil {
		return err
	}
	*rhs, err = r.expr(*rhs)
	return err
}

// require builds the target of call and returns the loader call that
// replaces it.
func (r *rewriter) require(call *ast.FuncCallExpr) (ast.Expr, error) {
	line := call.Line()
	if len(call.Args) != 1 {
		return nil, &InvalidRequireArgumentError{File: r.script.Path(), Line: line}
	}
	lit, ok := call.Args[0].(*ast.StringExpr)
	if !ok {
		return nil, &InvalidRequireArgumentError{File: r.script.Path(), Line: line}
	}

	id, err := r.b.require(r.script, types.Specifier(lit.Value), line)
	if err != nil {
		return nil, err
	}

	load := &ast.FuncCallExpr{
		Func:      &ast.IdentExpr{Value: LoaderName},
		Args:      []ast.Expr{idLiteral(id)},
		AdjustRet: call.AdjustRet,
	}
	load.SetLine(line)
	load.SetLastLine(call.LastLine())
	return load, nil
}

// cacheSlot returns __luapack_cache[<id>] for this module.
func (r *rewriter) cacheSlot() ast.Expr {
	return &ast.AttrGetExpr{
		Object: &ast.IdentExpr{Value: CacheName},
		Key:    idLiteral(r.id),
	}
}

func idLiteral(id types.ModuleID) ast.Expr {
	return &ast.NumberExpr{Value: id.String()}
}

// isRequire matches require(...) but not method calls like x:require(...).
func isRequire(call *ast.FuncCallExpr) bool {
	if call.Receiver != nil || call.Func == nil {
		return false
	}
	ident, ok := call.Func.(*ast.IdentExpr)
	return ok && ident.Value == RequireName
}

// isExportSlot matches module.exports and module["exports"].
func isExportSlot(e ast.Expr) bool {
	get, ok := e.(*ast.AttrGetExpr)
	if !ok {
		return false
	}
	obj, ok := get.Object.(*ast.IdentExpr)
	if !ok || obj.Value != ExportObject {
		return false
	}
	key, ok := get.Key.(*ast.StringExpr)
	return ok && key.Value == ExportField
}
